package post

import "strings"

// Sort selects the ordering of a post listing.
type Sort string

const (
	SortNewest     Sort = "newest"
	SortOldest     Sort = "oldest"
	SortMostLiked  Sort = "most-liked"
	SortMostViewed Sort = "most-viewed"
)

// Sorts lists the orderings offered in listing controls.
var Sorts = []Sort{SortNewest, SortOldest, SortMostLiked, SortMostViewed}

// Label is the human-readable name of the ordering.
func (s Sort) Label() string {
	switch s {
	case SortOldest:
		return "Oldest first"
	case SortMostLiked:
		return "Most liked"
	case SortMostViewed:
		return "Most viewed"
	default:
		return "Newest first"
	}
}

// ParseSort maps a query value to a Sort. Unknown values fall back to
// newest; "popular" and "views" are accepted for old bookmarked links.
func ParseSort(s string) Sort {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oldest":
		return SortOldest
	case "most-liked", "popular", "likes":
		return SortMostLiked
	case "most-viewed", "views":
		return SortMostViewed
	default:
		return SortNewest
	}
}

// Filter narrows a post listing.
type Filter struct {
	// Search is matched case-insensitively as a substring of the title,
	// and of the content too when SearchContent is set.
	Search        string
	SearchContent bool
	// Category is ignored when empty.
	Category Category
	Sort     Sort
}
