package views

import "github.com/eringen/gamenews/post"

// Page carries the per-request values every layout needs.
type Page struct {
	Title       string
	Description string
	SiteName    string
	SiteURL     string
	Section     string // active navigation entry: "home", "news", "reviews", "opinion", "admin"
	Principal   string // signed-in username, empty for visitors
	CSRF        string
	Notice      Notice
	JSONLD      string // schema.org metadata, emitted verbatim in <head>
}

// SignedIn reports whether the page is rendered for an authenticated user.
func (p Page) SignedIn() bool { return p.Principal != "" }

// Notice is a one-shot success or error message.
type Notice struct {
	Kind    string
	Message string
}

// HomeData feeds the home page.
type HomeData struct {
	Featured     []post.Post
	SemiFeatured []post.Post
	Recent       []post.Post
	Search       string
	Category     post.Category
	Sort         post.Sort
}

// CategoryData feeds a category page; Lead is the highlighted newest post.
type CategoryData struct {
	Category post.Category
	Lead     *post.Post
	Rest     []post.Post
}

// PostData feeds the article page.
type PostData struct {
	Post    post.Post
	Related []post.Post
}

// PostListData feeds the public and admin post listings.
type PostListData struct {
	Posts    []post.Post
	Search   string
	Category post.Category
	Sort     post.Sort
	Limit    int
}

// PostFormData feeds the create/edit form. Errors maps form field names to
// messages from validation.
type PostFormData struct {
	Post   post.Post
	Errors map[string]string
	Action string
	Method string // "POST" or "PUT"
	Admin  bool
	Cancel string
}

// Editing reports whether the form edits an existing post.
func (d PostFormData) Editing() bool { return d.Post.ID != "" }

// LoginData feeds the login form.
type LoginData struct {
	Login string
}

// DashboardData feeds the featured-post manager.
type DashboardData struct {
	Posts             []post.Post
	FeaturedLimit     int
	SemiFeaturedLimit int
}

// FeaturedCount returns how many listed posts are featured.
func (d DashboardData) FeaturedCount() int {
	n := 0
	for _, p := range d.Posts {
		if p.Featured {
			n++
		}
	}
	return n
}

// SemiFeaturedCount returns how many listed posts are semi-featured.
func (d DashboardData) SemiFeaturedCount() int {
	n := 0
	for _, p := range d.Posts {
		if p.SemiFeatured {
			n++
		}
	}
	return n
}
