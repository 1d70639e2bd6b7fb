package gamenews

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/gamenews/post"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// RelatedPosts drops current from candidates and returns at most n of the rest.
func RelatedPosts(current post.Post, candidates []post.Post, n int) []post.Post {
	var related []post.Post
	for _, p := range candidates {
		if p.ID == current.ID {
			continue
		}
		if len(related) == n {
			break
		}
		related = append(related, p)
	}
	return related
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// NewsArticleJsonLD returns a JSON-LD string for a NewsArticle schema.
// Reviews are typed as Review so search engines can pick them up.
func NewsArticleJsonLD(p post.Post, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "posts", p.ID)
	kind := "NewsArticle"
	if p.Category == post.Reviews {
		kind = "Review"
	}
	data := map[string]interface{}{
		"@context":       "https://schema.org",
		"@type":          kind,
		"headline":       p.Title,
		"description":    p.Excerpt(),
		"articleSection": string(p.Category),
		"datePublished":  p.CreatedAt.Format(time.RFC3339),
		"dateModified":   p.UpdatedAt.Format(time.RFC3339),
		"url":            postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"author": map[string]string{
			"@type": "Person",
			"name":  p.Author,
		},
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if src := p.ImageSrc(); src != "" {
		if strings.HasPrefix(src, "/") {
			src = strings.TrimRight(cfg.URL, "/") + src
		}
		data["image"] = src
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
