// Package post defines the article entity shown on the site, its category
// taxonomy and the rules a post must satisfy before it is stored.
package post

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/eringen/gamenews/markdown"
)

// Category is the closed set of sections a post can be filed under.
type Category string

const (
	News    Category = "News"
	Opinion Category = "Opinion"
	Reviews Category = "Reviews"
)

// Categories lists every valid category in navigation order.
var Categories = []Category{News, Reviews, Opinion}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

// Slug is the lowercase path segment of the category page ("news").
func (c Category) Slug() string {
	return strings.ToLower(string(c))
}

const (
	// MaxTitleLen is the maximum title length in characters.
	MaxTitleLen = 200
	// DefaultAuthor is used when a post is saved without an author.
	DefaultAuthor = "Editor"

	excerptLen = 150
)

// Post is a single article.
//
// ContentHTML caches markdown.Convert(Content); it may be empty for rows
// written before the cache existed, so readers go through HTML.
type Post struct {
	ID          string
	Title       string `form:"title" validate:"required,max=200"`
	Content     string `form:"content" validate:"required"`
	ContentHTML string
	Category    Category `form:"category" validate:"required,oneof=News Opinion Reviews"`
	Author      string   `form:"author" validate:"max=100"`

	// Exactly one image representation is authoritative: inline bytes
	// (ImageData + ImageType) or an external/uploaded URL.
	ImageData []byte
	ImageType string
	ImageURL  string `form:"image" validate:"omitempty,max=2048"`

	Likes        int
	Views        int
	Featured     bool
	SemiFeatured bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Render refreshes the cached HTML from the markdown source.
func (p *Post) Render() {
	p.ContentHTML = markdown.Convert(p.Content)
}

// HTML returns the rendered body, converting on the fly when the cache is empty.
func (p Post) HTML() string {
	if strings.TrimSpace(p.ContentHTML) != "" {
		return p.ContentHTML
	}
	return markdown.Convert(p.Content)
}

// SetInlineImage stores the image bytes on the post and clears any URL.
func (p *Post) SetInlineImage(data []byte, contentType string) {
	p.ImageData = data
	p.ImageType = contentType
	p.ImageURL = ""
}

// SetImageURL points the post at an external or uploaded image and drops
// any inline bytes. An empty url removes the image entirely.
func (p *Post) SetImageURL(url string) {
	p.ImageURL = strings.TrimSpace(url)
	p.ImageData = nil
	p.ImageType = ""
}

// HasInlineImage reports whether the post owns its image bytes.
func (p Post) HasInlineImage() bool {
	return len(p.ImageData) > 0
}

// ImageSrc returns the URL templates should use for the post image, or ""
// when the post has none. Inline images of unsaved posts have no URL yet.
func (p Post) ImageSrc() string {
	if p.HasInlineImage() {
		if p.ID == "" {
			return ""
		}
		return "/posts/" + p.ID + "/image/"
	}
	return p.ImageURL
}

// Excerpt returns the first characters of the raw content for listings.
func (p Post) Excerpt() string {
	if utf8.RuneCountInString(p.Content) <= excerptLen {
		return p.Content
	}
	r := []rune(p.Content)
	return strings.TrimSpace(string(r[:excerptLen])) + "..."
}

// Link returns the public path of the post.
func (p Post) Link() string {
	return "/posts/" + p.ID + "/"
}

// FormattedDate renders CreatedAt as "January 2, 2006".
func (p Post) FormattedDate() string {
	return p.CreatedAt.Format("January 2, 2006")
}

// Normalize trims submitted fields and applies the author default.
func (p *Post) Normalize(defaultAuthor string) {
	p.Title = strings.TrimSpace(p.Title)
	p.Author = strings.TrimSpace(p.Author)
	if c, ok := ParseCategory(string(p.Category)); ok {
		p.Category = c
	}
	if strings.TrimSpace(p.Content) == "" {
		p.Content = ""
	}
	if p.Author == "" {
		p.Author = defaultAuthor
	}
	if p.Author == "" {
		p.Author = DefaultAuthor
	}
}
