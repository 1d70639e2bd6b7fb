package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/gamenews/post"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func samplePost(id, title string) post.Post {
	p := post.Post{
		ID:        id,
		Title:     title,
		Content:   "Hello **world**",
		Category:  post.Reviews,
		Author:    "Critic",
		Views:     1,
		CreatedAt: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
	}
	p.Render()
	return p
}

func TestEveryPageRenders(t *testing.T) {
	p := Page{Title: "T", SiteName: "Game News", CSRF: "tok"}
	sp := samplePost("a1", "Sample")
	pages := map[string]templ.Component{
		"home":         Home(p, HomeData{Featured: []post.Post{sp}, SemiFeatured: []post.Post{sp}, Recent: []post.Post{sp}}),
		"category":     Category(p, CategoryData{Category: post.Reviews, Lead: &sp}),
		"empty cat":    Category(p, CategoryData{Category: post.News}),
		"posts":        Posts(p, PostListData{Posts: []post.Post{sp}}),
		"post":         Post(p, PostData{Post: sp, Related: []post.Post{samplePost("b2", "Other")}}),
		"new form":     PostForm(p, PostFormData{Post: post.Post{Category: post.News}, Action: "/posts/", Method: "POST"}),
		"edit form":    PostForm(p, PostFormData{Post: sp, Action: "/posts/a1/", Method: "PUT"}),
		"login":        Login(p, LoginData{Login: "alice"}),
		"dashboard":    Dashboard(p, DashboardData{Posts: []post.Post{sp}, FeaturedLimit: 5, SemiFeaturedLimit: 8}),
		"admin posts":  AdminPosts(p, PostListData{Posts: []post.Post{sp}, Limit: 50}),
		"not found":    NotFound(p),
		"server error": ServerError(p),
	}
	for name, c := range pages {
		t.Run(name, func(t *testing.T) {
			out := renderString(t, c)
			assert.Contains(t, out, "<title>T | Game News</title>")
			assert.Contains(t, out, `content="tok"`)
		})
	}
}

func TestPostPageRendersBodyAndMeta(t *testing.T) {
	out := renderString(t, Post(Page{SiteName: "Game News"}, PostData{Post: samplePost("a1", "Sample")}))
	assert.Contains(t, out, "<strong>world</strong>")
	assert.Contains(t, out, "By Critic")
	assert.Contains(t, out, "March 9, 2024")
	assert.Contains(t, out, "1 view ")
	assert.Contains(t, out, `data-like="/posts/a1/like/"`)
	assert.NotContains(t, out, "More in")
}

func TestTitlesAreEscaped(t *testing.T) {
	sp := samplePost("a1", `<script>alert("x")</script>`)
	out := renderString(t, Home(Page{}, HomeData{Recent: []post.Post{sp}}))
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestSignedInNavigation(t *testing.T) {
	out := renderString(t, Home(Page{}, HomeData{}))
	assert.Contains(t, out, `href="/admin/login/"`)
	assert.NotContains(t, out, "Log out")

	out = renderString(t, Home(Page{Principal: "alice"}, HomeData{}))
	assert.Contains(t, out, "Log out (alice)")
	assert.Contains(t, out, `href="/posts/new/"`)
}

func TestNoticeRendered(t *testing.T) {
	out := renderString(t, NotFound(Page{Notice: Notice{Kind: "error", Message: "Post not found"}}))
	assert.Contains(t, out, `class="notice notice-error"`)
	assert.Contains(t, out, "Post not found")
}

func TestFormShowsFieldErrors(t *testing.T) {
	out := renderString(t, PostForm(Page{}, PostFormData{
		Post:   post.Post{Title: "x"},
		Errors: map[string]string{"content": "Content is required"},
		Action: "/posts/",
		Method: "POST",
	}))
	assert.Contains(t, out, "Content is required")
	assert.NotContains(t, out, `name="_method"`)
}

func TestFilterControlsKeepSelection(t *testing.T) {
	out := renderString(t, Posts(Page{}, PostListData{Category: post.Opinion, Sort: post.SortMostLiked}))
	assert.Contains(t, out, `<option value="Opinion" selected>`)
	assert.Contains(t, out, `selected>`+post.SortMostLiked.Label())
}

func TestCategoryPath(t *testing.T) {
	assert.Equal(t, "/news/", CategoryPath(post.News))
	assert.Equal(t, "/reviews/", CategoryPath(post.Reviews))
}

func TestDashboardCounts(t *testing.T) {
	d := DashboardData{Posts: []post.Post{
		{Featured: true},
		{Featured: true, SemiFeatured: true},
		{},
	}}
	assert.Equal(t, 2, d.FeaturedCount())
	assert.Equal(t, 1, d.SemiFeaturedCount())
}
