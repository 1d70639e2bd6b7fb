package gamenews

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/gamenews/post"
	"github.com/eringen/gamenews/views"
)

const (
	postIndexLimit = 100
	relatedLimit   = 3
)

// listQuery reads the search, category and sort controls shared by the
// listing pages. "recentCategory" is the home page's older parameter name.
func listQuery(c echo.Context) (search string, cat post.Category, sort post.Sort) {
	search = strings.TrimSpace(c.QueryParam("search"))
	raw := c.QueryParam("category")
	if raw == "" {
		raw = c.QueryParam("recentCategory")
	}
	cat, _ = post.ParseCategory(raw)
	sort = post.ParseSort(c.QueryParam("sort"))
	return search, cat, sort
}

func (a *App) handleHome(c echo.Context) error {
	search, cat, sort := listQuery(c)
	front, err := a.Cache.FrontPage()
	if err != nil {
		return err
	}
	recent, err := a.Store.ListPosts(post.Filter{Search: search, Category: cat, Sort: sort}, a.Config.RecentLimit)
	if err != nil {
		return err
	}
	p := a.page(c, "", "home")
	p.JSONLD = WebsiteJsonLD(a.Config)
	return Render(c, a.Views.Home(p, views.HomeData{
		Featured:     front.Featured,
		SemiFeatured: front.SemiFeatured,
		Recent:       recent,
		Search:       search,
		Category:     cat,
		Sort:         sort,
	}))
}

func (a *App) handleCategory(cat post.Category) echo.HandlerFunc {
	return func(c echo.Context) error {
		posts, err := a.Store.ListByCategory(cat, a.Config.CategoryLimit)
		if err != nil {
			return err
		}
		data := views.CategoryData{Category: cat}
		if len(posts) > 0 {
			data.Lead = &posts[0]
			data.Rest = posts[1:]
		}
		return Render(c, a.Views.Category(a.page(c, string(cat), cat.Slug()), data))
	}
}

func (a *App) handlePostIndex(c echo.Context) error {
	search, cat, sort := listQuery(c)
	posts, err := a.Store.ListPosts(post.Filter{Search: search, Category: cat, Sort: sort}, postIndexLimit)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Posts(a.page(c, "All posts", ""), views.PostListData{
		Posts:    posts,
		Search:   search,
		Category: cat,
		Sort:     sort,
		Limit:    postIndexLimit,
	}))
}

// handlePost counts the view before loading the post so the page shows
// the count including this visit.
func (a *App) handlePost(c echo.Context) error {
	id := c.Param("id")
	if _, err := a.Store.IncrementViews(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, "Not found", "")))
		}
		return err
	}
	pt, err := a.Store.GetPost(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, "Not found", "")))
		}
		return err
	}
	candidates, err := a.Store.ListByCategory(pt.Category, relatedLimit+1)
	if err != nil {
		return err
	}
	p := a.page(c, pt.Title, pt.Category.Slug())
	p.Description = pt.Excerpt()
	p.JSONLD = NewsArticleJsonLD(pt, a.Config)
	return Render(c, a.Views.Post(p, views.PostData{
		Post:    pt,
		Related: RelatedPosts(pt, candidates, relatedLimit),
	}))
}

func (a *App) handlePostImage(c echo.Context) error {
	pt, err := a.Store.GetPost(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	if !pt.HasInlineImage() {
		return echo.ErrNotFound
	}
	return c.Blob(http.StatusOK, pt.ImageType, pt.ImageData)
}

func (a *App) handleLike(c echo.Context) error {
	likes, err := a.Store.IncrementLikes(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
		}
		c.Logger().Errorf("like %s: %v", c.Param("id"), err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to like post"})
	}
	return c.JSON(http.StatusOK, map[string]int{"likes": likes})
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Store.ListPosts(post.Filter{}, 0)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.ListPosts(post.Filter{}, feedLimit)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nDisallow: /admin/\nSitemap: "+strings.TrimRight(a.Config.URL, "/")+"/sitemap.xml\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, "Not found", "")))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c, "Error", "")))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
