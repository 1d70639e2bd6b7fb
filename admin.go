package gamenews

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/gamenews/markdown"
	"github.com/eringen/gamenews/post"
	"github.com/eringen/gamenews/views"
)

func (a *App) handleLoginForm(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.Login(a.page(c, "Sign in", "admin"), views.LoginData{}))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	login := strings.TrimSpace(c.FormValue("login"))
	password := c.FormValue("password")
	if login == "" || password == "" {
		p := a.page(c, "Sign in", "admin")
		p.Notice = views.Notice{Kind: "error", Message: "Username and password are required"}
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Login(p, views.LoginData{Login: login}))
	}

	user, err := a.Store.Authenticate(login, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			return err
		}
		left := a.loginLimiter.Record(ip)
		c.Logger().Warnf("failed login for %q from %s (%d attempts left)", login, ip, left)
		p := a.page(c, "Sign in", "admin")
		p.Notice = views.Notice{Kind: "error", Message: "Invalid username or password"}
		return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(p, views.LoginData{Login: login}))
	}

	if err := setPrincipal(c, user); err != nil {
		return err
	}
	a.loginLimiter.Reset(ip)
	addNotice(c, "success", "Welcome back, "+user.Username)
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// handleDashboard renders the featured-post manager.
func (a *App) handleDashboard(c echo.Context) error {
	posts, err := a.Store.ListForRoster()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Dashboard(a.page(c, "Admin", "admin"), views.DashboardData{
		Posts:             posts,
		FeaturedLimit:     a.Config.FeaturedLimit,
		SemiFeaturedLimit: a.Config.SemiFeaturedLimit,
	}))
}

// handleFeatured replaces the whole roster with the checked posts. An
// unchecked form clears both sections.
func (a *App) handleFeatured(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return err
	}
	featured := params["featured"]
	semi := params["semiFeatured"]
	if err := a.Store.SetFeaturedRoster(featured, semi); err != nil {
		c.Logger().Errorf("featured roster: %v", err)
		addNotice(c, "error", "Failed to update featured posts")
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.Cache.Invalidate()
	addNotice(c, "success", fmt.Sprintf("Featured posts updated: %d featured, %d semi-featured", len(featured), len(semi)))
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminPosts(c echo.Context) error {
	search, cat, sort := listQuery(c)
	posts, err := a.Store.ListPosts(post.Filter{
		Search:        search,
		SearchContent: true,
		Category:      cat,
		Sort:          sort,
	}, a.Config.AdminListLimit)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminPosts(a.page(c, "Posts", "admin"), views.PostListData{
		Posts:    posts,
		Search:   search,
		Category: cat,
		Sort:     sort,
		Limit:    a.Config.AdminListLimit,
	}))
}

// handlePreview renders the editor's Markdown with the same converter used
// when a post is saved.
func handlePreview(c echo.Context) error {
	return Render(c, markdown.Markdown(c.FormValue("content")))
}
