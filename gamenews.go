// Package gamenews is a server-rendered game news site built with Go, Echo
// and templ. It stores posts in SQLite, curates a featured carousel and an
// editor's-picks grid, and ships an admin panel with a live Markdown preview.
//
// Pages are provided through the ViewFuncs struct; DefaultViews returns the
// built-in set from the views package.
package gamenews

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/gamenews/post"
	"github.com/eringen/gamenews/views"
)

// ViewFuncs holds the templ components the handlers render. Replacing an
// entry changes a page without touching handler logic.
type ViewFuncs struct {
	Home        func(p views.Page, d views.HomeData) templ.Component
	Category    func(p views.Page, d views.CategoryData) templ.Component
	Posts       func(p views.Page, d views.PostListData) templ.Component
	Post        func(p views.Page, d views.PostData) templ.Component
	PostForm    func(p views.Page, d views.PostFormData) templ.Component
	Login       func(p views.Page, d views.LoginData) templ.Component
	Dashboard   func(p views.Page, d views.DashboardData) templ.Component
	AdminPosts  func(p views.Page, d views.PostListData) templ.Component
	NotFound    func(p views.Page) templ.Component
	ServerError func(p views.Page) templ.Component
}

// DefaultViews returns the page components from the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Category:    views.Category,
		Posts:       views.Posts,
		Post:        views.Post,
		PostForm:    views.PostForm,
		Login:       views.Login,
		Dashboard:   views.Dashboard,
		AdminPosts:  views.AdminPosts,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App is the central gamenews application. It wires together the store,
// cache, handlers, middleware and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     v,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store, builds the cache and registers middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if a.Config.SessionSecret == "" {
		return errors.New("gamenews: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("gamenews: init store: %w", err)
		}
		a.Store = store
	}

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL, a.Config.FeaturedLimit, a.Config.SemiFeaturedLimit)
	a.loginLimiter = NewLoginLimiter(5, 15*time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves HTTP until the server stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("gamenews: listening on %s", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets (editor.js, site.css) are served under /public/ and
	// fall through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/editor.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.staticDir)
	e.Static("/uploads", a.Config.UploadDir)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	for _, cat := range post.Categories {
		e.GET(views.CategoryPath(cat), a.handleCategory(cat))
	}
	e.GET("/posts/", a.handlePostIndex)
	e.GET("/posts/:id/", a.handlePost)
	e.GET("/posts/:id/image/", a.handlePostImage)
	e.POST("/posts/:id/like/", a.handleLike)

	// Editor entry point: the same form as the admin panel, returning to
	// the public post page.
	public := editorRoutes{base: "/posts", cancel: "/"}
	e.GET("/posts/new/", a.handleNewPost(public), a.requireAuth)
	e.POST("/posts/", a.handleCreatePost(public), a.requireAuth)
	e.GET("/posts/:id/edit/", a.handleEditPost(public), a.requireAuth)
	e.PUT("/posts/:id/", a.handleUpdatePost(public), a.requireAuth)
	e.DELETE("/posts/:id/", a.handleDeletePost(public), a.requireAuth)

	// Admin routes
	e.GET("/admin/login/", a.handleLoginForm)
	e.POST("/admin/login/", a.handleLogin)
	e.POST("/admin/logout/", handleLogout)

	admin := editorRoutes{base: "/admin/posts", cancel: "/admin/posts/", admin: true}
	e.GET("/admin/", a.handleDashboard, a.requireAuth)
	e.POST("/admin/featured/", a.handleFeatured, a.requireAuth)
	e.GET("/admin/posts/", a.handleAdminPosts, a.requireAuth)
	e.GET("/admin/posts/new/", a.handleNewPost(admin), a.requireAuth)
	e.POST("/admin/posts/", a.handleCreatePost(admin), a.requireAuth)
	e.GET("/admin/posts/:id/edit/", a.handleEditPost(admin), a.requireAuth)
	e.PUT("/admin/posts/:id/", a.handleUpdatePost(admin), a.requireAuth)
	e.DELETE("/admin/posts/:id/", a.handleDeletePost(admin), a.requireAuth)
	e.POST("/admin/upload-image/", a.handleUploadImage, a.requireAuth)
	e.POST("/admin/preview/", handlePreview, a.requireAuth)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("gamenews: required environment variable %s is not set", key)
	}
	return v
}
