package gamenews

import "time"

// SiteConfig holds all configuration for a gamenews site.
type SiteConfig struct {
	Name          string // Site name (default "Game News")
	URL           string // Canonical URL (default "http://localhost:3000")
	Description   string // Site description for RSS and meta tags
	DefaultAuthor string // Author stored on posts submitted without one (default "Editor")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/gamenews.db")
	UploadDir    string // Editor image uploads, served under /uploads/ (default "data/uploads")

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	PostCacheTTL time.Duration // Front page cache TTL (default 5min)

	FeaturedLimit     int // Carousel size (default 5)
	SemiFeaturedLimit int // Grid size (default 8)
	RecentLimit       int // Home page "latest" list (default 20)
	CategoryLimit     int // Posts per category page (default 30)
	AdminListLimit    int // Posts per admin listing (default 50)

	MaxUploadSize int64 // Upload limit in bytes (default 5MB)
	MaxImageWidth int   // Uploaded images are scaled down to this width (default 1200)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Game News"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "News, reviews and opinion from the world of games"
	}
	if c.DefaultAuthor == "" {
		c.DefaultAuthor = "Editor"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/gamenews.db"
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.FeaturedLimit == 0 {
		c.FeaturedLimit = 5
	}
	if c.SemiFeaturedLimit == 0 {
		c.SemiFeaturedLimit = 8
	}
	if c.RecentLimit == 0 {
		c.RecentLimit = 20
	}
	if c.CategoryLimit == 0 {
		c.CategoryLimit = 30
	}
	if c.AdminListLimit == 0 {
		c.AdminListLimit = 50
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 5 << 20
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1200
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore uses an already opened store instead of opening Config.DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
