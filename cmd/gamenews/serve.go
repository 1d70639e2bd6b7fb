package main

import (
	"strconv"

	"github.com/eringen/gamenews"
)

// configFromEnv reads the site configuration. Unset values fall back to the
// defaults applied by gamenews.New.
func configFromEnv() gamenews.SiteConfig {
	secure, _ := strconv.ParseBool(gamenews.EnvOr("COOKIE_SECURE", "false"))
	return gamenews.SiteConfig{
		Name:          gamenews.EnvOr("SITE_NAME", ""),
		URL:           gamenews.EnvOr("SITE_URL", ""),
		Description:   gamenews.EnvOr("SITE_DESCRIPTION", ""),
		DefaultAuthor: gamenews.EnvOr("DEFAULT_AUTHOR", ""),
		Addr:          gamenews.EnvOr("ADDR", ""),
		DatabasePath:  gamenews.EnvOr("DATABASE_PATH", "data/gamenews.db"),
		UploadDir:     gamenews.EnvOr("UPLOAD_DIR", ""),
		SessionSecret: gamenews.EnvOr("SESSION_SECRET", ""),
		CookieSecure:  secure,
	}
}

func runServe() error {
	cfg := configFromEnv()
	cfg.SessionSecret = gamenews.MustEnv("SESSION_SECRET")

	app := gamenews.New(cfg, gamenews.DefaultViews(),
		gamenews.WithStaticDir(gamenews.EnvOr("STATIC_DIR", "public")),
	)
	defer app.Close()
	return app.Start()
}
