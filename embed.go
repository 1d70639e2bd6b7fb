package gamenews

import "embed"

// EmbeddedAssets contains static assets shipped with the binary: editor.js
// (live preview, image upload and like buttons) and site.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

//go:embed migrations/*.sql
var migrationsFS embed.FS
