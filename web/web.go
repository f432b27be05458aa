// Package web embeds the dashboard's static assets.
package web

import "embed"

// Assets holds the single-page dashboard.
//
//go:embed index.html
var Assets embed.FS
