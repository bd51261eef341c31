// Package web bundles the dashboard's server-rendered templates.
package web

import "embed"

// Templates embeds HTML templates.
//
//go:embed templates/*.html
var Templates embed.FS
