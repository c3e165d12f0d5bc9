package web

import "embed"

// StaticFS embeds the dashboard shell served at the root path.
//
//go:embed static/*
var StaticFS embed.FS
