// Package views embeds the chat page and its static assets into the binary.
package views

import "embed"

// Files holds templates/ and static/.
//
//go:embed templates/*.html static/*
var Files embed.FS
