// Package render prints model output and configuration to the console.
//
// Replies are rendered as terminal markdown with glamour, configuration
// banners are styled with lipgloss, and conversations can be exported to
// sanitized HTML (gomarkdown + bluemonday).
package render
