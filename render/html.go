package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/langlab/store"
)

var roleLabels = map[string]string{
	store.RoleSystem: "System",
	store.RoleHuman:  "User",
	store.RoleAI:     "AI",
}

// MarkdownHTML converts markdown to sanitized HTML.
func MarkdownHTML(content string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(content))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	out := markdown.Render(doc, renderer)
	return string(bluemonday.UGCPolicy().SanitizeBytes(out))
}

// TranscriptHTML renders a conversation as a standalone HTML page. Turn text
// is treated as markdown and sanitized.
func TranscriptHTML(turns []store.Turn) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Conversation</title>\n</head>\n<body>\n")
	for i, t := range turns {
		label, ok := roleLabels[t.Role]
		if !ok {
			label = t.Role
		}
		fmt.Fprintf(&sb, "<div class=\"turn %s\">\n<h3>%d. %s</h3>\n%s</div>\n",
			html.EscapeString(t.Role), i+1, html.EscapeString(label), MarkdownHTML(t.Text))
	}
	fmt.Fprintf(&sb, "<p>Total messages: %d</p>\n</body>\n</html>\n", len(turns))
	return sb.String()
}
