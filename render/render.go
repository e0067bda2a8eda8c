package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/smallnest/langlab/config"
	"github.com/smallnest/langlab/models"
)

// DefaultWidth is the word wrap width of rendered markdown.
const DefaultWidth = 100

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))            // gray
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // green
)

func rule(ch string, n int) string { return strings.Repeat(ch, n) }

// Markdown renders markdown for the terminal.
func Markdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// PrintResponse writes a model reply, rendered as markdown unless disabled.
// Rendering failures fall back to the plain text.
func PrintResponse(w io.Writer, content string, markdown bool) error {
	if markdown {
		if out, err := Markdown(content, DefaultWidth); err == nil {
			content = out
		}
	}
	_, err := fmt.Fprintln(w, content)
	return err
}

// ModelInfo prints the configuration of a model.
func ModelInfo(w io.Writer, info models.Info) {
	fmt.Fprintln(w, rule("=", 60))
	fmt.Fprintln(w, titleStyle.Render("MODEL CONFIGURATION"))
	fmt.Fprintln(w, rule("=", 60))

	field := func(label string, value any) {
		fmt.Fprintf(w, "%s %v\n", labelStyle.Render(label+":"), value)
	}
	if info.Preset != "" {
		field("Active Config", info.Preset)
	}
	field("Provider", info.Provider)
	field("Model Name", info.Name)
	if info.BaseURL != "" {
		field("Base URL", info.BaseURL)
	}
	if info.Temperature != nil {
		field("Temperature", *info.Temperature)
	}
	if info.MaxTokens > 0 {
		field("Max Tokens", info.MaxTokens)
	}
	fmt.Fprintln(w, rule("=", 60))
}

// PresetTable lists presets in document order and marks the active one.
func PresetTable(w io.Writer, presets *config.Presets, active string) {
	fmt.Fprintln(w, titleStyle.Render("Available Model Configurations:"))
	fmt.Fprintln(w, rule("=", 60))
	for _, p := range presets.List() {
		marker := ""
		if p.Name == active {
			marker = activeStyle.Render("→ ACTIVE")
		}
		line := fmt.Sprintf("%-25s %-12s %-30s %s", p.Name, p.Provider, p.ModelName, marker)
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintln(w, rule("=", 60))
}

// Section prints a titled divider.
func Section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", titleStyle.Render(title), rule("-", 40))
}
