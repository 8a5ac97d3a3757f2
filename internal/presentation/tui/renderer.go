package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/xcallback/pkg/providers"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ProviderMarkdown documents a provider as markdown.
func ProviderMarkdown(p *providers.Provider) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}
	fmt.Fprintf(&b, "Scheme: `%s`\n\n", p.Scheme)

	for _, a := range p.Actions {
		fmt.Fprintf(&b, "## %s\n\n", a.Name)
		if a.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", a.Description)
		}
		if len(a.Params) == 0 {
			b.WriteString("No parameters.\n\n")
			continue
		}
		b.WriteString("| Parameter | Kind | Description |\n|---|---|---|\n")
		for _, param := range a.Params {
			kind := "optional"
			switch {
			case param.Flag:
				kind = "flag"
			case param.Required:
				kind = "required"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", param.Name, kind, param.Description)
		}
		b.WriteString("\n")
	}

	if len(p.Errors) > 0 {
		b.WriteString("## Errors\n\n| Code | Message |\n|---|---|\n")
		for _, e := range p.Errors {
			fmt.Fprintf(&b, "| %d | %s |\n", e.Code, e.Message)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// PrintProvider writes the provider documentation, styled when w is a terminal.
func PrintProvider(w io.Writer, p *providers.Provider) error {
	md := ProviderMarkdown(p)
	if IsTerminal(w) {
		if out, err := NewRenderer()(md); err == nil {
			md = out
		}
	}
	_, err := io.WriteString(w, md)
	return err
}
