package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner outputs the xcallback banner.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	if !IsTerminal(w) {
		p = termenv.Ascii
	}
	title := p.String("  xcallback " + version).Foreground(p.Color("#a78bfa")).Bold()
	rule := p.String("  " + strings.Repeat("=", len("xcallback ")+len(version))).Foreground(p.Color("#e879f9"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// PrintOutcome reports the result of a request: a coloured status line
// followed by the returned parameters, sorted by key.
func PrintOutcome(w io.Writer, result domain.Result) {
	p := termenv.EnvColorProfile()
	if !IsTerminal(w) {
		p = termenv.Ascii
	}

	switch result.Kind {
	case domain.KindSuccess:
		fmt.Fprintln(w, p.String("success").Foreground(p.Color("2")).Bold())
	case domain.KindCancelled:
		fmt.Fprintln(w, p.String("cancelled").Foreground(p.Color("3")).Bold())
	default:
		fmt.Fprintln(w, p.String("failure").Foreground(p.Color("1")).Bold())
		if result.Err != nil {
			fmt.Fprintf(w, "  %s\n", result.Err.Error())
		}
	}

	keys := make([]string, 0, len(result.Data))
	for k := range result.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s=%s\n", k, result.Data[k])
	}
}
