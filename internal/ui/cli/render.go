package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	coreapp "propinfo/internal/core/app"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	nameStyle = lipgloss.NewStyle().Bold(true)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	flagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)
)

const unknownType = "?"

func renderReport(w io.Writer, report *coreapp.ClassReport) {
	fmt.Fprintln(w, headerStyle.Render(report.Class))
	if len(report.Properties) == 0 {
		fmt.Fprintln(w, statusStyle.Render("  (no properties)"))
		return
	}

	nameWidth, typeWidth := 0, 0
	for _, p := range report.Properties {
		nameWidth = max(nameWidth, lipgloss.Width(p.Name))
		typeWidth = max(typeWidth, lipgloss.Width(typeText(p)))
	}

	for _, p := range report.Properties {
		name := nameStyle.Width(nameWidth).Render(p.Name)
		types := typeStyle.Width(typeWidth).Render(typeText(p))
		fmt.Fprintf(w, "  %s  %s  %s\n", name, types, flagStyle.Render(accessFlags(p)))
		if p.ShortDescription != "" {
			fmt.Fprintf(w, "      %s\n", p.ShortDescription)
		}
		if p.LongDescription != "" {
			for _, line := range strings.Split(p.LongDescription, "\n") {
				fmt.Fprintf(w, "      %s\n", statusStyle.Render(line))
			}
		}
	}
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderClasses(w io.Writer, classes []string) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Classes (%d)", len(classes))))
	for _, c := range classes {
		fmt.Fprintf(w, "  %s\n", c)
	}
}

func typeText(p coreapp.PropertyReport) string {
	if p.TypeText == "" {
		return unknownType
	}
	return p.TypeText
}

// accessFlags renders readable, writable and initializable as "rwi", using
// "-" for false and "?" when no extractor answered.
func accessFlags(p coreapp.PropertyReport) string {
	return flagChar(p.Readable, 'r') + flagChar(p.Writable, 'w') + flagChar(p.Initializable, 'i')
}

func flagChar(v *bool, set rune) string {
	switch {
	case v == nil:
		return "?"
	case *v:
		return string(set)
	default:
		return "-"
	}
}
