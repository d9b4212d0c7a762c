package source

import "strings"

// normalizeDoc strips comment markers from a raw comment block or docstring
// and trims the surrounding blank lines.
func normalizeDoc(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = trimDocstringQuotes(raw)

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, stripCommentMarker(strings.TrimSpace(line)))
	}

	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func stripCommentMarker(line string) string {
	line = strings.TrimSuffix(line, "*/")
	for _, prefix := range []string{"///", "//!", "//", "/**", "/*", "#:", "#", "*"} {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			line = rest
			break
		}
	}
	return strings.TrimSpace(line)
}

func trimDocstringQuotes(raw string) string {
	raw = strings.TrimLeft(raw, "rRuUbB")
	for _, quote := range []string{`"""`, `'''`} {
		if strings.HasPrefix(raw, quote) && strings.HasSuffix(raw, quote) && len(raw) >= 2*len(quote) {
			return raw[len(quote) : len(raw)-len(quote)]
		}
	}
	return raw
}

// splitDoc returns the first paragraph of doc, joined into one line, and the
// remaining paragraphs.
func splitDoc(doc string) (summary, rest string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return "", ""
	}
	head, tail, _ := strings.Cut(doc, "\n\n")
	summary = strings.Join(strings.Fields(head), " ")
	return summary, strings.TrimSpace(tail)
}
