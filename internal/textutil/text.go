package textutil

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML returns the text content of an HTML fragment with entities decoded.
// Block-level breaks become newlines.
func StripHTML(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(in))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br", "p", "li", "div":
				b.WriteByte('\n')
			}
		}
	}
}

// Sanitize collapses whitespace onto one line and truncates to maxLen runes.
func Sanitize(in string, maxLen int) string {
	in = strings.Join(strings.Fields(in), " ")
	return Truncate(in, maxLen)
}

// Truncate cuts s to at most maxLen runes, marking the cut with an ellipsis.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}

// Paragraphs strips HTML and keeps at most n non-empty paragraphs.
func Paragraphs(in string, n int) []string {
	var out []string
	for _, line := range strings.Split(StripHTML(in), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}
