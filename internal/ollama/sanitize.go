package ollama

import (
	"regexp"
	"strings"
)

// sanitize strips Markdown emphasis/code/list markers from an LLM
// reply, normalizes curly quotes and em-dashes to ASCII, and collapses
// internal runs of spaces/tabs while preserving newlines, per spec.md
// §4.8 so the result is safe to type directly into any text field.
func sanitize(text string) string {
	text = codeFencePattern.ReplaceAllString(text, "")
	text = inlineCodePattern.ReplaceAllString(text, "$1")
	text = boldStarPattern.ReplaceAllString(text, "$1")
	text = boldUnderscorePattern.ReplaceAllString(text, "$1")
	text = italicStarPattern.ReplaceAllString(text, "$1")
	text = italicUnderscorePattern.ReplaceAllString(text, "$1")
	text = headingPattern.ReplaceAllString(text, "")
	text = listMarkerPattern.ReplaceAllString(text, "")

	replacer := strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
		"—", "-", "–", "-",
	)
	text = replacer.Replace(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = collapseSpacesAndTabs.ReplaceAllString(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var (
	codeFencePattern        = regexp.MustCompile("(?s)```.*?```")
	inlineCodePattern       = regexp.MustCompile("`([^`]*)`")
	boldStarPattern         = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnderscorePattern   = regexp.MustCompile(`__([^_]+)__`)
	italicStarPattern       = regexp.MustCompile(`\*([^*]+)\*`)
	italicUnderscorePattern = regexp.MustCompile(`_([^_]+)_`)
	headingPattern          = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	listMarkerPattern     = regexp.MustCompile(`(?m)^\s*([-*+]|\d+\.)\s+`)
	collapseSpacesAndTabs = regexp.MustCompile(`[ \t]+`)
)
