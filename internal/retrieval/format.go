package retrieval

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ariaAttr matches accessibility attributes in HTML samples
var ariaAttr = regexp.MustCompile(`\b(?:aria-[a-z]+|role)\b`)

// excerpt returns the start of text, cut on a word boundary below max runes
func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(stripCode(text)), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// firstParagraph returns the first prose paragraph, skipping headings and code
func firstParagraph(text string) string {
	for _, para := range strings.Split(stripCode(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") {
			continue
		}
		return para
	}
	return ""
}

// stripCode removes fenced code blocks
func stripCode(text string) string {
	var b strings.Builder
	fence := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case fence == "" && (strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")):
			fence = trimmed[:3]
			continue
		case fence != "" && strings.HasPrefix(trimmed, fence):
			fence = ""
			continue
		case fence != "":
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
