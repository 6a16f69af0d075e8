// Package markup provides the plain-text conversions applied to CRM
// engagement bodies before extraction. HubSpot stores these fields as a
// limited HTML subset; nothing here attempts full HTML parsing.
package markup

import (
	"html"
	"regexp"
	"strings"
)

var (
	reBreak    = regexp.MustCompile(`(?i)<br\s*/?>`)
	reParaEnd  = regexp.MustCompile(`(?i)</(?:p|div)>`)
	reListItem = regexp.MustCompile(`(?i)<li[^>]*>`)
	reHeading  = regexp.MustCompile(`(?i)</?h[1-6][^>]*>`)
	reRule     = regexp.MustCompile(`(?i)<hr\s*/?>`)
	reEmphasis = regexp.MustCompile(`(?i)</?(?:b|strong|i|em)[^>]*>`)
	reAnyTag   = regexp.MustCompile(`(?s)<[^>]*>`)
	reBlankRun = regexp.MustCompile(`\n{3,}`)
)

// NormalizeBreaks replaces <br> variants with newlines.
func NormalizeBreaks(s string) string {
	return reBreak.ReplaceAllString(s, "\n")
}

// StripTags converts a markup body to plain text: line breaks become
// newlines, every tag is removed, entities are decoded.
func StripTags(s string) string {
	s = NormalizeBreaks(s)
	s = reParaEnd.ReplaceAllString(s, "\n")
	s = reAnyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = reBlankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// CleanSummary converts the HTML subset HubSpot emits for call summaries
// (line breaks, list items, headings, bold/italic, horizontal rules) into
// plain text. List items come out as "- " prefixed lines.
func CleanSummary(s string) string {
	s = NormalizeBreaks(s)
	s = reParaEnd.ReplaceAllString(s, "\n")
	s = reListItem.ReplaceAllString(s, "\n- ")
	s = reHeading.ReplaceAllString(s, "\n")
	s = reRule.ReplaceAllString(s, "\n")
	s = reEmphasis.ReplaceAllString(s, "")
	s = reAnyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = reBlankRun.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
