// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML extraction.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	articleTag    = regexp.MustCompile(`(?is)<article[^>]*>(.*?)</article>`)
	bodyTag       = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	svgTag        = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClose    = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article|figcaption)>`)
	blockOpen     = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|figcaption)[^>]*>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags        = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// extractBodySection returns the markup of the named body section. It
// tries <section name="..."> first, then <article>, then <body>, and
// finally falls back to the whole document.
func extractBodySection(content, section string) string {
	if section != "" {
		re := regexp.MustCompile(
			`(?is)<section[^>]*\bname="` + regexp.QuoteMeta(section) + `"[^>]*>(.*?)</section>`)
		if m := re.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	if m := articleTag.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	if m := bodyTag.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return content
}

// extractTitle returns the decoded contents of the <title> tag, or "".
func extractTitle(content string) string {
	m := titleTag.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m[1]))
}

// stripTags removes markup and extracts readable text content.
func stripTags(content string) string {
	// Remove script, style, noscript, and svg subtrees entirely.
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become newlines so paragraphs survive stripping.
	content = blockOpen.ReplaceAllString(content, "\n")
	content = blockClose.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
