package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripMarkup converts HTML fragments in instruction text to plain text.
// Line breaks and block elements become newlines. Text without tags is
// returned unchanged.
func StripMarkup(text string) string {
	if !strings.Contains(text, "<") || !strings.Contains(text, ">") {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div, h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return doc.Find("body").Text()
}
