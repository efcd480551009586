package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextFromHTML flattens an HTML fragment such as a search snippet to plain
// text. Entities are decoded and whitespace is collapsed.
func TextFromHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return cleanWhitespace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return cleanWhitespace(fragment)
	}
	doc.Find("script, style").Remove()
	return cleanWhitespace(doc.Text())
}

func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
