package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var publisherSelectors = []string{
	`meta[property="og:site_name"]`,
	`meta[name="publisher"]`,
	`meta[name="application-name"]`,
}

// publisher returns the name of the site the page was published on,
// or an empty string if the page does not declare it.
func publisher(doc *goquery.Document) string {
	for _, sel := range publisherSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr("content")
			found = strings.TrimSpace(v)
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}
