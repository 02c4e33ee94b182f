package extractor

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// DateLayout is the layout publication dates are reported in.
const DateLayout = "2006-01-02"

// dateSources lists places a publication date is looked up in, most
// reliable first.
var dateSources = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[property="og:article:published_time"]`, "content"},
	{`meta[itemprop="datePublished"]`, "content"},
	{`meta[name="pubdate"]`, "content"},
	{`meta[name="publishdate"]`, "content"},
	{`meta[name="publish-date"]`, "content"},
	{`meta[name="DC.date.issued"]`, "content"},
	{`meta[name="dc.date"]`, "content"},
	{`meta[name="date"]`, "content"},
	{`time[itemprop="datePublished"]`, "datetime"},
	{`time[datetime]`, "datetime"},
}

var reJSONLDDate = regexp.MustCompile(`"datePublished"\s*:\s*"([^"]+)"`)

// PublishedDate looks up the publication date in the page metadata.
// It returns an empty string when no parsable date is present.
func PublishedDate(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return publishedDate(doc), nil
}

func publishedDate(doc *goquery.Document) string {
	for _, src := range dateSources {
		var found string
		doc.Find(src.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v, ok := s.Attr(src.attr)
			if !ok {
				return true
			}
			found = normalizeDate(v)
			return found == ""
		})
		if found != "" {
			return found
		}
	}

	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, m := range reJSONLDDate.FindAllStringSubmatch(s.Text(), -1) {
			if found = normalizeDate(m[1]); found != "" {
				return false
			}
		}
		return true
	})

	return found
}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return ""
	}

	return t.Format(DateLayout)
}
