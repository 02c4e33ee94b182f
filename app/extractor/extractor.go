package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Format defines how extracted content is rendered.
type Format string

// Supported content formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Article is the readable part of a news page.
type Article struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source,omitempty"`
}

// Extractor extracts article from HTML page.
type Extractor struct {
	format Format
	md     *md.Converter
}

// NewExtractor creates new Extractor rendering content in the given format.
func NewExtractor(format Format) Extractor {
	e := Extractor{format: format}
	if format == FormatMarkdown {
		e.md = md.NewConverter("", true, nil)
	}
	return e
}

// Extract extracts article content, publication date and publisher from an HTML page.
func (e Extractor) Extract(page []byte, pageURL *url.URL) (Article, error) {
	doc, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		return Article{}, fmt.Errorf("parse html: %w", err)
	}

	content := sanitize(doc.TextContent)
	if e.format == FormatMarkdown && e.md != nil && doc.Content != "" {
		if content, err = e.md.ConvertString(doc.Content); err != nil {
			return Article{}, fmt.Errorf("convert to markdown: %w", err)
		}
		content = strings.TrimSpace(content)
	}

	meta, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Article{}, fmt.Errorf("parse metadata: %w", err)
	}

	return Article{
		Title:       doc.Title,
		Content:     content,
		PublishedAt: publishedDate(meta),
		Source:      publisher(meta),
	}, nil
}

var reSpaces = regexp.MustCompile(`\s+`)

func sanitize(s string) string {
	// nbsp
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}
