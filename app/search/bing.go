// Package search harvests news links from Bing News result pages.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Semior001/newsharvest/app/store"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
)

const (
	// PageSize is the number of results Bing puts on one news page.
	PageSize = 10
	// DefaultHost is the search host used when none is configured.
	DefaultHost = "https://www.bing.com"

	formID          = "QBNH"
	resultSelector  = "a.title"
	cardSelector    = ".news-card, .newsitem"
	snippetSelector = ".snippet, .description"
)

// BingParams defines parameters for Bing client.
type BingParams struct {
	Host      string
	UserAgent string
	Timeout   time.Duration
	// Middlewares are applied to the underlying http client after
	// the user agent one.
	Middlewares []middleware.RoundTripperHandler
}

// Bing fetches and parses Bing News result pages.
type Bing struct {
	log  *slog.Logger
	rq   *requester.Requester
	host string
}

// NewBing makes new Bing client.
func NewBing(lg *slog.Logger, params BingParams) *Bing {
	if params.Host == "" {
		params.Host = DefaultHost
	}

	mws := []middleware.RoundTripperHandler{middleware.Header("User-Agent", params.UserAgent)}
	mws = append(mws, params.Middlewares...)

	return &Bing{
		log:  lg,
		rq:   requester.New(http.Client{Timeout: params.Timeout}, mws...),
		host: strings.TrimSuffix(params.Host, "/"),
	}
}

// PageURL returns the address of the result page with the given index.
func (b *Bing) PageURL(query, market string, page int) string {
	return fmt.Sprintf("%s/news/search?q=%s&first=%d&form=%s&setmkt=%s",
		b.host, url.QueryEscape(query), page*PageSize, formID, url.QueryEscape(market))
}

// FetchPage requests the result page with the given index and returns
// the news links on it in document order. A page without results is not
// an error, any failure to get or parse the page is.
func (b *Bing) FetchPage(ctx context.Context, query, market string, page int) ([]store.SearchResultItem, error) {
	u := b.PageURL(query, market, page)
	b.log.DebugCtx(ctx, "fetching result page", slog.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.rq.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			b.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return nil, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return ParseResults(doc), nil
}

// ParseResults picks result titles, links and card snippets out of the
// result page. Anchors without href are kept with an empty link.
func ParseResults(doc *goquery.Document) []store.SearchResultItem {
	sel := doc.Find(resultSelector)
	items := make([]store.SearchResultItem, 0, sel.Length())

	sel.Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		items = append(items, store.SearchResultItem{
			Title:   strings.TrimSpace(s.Text()),
			Link:    href,
			Snippet: strings.TrimSpace(s.Closest(cardSelector).Find(snippetSelector).First().Text()),
		})
	})

	return items
}
