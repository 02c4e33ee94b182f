// Package extractor fetches news pages and extracts their text and publication date.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
	"golang.org/x/net/html/charset"
)

// maxPageSize limits the amount of bytes read from a single page.
const maxPageSize = 10 << 20

// ServiceParams defines parameters for Service.
type ServiceParams struct {
	UserAgent string
	Timeout   time.Duration
	Format    Format
	// CacheSize is the number of extracted articles kept in memory,
	// zero disables caching.
	CacheSize   int
	Middlewares []middleware.RoundTripperHandler
}

// Service downloads news pages and extracts articles from them.
type Service struct {
	log       *slog.Logger
	rq        *requester.Requester
	extractor Extractor
	cache     cache.Cache[string, Article]
}

// NewService creates new service.
func NewService(lg *slog.Logger, params ServiceParams) *Service {
	mws := []middleware.RoundTripperHandler{middleware.Header("User-Agent", params.UserAgent)}
	mws = append(mws, params.Middlewares...)

	svc := &Service{
		log:       lg,
		rq:        requester.New(http.Client{Timeout: params.Timeout}, mws...),
		extractor: NewExtractor(params.Format),
	}

	if params.CacheSize > 0 {
		svc.cache = cache.NewCache[string, Article]().
			WithLRU().
			WithMaxKeys(params.CacheSize)
	}

	return svc
}

// CacheStat returns cache stats.
func (s *Service) CacheStat() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stat()
}

// Extract downloads the page and extracts the article from it.
// A page that could not be downloaded with a successful status or came
// back empty yields an empty article without an error.
func (s *Service) Extract(ctx context.Context, u string) (article Article, err error) {
	if u == "" {
		return Article{}, nil
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(u); ok {
			s.log.DebugCtx(ctx, "article taken from cache", slog.String("url", u))
			return cached, nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			article, err = Article{}, fmt.Errorf("extract article from %s: panic: %v", u, r)
		}
	}()

	s.log.DebugCtx(ctx, "extracting article", slog.String("url", u))

	page, pageURL, err := s.fetch(ctx, u)
	if err != nil {
		return Article{}, fmt.Errorf("fetch %s: %w", u, err)
	}

	if len(page) > 0 {
		if article, err = s.extractor.Extract(page, pageURL); err != nil {
			return Article{}, fmt.Errorf("extract article from %s: %w", u, err)
		}
	}
	article.URL = u

	if s.cache != nil {
		s.cache.Set(u, article, 0)
	}

	return article, nil
}

// fetch returns the page decoded to UTF-8 along with the final address
// after redirects. Non-2xx responses give an empty page.
func (s *Service) fetch(ctx context.Context, u string) ([]byte, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.rq.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		s.log.DebugCtx(ctx, "page not downloaded",
			slog.String("url", u), slog.Int("status", resp.StatusCode))
		return nil, req.URL, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, resp.Request.URL, nil
	}

	rd, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, nil, fmt.Errorf("detect charset: %w", err)
	}

	page, err := io.ReadAll(rd)
	if err != nil {
		return nil, nil, fmt.Errorf("decode body: %w", err)
	}

	return page, resp.Request.URL, nil
}
