// Package harvest runs the search, deduplication and extraction of news
// for the configured companies.
package harvest

import (
	"context"
	"fmt"

	"github.com/Semior001/newsharvest/app/extractor"
	"github.com/Semior001/newsharvest/app/search"
	"github.com/Semior001/newsharvest/app/store"
	"github.com/Semior001/newsharvest/pkg/logx"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"golang.org/x/exp/slog"
)

//go:generate moq -out mock_article_extractor.go . ArticleExtractor

// ArticleExtractor extracts the article behind a link.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (extractor.Article, error)
}

// Sink accepts harvested records.
type Sink interface {
	Append(rec store.ArticleRecord)
}

// titleWidth limits titles in progress logs.
const titleWidth = 80

// Harvester searches news for every query and extracts each found article.
type Harvester struct {
	Log       *slog.Logger
	Fetcher   search.PageFetcher
	Extractor ArticleExtractor
	Pacer     Pacer
	Market    string
	MaxPages  int
}

// Summary describes a finished harvest.
type Summary struct {
	Queries []search.Result
	Records int
	Failed  int // articles whose extraction failed
}

// Run harvests the queries one after another and appends a record for
// every accepted search result to the sink, in the order they were found.
// Failures to fetch a result page or an article are logged and do not
// stop the run, only a done context does.
func (h *Harvester) Run(ctx context.Context, queries []string, sink Sink) (Summary, error) {
	pacer := h.Pacer
	if pacer == nil {
		pacer = NoDelay
	}

	var sum Summary
	for _, query := range queries {
		qctx := logx.ContextWithRequestID(ctx, uuid.NewString())
		h.Log.InfoCtx(qctx, "harvesting query", slog.String("query", query), slog.String("market", h.Market))

		p := &search.Paginator{Log: h.Log, Fetcher: h.Fetcher, Market: h.Market, MaxPages: h.MaxPages}
		res, err := p.Run(qctx, query, func(ctx context.Context, item store.SearchResultItem) error {
			h.Log.InfoCtx(ctx, "article found", slog.String("title", runewidth.Truncate(item.Title, titleWidth, "...")))

			article, err := h.Extractor.Extract(ctx, item.Link)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				sum.Failed++
				h.Log.WarnCtx(ctx, "failed to extract article",
					slog.String("url", item.Link), slog.Any("err", err))
				article = extractor.Article{}
			}

			rec := store.NewArticleRecord(query, h.Market, item, article.Content, article.PublishedAt)
			rec.Source = article.Source
			sink.Append(rec)
			sum.Records++

			return pacer.Wait(ctx)
		})
		sum.Queries = append(sum.Queries, res)
		if err != nil {
			return sum, fmt.Errorf("harvest %q: %w", query, err)
		}

		h.Log.InfoCtx(qctx, "query harvested",
			slog.String("query", query),
			slog.Int("pages", res.Pages),
			slog.Int("failed_pages", res.Failed),
			slog.Int("accepted", res.Accepted),
			slog.Int("duplicates", res.Rejected),
			slog.String("reason", res.Reason.String()),
		)
	}

	return sum, nil
}
