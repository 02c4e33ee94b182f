package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/Semior001/newsharvest/app/store"
	"golang.org/x/exp/slog"
)

//go:generate moq -out mock_page_fetcher.go . PageFetcher

// PageFetcher fetches a single page of search results.
type PageFetcher interface {
	FetchPage(ctx context.Context, query, market string, page int) ([]store.SearchResultItem, error)
}

// StopReason tells why pagination of a query finished.
type StopReason int

// Reasons to stop paginating.
const (
	// StopExhaustedResults means a page was fetched and had no results.
	StopExhaustedResults StopReason = iota + 1
	// StopExhaustedBudget means all allowed pages were requested.
	StopExhaustedBudget
	// StopCanceled means the context was done before pagination finished.
	StopCanceled
	// StopAborted means the item handler returned an error.
	StopAborted
)

// String implements fmt.Stringer.
func (r StopReason) String() string {
	switch r {
	case StopExhaustedResults:
		return "exhausted_results"
	case StopExhaustedBudget:
		return "exhausted_budget"
	case StopCanceled:
		return "canceled"
	case StopAborted:
		return "aborted"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Result describes how pagination of a single query went.
type Result struct {
	Query    string
	Pages    int // pages requested, including failed ones
	Failed   int // pages that could not be fetched
	Accepted int
	Rejected int
	Reason   StopReason
}

// Paginator walks through result pages of a query until a page comes
// back empty or MaxPages pages were requested.
type Paginator struct {
	Log      *slog.Logger
	Fetcher  PageFetcher
	Market   string
	MaxPages int
}

// Run paginates the query and calls fn for every item that was not seen
// before within this query. A page that failed to be fetched is skipped
// and does not stop pagination, only a fetched page without results does.
func (p *Paginator) Run(
	ctx context.Context,
	query string,
	fn func(context.Context, store.SearchResultItem) error,
) (Result, error) {
	res := Result{Query: query}
	seen := Seen{}

	for page := 0; page < p.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			res.Reason = StopCanceled
			return res, err
		}

		res.Pages++
		items, err := p.Fetcher.FetchPage(ctx, query, p.Market, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				res.Reason = StopCanceled
				return res, ctxErr
			}

			res.Failed++
			p.Log.WarnCtx(ctx, "failed to fetch result page, skipping",
				slog.Int("page", page+1), slog.Any("err", err))
			continue
		}

		if len(items) == 0 {
			p.Log.InfoCtx(ctx, "no more results", slog.Int("page", page+1))
			res.Reason = StopExhaustedResults
			return res, nil
		}

		p.Log.InfoCtx(ctx, "result page fetched", slog.Int("page", page+1), slog.Int("items", len(items)))

		for _, item := range items {
			if !seen.Accept(item) {
				res.Rejected++
				p.Log.DebugCtx(ctx, "duplicate item skipped",
					slog.String("title", item.Title), slog.String("link", item.Link))
				continue
			}

			res.Accepted++
			if err = fn(ctx, item); err != nil {
				res.Reason = StopAborted
				if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					res.Reason = StopCanceled
				}
				return res, fmt.Errorf("handle item %q: %w", item.Link, err)
			}
		}
	}

	res.Reason = StopExhaustedBudget
	return res, nil
}
