package harvest

import (
	"context"
	"errors"
	"testing"

	"github.com/Semior001/newsharvest/app/aggregator"
	"github.com/Semior001/newsharvest/app/extractor"
	"github.com/Semior001/newsharvest/app/search"
	"github.com/Semior001/newsharvest/app/store"
	"github.com/Semior001/newsharvest/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type pageKey struct {
	query string
	page  int
}

func fetcher(pages map[pageKey][]store.SearchResultItem, failing ...pageKey) *search.PageFetcherMock {
	return &search.PageFetcherMock{
		FetchPageFunc: func(_ context.Context, query, _ string, page int) ([]store.SearchResultItem, error) {
			for _, f := range failing {
				if f == (pageKey{query, page}) {
					return nil, errors.New("i/o timeout")
				}
			}
			return pages[pageKey{query, page}], nil
		},
	}
}

func extractorOK() *ArticleExtractorMock {
	return &ArticleExtractorMock{
		ExtractFunc: func(_ context.Context, url string) (extractor.Article, error) {
			return extractor.Article{URL: url, Content: "content of " + url, PublishedAt: "2023-04-27"}, nil
		},
	}
}

func countingPacer(n *int) Pacer {
	return PacerFunc(func(context.Context) error {
		*n++
		return nil
	})
}

func TestHarvester_Run(t *testing.T) {
	f := fetcher(map[pageKey][]store.SearchResultItem{
		{"Acme Corp", 0}: {
			{Title: "A", Link: "http://x/a"},
			{Title: "B", Link: "http://x/b"},
			{Title: "C", Link: "http://x/c"},
		},
	})
	ex := extractorOK()
	waits := 0

	h := &Harvester{
		Log:       slog.New(logx.NoOp()),
		Fetcher:   f,
		Extractor: ex,
		Pacer:     countingPacer(&waits),
		Market:    "es-ES",
		MaxPages:  2,
	}

	agg := &aggregator.Aggregator{}
	sum, err := h.Run(context.Background(), []string{"Acme Corp"}, agg)
	require.NoError(t, err)

	assert.Len(t, f.FetchPageCalls(), 2)
	assert.Equal(t, 3, sum.Records)
	assert.Equal(t, 3, waits)
	require.Len(t, sum.Queries, 1)
	assert.Equal(t, search.StopExhaustedResults, sum.Queries[0].Reason)

	assert.Equal(t, []store.ArticleRecord{
		{Company: "Acme Corp", Title: "A", URL: "http://x/a", Content: "content of http://x/a", PublishedAt: "2023-04-27", Market: "es-ES"},
		{Company: "Acme Corp", Title: "B", URL: "http://x/b", Content: "content of http://x/b", PublishedAt: "2023-04-27", Market: "es-ES"},
		{Company: "Acme Corp", Title: "C", URL: "http://x/c", Content: "content of http://x/c", PublishedAt: "2023-04-27", Market: "es-ES"},
	}, agg.Records())
}

func TestHarvester_RunDuplicateTitle(t *testing.T) {
	f := fetcher(map[pageKey][]store.SearchResultItem{
		{"q", 0}: {
			{Title: "Title A", Link: "http://x/1"},
			{Title: "Title A", Link: "http://x/2"},
		},
	})
	ex := extractorOK()

	h := &Harvester{Log: slog.New(logx.NoOp()), Fetcher: f, Extractor: ex, Market: "es-ES", MaxPages: 1}

	agg := &aggregator.Aggregator{}
	_, err := h.Run(context.Background(), []string{"q"}, agg)
	require.NoError(t, err)

	require.Equal(t, 1, agg.Len())
	assert.Equal(t, "http://x/1", agg.Records()[0].URL)
	require.Len(t, ex.ExtractCalls(), 1)
}

func TestHarvester_RunExtractionFailure(t *testing.T) {
	f := fetcher(map[pageKey][]store.SearchResultItem{
		{"q", 0}: {
			{Title: "broken", Link: "http://x/broken"},
			{Title: "fine", Link: "http://x/fine"},
			{Title: "empty", Link: "http://x/empty"},
		},
	})
	ex := &ArticleExtractorMock{
		ExtractFunc: func(_ context.Context, url string) (extractor.Article, error) {
			switch url {
			case "http://x/broken":
				return extractor.Article{}, errors.New("connection reset by peer")
			case "http://x/empty":
				return extractor.Article{URL: url}, nil
			default:
				return extractor.Article{URL: url, Content: "text", PublishedAt: "2023-01-02"}, nil
			}
		},
	}
	waits := 0

	h := &Harvester{Log: slog.New(logx.NoOp()), Fetcher: f, Extractor: ex, Pacer: countingPacer(&waits), Market: "es-ES", MaxPages: 1}

	agg := &aggregator.Aggregator{}
	sum, err := h.Run(context.Background(), []string{"q"}, agg)
	require.NoError(t, err)

	assert.Equal(t, 3, waits)
	assert.Equal(t, 1, sum.Failed)
	recs := agg.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, store.ContentNotExtracted, recs[0].Content)
	assert.Equal(t, store.DateNotExtracted, recs[0].PublishedAt)
	assert.Equal(t, "text", recs[1].Content)
	assert.Equal(t, "2023-01-02", recs[1].PublishedAt)
	assert.Equal(t, store.ContentNotExtracted, recs[2].Content)
	assert.Equal(t, store.DateNotExtracted, recs[2].PublishedAt)
}

func TestHarvester_RunKeepsSourceAndSnippet(t *testing.T) {
	f := fetcher(map[pageKey][]store.SearchResultItem{
		{"q", 0}: {{Title: "A", Link: "http://x/a", Snippet: "Resumen de A"}},
	})
	ex := &ArticleExtractorMock{
		ExtractFunc: func(_ context.Context, url string) (extractor.Article, error) {
			return extractor.Article{URL: url, Content: "text", PublishedAt: "2023-01-02", Source: "Expansión"}, nil
		},
	}

	h := &Harvester{Log: slog.New(logx.NoOp()), Fetcher: f, Extractor: ex, Market: "es-ES", MaxPages: 1}

	agg := &aggregator.Aggregator{}
	_, err := h.Run(context.Background(), []string{"q"}, agg)
	require.NoError(t, err)

	assert.Equal(t, []store.ArticleRecord{{
		Company:     "q",
		Title:       "A",
		URL:         "http://x/a",
		Content:     "text",
		PublishedAt: "2023-01-02",
		Market:      "es-ES",
		Source:      "Expansión",
		Snippet:     "Resumen de A",
	}}, agg.Records())
}

func TestHarvester_RunFailedPageContinues(t *testing.T) {
	f := fetcher(map[pageKey][]store.SearchResultItem{
		{"q", 0}: {{Title: "A", Link: "http://x/a"}},
		{"q", 2}: {{Title: "B", Link: "http://x/b"}},
	}, pageKey{"q", 1})

	h := &Harvester{Log: slog.New(logx.NoOp()), Fetcher: f, Extractor: extractorOK(), MaxPages: 3}

	agg := &aggregator.Aggregator{}
	sum, err := h.Run(context.Background(), []string{"q"}, agg)
	require.NoError(t, err)

	assert.Len(t, f.FetchPageCalls(), 3)
	assert.Equal(t, 2, agg.Len())
	assert.Equal(t, search.StopExhaustedBudget, sum.Queries[0].Reason)
	assert.Equal(t, 1, sum.Queries[0].Failed)
}

func TestHarvester_RunDedupIsPerQuery(t *testing.T) {
	shared := []store.SearchResultItem{{Title: "Same story", Link: "http://x/same"}}
	f := fetcher(map[pageKey][]store.SearchResultItem{
		{"first", 0}:  shared,
		{"second", 0}: append(shared, store.SearchResultItem{Title: "Other", Link: "http://x/other"}),
	})
	ex := extractorOK()

	h := &Harvester{Log: slog.New(logx.NoOp()), Fetcher: f, Extractor: ex, Market: "en-US", MaxPages: 1}

	agg := &aggregator.Aggregator{}
	sum, err := h.Run(context.Background(), []string{"first", "second"}, agg)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Records)
	recs := agg.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"first", "second", "second"}, []string{recs[0].Company, recs[1].Company, recs[2].Company})
	assert.Equal(t, recs[0].URL, recs[1].URL)

	calls := ex.ExtractCalls()
	require.Len(t, calls, 3)
	id1, ok := logx.RequestIDFromContext(calls[0].Ctx)
	require.True(t, ok)
	id2, ok := logx.RequestIDFromContext(calls[1].Ctx)
	require.True(t, ok)
	id3, _ := logx.RequestIDFromContext(calls[2].Ctx)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, id2, id3)
}

func TestHarvester_RunCanceled(t *testing.T) {
	f := fetcher(map[pageKey][]store.SearchResultItem{
		{"q", 0}: {{Title: "A", Link: "http://x/a"}, {Title: "B", Link: "http://x/b"}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	h := &Harvester{
		Log:       slog.New(logx.NoOp()),
		Fetcher:   f,
		Extractor: extractorOK(),
		Pacer: PacerFunc(func(ctx context.Context) error {
			cancel()
			return ctx.Err()
		}),
		MaxPages: 3,
	}

	agg := &aggregator.Aggregator{}
	sum, err := h.Run(ctx, []string{"q", "never"}, agg)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, agg.Len())
	require.Len(t, sum.Queries, 1)
	assert.Equal(t, search.StopCanceled, sum.Queries[0].Reason)
	assert.Len(t, f.FetchPageCalls(), 1)
}
