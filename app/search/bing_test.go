package search

import (
	"context"
	_ "embed"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Semior001/newsharvest/app/store"
	"github.com/Semior001/newsharvest/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

//go:embed data/test/results.html
var resultsHTML []byte

//go:embed data/test/empty.html
var emptyHTML []byte

func TestBing_PageURL(t *testing.T) {
	b := NewBing(slog.New(logx.NoOp()), BingParams{})

	assert.Equal(t,
		"https://www.bing.com/news/search?q=Acme+Corp&first=0&form=QBNH&setmkt=es-ES",
		b.PageURL("Acme Corp", "es-ES", 0))
	assert.Equal(t,
		"https://www.bing.com/news/search?q=Sumup+Empresas&first=30&form=QBNH&setmkt=en-GB",
		b.PageURL("Sumup Empresas", "en-GB", 3))
	assert.Equal(t,
		"https://www.bing.com/news/search?q=AT%26T+Inc&first=10&form=QBNH&setmkt=en-US",
		b.PageURL("AT&T Inc", "en-US", 1))
}

func TestBing_FetchPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news/search", r.URL.Path)
		assert.Equal(t, "Acme Corp", r.URL.Query().Get("q"))
		assert.Equal(t, "20", r.URL.Query().Get("first"))
		assert.Equal(t, "QBNH", r.URL.Query().Get("form"))
		assert.Equal(t, "es-ES", r.URL.Query().Get("setmkt"))
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))

		w.WriteHeader(http.StatusOK)
		_, err := w.Write(resultsHTML)
		require.NoError(t, err)
	}))
	defer ts.Close()

	b := NewBing(slog.New(logx.NoOp()), BingParams{Host: ts.URL + "/", UserAgent: "Mozilla/5.0", Timeout: time.Second})

	items, err := b.FetchPage(context.Background(), "Acme Corp", "es-ES", 2)
	require.NoError(t, err)

	assert.Equal(t, []store.SearchResultItem{
		{
			Title:   "Acme Corp dispara sus beneficios",
			Link:    "https://www.expansion.com/empresas/acme-resultados.html",
			Snippet: "Resumen de la noticia",
		},
		{Title: "Nuevo consejero delegado en Acme", Link: "https://cincodias.elpais.com/acme-ceo.html"},
		{Title: "Acme & Partners sin enlace", Link: ""},
		{Title: "Acme sube en bolsa", Link: "https://www.eleconomista.es/acme-bolsa.html"},
	}, items)
}

func TestBing_FetchPageEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write(emptyHTML)
		require.NoError(t, err)
	}))
	defer ts.Close()

	b := NewBing(slog.New(logx.NoOp()), BingParams{Host: ts.URL, Timeout: time.Second})

	items, err := b.FetchPage(context.Background(), "Acme Corp", "es-ES", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBing_FetchPageErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer ts.Close()

		b := NewBing(slog.New(logx.NoOp()), BingParams{Host: ts.URL, Timeout: time.Second})
		_, err := b.FetchPage(context.Background(), "Acme Corp", "es-ES", 0)
		assert.ErrorContains(t, err, "bad status code: 429")
	})

	t.Run("timeout", func(t *testing.T) {
		done := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-done:
			case <-r.Context().Done():
			}
		}))
		defer ts.Close()
		defer close(done)

		b := NewBing(slog.New(logx.NoOp()), BingParams{Host: ts.URL, Timeout: 50 * time.Millisecond})
		_, err := b.FetchPage(context.Background(), "Acme Corp", "es-ES", 0)
		assert.ErrorContains(t, err, "do request")
	})

	t.Run("connection refused", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		addr := ts.URL
		ts.Close()

		b := NewBing(slog.New(logx.NoOp()), BingParams{Host: addr, Timeout: time.Second})
		_, err := b.FetchPage(context.Background(), "Acme Corp", "es-ES", 0)
		assert.Error(t, err)
	})
}
