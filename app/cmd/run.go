// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/newsharvest/app/aggregator"
	"github.com/Semior001/newsharvest/app/extractor"
	"github.com/Semior001/newsharvest/app/harvest"
	"github.com/Semior001/newsharvest/app/search"
	"github.com/Semior001/newsharvest/app/store"
	"github.com/Semior001/newsharvest/pkg/logx"
	"github.com/go-pkgz/requester/middleware"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

const defaultMaxPages = 20

// Run is a command to harvest news for the configured companies.
type Run struct {
	Queries  []string `long:"query" env:"QUERIES" env-delim:"," description:"company to search news for, repeatable"`
	Config   string   `long:"config" env:"CONFIG" description:"path to YAML file with queries"`
	Market   string   `long:"market" env:"MARKET" default:"es-ES" description:"market code of the search, e.g. es-ES, en-US"`
	MaxPages int      `long:"max-pages" env:"MAX_PAGES" default:"20" description:"max result pages per query"`
	Output   string   `long:"output" env:"OUTPUT" default:"noticias_empresas_unificado.csv" description:"path to the CSV output"`

	Delay     time.Duration `long:"delay" env:"DELAY" default:"1s" description:"pause after every article"`
	UserAgent string        `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0" description:"user agent for outgoing requests"`
	LogHTTP   bool          `long:"log-http" env:"LOG_HTTP" description:"log every outgoing request at debug level"`

	Search struct {
		Host    string        `long:"host" env:"HOST" default:"https://www.bing.com" description:"search host"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"timeout for result page requests"`
	} `group:"search" namespace:"search" env-namespace:"SEARCH"`

	Article struct {
		Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"timeout for article requests"`
		Format    string        `long:"format" env:"FORMAT" default:"text" choice:"text" choice:"markdown" description:"format of extracted content"`
		CacheSize int           `long:"cache-size" env:"CACHE_SIZE" default:"100" description:"extracted articles kept in memory, 0 disables"`
	} `group:"article" namespace:"article" env-namespace:"ARTICLE"`

	StorePath string `long:"store-path" env:"STORE_PATH" description:"parent dir for bolt files, archiving is off when empty"`
}

// Execute runs the command.
func (r Run) Execute(_ []string) error {
	lg := slog.Default()

	queries := r.Queries
	if r.Config != "" {
		f, err := LoadFile(r.Config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		queries = r.applyFile(f)
	}
	queries = mergeQueries(queries)
	r.Market = normalizeMarket(r.Market)

	if len(queries) == 0 {
		return errors.New("no queries configured")
	}

	var mws []middleware.RoundTripperHandler
	if r.LogHTTP {
		mws = append(mws, logx.LoggingRoundTripper(lg.With(slog.String("prefix", "http")), logx.RoundTripperOpts{
			Level:     slog.LevelDebug,
			BodyLimit: 512,
		}))
	}

	bing := search.NewBing(lg.With(slog.String("prefix", "search")), search.BingParams{
		Host:        r.Search.Host,
		UserAgent:   r.UserAgent,
		Timeout:     r.Search.Timeout,
		Middlewares: mws,
	})

	articles := extractor.NewService(lg.With(slog.String("prefix", "extractor")), extractor.ServiceParams{
		UserAgent:   r.UserAgent,
		Timeout:     r.Article.Timeout,
		Format:      extractor.Format(r.Article.Format),
		CacheSize:   r.Article.CacheSize,
		Middlewares: mws,
	})

	h := &harvest.Harvester{
		Log:       lg.With(slog.String("prefix", "harvest")),
		Fetcher:   bing,
		Extractor: articles,
		Pacer:     harvest.FixedDelay(r.Delay),
		Market:    r.Market,
		MaxPages:  r.MaxPages,
	}

	run := store.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Market:    r.Market,
		Queries:   queries,
		Output:    r.Output,
	}

	lg.Info("starting harvest",
		slog.String("run_id", run.ID),
		slog.Any("queries", queries),
		slog.String("market", r.Market),
		slog.Int("max_pages", r.MaxPages),
	)

	agg := &aggregator.Aggregator{}
	sum, err := r.harvest(lg, h, queries, agg)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return fmt.Errorf("harvest: %w", err)
	}

	n, err := agg.WriteFile(r.Output)
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	lg.Info("results saved",
		slog.String("output", r.Output),
		slog.Int("articles", n),
		slog.Int("failed_extractions", sum.Failed),
		slog.Any("cache", articles.CacheStat()),
		slog.Bool("interrupted", interrupted),
	)

	if r.StorePath == "" {
		return nil
	}

	run.FinishedAt = time.Now()
	run.Records = agg.Records()
	if err = r.archive(run); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}

	lg.Info("run archived", slog.String("run_id", run.ID), slog.String("store_path", r.StorePath))
	return nil
}

// applyFile returns the queries of the file followed by the ones from
// flags. Market and page budget of the file are taken only when the
// corresponding flags are left at their defaults.
func (r *Run) applyFile(f File) []string {
	if f.Market != "" && r.Market == defaultMarket {
		r.Market = f.Market
	}
	if f.MaxPages > 0 && r.MaxPages == defaultMaxPages {
		r.MaxPages = f.MaxPages
	}
	return mergeQueries(f.Queries, r.Queries)
}

// harvest runs the harvester until it is done or the process is
// interrupted.
func (r Run) harvest(
	lg *slog.Logger,
	h *harvest.Harvester,
	queries []string,
	agg *aggregator.Aggregator,
) (harvest.Summary, error) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)

		select {
		case s := <-sig:
			lg.Warn("caught signal, stopping", slog.String("signal", s.String()))
			stop()
			return context.Canceled
		case <-ctx.Done():
			return nil
		}
	})
	var sum harvest.Summary
	ewg.Go(func() error {
		defer stop()
		var err error
		sum, err = h.Run(ctx, queries, agg)
		return err
	})

	err := ewg.Wait()
	return sum, err
}

func (r Run) archive(run store.Run) (err error) {
	s, err := store.NewBolt(r.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if cerr := s.Close(); cerr != nil {
			slog.Error("close bolt store", slog.Any("err", cerr))
		}
	}()

	if err = s.Put(context.Background(), run); err != nil {
		return fmt.Errorf("put run: %w", err)
	}

	return nil
}
