package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Semior001/newsharvest/app/report"
	"github.com/Semior001/newsharvest/app/store"
	"golang.org/x/exp/slog"
)

// Runs is a group of commands to inspect archived runs.
type Runs struct {
	List RunsList `command:"list" description:"list archived runs"`
	Show RunsShow `command:"show" description:"render archived runs as markdown, all of them if no ids given"`
}

// ArchiveOpts locates the archive of runs.
type ArchiveOpts struct {
	StorePath string `long:"store-path" env:"STORE_PATH" required:"true" description:"parent dir for bolt files"`
}

// withStore opens the archive, calls fn and closes the archive.
func (o ArchiveOpts) withStore(fn func(ctx context.Context, s store.Interface) error) error {
	s, err := store.NewBolt(o.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("close bolt store", slog.Any("err", err))
		}
	}()

	return fn(context.Background(), s)
}

// RunsList is a command to list archived runs.
type RunsList struct {
	ArchiveOpts

	out io.Writer
}

// Execute runs the command.
func (r RunsList) Execute(_ []string) error {
	return r.withStore(r.list)
}

func (r RunsList) list(ctx context.Context, s store.Interface) error {
	runs, err := s.List(ctx, store.ListRequest{})
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := stdout(r.out)
	for _, run := range runs {
		_, err = fmt.Fprintf(out, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.StartedAt.Format(time.RFC3339),
			run.Market,
			run.Total,
			run.Output,
			strings.Join(run.Queries, "; "),
		)
		if err != nil {
			return fmt.Errorf("print run %s: %w", run.ID, err)
		}
	}

	return nil
}

// RunsShow is a command to render archived runs as a markdown report.
type RunsShow struct {
	ArchiveOpts

	out io.Writer
}

// Execute runs the command, args are ids of runs to render.
func (r RunsShow) Execute(args []string) error {
	return r.withStore(func(ctx context.Context, s store.Interface) error {
		return r.show(ctx, s, args)
	})
}

func (r RunsShow) show(ctx context.Context, s store.Interface, ids []string) error {
	var runs []store.Run
	if len(ids) == 0 {
		var err error
		if runs, err = s.List(ctx, store.ListRequest{WithRecords: true}); err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
	}

	for _, id := range ids {
		run, err := s.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("get run %s: %w", id, err)
		}
		runs = append(runs, run)
	}

	out := stdout(r.out)
	for i, run := range runs {
		if i > 0 {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return fmt.Errorf("write separator: %w", err)
			}
		}
		if err := report.Markdown(out, run); err != nil {
			return fmt.Errorf("render run %s: %w", run.ID, err)
		}
	}

	return nil
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
