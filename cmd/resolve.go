package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"urlembed/internal/config"
	"urlembed/internal/embed"
	"urlembed/internal/engine"
	"urlembed/internal/history"
	"urlembed/internal/markup"
	"urlembed/internal/ui"
)

// resolveRun is the default command: urlembed <url...>
func resolveRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	urls := args
	if len(urls) == 0 {
		var err error
		urls, err = readURLs(os.Stdin)
		if err != nil {
			return err
		}
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given")
	}

	reqs, invalid := buildRequests(urls)

	var store *history.Store
	if cfg.History {
		var err error
		store, err = openHistory()
		if err != nil {
			// History is best-effort; resolution still goes ahead.
			logger.Warn("history unavailable", zap.Error(err))
		} else {
			defer store.Close()
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var progress *ui.Progress
	if flagBatch && len(reqs) > 1 && ui.IsTerminal(os.Stderr) {
		progress = ui.NewProgress(len(reqs), os.Stderr, cancel)
	}

	observe := func(req *embed.Request) {
		if store != nil {
			if err := store.Record(ctx, req); err != nil {
				logger.Warn("recording history", zap.String("url", req.URL()), zap.Error(err))
			}
		}
		if progress != nil {
			progress.Observe(req)
		}
	}

	eng, err := newEngine(cfg, engine.WithObserver(observe))
	if err != nil {
		return err
	}

	var results []*embed.Request
	switch {
	case flagBatch && progress != nil:
		if err := progress.Run(func() { results = eng.ResolveMany(ctx, reqs) }); err != nil {
			return err
		}
	case flagBatch:
		results = eng.ResolveMany(ctx, reqs)
	default:
		results = make([]*embed.Request, 0, len(reqs))
		for _, req := range reqs {
			debugf("resolving %s", req.URL())
			eng.Resolve(ctx, req)
			results = append(results, req)
			if !flagJSON {
				fmt.Print(ui.RenderResult(req))
			}
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	} else {
		if flagBatch {
			for _, req := range results {
				fmt.Print(ui.RenderResult(req))
			}
		}
		if len(results) > 1 {
			fmt.Println(ui.RenderSummary(results))
		}
	}

	failed := invalid
	for _, req := range results {
		if req.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs failed to resolve", failed, len(urls))
	}
	return nil
}

// newEngine builds an engine from cfg with the default and configured providers registered.
func newEngine(cfg *config.Config, opts ...engine.Option) (*engine.Engine, error) {
	filter, err := markup.Chain(cfg.Filters)
	if err != nil {
		return nil, err
	}

	base := []engine.Option{
		engine.WithLogger(logger),
		engine.WithConcurrency(cfg.Concurrency),
		engine.WithFilter(filter),
	}
	eng := engine.New(cfg.ProviderOptions(Version), append(base, opts...)...)
	if err := eng.RegisterDefaults(cfg.Factories()...); err != nil {
		return nil, fmt.Errorf("registering providers: %w", err)
	}
	return eng, nil
}

// buildRequests validates each URL, reporting the invalid ones on stderr.
func buildRequests(urls []string) ([]*embed.Request, int) {
	opts := embed.Options{MaxWidth: flagMaxWidth, MaxHeight: flagMaxHeight}

	var (
		reqs    []*embed.Request
		invalid int
	)
	for _, u := range urls {
		req, err := embed.NewRequest(u, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping: %v\n", err)
			invalid++
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, invalid
}

// readURLs reads one URL per line, skipping blank lines and # comments.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URLs: %w", err)
	}
	return urls, nil
}

func openHistory() (*history.Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	debugf("history: %s", path)
	return history.Open(path)
}
