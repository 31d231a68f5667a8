package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pevans/blogscraper/config"
	"github.com/pevans/blogscraper/discovery"
	"github.com/pevans/blogscraper/runlog"
	"github.com/pevans/blogscraper/scraper"
	"github.com/pevans/blogscraper/store"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	subcommand := os.Args[1]
	if subcommand == "help" || subcommand == "--help" || subcommand == "-h" {
		printUsage()
		return
	}

	cfg, err := config.Load(getEnv("BLOGSCRAPER_CONFIG", ""))
	if err != nil {
		fatalf("failed to load config: %v", err)
	}
	level, _ := cfg.LogLevel()
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &app{cfg: cfg}
	args := os.Args[2:]

	switch subcommand {
	case "scrape":
		err = cli.handleScrape(ctx, args)
	case "scrape-all":
		err = cli.handleScrapeAll(ctx, args)
	case "stats":
		err = cli.handleStats()
	case "export":
		err = cli.handleExport(args)
	case "search":
		err = cli.handleSearch(args)
	case "history":
		err = cli.handleHistory(args)
	case "serve":
		err = cli.handleServe(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}

	cli.close()
	if err != nil {
		fatalf("%v", err)
	}
}

// app lazily opens the stores a command needs.
type app struct {
	cfg   *config.Config
	store *store.Store
	runs  *runlog.Log
}

func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	st, err := store.New(a.cfg.Storage.DataDir, a.cfg.Storage.MirrorPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.store = st
	return st, nil
}

func (a *app) openRunLog() (*runlog.Log, error) {
	if a.runs != nil {
		return a.runs, nil
	}
	if err := os.MkdirAll(a.cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	runs, err := runlog.Open(a.cfg.Storage.RunlogDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	a.runs = runs
	return runs, nil
}

// crawler wires the fetcher, store and run history together. A run history
// that cannot be opened only disables run recording.
func (a *app) crawler() (*discovery.Crawler, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}

	fetcher := discovery.NewHTTPFetcher(a.cfg.Timeout(), a.cfg.Scrape.UserAgent)
	c := discovery.NewCrawler(fetcher, a.cfg.ScraperConfig(), st, a.cfg.Delay())

	runs, err := a.openRunLog()
	if err != nil {
		log.Warn().Err(err).Msg("run history disabled")
		return c, nil
	}
	return c.WithRunLog(runs), nil
}

func (a *app) close() {
	if a.runs != nil {
		a.runs.Close()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("blogscraper - Blog du Modérateur scraper")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  blogscraper <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  scrape [--feed] <category> [pages]   Scrape one category (default 2 pages)")
	fmt.Println("  scrape-all [--feed] [pages]          Scrape every category (default 1 page each)")
	fmt.Println("  stats                                Show store statistics")
	fmt.Println("  export [path]                        Export the store to CSV")
	fmt.Println("  search [flags]                       Search stored articles")
	fmt.Println("  history [--limit n]                  Show recent scrape runs")
	fmt.Println("  serve [--addr host:port]             Serve the read-only API")
	fmt.Println("  help                                 Show this help message")
	fmt.Println()
	fmt.Println("Categories:")
	for _, name := range scraper.CategoryNames() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  BLOGSCRAPER_CONFIG       Config file (default: ~/.blogscraper/config.yaml)")
	fmt.Println("  BLOGSCRAPER_DATA_DIR     Data directory (default: data)")
	fmt.Println("  BLOGSCRAPER_MIRROR_PATH  Frontend copy of the store (empty disables)")
	fmt.Println("  BLOGSCRAPER_RUNLOG_DSN   Run history database (default: <data_dir>/runs.db)")
	fmt.Println("  BLOGSCRAPER_DELAY        Pause between requests (default: 1s)")
	fmt.Println("  BLOGSCRAPER_TIMEOUT      Request timeout (default: 30s)")
	fmt.Println("  BLOGSCRAPER_USER_AGENT   User-Agent header")
	fmt.Println("  BLOGSCRAPER_BASE_URL     Site origin")
	fmt.Println("  BLOGSCRAPER_API_ADDR     API listen address (default: localhost:8080)")
	fmt.Println("  BLOGSCRAPER_LOG_LEVEL    debug, info, warn or error (default: info)")
}
