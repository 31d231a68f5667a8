package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pevans/blogscraper/discovery"
)

func (a *app) handleScrape(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	feed := fs.Bool("feed", false, "List articles from the category RSS feed")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: category is required\n")
		fmt.Fprintf(os.Stderr, "Usage: blogscraper scrape [--feed] <category> [pages]\n")
		os.Exit(1)
	}

	pages, err := parsePages(fs.Arg(1), 2)
	if err != nil {
		return err
	}

	c, err := a.crawler()
	if err != nil {
		return err
	}

	result, err := c.ScrapeCategory(ctx, fs.Arg(0), pages, *feed)
	switch {
	case errors.Is(err, discovery.ErrUnknownCategory):
		var names []string
		for _, cat := range c.Categories() {
			names = append(names, cat.Name)
		}
		return fmt.Errorf("%w (available: %s)", err, strings.Join(names, ", "))
	case errors.Is(err, discovery.ErrNoPreviews):
		fmt.Println("No articles found in this category.")
		return nil
	case err != nil && result == nil:
		return err
	}

	printResult(*result)
	return err
}

func (a *app) handleScrapeAll(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scrape-all", flag.ExitOnError)
	feed := fs.Bool("feed", false, "List articles from the category RSS feeds")
	fs.Parse(args)

	pages, err := parsePages(fs.Arg(0), 1)
	if err != nil {
		return err
	}

	c, err := a.crawler()
	if err != nil {
		return err
	}

	results, err := c.ScrapeAll(ctx, pages, *feed)

	scraped := 0
	for _, r := range results {
		printResult(r)
		scraped += len(r.Records)
	}
	fmt.Printf("Total articles scraped: %d\n", scraped)

	return err
}

// parsePages reads an optional page count argument.
func parsePages(arg string, def int) (int, error) {
	if arg == "" {
		return def, nil
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page count: %s", arg)
	}
	return n, nil
}
