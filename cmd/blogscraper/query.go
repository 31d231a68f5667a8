package main

import (
	"flag"
	"fmt"

	"github.com/pevans/blogscraper/store"
)

func (a *app) handleStats() error {
	st, err := a.openStore()
	if err != nil {
		return err
	}

	stats, err := st.Stats()
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	printStats(stats)
	return nil
}

func (a *app) handleExport(args []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	}

	n, err := st.ExportCSV(path)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if n == 0 {
		fmt.Println("No articles to export.")
		return nil
	}

	fmt.Printf("✓ Exported %d articles\n", n)
	return nil
}

func (a *app) handleSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	category := fs.String("category", "", "Category contains")
	subcategory := fs.String("subcategory", "", "Subcategory contains")
	author := fs.String("author", "", "Author contains")
	from := fs.String("from", "", "Published on or after (YYYYMMDD)")
	to := fs.String("to", "", "Published on or before (YYYYMMDD)")
	title := fs.String("title", "", "Title contains")
	limit := fs.Int("limit", 20, "Maximum number of articles to display")
	fs.Parse(args)

	st, err := a.openStore()
	if err != nil {
		return err
	}

	records, err := st.Search(store.Filter{
		Category:    *category,
		Subcategory: *subcategory,
		Author:      *author,
		DateStart:   *from,
		DateEnd:     *to,
		Title:       *title,
	})
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}

	total := len(records)
	if *limit > 0 && len(records) > *limit {
		records = records[:*limit]
	}

	printArticleTable(records, total)
	return nil
}

func (a *app) handleHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of runs to display")
	fs.Parse(args)

	runs, err := a.openRunLog()
	if err != nil {
		return err
	}

	list, err := runs.List(*limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	printRuns(list)
	return nil
}
