package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pevans/blogscraper/discovery"
	"github.com/pevans/blogscraper/runlog"
	"github.com/pevans/blogscraper/store"
)

// printResult prints the outcome of one category crawl
func printResult(r discovery.Result) {
	fmt.Printf("%s: %d/%d articles scraped", r.Category, len(r.Records), r.PreviewsFound)
	if r.Failed > 0 {
		fmt.Printf(", %d failed", r.Failed)
	}
	if r.TotalStored > 0 {
		fmt.Printf(" (store total: %d)", r.TotalStored)
	}
	fmt.Println()
}

// printStats prints store statistics with categories by descending count
func printStats(stats *store.Stats) {
	fmt.Println("Store statistics")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Total articles:         %d\n", stats.TotalArticles)
	fmt.Printf("Categories:             %d\n", stats.CategoriesCount)
	fmt.Printf("Authors:                %d\n", stats.AuthorsCount)
	fmt.Printf("Articles with images:   %d\n", stats.ArticlesWithImages)
	fmt.Printf("Articles with content:  %d\n", stats.ArticlesWithContent)

	if len(stats.ByCategory) == 0 {
		return
	}

	categories := make([]string, 0, len(stats.ByCategory))
	for c := range stats.ByCategory {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b string) int {
		if d := stats.ByCategory[b] - stats.ByCategory[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	fmt.Println()
	fmt.Println("By category:")
	for _, c := range categories {
		fmt.Printf("  - %s %d\n", cell(c, 30), stats.ByCategory[c])
	}
}

// printArticleTable prints search results in a fixed-width table
func printArticleTable(records []store.Record, total int) {
	if len(records) == 0 {
		fmt.Println("No articles match.")
		return
	}

	fmt.Printf("Showing %d of %d articles\n\n", len(records), total)
	fmt.Printf("%s %s %s %s\n", cell("DATE", 8), cell("CATEGORY", 16), cell("AUTHOR", 20), "TITLE")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range records {
		fmt.Printf("%s %s %s %s\n",
			cell(deref(r.PublicationDate), 8),
			cell(deref(r.Category), 16),
			cell(deref(r.Author), 20),
			runewidth.Truncate(deref(r.Title), 60, "..."),
		)
	}
}

// printRuns prints the run history, newest first
func printRuns(runs []runlog.Run) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}

	fmt.Printf("%s %s %s %s %s %s\n",
		cell("STARTED", 19), cell("CATEGORY", 12), cell("MODE", 4),
		cell("FOUND", 5), cell("SCRAPED", 7), "FAILED")
	fmt.Println(strings.Repeat("-", 70))

	for _, r := range runs {
		fmt.Printf("%s %s %s %s %s %d\n",
			cell(r.StartedAt.Local().Format("2006-01-02 15:04:05"), 19),
			cell(r.Category, 12),
			cell(r.Mode, 4),
			cell(fmt.Sprint(r.PreviewsFound), 5),
			cell(fmt.Sprint(r.ArticlesScraped), 7),
			r.ArticlesFailed,
		)
	}
}

// cell truncates s to width display columns and pads it to exactly width
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
