package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/tutorbase/faqsearch/internal/config"
	"github.com/tutorbase/faqsearch/internal/content"
	"github.com/tutorbase/faqsearch/internal/debug"
	"github.com/tutorbase/faqsearch/internal/engine"
	"github.com/tutorbase/faqsearch/internal/filter"
	"github.com/tutorbase/faqsearch/internal/highlight"
	"github.com/tutorbase/faqsearch/internal/types"
	"github.com/tutorbase/faqsearch/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "faqsearch",
		Usage:                  "Fuzzy search and relevance ranking over FAQ corpora",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or .toml)",
				Value:   ".faqsearch.kdl",
			},
			&cli.StringFlag{
				Name:    "corpus",
				Aliases: []string{"f"},
				Usage:   "Corpus file glob (e.g. 'content/**/*.json')",
				Value:   "faq.json",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Search the corpus",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "Restrict to a category ID"},
					&cli.StringFlag{Name: "difficulty", Usage: "Restrict to a difficulty (basic, intermediate, advanced)"},
					&cli.StringFlag{Name: "segment", Usage: "Restrict to a client segment"},
					&cli.BoolFlag{Name: "featured", Usage: "Featured questions only"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Max results", Value: 0},
					&cli.StringFlag{Name: "sort", Usage: "Override ranking: date, popularity, alphabetical, priority"},
					&cli.StringFlag{Name: "order", Usage: "Sort direction: asc or desc"},
					&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Output as JSON"},
				},
				Action: searchCommand,
			},
			{
				Name:    "suggest",
				Aliases: []string{"sg"},
				Usage:   "Suggest completions for a query fragment",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Max suggestions", Value: 5},
					&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Output as JSON"},
				},
				Action: suggestCommand,
			},
			{
				Name:   "validate",
				Usage:  "Check corpus files for structural problems",
				Action: validateCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show corpus and index statistics",
				Action: statsCommand,
			},
			{
				Name:   "watch",
				Usage:  "Interactive search that reloads when corpus files change",
				Action: watchCommand,
			},
		},
	}

	if debug.IsDebugEnabled() {
		if path, err := debug.InitDebugLogFile(); err == nil {
			defer debug.CloseDebugLog()
			debug.Printf("debug log: %s\n", path)
		}
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadEngine(c *cli.Context) (*engine.Engine, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	doc, err := content.LoadGlob(context.Background(), c.String("corpus"))
	if err != nil {
		return nil, err
	}
	if err := content.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid corpus: %w", err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("corpus is empty")
	}

	return engine.New(doc.Questions, doc.Categories, cfg)
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("usage: faqsearch search <query>")
	}

	eng, err := loadEngine(c)
	if err != nil {
		return err
	}

	basic := filter.Basic{
		Category:      c.String("category"),
		Difficulty:    types.Difficulty(c.String("difficulty")),
		ClientSegment: types.Segment(c.String("segment")),
		Limit:         c.Int("limit"),
	}
	if c.Bool("featured") {
		featured := true
		basic.Featured = &featured
	}

	results, meta := eng.Search(query, basic)

	if sortBy := c.String("sort"); sortBy != "" {
		adv := filter.Advanced{
			SortBy:    filter.SortBy(sortBy),
			SortOrder: filter.SortOrder(c.String("order")),
		}
		adv.Sort(results)
	}

	if c.Bool("json") {
		return printJSON(map[string]any{
			"results":  results,
			"metadata": meta,
		})
	}

	if len(results) == 0 {
		fmt.Printf("No results for %q (%.2fms)\n", query, meta.ExecutionTime)
		if meta.DidYouMean != "" {
			fmt.Printf("Did you mean %q?\n", meta.DidYouMean)
		}
		return nil
	}

	fmt.Printf("%d results for %q (%.2fms)\n\n", meta.TotalResults, query, meta.ExecutionTime)
	for i, r := range results {
		category := r.Item.Category
		if r.Category != nil {
			category = r.Category.Name
		}
		fmt.Printf("%2d. [%s] %s (score %.4f)\n", i+1, category, r.Item.Question, r.Score)
		answer := highlight.Strip(r.Highlighted.Answer)
		if len(answer) > 140 {
			answer = answer[:140] + "..."
		}
		fmt.Printf("    %s\n", answer)
	}
	return nil
}

func suggestCommand(c *cli.Context) error {
	fragment := strings.Join(c.Args().Slice(), " ")
	if fragment == "" {
		return fmt.Errorf("usage: faqsearch suggest <fragment>")
	}

	eng, err := loadEngine(c)
	if err != nil {
		return err
	}

	suggestions := eng.Suggestions(fragment, c.Int("limit"))
	if c.Bool("json") {
		return printJSON(map[string]any{"suggestions": suggestions})
	}
	for _, s := range suggestions {
		fmt.Println(s)
	}
	return nil
}

func validateCommand(c *cli.Context) error {
	doc, err := content.LoadGlob(context.Background(), c.String("corpus"))
	if err != nil {
		return err
	}
	if err := content.Validate(doc); err != nil {
		return err
	}
	fmt.Printf("OK: %d questions, %d categories\n", len(doc.Questions), len(doc.Categories))
	return nil
}

func statsCommand(c *cli.Context) error {
	eng, err := loadEngine(c)
	if err != nil {
		return err
	}

	cfg := eng.Config()
	fmt.Println(version.FullInfo())
	fmt.Printf("Questions:  %d\n", len(eng.Questions()))
	fmt.Printf("Categories: %d\n", len(eng.Categories()))
	fmt.Printf("Indexed:    %d documents\n", eng.IndexSize())
	fmt.Printf("Threshold:  %.2f\n", cfg.Index.Threshold)
	fmt.Printf("MaxResults: %d\n", cfg.Index.MaxResults)
	return nil
}

// watchCommand runs a read-eval loop over stdin while a corpus watcher
// swaps the engine underneath it on file changes.
func watchCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pattern := c.String("corpus")
	doc, err := content.LoadGlob(context.Background(), pattern)
	if err != nil {
		return err
	}

	builder := engine.NewBuilder()
	var mu sync.Mutex
	eng, err := builder.Engine(doc.Questions, doc.Categories, cfg)
	if err != nil {
		return err
	}

	watcher, err := content.NewWatcher(pattern, 0, func(doc *content.Document, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			return
		}
		next, err := builder.Engine(doc.Questions, doc.Categories, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
			return
		}
		mu.Lock()
		eng = next
		mu.Unlock()
		fmt.Printf("\ncorpus reloaded: %d questions\n> ", len(doc.Questions))
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("watching %s; type a query, or 'quit' to exit\n", pattern)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "quit" || query == "exit" {
			return nil
		}
		if query == "" {
			continue
		}

		mu.Lock()
		current := eng
		mu.Unlock()
		if current == nil {
			fmt.Println("corpus is empty")
			continue
		}

		results, meta := current.Search(query, filter.Basic{})
		if len(results) == 0 {
			fmt.Printf("no results (%.2fms)\n", meta.ExecutionTime)
			if meta.DidYouMean != "" {
				fmt.Printf("did you mean %q?\n", meta.DidYouMean)
			}
			continue
		}
		for i, r := range results {
			if i >= 10 {
				fmt.Printf("... and %d more\n", len(results)-10)
				break
			}
			fmt.Printf("%2d. %s (score %.4f)\n", i+1, r.Item.Question, r.Score)
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
