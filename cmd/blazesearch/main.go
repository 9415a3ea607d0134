// Command blazesearch answers a file of queries against a dictionary and
// postings file built by blazeindex.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lucerna-labs/blaze/internal/query"
	"github.com/lucerna-labs/blaze/internal/searcher"
)

func main() {
	app := &cli.App{
		Name:  "blazesearch",
		Usage: "answer a file of queries against a dictionary and postings file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dict",
				Aliases:  []string{"d"},
				Usage:    "dictionary path, as written by blazeindex",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "postings",
				Aliases:  []string{"p"},
				Usage:    "postings file path, as written by blazeindex",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "queries",
				Aliases:  []string{"q"},
				Usage:    "input file, one query per line",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    "results output path, one line of space-separated doc_ids per query",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: `must match how the index was built: "ranked" or "boolean"`,
				Value: "boolean",
			},
			&cli.IntFlag{
				Name:  "topk",
				Usage: "number of results per ranked query",
				Value: query.DefaultTopK,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		// Errors built with cli.Exit have already exited with their own
		// code; what reaches here is a flag-parsing or required-flag error.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(c *cli.Context) error {
	configureLogging(c.Bool("verbose"))

	ranked, err := parseMode(c.String("mode"))
	if err != nil {
		return err
	}

	cfg := searcher.Config{
		DictPath:     c.String("dict"),
		PostingsPath: c.String("postings"),
		QueriesPath:  c.String("queries"),
		ResultsPath:  c.String("out"),
		Ranked:       ranked,
		TopK:         c.Int("topk"),
	}

	if err := searcher.Run(cfg); err != nil {
		return cli.Exit(fmt.Sprintf("blazesearch: %v", err), 1)
	}
	return nil
}

func parseMode(mode string) (ranked bool, err error) {
	switch mode {
	case "ranked":
		return true, nil
	case "boolean":
		return false, nil
	default:
		return false, cli.Exit(fmt.Sprintf("blazesearch: -mode must be \"ranked\" or \"boolean\", got %q", mode), 2)
	}
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
