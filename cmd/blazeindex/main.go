// Command blazeindex builds a block-sort-based inverted index from a
// directory of documents.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lucerna-labs/blaze/internal/indexer"
)

func main() {
	app := &cli.App{
		Name:  "blazeindex",
		Usage: "build a postings file and dictionary from a directory of documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "directory of documents, one file per doc_id",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "dict",
				Aliases:  []string{"d"},
				Usage:    "dictionary output path",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "postings",
				Aliases:  []string{"p"},
				Usage:    "postings file output path",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: `"ranked" (ltc·lnc cosine) or "boolean" (AND/OR/NOT/ANDNOT)`,
				Value: "boolean",
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

	cfg := indexer.Config{
		InputDir:     c.String("input"),
		DictPath:     c.String("dict"),
		PostingsPath: c.String("postings"),
		Ranked:       ranked,
	}

	report, err := indexer.Run(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("blazeindex: %v", err), 1)
	}
	slog.Info("index build complete", "stats", report.String())
	return nil
}

func parseMode(mode string) (ranked bool, err error) {
	switch mode {
	case "ranked":
		return true, nil
	case "boolean":
		return false, nil
	default:
		return false, cli.Exit(fmt.Sprintf("blazeindex: -mode must be \"ranked\" or \"boolean\", got %q", mode), 2)
	}
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
