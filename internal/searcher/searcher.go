// Package searcher drives the query-answering side of the pipeline:
// load a dictionary once, open its paired postings file, and answer one
// query per line of an input file, writing one result line per query.
package searcher

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lucerna-labs/blaze/internal/dictionary"
	"github.com/lucerna-labs/blaze/internal/query"
)

// Config names one search run's inputs and outputs.
type Config struct {
	DictPath     string
	PostingsPath string
	QueriesPath  string
	ResultsPath  string
	Ranked       bool
	TopK         int // ranked mode only; <= 0 uses query.DefaultTopK
}

// Run loads the dictionary, evaluates every query in cfg.QueriesPath,
// and writes cfg.ResultsPath, one line of space-separated doc_ids per
// query. Blank lines and lines starting with "#" in the queries file are
// skipped without producing a result line. A malformed Boolean query is
// logged and answered with an empty result line rather than aborting
// the run; any other error aborts it.
func Run(cfg Config) error {
	dict, err := dictionary.Load(cfg.DictPath, cfg.Ranked)
	if err != nil {
		return err
	}

	postings, err := os.Open(cfg.PostingsPath)
	if err != nil {
		return fmt.Errorf("searcher: open %s: %w", cfg.PostingsPath, err)
	}
	defer postings.Close()

	qf, err := os.Open(cfg.QueriesPath)
	if err != nil {
		return fmt.Errorf("searcher: open %s: %w", cfg.QueriesPath, err)
	}
	defer qf.Close()

	out, err := os.Create(cfg.ResultsPath)
	if err != nil {
		return fmt.Errorf("searcher: create %s: %w", cfg.ResultsPath, err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	booleanEval := query.NewBooleanEvaluator(dict, postings, cfg.Ranked)
	rankedEval := query.NewRankedEvaluator(dict, postings, cfg.TopK)

	scanner := bufio.NewScanner(qf)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var result string
		if cfg.Ranked {
			scored, err := rankedEval.Eval(line)
			if err != nil {
				return fmt.Errorf("searcher: query line %d: %w", lineNo, err)
			}
			result = formatScored(scored)
		} else {
			ids, err := booleanEval.Eval(line)
			switch {
			case errors.Is(err, query.ErrMalformed):
				slog.Warn("malformed boolean query, returning empty result", "line", lineNo, "query", line, "error", err)
				result = ""
			case err != nil:
				return fmt.Errorf("searcher: query line %d: %w", lineNo, err)
			default:
				result = formatIDs(ids)
			}
		}

		if _, err := bw.WriteString(result + "\n"); err != nil {
			return fmt.Errorf("searcher: write %s: %w", cfg.ResultsPath, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("searcher: scan %s: %w", cfg.QueriesPath, err)
	}
	return bw.Flush()
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

func formatScored(scored []query.ScoredDoc) string {
	parts := make([]string, len(scored))
	for i, s := range scored {
		parts[i] = strconv.Itoa(s.DocID)
	}
	return strings.Join(parts, " ")
}
