// Package indexer orchestrates the whole build pipeline: partition
// documents into blocks (internal/blockwriter), externally merge them
// (internal/merge), embed skip pointers and append the "_universal" list
// (internal/skipaug), and build the dictionary (internal/dictionary).
package indexer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/RoaringBitmap/roaring"

	"github.com/lucerna-labs/blaze/internal/analyzer"
	"github.com/lucerna-labs/blaze/internal/blockwriter"
	"github.com/lucerna-labs/blaze/internal/dictionary"
	"github.com/lucerna-labs/blaze/internal/merge"
	"github.com/lucerna-labs/blaze/internal/skipaug"
	"github.com/lucerna-labs/blaze/internal/stats"
	"github.com/lucerna-labs/blaze/internal/termtable"
)

// BlockSize is the number of documents accumulated in memory before a
// block is flushed to disk.
const BlockSize = 1000

// Config names an indexing run's inputs and outputs.
type Config struct {
	InputDir     string // directory of documents, one file per doc_id
	DictPath     string // dictionary JSON output path
	PostingsPath string // final postings file output path
	Ranked       bool   // build ltc·lnc weights, or a plain Boolean index
}

// Run executes one full index build and returns its collection-statistics
// report.
func Run(cfg Config) (stats.Report, error) {
	docs, err := listDocuments(cfg.InputDir)
	if err != nil {
		return stats.Report{}, err
	}
	if len(docs) == 0 {
		return stats.Report{}, fmt.Errorf("indexer: %s contains no documents", cfg.InputDir)
	}

	scratchDir := filepath.Join(filepath.Dir(cfg.DictPath), fmt.Sprintf(".blaze-blocks-%d", os.Getpid()))
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return stats.Report{}, fmt.Errorf("indexer: create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	table := termtable.New()
	blockPaths, docIDs, nextBlockID, err := writeBlocks(cfg, docs, table, scratchDir)
	if err != nil {
		return stats.Report{}, err
	}

	alloc := func() int {
		id := nextBlockID
		nextBlockID++
		return id
	}
	mergedPath, err := merge.All(scratchDir, blockPaths, cfg.Ranked, alloc)
	if err != nil {
		return stats.Report{}, err
	}

	if err := skipaug.Augment(mergedPath, cfg.PostingsPath, cfg.Ranked, docIDs); err != nil {
		return stats.Report{}, err
	}

	dict, err := dictionary.Build(cfg.PostingsPath, table, cfg.Ranked, len(docIDs))
	if err != nil {
		return stats.Report{}, err
	}
	if err := dict.Save(cfg.DictPath); err != nil {
		return stats.Report{}, err
	}

	return stats.Compute(cfg.PostingsPath, cfg.Ranked, table.Len())
}

// writeBlocks streams documents through a block writer, flushing every
// BlockSize documents, and returns the block files written, the
// ascending, duplicate-free set of every doc_id seen, and the next
// unused block id.
func writeBlocks(cfg Config, docs []document, table *termtable.Table, scratchDir string) ([]string, []int, int, error) {
	var blockPaths []string
	all := roaring.NewBitmap()
	blockID := 0
	writer := blockwriter.New(table, cfg.Ranked)

	flush := func() error {
		all.Or(writer.DocIDs())
		if writer.Empty() {
			return nil
		}
		path, err := writer.Flush(scratchDir, blockID)
		if err != nil {
			return err
		}
		blockPaths = append(blockPaths, path)
		blockID++
		writer = blockwriter.New(table, cfg.Ranked)
		return nil
	}

	for i, doc := range docs {
		content, err := os.ReadFile(doc.path)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("indexer: read %s: %w", doc.path, err)
		}
		vec := analyzer.Vectorize(doc.docID, string(content))
		writer.AddDocument(vec)

		if (i+1)%BlockSize == 0 {
			if err := flush(); err != nil {
				return nil, nil, 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, nil, 0, err
	}

	arr := all.ToArray()
	docIDs := make([]int, len(arr))
	for i, id := range arr {
		docIDs[i] = int(id)
	}
	return blockPaths, docIDs, blockID, nil
}

type document struct {
	docID int
	path  string
}

// listDocuments reads inputDir and returns its documents sorted
// ascending by doc_id, which the BSBI partition (and, transitively, the
// external merge's disjoint-range invariant) depends on. A file whose
// name does not parse as an integer doc_id is skipped with a warning
// rather than failing the whole run.
func listDocuments(inputDir string) ([]document, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("indexer: read dir %s: %w", inputDir, err)
	}

	docs := make([]document, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, err := strconv.Atoi(e.Name())
		if err != nil {
			slog.Warn("skipping file with non-integer name", "file", e.Name())
			continue
		}
		docs = append(docs, document{docID: id, path: filepath.Join(inputDir, e.Name())})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].docID < docs[j].docID })
	return docs, nil
}
