package searcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucerna-labs/blaze/internal/indexer"
)

func buildIndex(t *testing.T, root string, ranked bool) (dictPath, postingsPath string) {
	t.Helper()
	inputDir := filepath.Join(root, "docs")
	if err := os.Mkdir(inputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	docs := map[string]string{
		"1": "the cat sat on the mat",
		"2": "the dog ran in the park",
		"3": "cats and dogs are friends",
	}
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dictPath = filepath.Join(root, "dict.json")
	postingsPath = filepath.Join(root, "postings")
	cfg := indexer.Config{
		InputDir:     inputDir,
		DictPath:     dictPath,
		PostingsPath: postingsPath,
		Ranked:       ranked,
	}
	if _, err := indexer.Run(cfg); err != nil {
		t.Fatalf("indexer.Run: %v", err)
	}
	return dictPath, postingsPath
}

func TestRunBooleanQueries(t *testing.T) {
	root := t.TempDir()
	dictPath, postingsPath := buildIndex(t, root, false)

	queriesPath := filepath.Join(root, "queries.txt")
	queries := "# a comment\n\ncat\ndog AND NOT cat\nbird\n"
	if err := os.WriteFile(queriesPath, []byte(queries), 0o644); err != nil {
		t.Fatal(err)
	}
	resultsPath := filepath.Join(root, "results.txt")

	err := Run(Config{
		DictPath:     dictPath,
		PostingsPath: postingsPath,
		QueriesPath:  queriesPath,
		ResultsPath:  resultsPath,
		Ranked:       false,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d result lines, want 3 (comments/blanks skipped): %v", len(lines), lines)
	}
	if lines[0] == "" {
		t.Errorf("query 'cat' should match something, got empty result")
	}
	if lines[2] != "" {
		t.Errorf("query 'bird' should match nothing, got %q", lines[2])
	}
}

func TestRunMalformedBooleanQueryYieldsEmptyLine(t *testing.T) {
	root := t.TempDir()
	dictPath, postingsPath := buildIndex(t, root, false)

	queriesPath := filepath.Join(root, "queries.txt")
	if err := os.WriteFile(queriesPath, []byte("cat AND\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	resultsPath := filepath.Join(root, "results.txt")

	err := Run(Config{
		DictPath:     dictPath,
		PostingsPath: postingsPath,
		QueriesPath:  queriesPath,
		ResultsPath:  resultsPath,
		Ranked:       false,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimRight(string(data), "\n") != "" {
		t.Errorf("malformed query should yield an empty result line, got %q", string(data))
	}
}

func TestRunRankedQueries(t *testing.T) {
	root := t.TempDir()
	dictPath, postingsPath := buildIndex(t, root, true)

	queriesPath := filepath.Join(root, "queries.txt")
	if err := os.WriteFile(queriesPath, []byte("cat dog\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	resultsPath := filepath.Join(root, "results.txt")

	err := Run(Config{
		DictPath:     dictPath,
		PostingsPath: postingsPath,
		QueriesPath:  queriesPath,
		ResultsPath:  resultsPath,
		Ranked:       true,
		TopK:         10,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) == "" {
		t.Error("ranked query 'cat dog' should return at least one document")
	}
}
