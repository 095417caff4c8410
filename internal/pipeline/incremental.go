package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/cflow/internal/source"
	"github.com/theirongolddev/cflow/internal/store"
)

// ImportOptions tune ImportWithStore.
type ImportOptions struct {
	// Classify fills in categories for unassigned rows using a classifier
	// trained on the ledger's categorized descriptions.
	Classify bool
	// Prune drops entries of tracked files under root that no longer exist.
	Prune bool
}

// ImportResult extends LoadResult with tracker metadata.
type ImportResult struct {
	LoadResult
	Unchanged  int
	Reparsed   int
	Removed    int
	Classified int
}

// ImportWithStore discovers CSV exports, diffs them against the store's file
// tracker, and reparses only new or changed files. Each changed file's
// entries replace whatever that file contributed before.
func ImportWithStore(ctx context.Context, root string, st store.Store, opts ImportOptions, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := source.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	result := &ImportResult{
		LoadResult: LoadResult{
			TotalFiles:   len(files),
			ProjectCount: source.CountProjects(files),
		},
	}

	tracked, err := st.TrackedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	if opts.Prune {
		present := make(map[string]struct{}, len(files))
		for _, f := range files {
			present[f.Path] = struct{}{}
		}
		for path := range tracked {
			if _, ok := present[path]; ok || !within(root, path) {
				continue
			}
			if err := st.DeleteSource(ctx, path); err != nil {
				return nil, fmt.Errorf("pruning %s: %w", path, err)
			}
			result.Removed++
		}
	}

	var toReparse []source.DiscoveredFile
	infos := make(map[string]store.FileInfo)

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		infos[f.Path] = fi

		if cached, ok := tracked[f.Path]; ok && cached == fi {
			result.Unchanged++
		} else {
			toReparse = append(toReparse, f)
		}
	}
	result.Reparsed = len(toReparse)

	if len(toReparse) == 0 {
		return result, nil
	}

	parsed := parseAll(toReparse, result.Unchanged, result.TotalFiles, progressFn)

	var classifier *source.Classifier
	if opts.Classify {
		existing, err := st.LoadEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading entries for classifier: %w", err)
		}
		for _, pr := range parsed {
			existing = append(existing, pr.Entries...)
		}
		classifier = source.TrainClassifier(existing)
	}

	for i, pr := range parsed {
		if pr.Err == nil {
			result.Classified += classifier.Apply(pr.Entries)
		}
		if !result.collect(pr) {
			continue
		}

		if err := st.ReplaceSource(ctx, toReparse[i].Path, pr.Entries, infos[toReparse[i].Path]); err != nil {
			return nil, fmt.Errorf("saving %s: %w", toReparse[i].Path, err)
		}
	}

	return result, nil
}

// within reports whether path is root itself or lies under it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cflow")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cflow")
}

// DBPath returns the full path to the default ledger database.
func DBPath() string {
	return filepath.Join(DataDir(), "ledger.db")
}
