package source

import (
	"os"
	"path/filepath"
	"strings"
)

// ScanDir discovers CSV ledger exports under root. A path to a single file is
// accepted as-is. Files one directory deep take that directory as their
// default project, so exports can be organized per project.
func ScanDir(root string) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		if !isCSV(root) {
			return nil, nil
		}
		return []DiscoveredFile{{Path: root, Name: baseName(root)}}, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isCSV(path) {
			return nil
		}

		df := DiscoveredFile{Path: path, Name: baseName(path)}

		rel, _ := filepath.Rel(root, path)
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) == 2 {
			df.Project = parts[0]
		}

		files = append(files, df)
		return nil
	})

	return files, err
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// CountProjects returns the number of distinct directory projects in files.
func CountProjects(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		if f.Project != "" {
			seen[f.Project] = struct{}{}
		}
	}
	return len(seen)
}
