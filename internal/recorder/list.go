package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultOutputPattern matches every file kind the recorder writes.
const DefaultOutputPattern = "**/*.{png,txt,csv,json,parquet}"

// OutputFile describes one file in the output directory.
type OutputFile struct {
	Name    string    `json:"name"` // relative to the output directory
	Kind    string    `json:"kind"` // extension without the dot
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// ListOutputs returns files under dir matching a doublestar pattern,
// newest first. A missing directory yields an empty list.
func ListOutputs(dir, pattern string) ([]OutputFile, error) {
	if pattern == "" {
		pattern = DefaultOutputPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("glob outputs: %w", err)
	}

	files := make([]OutputFile, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(m)))
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, OutputFile{
			Name:    m,
			Kind:    strings.TrimPrefix(filepath.Ext(m), "."),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}
