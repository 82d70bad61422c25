// Package corpus finds the source documents under a corpus directory.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// SourceFile is a document found during a corpus scan.
type SourceFile struct {
	Key     string // source key: path relative to the corpus root with forward slashes
	AbsPath string
	Size    int64
	ModTime time.Time
}

// Scanner walks a corpus root looking for files with the given extensions.
type Scanner struct {
	root       string
	extensions []string
}

// NewScanner creates a scanner for root. Extensions are matched case-insensitively
// and include the leading dot.
func NewScanner(root string, extensions []string) *Scanner {
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = strings.ToLower(e)
	}
	return &Scanner{root: root, extensions: exts}
}

// Root returns the corpus root directory.
func (s *Scanner) Root() string {
	return s.root
}

// Matches reports whether path has one of the scanner's extensions and does not
// live under a hidden directory.
func (s *Scanner) Matches(path string) bool {
	if !slices.Contains(s.extensions, strings.ToLower(filepath.Ext(path))) {
		return false
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return false
		}
	}
	return true
}

// Key returns the source key for an absolute path under the root.
func (s *Scanner) Key(path string) (string, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path for %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside corpus root %s", path, s.root)
	}
	return filepath.ToSlash(rel), nil
}

// Scan returns every matching file under the root, sorted by key.
// Hidden directories (such as .git) are skipped.
func (s *Scanner) Scan(ctx context.Context) ([]SourceFile, error) {
	var files []SourceFile

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.Matches(path) {
			return nil
		}

		key, err := s.Key(path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		files = append(files, SourceFile{
			Key:     key,
			AbsPath: path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to scan corpus %s: %w", s.root, err)
	}

	slices.SortFunc(files, func(a, b SourceFile) int { return strings.Compare(a.Key, b.Key) })
	return files, nil
}
