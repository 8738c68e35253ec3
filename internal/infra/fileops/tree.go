// Where: internal/infra/fileops/tree.go
// What: In-memory file tree and its writer.
// Why: Release output is assembled first and written to disk in one pass.
package fileops

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/poruru/refarch-release/internal/infra/ui"
)

// Tree is an ordered set of slash-separated relative paths and their content.
type Tree struct {
	paths   []string
	content map[string]string
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{content: map[string]string{}}
}

// Add stores content at rel, replacing an earlier entry with the same path.
func (t *Tree) Add(rel, content string) error {
	clean := path.Clean(strings.ReplaceAll(strings.TrimSpace(rel), "\\", "/"))
	if clean == "." || clean == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("invalid tree path: %q", rel)
	}
	if _, ok := t.content[clean]; !ok {
		t.paths = append(t.paths, clean)
	}
	t.content[clean] = content
	return nil
}

// Paths lists entries in insertion order.
func (t *Tree) Paths() []string {
	out := make([]string, len(t.paths))
	copy(out, t.paths)
	return out
}

// Get returns the content stored at rel.
func (t *Tree) Get(rel string) (string, bool) {
	value, ok := t.content[path.Clean(rel)]
	return value, ok
}

// Len reports the number of files.
func (t *Tree) Len() int {
	return len(t.paths)
}

// WriteTree writes every file under base. A failing file is reported and the
// remaining files are still written; the failures are returned joined.
func WriteTree(base string, tree *Tree, out ui.UserInterface) error {
	if tree == nil {
		return nil
	}
	if out == nil {
		out = ui.Discard()
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("resolve output directory %s: %w", base, err)
	}
	if err := ValidateOutputDir(abs); err != nil {
		return err
	}

	out.Info(fmt.Sprintf("Writing files to: %s...", abs))
	var errs []error
	for _, rel := range tree.paths {
		target := filepath.Join(abs, filepath.FromSlash(rel))
		if err := WriteFile(target, tree.content[rel]); err != nil {
			out.Warn(fmt.Sprintf("ERROR: failed to write %s: %v", rel, err))
			errs = append(errs, fmt.Errorf("write %s: %w", rel, err))
			continue
		}
		out.Info(fmt.Sprintf("   Created: %s", rel))
	}
	return errors.Join(errs...)
}
