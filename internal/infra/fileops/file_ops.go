// Where: internal/infra/fileops/file_ops.go
// What: Shared filesystem operations for release output.
// Why: Keep directory validation and file writes consistent across commands.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// WriteFile writes content, creating parent directories first.
func WriteFile(path, content string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// ValidateOutputDir creates path when missing and checks it is a writable directory.
func ValidateOutputDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if err := EnsureDir(path); err != nil {
			return fmt.Errorf("create output directory %s: %w", path, err)
		}
	case err != nil:
		return fmt.Errorf("stat output directory %s: %w", path, err)
	case !info.IsDir():
		return fmt.Errorf("output path exists but is not a directory: %s", path)
	}

	probe, err := os.CreateTemp(path, ".write-check-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", path, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
