// Where: internal/release/versions.go
// What: Target version parsing and support-window calculation.
// Why: The top-level README lists each release with its removal date.
package release

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidOptions marks configuration errors detected before rendering.
var ErrInvalidOptions = errors.New("invalid release options")

var versionPattern = regexp.MustCompile(`(?i)(\d{4})([ab])`)

// ParseTargetVersions decodes a JSON list such as ["R2024a","R2024b"].
func ParseTargetVersions(value string) ([]string, error) {
	var versions []string
	if err := json.Unmarshal([]byte(value), &versions); err != nil {
		return nil, fmt.Errorf("%w: target versions must be a JSON list of strings, got %q: %v", ErrInvalidOptions, value, err)
	}
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: target versions list is empty", ErrInvalidOptions)
	}
	return out, nil
}

// RemovalDate returns when a release leaves the support window.
// "a" releases are removed in September two years later, "b" releases in
// March three years later.
func RemovalDate(version string) (month string, year string, err error) {
	match := versionPattern.FindStringSubmatch(version)
	if match == nil {
		return "", "", fmt.Errorf("invalid version format: %s", version)
	}
	base, err := strconv.Atoi(match[1])
	if err != nil {
		return "", "", fmt.Errorf("invalid version year: %s", version)
	}
	switch strings.ToLower(match[2]) {
	case "a":
		return "September", strconv.Itoa(base + 2), nil
	case "b":
		return "March", strconv.Itoa(base + 3), nil
	}
	return "", "", fmt.Errorf("unknown edition in version: %s", version)
}

// Entry is one row of the top-level release table.
type Entry struct {
	Label        string
	Dir          string
	DualURL      string
	RemovalMonth string
	RemovalYear  string
}

// BuildEntries sorts versions ascending and skips the ones RemovalDate rejects.
// Skipped versions are returned so callers can report them.
func BuildEntries(versions []string, dualRepoURL string) ([]Entry, []error) {
	base := strings.TrimRight(strings.TrimSpace(dualRepoURL), "/")
	sorted := append([]string(nil), versions...)
	sort.Strings(sorted)

	entries := make([]Entry, 0, len(sorted))
	var skipped []error
	for _, version := range sorted {
		month, year, err := RemovalDate(version)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("skipping %s: %w", version, err))
			continue
		}
		entries = append(entries, Entry{
			Label:        version,
			Dir:          version,
			DualURL:      fmt.Sprintf("%s/releases/%s", base, version),
			RemovalMonth: month,
			RemovalYear:  year,
		})
	}
	return entries, skipped
}
