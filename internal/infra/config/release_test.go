// Where: internal/infra/config/release_test.go
// What: Tests for release.yml load/save.
// Why: Ensure defaults merge and invalid files are rejected early.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testAdminActions = []string{"iam:CreateRole"}

func TestLoadReleaseConfigEmptyPathReturnsDefaults(t *testing.T) {
	defaults := DefaultReleaseConfig(testAdminActions)
	cfg, err := LoadReleaseConfig("", defaults)
	if err != nil {
		t.Fatalf("LoadReleaseConfig: %v", err)
	}
	if cfg.TemplateFilename != DefaultTemplateFilename || cfg.ArtifactSuffix != "-release-template.json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadReleaseConfigMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.yml")
	content := "template_filename: stack.json\nadmin_actions:\n  - iam:PassRole\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadReleaseConfig(path, DefaultReleaseConfig(testAdminActions))
	if err != nil {
		t.Fatalf("LoadReleaseConfig: %v", err)
	}
	if cfg.TemplateFilename != "stack.json" {
		t.Fatalf("unexpected template filename: %s", cfg.TemplateFilename)
	}
	if cfg.ArtifactSuffix != DefaultArtifactSuffix || cfg.PermissionsDir != DefaultPermissionsDir {
		t.Fatalf("defaults not merged: %+v", cfg)
	}
	if strings.Join(cfg.AdminActions, ",") != "iam:PassRole" {
		t.Fatalf("unexpected admin actions: %v", cfg.AdminActions)
	}
}

func TestLoadReleaseConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.yml")
	if err := os.WriteFile(path, []byte("template_file: typo.json\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadReleaseConfig(path, DefaultReleaseConfig(nil)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadReleaseConfigRejectsBadAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.yml")
	if err := os.WriteFile(path, []byte("admin_actions: [\"not an action\"]\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadReleaseConfig(path, DefaultReleaseConfig(nil)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSaveReleaseConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "release.yml")
	want := DefaultReleaseConfig(testAdminActions)
	if err := SaveReleaseConfig(path, want); err != nil {
		t.Fatalf("SaveReleaseConfig: %v", err)
	}
	got, err := LoadReleaseConfig(path, DefaultReleaseConfig(nil))
	if err != nil {
		t.Fatalf("LoadReleaseConfig: %v", err)
	}
	if got.TemplateFilename != want.TemplateFilename || strings.Join(got.AdminActions, ",") != "iam:CreateRole" {
		t.Fatalf("unexpected config: %+v", got)
	}
}
