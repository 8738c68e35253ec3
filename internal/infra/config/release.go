// Where: internal/infra/config/release.go
// What: release.yml load/save.
// Why: Keep artifact naming and policy filtering configurable per repository.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

const (
	DefaultTemplateFilename = "aws-template.json"
	DefaultArtifactSuffix   = "-release-template.json"
	DefaultPermissionsDir   = "internal/permissions"

	releaseSchemaURL = "mem://config/release-config.schema.json"
)

//go:embed schema/release-config.schema.json
var releaseSchemaJSON []byte

var (
	releaseSchemaOnce sync.Once
	releaseSchema     *jsonschema.Schema
	releaseSchemaErr  error
)

// ReleaseConfig represents release.yml.
type ReleaseConfig struct {
	Version          int      `yaml:"version"`
	TemplateFilename string   `yaml:"template_filename,omitempty"`
	ArtifactSuffix   string   `yaml:"artifact_suffix,omitempty"`
	PermissionsDir   string   `yaml:"permissions_dir,omitempty"`
	AdminActions     []string `yaml:"admin_actions,omitempty"`
}

// DefaultReleaseConfig returns the built-in settings.
func DefaultReleaseConfig(adminActions []string) ReleaseConfig {
	return ReleaseConfig{
		Version:          1,
		TemplateFilename: DefaultTemplateFilename,
		ArtifactSuffix:   DefaultArtifactSuffix,
		PermissionsDir:   DefaultPermissionsDir,
		AdminActions:     append([]string(nil), adminActions...),
	}
}

// LoadReleaseConfig reads path and fills unset fields from defaults.
// An empty path returns defaults unchanged.
func LoadReleaseConfig(path string, defaults ReleaseConfig) (ReleaseConfig, error) {
	if strings.TrimSpace(path) == "" {
		return defaults, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return ReleaseConfig{}, fmt.Errorf("read release config: %w", err)
	}
	if err := validateReleaseConfig(payload); err != nil {
		return ReleaseConfig{}, fmt.Errorf("validate release config %s: %w", path, err)
	}

	var cfg ReleaseConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return ReleaseConfig{}, fmt.Errorf("decode release config: %w", err)
	}
	return mergeDefaults(cfg, defaults), nil
}

// SaveReleaseConfig writes cfg to path.
func SaveReleaseConfig(path string, cfg ReleaseConfig) error {
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode release config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create release config dir: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write release config: %w", err)
	}
	return nil
}

func mergeDefaults(cfg, defaults ReleaseConfig) ReleaseConfig {
	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}
	if strings.TrimSpace(cfg.TemplateFilename) == "" {
		cfg.TemplateFilename = defaults.TemplateFilename
	}
	if strings.TrimSpace(cfg.ArtifactSuffix) == "" {
		cfg.ArtifactSuffix = defaults.ArtifactSuffix
	}
	if strings.TrimSpace(cfg.PermissionsDir) == "" {
		cfg.PermissionsDir = defaults.PermissionsDir
	}
	if cfg.AdminActions == nil {
		cfg.AdminActions = append([]string(nil), defaults.AdminActions...)
	}
	return cfg
}

func validateReleaseConfig(payload []byte) error {
	sch, err := loadReleaseSchema()
	if err != nil {
		return err
	}
	jsonData, err := sigsyaml.YAMLToJSON(payload)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}
	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if document == nil {
		document = map[string]any{}
	}
	return sch.Validate(document)
}

func loadReleaseSchema() (*jsonschema.Schema, error) {
	releaseSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(releaseSchemaURL, bytes.NewReader(releaseSchemaJSON)); err != nil {
			releaseSchemaErr = err
			return
		}
		releaseSchema, releaseSchemaErr = compiler.Compile(releaseSchemaURL)
	})
	return releaseSchema, releaseSchemaErr
}
