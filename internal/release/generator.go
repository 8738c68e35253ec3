// Where: internal/release/generator.go
// What: Release repository generation (top-level docs and per-release folders).
// Why: Keep published docs in sync with the exact template artifacts shipped.
package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poruru/refarch-release/internal/infra/fileops"
	"github.com/poruru/refarch-release/internal/infra/ui"
)

// Output layout of the generated release repository.
const (
	ReadmeFile     = "README.md"
	PermissionFile = "permission.md"
	LicenseFile    = "LICENSE.md"
	ReleasesDir    = "releases"
)

// Options describes one docs generation run.
type Options struct {
	TargetVersions   []string
	ArtifactDir      string
	S3BucketURL      string
	DualRepoURL      string
	PermissionsDir   string
	TemplateFilename string
	ArtifactSuffix   string
	AdminActions     []string
}

// Validate reports missing inputs before any file is read.
func (o Options) Validate() error {
	if len(o.TargetVersions) == 0 {
		return fmt.Errorf("%w: at least one target version is required", ErrInvalidOptions)
	}
	required := []struct {
		name  string
		value string
	}{
		{"artifact path", o.ArtifactDir},
		{"s3 bucket url", o.S3BucketURL},
		{"dual repo url", o.DualRepoURL},
		{"template filename", o.TemplateFilename},
		{"artifact suffix", o.ArtifactSuffix},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidOptions, field.name)
		}
	}
	if strings.ContainsAny(o.TemplateFilename, `/\`) {
		return fmt.Errorf("%w: template filename must not contain a path: %s", ErrInvalidOptions, o.TemplateFilename)
	}
	return nil
}

// Artifact is a deployment template shipped with a release.
type Artifact struct {
	Version string
	Name    string
	Content []byte
}

// ObjectKey is the bucket key the release README links to.
func (a Artifact) ObjectKey() string {
	return a.Version + "/" + a.Name
}

// Result holds the generated tree and the artifacts it includes.
type Result struct {
	Tree      *fileops.Tree
	Artifacts []Artifact
}

// Uploader stores release artifacts.
type Uploader interface {
	UploadObject(ctx context.Context, bucket, key string, body []byte) error
}

// Generator renders the release repository.
type Generator struct {
	Renderer *Renderer
	UI       ui.UserInterface
	Now      func() time.Time
}

// Generate renders all documents into an in-memory tree.
func (g *Generator) Generate(opts Options) (Result, error) {
	if g == nil || g.Renderer == nil {
		return Result{}, fmt.Errorf("release generator not configured")
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	tree := fileops.NewTree()
	if err := g.addTopLevel(tree, opts); err != nil {
		return Result{}, fmt.Errorf("process top-level files: %w", err)
	}
	artifacts, err := g.addReleases(tree, opts)
	if err != nil {
		return Result{}, fmt.Errorf("process release files: %w", err)
	}
	return Result{Tree: tree, Artifacts: artifacts}, nil
}

func (g *Generator) addTopLevel(tree *fileops.Tree, opts Options) error {
	out := g.ui()
	year := g.now().Year()
	dualURL := strings.TrimRight(strings.TrimSpace(opts.DualRepoURL), "/")

	entries, skipped := BuildEntries(opts.TargetVersions, dualURL)
	for _, err := range skipped {
		out.Warn(err.Error())
	}

	readme, err := g.Renderer.Render(TopLevelReadmeTemplate, TopLevelReadmeData{
		Releases:    entries,
		DualURL:     dualURL,
		CurrentYear: year,
	})
	if err != nil {
		return err
	}

	permissions, err := g.renderPermissions(opts)
	if err != nil {
		return err
	}

	license, err := g.Renderer.Render(LicenseTemplate, LicenseData{CurrentYear: year})
	if err != nil {
		return err
	}

	for _, file := range []struct{ path, content string }{
		{ReadmeFile, readme},
		{PermissionFile, permissions},
		{LicenseFile, license},
	} {
		if err := tree.Add(file.path, file.content); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) renderPermissions(opts Options) (string, error) {
	policies, err := LoadPolicies(opts.PermissionsDir, g.ui().Warn)
	if err != nil {
		return "", err
	}
	required := []string{ProvisioningPolicy, ExecutionPolicy, ExecutionPolicyTrust}
	formatted := map[string]string{}
	for _, name := range required {
		policy, ok := policies[name]
		if !ok {
			return "", fmt.Errorf("missing permission policy %s.json in %s", name, opts.PermissionsDir)
		}
		text, err := FormatPolicy(policy)
		if err != nil {
			return "", err
		}
		formatted[name] = text
	}

	restricted, err := RemoveActions(policies[ProvisioningPolicy], opts.AdminActions)
	if err != nil {
		return "", err
	}
	restrictedText, err := FormatPolicy(restricted)
	if err != nil {
		return "", err
	}

	return g.Renderer.Render(PermissionTemplate, PermissionsData{
		FullProvisioningPolicy:       formatted[ProvisioningPolicy],
		RestrictedProvisioningPolicy: restrictedText,
		ExecutionPolicy:              formatted[ExecutionPolicy],
		ExecutionPolicyTrust:         formatted[ExecutionPolicyTrust],
	})
}

func (g *Generator) addReleases(tree *fileops.Tree, opts Options) ([]Artifact, error) {
	out := g.ui()
	bucketURL := strings.TrimRight(strings.TrimSpace(opts.S3BucketURL), "/")
	var artifacts []Artifact

	for _, version := range opts.TargetVersions {
		name := version + opts.ArtifactSuffix
		artifactPath := filepath.Join(opts.ArtifactDir, name)
		content, err := os.ReadFile(artifactPath)
		if os.IsNotExist(err) {
			out.Warn(fmt.Sprintf("Warning: Artifact for %s not found at %s", version, artifactPath))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read artifact %s: %w", artifactPath, err)
		}

		parsed, err := ParseDeploymentTemplate(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", artifactPath, err)
		}

		readme, err := g.Renderer.Render(ReleaseReadmeTemplate, ReleaseReadmeData{
			Version:     version,
			TemplateURL: fmt.Sprintf("%s/%s/%s", bucketURL, version, name),
			Regions:     parsed.Regions,
			Parameters:  parsed.Parameters,
		})
		if err != nil {
			return nil, err
		}

		dir := ReleasesDir + "/" + version
		if err := tree.Add(dir+"/"+ReadmeFile, readme); err != nil {
			return nil, err
		}
		if err := tree.Add(dir+"/"+opts.TemplateFilename, string(content)); err != nil {
			return nil, err
		}
		out.Info(fmt.Sprintf("Updating Release Folder: %s", version))
		artifacts = append(artifacts, Artifact{Version: version, Name: name, Content: content})
	}
	return artifacts, nil
}

// Publish uploads every artifact to bucket under "<version>/<artifact name>".
func Publish(ctx context.Context, uploader Uploader, bucket string, artifacts []Artifact, out ui.UserInterface) error {
	if uploader == nil {
		return fmt.Errorf("uploader not configured")
	}
	if out == nil {
		out = ui.Discard()
	}
	for _, artifact := range artifacts {
		if err := uploader.UploadObject(ctx, bucket, artifact.ObjectKey(), artifact.Content); err != nil {
			return err
		}
		out.Info(fmt.Sprintf("Uploaded s3://%s/%s", bucket, artifact.ObjectKey()))
	}
	return nil
}

func (g *Generator) ui() ui.UserInterface {
	if g.UI == nil {
		return ui.Discard()
	}
	return g.UI
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}
