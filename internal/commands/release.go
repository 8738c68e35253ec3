// Where: internal/commands/release.go
// What: release and config commands.
// Why: Regenerate the release repository from the shipped template artifacts.
package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/poruru/refarch-release/internal/infra/config"
	"github.com/poruru/refarch-release/internal/infra/fileops"
	"github.com/poruru/refarch-release/internal/infra/ui"
	"github.com/poruru/refarch-release/internal/meta"
	"github.com/poruru/refarch-release/internal/release"
)

type (
	// ReleaseCmd renders release documents into the output directory.
	ReleaseCmd struct {
		TargetVersions   string   `name:"target-versions" required:"" help:"JSON list of versions to process" env:"REFARCH_TARGET_VERSIONS"`
		SourcePath       string   `name:"source-path" help:"Template source directory (embedded templates when empty)" env:"REFARCH_SOURCE_PATH"`
		ArtifactPath     string   `name:"artifact-path" required:"" help:"Directory holding <version>-release-template.json artifacts" env:"REFARCH_ARTIFACT_PATH"`
		S3BucketURL      string   `name:"s3-bucket-url" required:"" help:"Base URL of the published templates" env:"REFARCH_S3_BUCKET_URL"`
		DualRepoURL      string   `name:"dual-repo-url" required:"" help:"URL of the sister repository" env:"REFARCH_DUAL_REPO_URL"`
		OutputPath       string   `name:"output-path" default:"." help:"Destination for generated files" env:"REFARCH_OUTPUT_PATH"`
		TemplateFilename string   `name:"template-filename" help:"File name of the template copied into each release folder" env:"REFARCH_TEMPLATE_FILENAME"`
		Config           string   `name:"config" help:"Path to release.yml" env:"REFARCH_CONFIG"`
		UploadBucket     string   `name:"upload-bucket" help:"Upload artifacts to this S3 bucket" env:"REFARCH_UPLOAD_BUCKET"`
		UploadRegion     string   `name:"upload-region" help:"Region of the upload bucket" env:"REFARCH_UPLOAD_REGION"`
		AWS              AWSFlags `embed:""`
	}

	ConfigCmd struct {
		Init ConfigInitCmd `cmd:"" help:"Write a default release.yml"`
	}

	ConfigInitCmd struct {
		Path  string `default:"release.yml" help:"Destination file"`
		Force bool   `help:"Overwrite an existing file"`
	}
)

func runRelease(cli CLI, deps Dependencies, out io.Writer) int {
	cmd := cli.Release
	console := consoleUI(cli, out)

	versions, err := release.ParseTargetVersions(cmd.TargetVersions)
	if err != nil {
		return exitWithError(out, err)
	}
	cfg, err := config.LoadReleaseConfig(cmd.Config, config.DefaultReleaseConfig(release.DefaultAdminActions))
	if err != nil {
		return exitWithError(out, err)
	}
	if name := strings.TrimSpace(cmd.TemplateFilename); name != "" {
		cfg.TemplateFilename = name
	}

	sourcePath := strings.TrimSpace(cmd.SourcePath)
	permissionsDir := cfg.PermissionsDir
	if sourcePath != "" && !filepath.IsAbs(permissionsDir) {
		permissionsDir = filepath.Join(sourcePath, permissionsDir)
	}
	outputDir, err := filepath.Abs(cmd.OutputPath)
	if err != nil {
		return exitWithError(out, fmt.Errorf("resolve output path: %w", err))
	}

	sourceLabel := sourcePath
	if sourceLabel == "" {
		sourceLabel = "(embedded)"
	}
	console.Block("📦", "Release", []ui.KeyValue{
		{Key: "Versions", Value: strings.Join(versions, ", ")},
		{Key: "Source Directory", Value: sourceLabel},
		{Key: "Artifact Directory", Value: cmd.ArtifactPath},
		{Key: "Output Directory", Value: outputDir},
		{Key: "Template Filename", Value: cfg.TemplateFilename},
	})

	renderer, err := release.NewRenderer(sourcePath)
	if err != nil {
		return exitWithError(out, err)
	}
	generator := &release.Generator{Renderer: renderer, UI: console, Now: deps.Now}
	result, err := generator.Generate(release.Options{
		TargetVersions:   versions,
		ArtifactDir:      cmd.ArtifactPath,
		S3BucketURL:      cmd.S3BucketURL,
		DualRepoURL:      cmd.DualRepoURL,
		PermissionsDir:   permissionsDir,
		TemplateFilename: cfg.TemplateFilename,
		ArtifactSuffix:   cfg.ArtifactSuffix,
		AdminActions:     cfg.AdminActions,
	})
	if err != nil {
		return exitWithError(out, err)
	}

	if err := fileops.WriteTree(outputDir, result.Tree, console); err != nil {
		return exitWithError(out, err)
	}

	if bucket := strings.TrimSpace(cmd.UploadBucket); bucket != "" {
		if deps.NewUploader == nil {
			return exitWithError(out, fmt.Errorf("uploader not configured"))
		}
		uploader, err := deps.NewUploader(deps.Context, cmd.AWS.options(cmd.UploadRegion))
		if err != nil {
			return exitWithError(out, err)
		}
		if err := release.Publish(deps.Context, uploader, bucket, result.Artifacts, console); err != nil {
			return exitWithError(out, err)
		}
	}

	console.Success(fmt.Sprintf("Generated %d files for %d releases", result.Tree.Len(), len(result.Artifacts)))
	return 0
}

func runConfigInit(cli CLI, _ Dependencies, out io.Writer) int {
	cmd := cli.Config.Init
	path := strings.TrimSpace(cmd.Path)
	if path == "" {
		path = meta.ReleaseConfigFile
	}
	if fileops.FileExists(path) && !cmd.Force {
		return exitWithError(out, fmt.Errorf("%s already exists (use --force to overwrite)", path))
	}
	if err := config.SaveReleaseConfig(path, config.DefaultReleaseConfig(release.DefaultAdminActions)); err != nil {
		return exitWithError(out, err)
	}
	consoleUI(cli, out).Success(fmt.Sprintf("Wrote %s", path))
	return 0
}
