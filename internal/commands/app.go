// Where: internal/commands/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/poruru/refarch-release/internal/ami"
	"github.com/poruru/refarch-release/internal/infra/awsclient"
	"github.com/poruru/refarch-release/internal/meta"
	"github.com/poruru/refarch-release/internal/release"
	"github.com/poruru/refarch-release/internal/version"
)

// Dependencies holds everything a command needs from the outside world.
// Tests swap the AWS constructors for fakes.
type Dependencies struct {
	Context          context.Context
	Out              io.Writer
	NewClientFactory func(ctx context.Context, opts awsclient.Options) (ami.ClientFactory, error)
	NewUploader      func(ctx context.Context, opts awsclient.Options) (release.Uploader, error)
	Now              func() time.Time
	Sleep            ami.SleepFunc
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	EnvFile    string        `name:"env-file" help:"Path to .env file"`
	Emoji      string        `enum:"auto,always,never" default:"auto" help:"Emoji prefixes in console output (auto,always,never)" env:"REFARCH_EMOJI"`
	NoColor    bool          `name:"no-color" help:"Disable colored output"`
	Distribute DistributeCmd `cmd:"" help:"Copy an image to destination regions and make the copies public"`
	Release    ReleaseCmd    `cmd:"" help:"Generate release repository documents"`
	Config     ConfigCmd     `cmd:"" help:"Manage release.yml"`
	Completion CompletionCmd `cmd:"" help:"Generate shell completion script"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

type (
	VersionCmd struct{}

	// AWSFlags are shared by commands that talk to AWS. Empty values fall back
	// to the SDK default credential chain.
	AWSFlags struct {
		Profile         string `name:"aws-profile" help:"Shared config profile" env:"AWS_PROFILE"`
		AccessKeyID     string `name:"aws-access-key-id" help:"Access key id" env:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey string `name:"aws-secret-access-key" help:"Secret access key" env:"AWS_SECRET_ACCESS_KEY"`
		SessionToken    string `name:"aws-session-token" help:"Session token" env:"AWS_SESSION_TOKEN"`
	}
)

func (f AWSFlags) options(region string) awsclient.Options {
	return awsclient.Options{
		Region:          region,
		Profile:         f.Profile,
		AccessKeyID:     f.AccessKeyID,
		SecretAccessKey: f.SecretAccessKey,
		SessionToken:    f.SessionToken,
	}
}

// Run parses args and dispatches to the matching handler. Returns 0 on
// success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	if deps.Context == nil {
		deps.Context = context.Background()
	}

	if len(args) == 0 {
		return runNoArgs(out)
	}

	// Env files must be loaded before parsing so flag env tags can see them.
	loadEnvFile(args, out)

	cli := CLI{}
	parser, err := newParser(&cli, out)
	if err != nil {
		return exitWithError(out, err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}
	if cli.NoColor {
		color.NoColor = true
	}

	if exitCode, handled := dispatchCommand(ctx.Command(), cli, deps, out); handled {
		return exitCode
	}

	plainUI(out).Warn("unknown command")
	return 1
}

func newParser(cli *CLI, out io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name(meta.AppName),
		kong.Description("Release automation for the reference architecture."),
		kong.Writers(out, out),
	)
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"distribute":      runDistribute,
		"release":         runRelease,
		"config init":     runConfigInit,
		"completion bash": func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionBash(cli, out) },
		"completion zsh":  func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionZsh(cli, out) },
		"completion fish": func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionFish(cli, out) },
		"version":         func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(cli, out) },
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}

	return 1, false
}

// loadEnvFile loads --env-file when given, otherwise ./.env if present.
func loadEnvFile(args []string, out io.Writer) {
	if path := envFileArg(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			plainUI(out).Warn(fmt.Sprintf("Warning: failed to load env file %s: %v", path, err))
		}
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			plainUI(out).Warn(fmt.Sprintf("Warning: failed to load .env: %v", err))
		}
	}
}

// envFileArg extracts the --env-file value without a full parse.
func envFileArg(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			return ""
		}
		if value, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return value
		}
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// runVersion prints the version information of the CLI.
func runVersion(_ CLI, out io.Writer) int {
	plainUI(out).Info(version.GetVersion())
	return 0
}

// runNoArgs prints short usage when the CLI is invoked bare.
func runNoArgs(out io.Writer) int {
	ui := plainUI(out)
	name := meta.AppName
	ui.Info("Usage:")
	ui.Info(fmt.Sprintf("  %s distribute --ami-id <id> --src-region <region> --dest-regions <a,b> --version <v> --flavor <f> [flags]", name))
	ui.Info(fmt.Sprintf("  %s release --target-versions '[\"R2024b\"]' --artifact-path <dir> --s3-bucket-url <url> --dual-repo-url <url> [flags]", name))
	ui.Info("")
	ui.Info(fmt.Sprintf("Try: %s --help", name))
	return 0
}
