// Where: cmd/refarch/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"context"
	"os"

	"github.com/poruru/refarch-release/internal/ami"
	"github.com/poruru/refarch-release/internal/commands"
	"github.com/poruru/refarch-release/internal/infra/awsclient"
	"github.com/poruru/refarch-release/internal/release"
)

var newFactory = awsclient.NewFactory

// buildDependencies wires the AWS-backed implementations used at runtime.
// Clients are created lazily so dry runs and doc generation need no credentials.
func buildDependencies(ctx context.Context) commands.Dependencies {
	return commands.Dependencies{
		Context: ctx,
		Out:     os.Stdout,
		NewClientFactory: func(ctx context.Context, opts awsclient.Options) (ami.ClientFactory, error) {
			factory, err := newFactory(ctx, opts)
			if err != nil {
				return nil, err
			}
			return factory, nil
		},
		NewUploader: func(ctx context.Context, opts awsclient.Options) (release.Uploader, error) {
			factory, err := newFactory(ctx, opts)
			if err != nil {
				return nil, err
			}
			return factory.ObjectStore(opts.Region), nil
		},
	}
}
