// Where: cmd/refarch/main.go
// What: CLI entrypoint.
// Why: Execute refarch commands with configured dependencies.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/poruru/refarch-release/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Run(os.Args[1:], buildDependencies(ctx))
	stop()
	os.Exit(code)
}
