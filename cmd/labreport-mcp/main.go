package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/ironsheep/labreport-mcp/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		stop()
		logging.Logger(logging.SourceApp).Fatal("labreport-mcp failed", "err", err)
	}
}

// newApp builds the root command. With no subcommand it serves MCP on stdio.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "labreport-mcp",
		Usage:   "Extract lab test records from lab report images",
		Version: Version,
		Description: "Serves the Model Context Protocol over stdin/stdout by default.\n" +
			"Configure it in your MCP client, or use the subcommands to process files directly.",
		Flags:    globalFlags(),
		Before:   setupLogging,
		Action:   serve,
		Commands: commands(),
	}
}
