package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// version is set via ldflags at build time.
// e.g. -ldflags "-X main.version=1.2.3"
var version = "dev"

// newApp creates the CLI application with all flags and commands.
func newApp() *cli.Command {
	return &cli.Command{
		Name:        "balcao",
		Usage:       "Conversational sales assistant for small merchants",
		Version:     version,
		UsageText:   "balcao [global options] command [command options] [arguments...]",
		Description: "Balcão answers merchants' business questions over chat, backed by their sales data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "balcao.json",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory for the local state database",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Verbose logging",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress all output (mutually exclusive with --json)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output in JSON format (mutually exclusive with --quiet)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("quiet") && cmd.Bool("json") {
				return ctx, fmt.Errorf("flags --quiet and --json are mutually exclusive")
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the webhook server",
				Action: cmdServe,
			},
			{
				Name:  "chat",
				Usage: "Chat with the assistant locally",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "merchant",
						Aliases:  []string{"m"},
						Usage:    "Merchant UUID to act as",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Name under which to snapshot the transcript for later inspection",
					},
				},
				Action: cmdChat,
			},
			{
				Name:      "resolve",
				Usage:     "Resolve a relative period phrase to a date range",
				ArgsUsage: "<phrase>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "timezone",
						Usage: "IANA timezone (default: configured tools timezone)",
					},
					&cli.StringFlag{
						Name:  "reference",
						Usage: "Reference date YYYY-MM-DD (default: today)",
					},
				},
				Action: cmdResolve,
			},
			{
				Name:  "pending",
				Usage: "List open sale-amount prompts",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum prompts to show"},
					&cli.BoolFlag{Name: "expire", Usage: "Expire prompts older than 24h before listing"},
				},
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Open a prompt locally, simulating the reminder job",
						ArgsUsage: "<merchant-uuid> <sender>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "context", Usage: "Free-text context stored with the prompt"},
						},
						Action: cmdPendingAdd,
					},
				},
				Action: cmdPending,
			},
			{
				Name:   "init",
				Usage:  "Write a default config file and create the data directory",
				Action: cmdInit,
			},
			{
				Name:   "config",
				Usage:  "Show current configuration",
				Action: cmdConfig,
			},
		},
	}
}
