// Package cli implements the companygraph command tree: resolution and
// decision probes, document extraction, edge cleanup, and the API server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/bootstrap"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/config"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const defaultConfigFile = "./companygraph.yaml"

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand builds the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "companygraph",
		Short:   "Company relationship extraction over SEC filing text",
		Long:    "companygraph resolves company mentions in filing text, decides each\nrelationship claim through a tiered rules/embedding/LLM pipeline, and\nmaintains the resulting edges in the company graph.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./companygraph.yaml, then CGI_* env)")
	pf.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newResolveCommand(opts),
		newDecideCommand(opts),
		newExtractCommand(opts),
		newCleanupCommand(opts),
		newServeCommand(opts),
	)
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return 1
	}
	return 0
}

// loadConfig resolves configuration: explicit flag, default file, then
// environment only.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.ConfigPath != "" {
		return config.Load(o.ConfigPath)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return config.LoadFromEnv()
}

// newLogger builds a console logger on stderr so stdout stays clean for
// command output.
func (o *RootOptions) newLogger() (logging.Logger, error) {
	return logging.NewLogger(logging.Config{
		Level:       o.LogLevel,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
}

// connect wires the full application; callers must Close it.
func (o *RootOptions) connect(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := o.newLogger()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, logger)
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
