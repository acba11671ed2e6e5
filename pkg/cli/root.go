// Package cli wires configuration, the LLM client and the pipeline into the
// sqlchat commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource/postgres"
	"github.com/Akul0725/sqlchat/pkg/config"
	"github.com/Akul0725/sqlchat/pkg/llm"
	"github.com/Akul0725/sqlchat/pkg/logging"
	"github.com/Akul0725/sqlchat/pkg/pipeline"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	llm      llm.LLMClient
	pipeline *pipeline.Pipeline
}

// options lets tests replace the LLM client construction.
type options struct {
	newLLMClient func(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (llm.LLMClient, error)
	stdout       io.Writer
	stderr       io.Writer
}

func defaultOptions() options {
	return options{
		newLLMClient: llm.NewClientFromConfig,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	verbose    bool
}

// Execute runs the sqlchat command line.
func Execute(version string) error {
	return newRootCommand(version, defaultOptions()).Execute()
}

func newRootCommand(version string, opts options) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "sqlchat",
		Short: "Ask questions about a PostgreSQL database in plain language",
		Long: `sqlchat answers natural-language questions about a PostgreSQL database.

Each question runs a fixed pipeline: the schema is read, the model writes one
SQL statement, the statement is executed, and the model explains the result.
Failures along the way are explained instead of returned raw.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.stdout)
	root.SetErr(opts.stderr)

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newServeCommand(version, flags, opts),
		newAskCommand(version, flags, opts),
		newVersionCommand(version),
	)
	return root
}

// newApp loads configuration and builds the pipeline.
func newApp(ctx context.Context, version string, flags *rootFlags, opts options) (*app, error) {
	cfg, err := config.Load(version, flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if flags.verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(level, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := opts.newLLMClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(
		postgres.NewSchemaInspector(cfg.Pipeline.SampleRows, logger),
		postgres.NewQueryRunner(cfg.Pipeline.MaxResultRows, logger),
		client,
		logger,
	)

	return &app{cfg: cfg, logger: logger, llm: client, pipeline: p}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
