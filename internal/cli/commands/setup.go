// Package commands implements the subcommands of the frank CLI.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/frank/compiler/load"
	"github.com/syssam/frank/config"
	"github.com/syssam/frank/dialect/sql"
	"github.com/syssam/frank/model"
)

// Names of the persistent flags of the root command.
const (
	FlagConfig = "config"
	FlagSchema = "schema"
	FlagDebug  = "debug"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Logger  *slog.Logger
	Schemas []*load.Schema
	Debug   bool
	Stats   sql.QueryStats
}

// NewCommandContext loads the schema file named by the --schema flag.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	path, err := cmd.Flags().GetString(FlagSchema)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	schemas, err := load.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return &CommandContext{
		Logger:  slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})),
		Schemas: schemas,
		Debug:   debug,
	}, nil
}

// Open loads the database configuration and returns a client with every
// schema of the context registered.
func (cc *CommandContext) Open(cmd *cobra.Command) (*model.Client, error) {
	opts := []config.Option{config.WithFlags(cmd.Root().PersistentFlags())}
	if path, _ := cmd.Flags().GetString(FlagConfig); path != "" {
		opts = append(opts, config.WithFile(path))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	drvOpts := []sql.Option{sql.WithStats(&cc.Stats), sql.WithSlowQueryLog()}
	if cc.Debug {
		drvOpts = append(drvOpts, sql.WithDebug())
	}
	client, err := model.Open(cfg, model.WithLogger(cc.Logger), model.WithDriverOptions(drvOpts...))
	if err != nil {
		return nil, err
	}
	if err := client.Register(load.Interfaces(cc.Schemas)...); err != nil {
		return nil, err
	}
	cc.Logger.Debug("cli: client ready", "config", cfg.String(), "types", len(cc.Schemas))
	return client, nil
}

// LogStats logs the statement counters of the clients opened by Open.
func (cc *CommandContext) LogStats() {
	cc.Logger.Debug("cli: statements", "stats", cc.Stats.Stats().String())
}
