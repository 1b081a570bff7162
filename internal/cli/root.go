// Package cli provides the command-line interface of frank.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/frank/internal/cli/commands"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "frank",
		Short: "frank - record types over SQLite and MySQL",
		Long: `frank maps record types declared in YAML schema files to tables of a
SQLite or MySQL/MariaDB database.

It creates missing tables, reports tables whose definition drifted from their
declaration, dumps table contents and generates typed Go accessors.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	fs := rootCmd.PersistentFlags()
	fs.String(commands.FlagConfig, "", "YAML file holding the database configuration")
	fs.StringP(commands.FlagSchema, "s", "frank.schema.yaml", "YAML file declaring the record types")
	fs.BoolP(commands.FlagDebug, "d", false, "Log every statement")
	fs.String("db-type", "", "Database backend (sqlite|mysql|mariadb), overrides DB_TYPE")
	fs.String("db-filename", "", "SQLite database file, overrides DB_FILENAME")
	fs.String("db-host", "", "MySQL server address, overrides DB_HOST")
	fs.String("db-user", "", "MySQL user, overrides DB_USER")
	fs.String("db-password", "", "MySQL password, overrides DB_PASSWORD")
	fs.String("db-database", "", "MySQL database, overrides DB_DATABASE")

	_ = rootCmd.RegisterFlagCompletionFunc("db-type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlite", "mysql", "mariadb"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewDumpCommand())
	rootCmd.AddCommand(commands.NewGenCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
