package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ErrDrift is returned by init --strict when a table drifted from its
// declaration.
var ErrDrift = errors.New("table definitions drifted")

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create missing tables and report drifted ones",
		Long: `Compare the table of every declared record type with its declaration.

Missing tables are created. Tables whose live definition differs from the
declaration are reported and left untouched.`,
		Example: `  # Create the tables of a SQLite database
  frank init --schema shop.yaml --db-type sqlite --db-filename shop.db

  # Fail when a MySQL table drifted
  DB_TYPE=mysql DB_USER=root DB_PASSWORD=secret DB_DATABASE=shop frank init --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a table drifted from its declaration")
	return cmd
}

func runInit(cmd *cobra.Command, strict bool) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	client, err := cc.Open(cmd)
	if err != nil {
		return err
	}
	res, err := client.Reconcile(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to reconcile tables: %w", err)
	}
	cc.LogStats()
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Tables:")
	_, _ = fmt.Fprint(out, res.String())
	if created := res.Created(); len(created) > 0 {
		_, _ = fmt.Fprintf(out, "Created: %s\n", strings.Join(created, ", "))
	}
	if strict && res.HasDrift() {
		return fmt.Errorf("%w: %s", ErrDrift, strings.Join(res.Drifted(), ", "))
	}
	return nil
}
