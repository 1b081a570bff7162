package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/syssam/frank/dialect/sql"
	"github.com/syssam/frank/schema/meta"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the rows of every declared table",
		Example: `  frank dump --schema shop.yaml --db-type sqlite --db-filename shop.db
  frank dump --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDump(cmd, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table|markdown|csv)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "markdown", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runDump(cmd *cobra.Command, format string) error {
	switch format {
	case "table", "markdown", "md", "csv":
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	client, err := cc.Open(cmd)
	if err != nil {
		return err
	}
	dump, err := client.Dump(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to dump tables: %w", err)
	}
	cc.LogStats()
	for _, m := range client.Registry().All() {
		renderTable(cmd.OutOrStdout(), m, dump[m.Table()], format)
	}
	return nil
}

func renderTable(w io.Writer, m *meta.Meta, rows []sql.Row, format string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s (%d rows)", m.Table(), len(rows)))

	cols := m.SelectColumns()
	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i, col := range cols {
			r[i] = cell(row[col])
		}
		t.AppendRow(r)
	}

	switch format {
	case "markdown", "md":
		t.RenderMarkdown()
	case "csv":
		t.RenderCSV()
	default:
		t.Render()
	}
	_, _ = fmt.Fprintln(w)
}

func cell(v any) any {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return v
	}
}
