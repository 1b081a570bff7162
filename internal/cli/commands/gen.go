package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/frank/compiler/gen"
	"github.com/syssam/frank/schema/meta"
)

// NewGenCommand creates the gen command.
func NewGenCommand() *cobra.Command {
	var (
		out     string
		pkg     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate typed Go accessors for the declared record types",
		Long: `Generate one Go file per declared record type. Each file holds a wrapper
around model.Record with typed getters and setters for the fields of the type.`,
		Example: `  frank gen --schema shop.yaml --out internal/models --package models`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			registry := meta.NewRegistry()
			metas := make([]*meta.Meta, 0, len(cc.Schemas))
			for _, s := range cc.Schemas {
				m, err := registry.Of(s)
				if err != nil {
					return err
				}
				metas = append(metas, m)
			}
			opts := []gen.Option{gen.WithTarget(out), gen.WithPackage(pkg)}
			if workers > 0 {
				opts = append(opts, gen.WithWorkers(workers))
			}
			paths, err := gen.Generate(cmd.Context(), metas, opts...)
			if err != nil {
				return err
			}
			for _, p := range paths {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "models", "Output directory")
	cmd.Flags().StringVarP(&pkg, "package", "p", "models", "Package name of the generated files")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of files rendered in parallel (default GOMAXPROCS)")
	return cmd
}
