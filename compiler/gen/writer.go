package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/frank/schema/meta"
)

// Generate writes the accessor files of the given record types to the
// target directory, rendering files in parallel. It returns the paths of
// the written files in the order of metas.
func Generate(ctx context.Context, metas []*meta.Meta, opts ...Option) ([]string, error) {
	c, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.Target, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	paths := make([]string, len(metas))
	seen := make(map[string]string, len(metas))
	for i, m := range metas {
		paths[i] = filepath.Join(c.Target, fileName(m.Name()))
		if other, ok := seen[paths[i]]; ok {
			return nil, &GenerationError{Type: m.Name(), File: paths[i], Cause: fmt.Errorf("file is also generated for %s", other)}
		}
		seen[paths[i]] = m.Name()
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.Workers)
	for i, m := range metas {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return writeFile(c, m, paths[i])
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeFile(c *Config, m *meta.Meta, path string) error {
	f, err := NewFile(c, m)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return &GenerationError{Type: m.Name(), File: path, Cause: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &GenerationError{Type: m.Name(), File: path, Cause: err}
	}
	return nil
}
