package gen

import (
	"go/token"
	"runtime"
)

// DefaultHeader is the header comment of generated files.
const DefaultHeader = "Code generated by frank. DO NOT EDIT."

// Config holds the configuration of a generation run.
type Config struct {
	// Target is the directory generated files are written to.
	Target string
	// Package is the name of the generated package.
	Package string
	// Header is the comment at the top of every generated file.
	Header string
	// Workers bounds the number of files rendered concurrently.
	Workers int
}

// Option configures code generation.
type Option func(*Config) error

// NewConfig returns the configuration resulting from opts.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Package: "models",
		Header:  DefaultHeader,
		Workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.Target == "" {
		return nil, NewConfigError("Target", nil, "missing target directory")
	}
	return c, nil
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithPackage sets the name of the generated package.
func WithPackage(name string) Option {
	return func(c *Config) error {
		if !token.IsIdentifier(name) {
			return NewConfigError("Package", name, "package name must be a Go identifier")
		}
		c.Package = name
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}
