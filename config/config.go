// Package config loads the database connection configuration.
//
// Values are read, lowest precedence first, from built-in defaults, an
// optional YAML file, DB_* environment variables, command line flags and
// explicit overrides:
//
//	DB_TYPE      type       sqlite, mysql or mariadb
//	DB_FILENAME  filename   database file of the sqlite backend
//	DB_HOST      host       server address of the mysql backend
//	DB_USER      user
//	DB_PASSWORD  password
//	DB_DATABASE  database
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/syssam/frank"
	"github.com/syssam/frank/dialect"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "DB_"

// DefaultMySQLPort is appended to hosts given without a port.
const DefaultMySQLPort = "3306"

// Config holds the connection parameters of one database.
type Config struct {
	Type     dialect.Backend `koanf:"type"`
	Filename string          `koanf:"filename"`
	Host     string          `koanf:"host"`
	User     string          `koanf:"user"`
	Password string          `koanf:"password"`
	Database string          `koanf:"database"`
}

type loader struct {
	file      string
	flags     *pflag.FlagSet
	overrides map[string]any
}

// Option configures Load.
type Option func(*loader)

// WithFile reads the YAML file at path. A missing file is an error.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = path
	}
}

// WithFlags reads the changed flags of fs. Flags are named after the keys
// of the configuration, optionally prefixed with "db-".
func WithFlags(fs *pflag.FlagSet) Option {
	return func(l *loader) {
		l.flags = fs
	}
}

// WithOverrides sets values taking precedence over every other source.
func WithOverrides(values map[string]any) Option {
	return func(l *loader) {
		l.overrides = values
	}
}

// Load reads and validates the configuration.
func Load(opts ...Option) (*Config, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"host": "localhost",
	}, "."), nil); err != nil {
		return nil, frank.WrapConfigurationError(err, "load defaults")
	}

	// 2. Config file
	if l.file != "" {
		if err := k.Load(file.Provider(l.file), yaml.Parser()); err != nil {
			return nil, frank.WrapConfigurationError(err, "read config file %s", l.file)
		}
	}

	// 3. Environment: DB_DATABASE -> database
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, frank.WrapConfigurationError(err, "load environment")
	}

	// 4. Flags, only those explicitly set
	if l.flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(l.flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.TrimPrefix(f.Name, "db-"), posflag.FlagVal(l.flags, f)
		}), nil); err != nil {
			return nil, frank.WrapConfigurationError(err, "load flags")
		}
	}

	// 5. Overrides
	if len(l.overrides) > 0 {
		if err := k.Load(confmap.Provider(l.overrides, "."), nil); err != nil {
			return nil, frank.WrapConfigurationError(err, "load overrides")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, frank.WrapConfigurationError(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes the backend and checks that every parameter it
// requires is set.
func (c *Config) Validate() error {
	b, err := dialect.ParseBackend(string(c.Type))
	if err != nil {
		return err
	}
	c.Type = b
	var missing []string
	switch b {
	case dialect.SQLite:
		if c.Filename == "" {
			missing = append(missing, EnvPrefix+"FILENAME")
		}
	case dialect.MySQL:
		for _, p := range []struct{ key, val string }{
			{"HOST", c.Host},
			{"USER", c.User},
			{"PASSWORD", c.Password},
			{"DATABASE", c.Database},
		} {
			if p.val == "" {
				missing = append(missing, EnvPrefix+p.key)
			}
		}
	}
	if len(missing) > 0 {
		return frank.NewConfigurationError("%s backend requires %s", b, strings.Join(missing, ", "))
	}
	return nil
}

// DSN returns the data source name of the configured backend.
func (c *Config) DSN() string {
	if c.Type == dialect.SQLite {
		return "file:" + c.Filename + "?_pragma=foreign_keys(1)&_time_format=sqlite"
	}
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = c.addr()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

func (c *Config) addr() string {
	if _, _, err := net.SplitHostPort(c.Host); err == nil {
		return c.Host
	}
	return net.JoinHostPort(c.Host, DefaultMySQLPort)
}

// String returns a description of the configuration with the password
// masked.
func (c *Config) String() string {
	if c.Type == dialect.SQLite {
		return fmt.Sprintf("sqlite:%s", c.Filename)
	}
	return fmt.Sprintf("%s://%s:***@%s/%s", c.Type, c.User, c.addr(), c.Database)
}
