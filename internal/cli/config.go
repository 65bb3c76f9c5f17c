package cli

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	kenv "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-modeladmin/pkg/admin/docadmin"
	"github.com/goliatone/go-modeladmin/pkg/admin/gormadmin"
	"github.com/goliatone/go-modeladmin/pkg/admin/sqladmin"
)

// Defaults applied before any config file, environment or flag.
const (
	DefaultConfigFile = "modeladmin.yaml"
	DefaultDriver     = "sqlite"
	DefaultDSN        = "modeladmin.db"
	DefaultPath       = "modeladmin.buntdb"
	DefaultOutput     = "table"
	EnvPrefix         = "MODELADMIN_"
)

// Config is the resolved CLI configuration.
type Config struct {
	Backend string `koanf:"backend"`
	Driver  string `koanf:"driver"`
	DSN     string `koanf:"dsn"`
	Path    string `koanf:"path"`
	PerPage int    `koanf:"per_page"`
	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"`
}

// LoadConfig resolves configuration from defaults, the YAML file, MODELADMIN_
// environment variables and explicitly set flags, in increasing precedence.
// A missing default config file is not an error; a missing explicit one is.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"backend":  sqladmin.BackendName,
		"driver":   DefaultDriver,
		"dsn":      DefaultDSN,
		"path":     DefaultPath,
		"per_page": 20,
		"verbose":  false,
		"output":   DefaultOutput,
	}, "."), nil); err != nil {
		return nil, errors.Wrap(err, "config: load defaults")
	}

	path := cfgFile
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}

	if err := k.Load(kenv.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, "config: load environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(err, "config: load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the backend, driver and output choices.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case sqladmin.BackendName, gormadmin.BackendName:
		if _, err := sqladmin.DialectFor(c.Driver); err != nil {
			return errors.Wrap(err, "config")
		}
		if strings.TrimSpace(c.DSN) == "" {
			return errors.New("config: dsn is required")
		}
	case docadmin.BackendName:
		if strings.TrimSpace(c.Path) == "" {
			return errors.New("config: path is required")
		}
	default:
		return errors.Newf("config: unknown backend %q", c.Backend)
	}
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return errors.Newf("config: unknown output %q", c.Output)
	}
	if c.PerPage < 0 {
		return errors.New("config: per_page must not be negative")
	}
	return nil
}
