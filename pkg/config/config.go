// Package config loads dsfleet's layered configuration: embedded
// defaults, an optional user config file, DSFLEET_* environment
// variables, and finally programmatic overrides from command flags. Later
// layers win.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/snapshot"
	"github.com/dsfleet/dsfleet/pkg/types"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements the koanf provider for raw bytes.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// OperationConfig is the per-operation section.
type OperationConfig struct {
	// OnError is "continue" or "stop"; empty keeps the operation's
	// declared default.
	OnError string `koanf:"on_error" toml:"on_error"`
}

// Config is the resolved configuration tree.
type Config struct {
	Fleet struct {
		RootCompartment string `koanf:"root_compartment" toml:"root_compartment"`
	} `koanf:"fleet" toml:"fleet"`

	OCI struct {
		Profile    string `koanf:"profile" toml:"profile"`
		ConfigFile string `koanf:"config_file" toml:"config_file"`
	} `koanf:"oci" toml:"oci"`

	Selection struct {
		MaxSnapshotAge string `koanf:"max_snapshot_age" toml:"max_snapshot_age"`
	} `koanf:"selection" toml:"selection"`

	Output struct {
		Format string `koanf:"format" toml:"format"`
	} `koanf:"output" toml:"output"`

	Operations map[string]OperationConfig `koanf:"operations" toml:"operations"`
}

// DefaultPath is where the user config file is looked up when no explicit
// path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "dsfleet", "config.toml")
}

// Load builds the configuration from defaults, the config file at path
// (or DefaultPath when path is empty; a missing default file is fine, a
// missing explicit one is an error), environment variables, and the given
// overrides.
//
// Environment keys map section by double underscore:
// DSFLEET_OCI__PROFILE sets oci.profile,
// DSFLEET_SELECTION__MAX_SNAPSHOT_AGE sets selection.max_snapshot_age.
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "loading built-in defaults failed")
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse,
				"loading config file %s failed", path)
		}
	} else if explicit {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad,
			"config file %s not readable", path)
	}

	if err := k.Load(env.Provider("DSFLEET_", ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading environment overrides failed")
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "applying overrides failed")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "config does not match the expected shape")
	}
	return &cfg, nil
}

// envKey maps DSFLEET_OCI__PROFILE to oci.profile. Single underscores are
// part of key names (max_snapshot_age); doubles separate sections.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "DSFLEET_"))
	return strings.ReplaceAll(s, "__", ".")
}

// MaxSnapshotAge parses the configured freshness bound.
func (c *Config) MaxSnapshotAge() (time.Duration, error) {
	if c.Selection.MaxSnapshotAge == "" {
		return snapshot.DefaultMaxAge, nil
	}
	return snapshot.ParseMaxAge(c.Selection.MaxSnapshotAge)
}

// PolicyFor returns the configured failure-policy override for an
// operation, or empty to keep the operation's declared default.
func (c *Config) PolicyFor(operation string) (types.FailurePolicy, error) {
	op, ok := c.Operations[operation]
	if !ok || op.OnError == "" {
		return "", nil
	}
	switch strings.ToLower(op.OnError) {
	case "continue":
		return types.ContinueOnError, nil
	case "stop":
		return types.StopOnError, nil
	default:
		return "", errors.Newf(errors.ErrConfigParse,
			"operations.%s.on_error must be \"continue\" or \"stop\", got %q",
			operation, op.OnError)
	}
}
