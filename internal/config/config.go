// Package config loads the engine's environment contract (spec.md §6)
// through a viper.Viper instance: SPELLBOOK_* environment variables, an
// optional YAML file, and live reload of the file via fsnotify so a
// long-running job driver picks up edits without a restart.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "SPELLBOOK"

// Keys, matching spec.md §6 one-for-one.
const (
	KeyMaxCardsInCombo = "max_cards_in_combo"
	KeySolver          = "solver"
	KeyDBDSN           = "db_dsn"
	KeyJobLease        = "job_lease"
)

// Config wraps a *viper.Viper with the engine's defaults and reload hook
// already wired, so callers read typed values instead of touching viper
// directly.
type Config struct {
	v *viper.Viper
}

// Load builds a Config from (in ascending precedence) defaults, an
// optional YAML file at configPath, and SPELLBOOK_* environment
// variables. configPath may be empty, in which case only defaults and
// the environment apply. A non-empty configPath that does not exist is
// not an error: missing config files are normal in the memory:// test
// mode.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyMaxCardsInCombo, 5)
	v.SetDefault(KeySolver, "bnb")
	v.SetDefault(KeyDBDSN, "memory://")
	v.SetDefault(KeyJobLease, 30*time.Minute)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	return &Config{v: v}, nil
}

// WatchAndReload arranges for fsnotify (wired in by viper) to re-read the
// backing YAML file on every write, invoking onChange after each reload.
// A Config loaded without a file path has nothing to watch and this is a
// no-op.
func (c *Config) WatchAndReload(onChange func(fsnotify.Event)) {
	if c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(onChange)
	c.v.WatchConfig()
}

func (c *Config) MaxCardsInCombo() int    { return c.v.GetInt(KeyMaxCardsInCombo) }
func (c *Config) Solver() string          { return c.v.GetString(KeySolver) }
func (c *Config) DBDSN() string           { return c.v.GetString(KeyDBDSN) }
func (c *Config) JobLease() time.Duration { return c.v.GetDuration(KeyJobLease) }
