// Package config is the typed parameter source for a translation run. All
// options arrive through viper (CLI flags, config file, ELF2E32_* env) and
// are unmarshalled here once per invocation.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every option the translation pipeline consumes.
type Config struct {
	// inputs
	ElfInput string `mapstructure:"elfinput"`
	DefInput string `mapstructure:"definput"`

	// outputs
	Output    string `mapstructure:"output"`
	DefOutput string `mapstructure:"defoutput"`
	DSOOutput string `mapstructure:"dsooutput"`
	LinkAs    string `mapstructure:"linkas"`

	// reconciliation modes
	Unfrozen               bool `mapstructure:"unfrozen"`
	IgnoreNonCallable      bool `mapstructure:"ignore-non-callable"`
	CustomDll              bool `mapstructure:"custom-dll"`
	ExcludeUnwantedExports bool `mapstructure:"exclude-unwanted-exports"`
	WarnNewExports         bool `mapstructure:"warn-new-exports"`
	NamedSymLookup         bool `mapstructure:"named-symlookup"`

	// image identity
	UID1 uint32 `mapstructure:"uid1"`
	UID2 uint32 `mapstructure:"uid2"`
	UID3 uint32 `mapstructure:"uid3"`
}

func (c *Config) verify() error {
	if c.ElfInput == "" {
		return fmt.Errorf("config: --elfinput is required")
	}
	return nil
}

// LoadConfig unmarshals the bound viper state into a verified Config.
func LoadConfig() (*Config, error) {
	var c *Config

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}

	if err := c.verify(); err != nil {
		return nil, err
	}

	return c, nil
}
