// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/gearing-dashboard/pkg/configprocessor"
	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GEARING_OUTPUT_FORMAT.
const EnvPrefix = "GEARING"

// Configuration holds all configuration for gearing-dashboard.
type Configuration struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Output    OutputConfig    `mapstructure:"output"`
	Sections  []SectionConfig `mapstructure:"sections"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Breakdown BreakdownConfig `mapstructure:"breakdown"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format  string `mapstructure:"format"`  // pretty, csv
	Section string `mapstructure:"section"` // section key printed in csv mode
}

// SectionConfig defines one gearing section. An empty list of sections means
// the built-in dashboard sections.
type SectionConfig struct {
	Key         string   `mapstructure:"key"`
	Title       string   `mapstructure:"title"`
	Kind        string   `mapstructure:"kind"` // sum, single, ratio
	Categories  []string `mapstructure:"categories"`
	Denominator string   `mapstructure:"denominator"`
}

// FilterConfig selects years and months; months are names such as "Jan" or
// "Agu", or numbers 1-12.
type FilterConfig struct {
	Years  []int    `mapstructure:"years"`
	Months []string `mapstructure:"months"`
}

// BreakdownConfig holds the default selections for the dimension breakdown.
type BreakdownConfig struct {
	Periods    []string `mapstructure:"periods"`
	KurPen     []string `mapstructure:"kurpen"`
	Dimensions []string `mapstructure:"dimensions"`
	Tenors     []string `mapstructure:"tenors"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A .env file next to the config is loaded into the
// environment first. A missing config file yields the defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return nil, err
	}

	f, err := os.Open(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return decode(newViper())
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	defer f.Close()

	return LoadConfigurationFromReader(f)
}

// LoadConfigurationFromReader loads YAML configuration from r, applying
// defaults and environment overrides.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.section", "")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("error loading %s, %w", path, err)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var sections []configprocessor.SectionInfo
	for _, s := range c.Sections {
		sections = append(sections, configprocessor.SectionInfo{
			Key:         s.Key,
			Title:       s.Title,
			Kind:        s.Kind,
			Categories:  s.Categories,
			Denominator: s.Denominator,
		})
	}

	processor := configprocessor.NewProcessor()
	return processor.ValidateConfiguration(c.Output.Format, sections, configprocessor.FilterInfo{
		Years:  c.Filter.Years,
		Months: c.Filter.Months,
	})
}
