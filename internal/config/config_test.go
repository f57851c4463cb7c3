package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/gearing-dashboard/pkg/constants"
)

const sampleConfig = `
logging:
  level: debug
  format: json
output:
  format: csv
  section: gearing_kur
sections:
  - key: os_kur
    title: OS Penjaminan KUR
    kind: sum
    categories: ["KUR Gen 1", "KUR Gen 2"]
  - key: gearing_kur
    kind: ratio
    categories: ["KUR Gen 1", "KUR Gen 2"]
    denominator: Ekuitas KUR
filter:
  years: [2023, 2024]
  months: ["Jan", "Agu"]
breakdown:
  kurpen: ["KUR"]
  tenors: ["12", "24"]
`

func TestLoadConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		configPath string
		wantError  bool
		format     string
	}{
		{
			name:       "Existing config file",
			configPath: path,
			format:     constants.OutputFormatCSV,
		},
		{
			name:       "Non-existent config file yields defaults",
			configPath: filepath.Join(dir, "nonexistent.yaml"),
			format:     constants.OutputFormatPretty,
		},
		{
			name:       "Directory instead of file",
			configPath: dir,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfiguration() error = %v", err)
			}
			if config.Output.Format != tt.format {
				t.Errorf("Expected output format %q, got %q", tt.format, config.Output.Format)
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if config.Logging.Level != "debug" || config.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", config.Logging)
	}
	if config.Output.Section != "gearing_kur" {
		t.Errorf("Expected output section gearing_kur, got %q", config.Output.Section)
	}
	if len(config.Sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(config.Sections))
	}
	if config.Sections[1].Denominator != "Ekuitas KUR" || len(config.Sections[1].Categories) != 2 {
		t.Errorf("unexpected ratio section %+v", config.Sections[1])
	}
	if len(config.Filter.Years) != 2 || config.Filter.Years[1] != 2024 {
		t.Errorf("unexpected years %v", config.Filter.Years)
	}
	if len(config.Breakdown.Tenors) != 2 || config.Breakdown.KurPen[0] != "KUR" {
		t.Errorf("unexpected breakdown config %+v", config.Breakdown)
	}
	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfigurationFromReader(strings.NewReader("sections: []\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Logging.Level != "info" || config.Logging.Format != "console" {
		t.Errorf("unexpected default logging %+v", config.Logging)
	}
	if config.Output.Format != constants.OutputFormatPretty {
		t.Errorf("unexpected default output format %q", config.Output.Format)
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv("GEARING_OUTPUT_FORMAT", "csv")
	t.Setenv("GEARING_LOGGING_LEVEL", "warn")

	config, err := LoadConfigurationFromReader(strings.NewReader("output:\n  format: pretty\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Output.Format != "csv" {
		t.Errorf("expected env override csv, got %q", config.Output.Format)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("expected env override warn, got %q", config.Logging.Level)
	}
}

func TestLoadConfigurationDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GEARING_OUTPUT_SECTION=os_kur\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GEARING_OUTPUT_SECTION") })

	config, err := LoadConfiguration(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Section != "os_kur" {
		t.Errorf("expected section from .env, got %q", config.Output.Section)
	}
}

func TestLoadConfigurationInvalidYAML(t *testing.T) {
	if _, err := LoadConfigurationFromReader(strings.NewReader("sections: [unclosed\n")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidateConfiguration(t *testing.T) {
	conf := Configuration{
		Output: OutputConfig{Format: "xml"},
		Sections: []SectionConfig{
			{Key: "gearing", Kind: "ratio", Categories: []string{"KUR Gen 1"}},
		},
		Filter: FilterConfig{Months: []string{"Smarch"}},
	}

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 3 {
		t.Errorf("expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
}
