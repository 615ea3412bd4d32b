package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = "mdbextract.yaml"

// Config is the content of mdbextract.yaml. Command line flags override it.
type Config struct {
	OutputDir   string `yaml:"output_dir"`
	Driver      string `yaml:"driver"`
	ODBCDriver  string `yaml:"odbc_driver,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

// DefaultConfig is used when no config file is found.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "tsv",
		Driver:    "jet",
		LogLevel:  "info",
	}
}

// FindConfigFile returns the mdbextract.yaml closest to dir, searching dir
// and then its parents. ~/.mdbextract/config.yaml is used when none of them
// has one.
func FindConfigFile(dir string) (string, error) {
	candidates := []string{}
	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		candidates = append(candidates, filepath.Join(d, ConfigFileName))
		if filepath.Dir(d) == d {
			break
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, GlobalConfigPath(home))
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("no %s found above %s", ConfigFileName, dir)
}

// GlobalConfigPath is the per-user config file under home.
func GlobalConfigPath(home string) string {
	return filepath.Join(home, ".mdbextract", "config.yaml")
}

// ReadConfig reads a config file. Keys missing from the file keep their
// default values.
func ReadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %v", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %v", err)
	}
	return config, nil
}

// LoadConfig reads the nearest config file, or returns the defaults when
// there is none.
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting working directory: %v", err)
	}
	configPath, err := FindConfigFile(dir)
	if err != nil {
		return DefaultConfig(), "", nil
	}
	config, err := ReadConfig(configPath)
	if err != nil {
		return nil, "", err
	}
	return config, configPath, nil
}

// WriteConfig writes config as YAML to path.
func WriteConfig(path string, config *Config) error {
	yamlData, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("creating yaml: %v", err)
	}
	if err := os.WriteFile(path, yamlData, 0644); err != nil {
		return fmt.Errorf("writing config file: %v", err)
	}
	return nil
}
