// Package config handles the promion configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bcfcore/promion/internal/paths"
	"gopkg.in/yaml.v3"
)

// Config represents the promion configuration.
type Config struct {
	Registry           RegistryConfig    `yaml:"registry"`
	Transfer           TransferConfig    `yaml:"transfer"`
	Permissions        PermissionsConfig `yaml:"permissions"`
	Server             ServerConfig      `yaml:"server"`
	ReportingTemplates map[string]string `yaml:"reporting_templates"`
}

// RegistryConfig contains project registry settings.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// TransferConfig contains settings for fetching data with rsync.
type TransferConfig struct {
	Rsync         string   `yaml:"rsync"`          // rsync executable
	BwLimit       int      `yaml:"bwlimit"`        // KB/s; 0 = unlimited
	ExtraIncludes []string `yaml:"extra_includes"` // additional rsync include patterns
}

// PermissionsConfig contains permission and group settings applied to
// fetched data.
type PermissionsConfig struct {
	Mode  string `yaml:"mode"`  // e.g. "g+rwX,o-rwx"
	Group string `yaml:"group"` // group ownership for fetched data
}

// ServerConfig contains HTTP API server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			Path: paths.GetRegistryPath(),
		},
		Transfer: TransferConfig{
			Rsync: "rsync",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		ReportingTemplates: map[string]string{
			"default": "name,id,null,null,user,pi,application,organism,null," +
				"nsamples,samples,null,null,null",
			"bcf": "datestamp,null,user,id,nsamples,null,organism," +
				"application,pi,analysis_dir,null,primary_data",
			"summary": "name,id,datestamp,platform,analysis_dir,null," +
				"user,pi,application,organism,primary_data,comments",
		},
	}
}

// Load loads configuration from a file, starting from the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Registry.Path = expandPath(config.Registry.Path)
	return config, nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Template returns the reporting field template with the given name.
func (c *Config) Template(name string) (string, bool) {
	t, ok := c.ReportingTemplates[name]
	return t, ok
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
