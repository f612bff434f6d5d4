// Package paths resolves the base directories promion keeps its
// configuration, registry and state in, respecting PROMION_* and XDG
// environment overrides.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	ConfigDir string
	DataDir   string
	StateDir  string
}

// GetPaths returns all base paths respecting environment variables.
func GetPaths() Paths {
	return Paths{
		ConfigDir: getDir("PROMION_CONFIG_HOME", "XDG_CONFIG_HOME", ".config", "promion"),
		DataDir:   getDir("PROMION_DATA_HOME", "XDG_DATA_HOME", ".local/share", "promion"),
		StateDir:  getDir("PROMION_STATE_HOME", "XDG_STATE_HOME", ".local/state", "promion"),
	}
}

func getDir(promionEnv, xdgEnv, defaultBase, appName string) string {
	// 1. Check promion-specific env
	if dir := os.Getenv(promionEnv); dir != "" {
		return dir
	}

	// 2. Check XDG env
	if xdgBase := os.Getenv(xdgEnv); xdgBase != "" {
		return filepath.Join(xdgBase, appName)
	}

	// 3. Use default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultBase, appName)
}

// GetRegistryPath returns the path to the project registry database.
func GetRegistryPath() string {
	if path := os.Getenv("PROMION_REGISTRY_PATH"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().DataDir, "promion.db")
}

// GetConfigPath returns the path to the configuration file.
func GetConfigPath() string {
	if path := os.Getenv("PROMION_CONFIG"); path != "" {
		return path
	}
	// A promion.yaml in the working directory wins over the
	// installed configuration.
	if _, err := os.Stat("promion.yaml"); err == nil {
		return "promion.yaml"
	}
	return filepath.Join(GetPaths().ConfigDir, "config.yaml")
}

// EnsureDirectories creates all necessary directories.
func EnsureDirectories() error {
	paths := GetPaths()
	dirs := []string{
		paths.ConfigDir,
		paths.DataDir,
		paths.StateDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
