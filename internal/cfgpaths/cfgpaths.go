// Package cfgpaths resolves the well-known config and cache file locations.
// Every path can be redirected through viper (config_dir, cache_dir), which
// also keeps tests away from the user's real directories.
package cfgpaths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	appDirName = "neorg-task-sync"

	configFilename         = "config.yaml"
	configFallbackFilename = "config-fallback.json"
	clientSecretFilename   = "clientsecret.json"
	tokenCacheFilename     = "tokencache.json"
)

// ConfigDir is where the config file and the OAuth client secret live.
func ConfigDir() (string, error) {
	if dir := strings.TrimSpace(viper.GetString("config_dir")); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// CacheDir is where tokens and other regenerable state live.
func CacheDir() (string, error) {
	if dir := strings.TrimSpace(viper.GetString("cache_dir")); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

func ConfigFile() (string, error) {
	return inConfigDir(configFilename)
}

// ConfigFallbackFile is a JSON config merged beneath the YAML config,
// kept for setups that predate the YAML file.
func ConfigFallbackFile() (string, error) {
	return inConfigDir(configFallbackFilename)
}

// ClientSecretFile holds the OAuth installed-app client secret JSON.
func ClientSecretFile() (string, error) {
	return inConfigDir(clientSecretFilename)
}

// TokenCacheFile holds the cached OAuth token.
func TokenCacheFile() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokenCacheFilename), nil
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
