package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-simpler.org/env"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	BundleDir    string `yaml:"bundle_dir" env:"APPIMAGE_INSTALLER_BUNDLE_DIR"`       // Managed copies of installed bundles
	IconDir      string `yaml:"icon_dir" env:"APPIMAGE_INSTALLER_ICON_DIR"`           // <name>.png icons
	MenuDir      string `yaml:"menu_dir" env:"APPIMAGE_INSTALLER_MENU_DIR"`           // Application menu entries
	DesktopDir   string `yaml:"desktop_dir" env:"APPIMAGE_INSTALLER_DESKTOP_DIR"`     // Desktop shortcuts
	RegistryPath string `yaml:"registry_path" env:"APPIMAGE_INSTALLER_REGISTRY_PATH"` // installed_apps.json
	LogPath      string `yaml:"log_path" env:"APPIMAGE_INSTALLER_LOG_PATH"`
	LogLevel     string `yaml:"log_level" env:"APPIMAGE_INSTALLER_LOG_LEVEL"`

	SearchIcons           bool          `yaml:"search_icons" env:"APPIMAGE_INSTALLER_SEARCH_ICONS"`
	Providers             []string      `yaml:"providers" env:"APPIMAGE_INSTALLER_PROVIDERS"`
	ExtractTimeout        time.Duration `yaml:"extract_timeout" env:"APPIMAGE_INSTALLER_EXTRACT_TIMEOUT"`
	FetchTimeout          time.Duration `yaml:"fetch_timeout" env:"APPIMAGE_INSTALLER_FETCH_TIMEOUT"`
	MaxCandidates         int           `yaml:"max_candidates" env:"APPIMAGE_INSTALLER_MAX_CANDIDATES"`
	ProviderRatePerMinute int           `yaml:"provider_rate_per_minute" env:"APPIMAGE_INSTALLER_PROVIDER_RATE"`

	FlathubURL   string `yaml:"flathub_url" env:"APPIMAGE_INSTALLER_FLATHUB_URL"`
	GitHubURL    string `yaml:"github_url" env:"APPIMAGE_INSTALLER_GITHUB_URL"`
	WikimediaURL string `yaml:"wikimedia_url" env:"APPIMAGE_INSTALLER_WIKIMEDIA_URL"`

	TrackHistory bool `yaml:"track_history" env:"APPIMAGE_INSTALLER_TRACK_HISTORY"`

	FirstRun bool `yaml:"-"` // Is this the first run?
}

// configFileName is the name of the config file
const configFileName = "config.yaml"

// Known icon providers, in the order they are listed by default.
var knownProviders = []string{"flathub", "github", "wikimedia"}

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "appimages")

	return &Config{
		BundleDir:             dataDir,
		IconDir:               filepath.Join(dataDir, "icons"),
		MenuDir:               filepath.Join(homeDir, ".local", "share", "applications"),
		DesktopDir:            filepath.Join(homeDir, "Desktop"),
		RegistryPath:          filepath.Join(dataDir, "installed_apps.json"),
		LogPath:               filepath.Join(dataDir, "appimage-installer.log"),
		LogLevel:              "info",
		SearchIcons:           true,
		Providers:             append([]string(nil), knownProviders...),
		ExtractTimeout:        10 * time.Second,
		FetchTimeout:          10 * time.Second,
		MaxCandidates:         3,
		ProviderRatePerMinute: 30,
		FlathubURL:            "https://flathub.org",
		GitHubURL:             "https://api.github.com",
		WikimediaURL:          "https://commons.wikimedia.org",
		TrackHistory:          false,
		FirstRun:              true,
	}
}

// ConfigDir returns the directory containing the config file
func ConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "appimage-installer")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// Load loads the configuration from the default path
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from path. A missing file yields the
// defaults with FirstRun set. Environment overrides are applied last.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg.FirstRun = false
	case os.IsNotExist(err):
		cfg.FirstRun = true
	default:
		return nil, err
	}

	if err := env.Load(cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to the default path
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration as YAML to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would break the installer at runtime
func (c *Config) Validate() error {
	required := map[string]string{
		"bundle_dir":    c.BundleDir,
		"icon_dir":      c.IconDir,
		"menu_dir":      c.MenuDir,
		"desktop_dir":   c.DesktopDir,
		"registry_path": c.RegistryPath,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if c.ExtractTimeout <= 0 || c.FetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max_candidates must be at least 1")
	}

	for _, p := range c.Providers {
		if !IsKnownProvider(p) {
			return fmt.Errorf("unknown icon provider %q", p)
		}
	}
	return nil
}

// IsKnownProvider reports whether name is a supported icon provider
func IsKnownProvider(name string) bool {
	for _, p := range knownProviders {
		if p == name {
			return true
		}
	}
	return false
}

// EnsureDirectories creates necessary directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.BundleDir,
		c.IconDir,
		c.MenuDir,
		c.DesktopDir,
		filepath.Dir(c.RegistryPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// HistoryDir returns the directory of the registry audit repository
func (c *Config) HistoryDir() string {
	return filepath.Join(filepath.Dir(c.RegistryPath), ".history")
}

func (c *Config) expandPaths() {
	for _, p := range []*string{&c.BundleDir, &c.IconDir, &c.MenuDir, &c.DesktopDir, &c.RegistryPath, &c.LogPath} {
		*p = ExpandHome(*p)
	}
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}
	return path
}
