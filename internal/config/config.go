package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations used across the tool.
type Paths struct {
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
	ComposeFile string `toml:"compose_file"`
	EnvFile     string `toml:"env_file"`
}

// Provision contains settings for the two-stage provisioning flow.
type Provision struct {
	Packages       []string `toml:"packages"`
	LegacyPackages []string `toml:"legacy_packages"`
	ResumeUnit     string   `toml:"resume_unit"`
	DockerPool     string   `toml:"docker_address_pool"`
	StepTimeout    int      `toml:"step_timeout"`
}

// Tailscale contains control-plane API credentials and enrollment settings.
type Tailscale struct {
	APIBaseURL        string   `toml:"api_base_url"`
	Tailnet           string   `toml:"tailnet"`
	OAuthClientID     string   `toml:"oauth_client_id"`
	OAuthClientSecret string   `toml:"oauth_client_secret"`
	KeyExpirySeconds  int      `toml:"key_expiry_seconds"`
	Tags              []string `toml:"tags"`
}

// Classifier contains signal thresholds for deployment profile detection.
type Classifier struct {
	MemoryThresholdMiB int      `toml:"memory_threshold_mib"`
	DevHostPatterns    []string `toml:"dev_host_patterns"`
	LaptopMarker       string   `toml:"laptop_marker"`
}

// Service declares one managed compose service.
type Service struct {
	Name      string   `toml:"name"`
	DependsOn []string `toml:"depends_on"`
	HealthURL string   `toml:"health_url"`
}

// Stack contains the declared service set and lifecycle timing.
type Stack struct {
	Services            []Service `toml:"services"`
	SettleDelaySeconds  int       `toml:"settle_delay_seconds"`
	ProbeTimeoutSeconds int       `toml:"probe_timeout_seconds"`
	ComposeBinary       string    `toml:"compose_binary"`
}

// Media contains host filesystem expectations for the media services.
type Media struct {
	MountPoints []string `toml:"mount_points"`
	UID         int      `toml:"uid"`
	GID         int      `toml:"gid"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Sullivan.
//
// Configuration sections by subsystem:
//   - Paths: state directory, compose file, and env file locations
//   - Provision: package lists and stage-two resume settings
//   - Tailscale: control-plane OAuth credentials and auth-key policy
//   - Classifier: deployment profile detection thresholds
//   - Stack: declared services, dependency edges, and health endpoints
//   - Media: required mount points and ownership
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Provision  Provision  `toml:"provision"`
	Tailscale  Tailscale  `toml:"tailscale"`
	Classifier Classifier `toml:"classifier"`
	Stack      Stack      `toml:"stack"`
	Media      Media      `toml:"media"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sullivan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/sullivan/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sullivan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the tool writes to. Media mount
// points are intentionally excluded: they live on external storage and are
// prepared best-effort by the lifecycle manager instead.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ServiceNames returns the declared service names in configuration order.
func (c *Config) ServiceNames() []string {
	names := make([]string, 0, len(c.Stack.Services))
	for _, svc := range c.Stack.Services {
		names = append(names, svc.Name)
	}
	return names
}

// ResumeTokenPath returns the location of the stage-two resume token.
func (c *Config) ResumeTokenPath() string {
	return filepath.Join(c.Paths.StateDir, "resume-token.json")
}

// JournalPath returns the location of the provisioning journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "provision.db")
}

// LockPath returns the advisory lock file guarding mutating operations.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "sullivan.lock")
}

// MediaRoot returns the directory the media mount points live under. Env
// synthesis derives MEDIA_ROOT and DOWNLOADS_ROOT from it.
func (c *Config) MediaRoot() string {
	if len(c.Media.MountPoints) > 0 {
		return filepath.Dir(c.Media.MountPoints[0])
	}
	return "/srv/media"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
