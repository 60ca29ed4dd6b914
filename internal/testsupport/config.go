package testsupport

import (
	"path/filepath"
	"testing"

	"sullivan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ComposeFile = filepath.Join(base, "docker-compose.yml")
	cfg.Paths.EnvFile = filepath.Join(base, ".env")
	cfg.Media.MountPoints = []string{
		filepath.Join(base, "media", "movies"),
		filepath.Join(base, "media", "tv"),
	}
	cfg.Classifier.LaptopMarker = filepath.Join(base, "laptop-marker")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithServices replaces the declared service set.
func WithServices(services ...config.Service) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Stack.Services = services
	}
}

// WithOAuth sets tailscale control-plane credentials.
func WithOAuth(clientID, clientSecret string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tailscale.OAuthClientID = clientID
		cfg.Tailscale.OAuthClientSecret = clientSecret
	}
}
