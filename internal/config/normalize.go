package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeClassifier(); err != nil {
		return err
	}
	c.normalizeTailscale()
	c.normalizeStack()
	c.normalizeProvision()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ComposeFile, err = expandPath(c.Paths.ComposeFile); err != nil {
		return fmt.Errorf("paths.compose_file: %w", err)
	}
	if c.Paths.EnvFile, err = expandPath(c.Paths.EnvFile); err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeClassifier() error {
	if c.Classifier.MemoryThresholdMiB <= 0 {
		c.Classifier.MemoryThresholdMiB = defaultMemoryThresholdMiB
	}
	if strings.TrimSpace(c.Classifier.LaptopMarker) != "" {
		expanded, err := expandPath(c.Classifier.LaptopMarker)
		if err != nil {
			return fmt.Errorf("classifier.laptop_marker: %w", err)
		}
		c.Classifier.LaptopMarker = expanded
	}
	return nil
}

func (c *Config) normalizeTailscale() {
	c.Tailscale.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Tailscale.APIBaseURL), "/")
	if c.Tailscale.APIBaseURL == "" {
		c.Tailscale.APIBaseURL = defaultTailscaleAPIBaseURL
	}
	if strings.TrimSpace(c.Tailscale.Tailnet) == "" {
		c.Tailscale.Tailnet = defaultTailnet
	}
	if c.Tailscale.KeyExpirySeconds <= 0 {
		c.Tailscale.KeyExpirySeconds = defaultKeyExpirySeconds
	}
}

func (c *Config) normalizeStack() {
	if c.Stack.SettleDelaySeconds <= 0 {
		c.Stack.SettleDelaySeconds = defaultSettleDelaySeconds
	}
	if c.Stack.ProbeTimeoutSeconds <= 0 {
		c.Stack.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
	if strings.TrimSpace(c.Stack.ComposeBinary) == "" {
		c.Stack.ComposeBinary = defaultComposeBinary
	}
	for i := range c.Stack.Services {
		c.Stack.Services[i].Name = strings.TrimSpace(c.Stack.Services[i].Name)
		c.Stack.Services[i].HealthURL = strings.TrimSpace(c.Stack.Services[i].HealthURL)
	}
}

func (c *Config) normalizeProvision() {
	if strings.TrimSpace(c.Provision.ResumeUnit) == "" {
		c.Provision.ResumeUnit = defaultResumeUnit
	}
	if c.Provision.StepTimeout <= 0 {
		c.Provision.StepTimeout = defaultStepTimeout
	}
	if strings.TrimSpace(c.Provision.DockerPool) == "" {
		c.Provision.DockerPool = defaultDockerPool
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
