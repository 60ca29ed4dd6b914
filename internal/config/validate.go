package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStack(); err != nil {
		return err
	}
	if err := c.validateTailscale(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStack() error {
	if len(c.Stack.Services) == 0 {
		return fmt.Errorf("stack.services: at least one service must be declared")
	}

	seen := make(map[string]struct{}, len(c.Stack.Services))
	for _, svc := range c.Stack.Services {
		if svc.Name == "" {
			return fmt.Errorf("stack.services: service with empty name")
		}
		if _, dup := seen[svc.Name]; dup {
			return fmt.Errorf("stack.services: duplicate service %q", svc.Name)
		}
		seen[svc.Name] = struct{}{}
		if svc.HealthURL != "" {
			if _, err := url.Parse(svc.HealthURL); err != nil {
				return fmt.Errorf("stack.services: service %q health_url: %w", svc.Name, err)
			}
		}
	}

	for _, svc := range c.Stack.Services {
		for _, dep := range svc.DependsOn {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("stack.services: service %q depends on undeclared service %q", svc.Name, dep)
			}
		}
	}
	return nil
}

func (c *Config) validateTailscale() error {
	// Credentials are only required when provisioning; the lifecycle commands
	// run without them. Reject half-configured credentials outright.
	id := strings.TrimSpace(c.Tailscale.OAuthClientID)
	secret := strings.TrimSpace(c.Tailscale.OAuthClientSecret)
	if (id == "") != (secret == "") {
		return fmt.Errorf("tailscale: oauth_client_id and oauth_client_secret must be set together")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
