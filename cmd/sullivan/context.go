package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sullivan/internal/config"
	"sullivan/internal/hostenv"
	"sullivan/internal/journal"
	"sullivan/internal/logging"
	"sullivan/internal/services/compose"
	"sullivan/internal/stack"
)

type commandContext struct {
	configFlag *string
	logFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logFlag:    logFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		var override string
		if c.logFlag != nil {
			override = strings.TrimSpace(*c.logFlag)
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, override, true)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) stackManager() (*stack.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client, err := compose.New(cfg.Stack.ComposeBinary, cfg.Paths.ComposeFile, cfg.Paths.EnvFile)
	if err != nil {
		return nil, err
	}
	return stack.NewManager(cfg, client, logger)
}

func (c *commandContext) openJournal() (*journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return journal.Open(cfg.JournalPath())
}

// profile classifies the host once per invocation; the result only shifts
// advisory defaults.
func (c *commandContext) profile() hostenv.Profile {
	cfg, err := c.ensureConfig()
	if err != nil {
		return hostenv.ProfileLaptop
	}
	marker, _ := config.ExpandPath(cfg.Classifier.LaptopMarker)
	signals := hostenv.SystemSignals{LaptopMarkerPath: marker}
	rules := hostenv.Rules{
		MemoryThresholdBytes: uint64(cfg.Classifier.MemoryThresholdMiB) * 1024 * 1024,
		DevHostPatterns:      cfg.Classifier.DevHostPatterns,
	}
	return hostenv.Classify(signals, rules)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
