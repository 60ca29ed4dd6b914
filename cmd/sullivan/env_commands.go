package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sullivan/internal/envfile"
)

func newShowEnvCommand(ctx *commandContext) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show-env",
		Short: "Show the stack env file with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			file, err := envfile.Load(cfg.Paths.EnvFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !file.Exists() {
				fmt.Fprintf(out, "Env file %s does not exist yet; run `sullivan generate-secrets` or `sullivan start`.\n", cfg.Paths.EnvFile)
				return nil
			}

			rows := make([]statusRow, 0)
			for _, key := range file.Keys() {
				value, _ := file.Get(key)
				display := value
				switch {
				case envfile.IsPlaceholder(value):
					rows = append(rows, warnRow(key, display, "needs value"))
					continue
				case !reveal && isSensitiveKey(key):
					display = maskValue(value)
				}
				rows = append(rows, infoRow(key, display, ""))
			}
			fmt.Fprintln(out, renderStatusTable(
				[]string{"Key", "Value", "Note"},
				rows,
				shouldColorize(out),
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show secret values instead of masking them")
	return cmd
}

func newGenerateSecretsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-secrets",
		Short: "Fill the env file with defaults and generated secrets",
		Long: "Generate-secrets writes missing env keys with defaults and fresh random\n" +
			"values for internal secrets. Existing non-placeholder values are never touched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			file, err := envfile.Load(cfg.Paths.EnvFile)
			if err != nil {
				return err
			}
			pending, err := envfile.Synthesize(file, envfile.StackDefaults(cfg.Media.UID, cfg.Media.GID, cfg.MediaRoot()))
			if err != nil {
				return err
			}
			if err := file.Save(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", cfg.Paths.EnvFile)
			if len(pending) > 0 {
				fmt.Fprintf(out, "Keys still needing manual values: %s\n", strings.Join(pending, ", "))
			}
			return nil
		},
	}
}

var sensitiveKeyMarkers = []string{"PASSWORD", "SECRET", "TOKEN", "KEY"}

func isSensitiveKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range sensitiveKeyMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

func maskValue(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return value[:2] + strings.Repeat("*", 6) + value[len(value)-2:]
}
