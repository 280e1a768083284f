package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/praefixum/praefixum/internal/config"
	"github.com/praefixum/praefixum/internal/group"
	"github.com/praefixum/praefixum/internal/idformat"
	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, fallback bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return fallback, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return fallback, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalIntFlag(cmd *cobra.Command, name string, fallback int) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return fallback, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return fallback, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalDurationFlag(cmd *cobra.Command, name string) (time.Duration, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return 0, nil
	}
	value, err := cmd.Flags().GetDuration(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// ParseFormatFlag reads --format, falling back to the configured default.
func ParseFormatFlag(cmd *cobra.Command, fallback idformat.Format) (idformat.Format, error) {
	raw, err := OptionalStringFlag(cmd, "format")
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return fallback, nil
	}
	return idformat.ParseFormat(raw)
}

// ApplySettingsFlags overrides cfg with the flags the user actually set.
func ApplySettingsFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd == nil {
		return nil
	}
	flags := cmd.Flags()
	if f := flags.Lookup("output"); f != nil && f.Changed {
		cfg.Output = strings.TrimSpace(f.Value.String())
	}
	if f := flags.Lookup("namespace"); f != nil && f.Changed {
		cfg.Namespace = strings.TrimSpace(f.Value.String())
	}
	if f := flags.Lookup("duplicates"); f != nil && f.Changed {
		policy, err := group.ParseDuplicatePolicy(strings.TrimSpace(f.Value.String()))
		if err != nil {
			return err
		}
		cfg.Duplicates = policy
	}
	if f := flags.Lookup("workers"); f != nil && f.Changed {
		workers, err := flags.GetInt("workers")
		if err != nil {
			return fmt.Errorf("failed to read --workers flag: %w", err)
		}
		cfg.Workers = workers
	}
	return cfg.Validate()
}
