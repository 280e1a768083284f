package cli

import (
	"fmt"

	"github.com/praefixum/praefixum/internal/config"
	"github.com/praefixum/praefixum/internal/fingerprint"
	"github.com/praefixum/praefixum/internal/group"
	"github.com/spf13/cobra"
)

func RunID(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	cfg, err := config.LoadDir(rootPath)
	if err != nil {
		return err
	}

	var c fingerprint.Coordinates
	if c.Path, err = OptionalStringFlag(cmd, "path"); err != nil {
		return err
	}
	if c.Member, err = OptionalStringFlag(cmd, "member"); err != nil {
		return err
	}
	if c.Parameter, err = OptionalStringFlag(cmd, "param"); err != nil {
		return err
	}
	if c.Line, err = OptionalIntFlag(cmd, "line", 0); err != nil {
		return err
	}
	if c.Column, err = OptionalIntFlag(cmd, "column", 0); err != nil {
		return err
	}
	if c.Line < 0 || c.Column < 0 {
		return fmt.Errorf("--line and --column must not be negative")
	}

	format, err := ParseFormatFlag(cmd, cfg.DefaultFormat)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), group.Identifier(c, format))
	return nil
}
