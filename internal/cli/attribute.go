package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/praefixum/praefixum/internal/emit"
	"github.com/praefixum/praefixum/internal/fileutil"
	"github.com/spf13/cobra"
)

func RunAttribute(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	cfg, err := loadSettings(cmd, rootPath)
	if err != nil {
		return err
	}
	out, err := OptionalStringFlag(cmd, "out")
	if err != nil {
		return err
	}

	source := emit.AttributeSource(cfg.Namespace)
	if out == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), source)
		return err
	}

	if info, err := os.Stat(out); err == nil && info.IsDir() {
		out = filepath.Join(out, emit.AttributeFileName)
	}
	changed, err := fileutil.WriteIfChangedTracked(out, []byte(source))
	if err != nil {
		return fmt.Errorf("failed to write attribute source: %w", err)
	}
	if changed {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", out)
	}
	return nil
}
