package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/praefixum/praefixum/internal/config"
	"github.com/praefixum/praefixum/internal/emit"
	"github.com/praefixum/praefixum/internal/fileutil"
	"github.com/spf13/cobra"
)

const defaultIgnoreFile = `# praefixum ignore rules (gitignore-like)
# build output, IDE state and generated units are skipped by default
tests/fixtures/
`

func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	force, err := OptionalBoolFlag(cmd, "force", false)
	if err != nil {
		return err
	}

	configPath := filepath.Join(rootPath, config.FileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)

	ignorePath := filepath.Join(rootPath, IgnoreFile)
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		if err := fileutil.WriteIfChanged(ignorePath, []byte(defaultIgnoreFile)); err != nil {
			return fmt.Errorf("failed to write %s: %w", IgnoreFile, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", ignorePath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Add the attribute to your project with: praefixum attribute -o %s\n", emit.AttributeFileName)
	return nil
}
