package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func RunStatus(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadSettings(cmd, rootPath)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer logger.Sync() //nolint:errcheck

	st, err := loadStateOrEmpty(cfg.OutputDir(rootPath), logger)
	if err != nil {
		return err
	}

	src, err := newScanSource(rootPath, cfg, logger)
	if err != nil {
		return err
	}
	result, err := src.Registry.ParseDirectory(cmd.Context(), rootPath, src.Ignore)
	if err != nil {
		return fmt.Errorf("failed to scan files: %w", err)
	}
	ReportParseIssues(cmd.ErrOrStderr(), result.Issues)

	hashes := FileHashes(result.Files)
	current := make(map[string]bool, len(hashes))
	sites := 0
	for _, file := range result.Files {
		current[file.Path] = true
		sites += file.Annotated()
	}

	changed := st.ChangedFiles(hashes)
	deleted := st.DeletedFiles(current)
	summary := RunSummary{
		Mode:         "status",
		RootPath:     rootPath,
		OutputDir:    cfg.OutputDir(rootPath),
		Scanned:      len(result.Files),
		Sites:        sites,
		Changed:      len(changed),
		Deleted:      len(deleted),
		DurationMS:   time.Since(start).Milliseconds(),
		ChangedFiles: changed,
		DeletedFiles: deleted,
	}

	return PrintRunSummary(cmd.OutOrStdout(), summary, asJSON)
}
