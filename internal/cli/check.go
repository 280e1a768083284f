package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/praefixum/praefixum/internal/emit"
	"github.com/praefixum/praefixum/internal/fileutil"
	"github.com/praefixum/praefixum/internal/generator"
	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned by check when generated units are out of date.
var ErrCheckFailed = errors.New("generated units are out of date")

// unitFilePattern matches files a previous generate may have written.
const unitFilePattern = "*_UniqueIds" + emit.FileExtension

func RunCheck(cmd *cobra.Command, args []string) error {
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

	src, err := newScanSource(rootPath, cfg, logger)
	if err != nil {
		return err
	}
	sink := &emit.MemorySink{}
	_, runErr := generator.Run(cmd.Context(), src, sink, generator.Options{
		Workers:    cfg.Workers,
		Duplicates: cfg.Duplicates,
		Logger:     logger,
	})
	if src.Result != nil {
		ReportParseIssues(cmd.ErrOrStderr(), src.Result.Issues)
	}
	if runErr != nil {
		return runErr
	}

	outputDir := cfg.OutputDir(rootPath)
	summary, err := CompareUnits(outputDir, sink.Units)
	if err != nil {
		return err
	}
	summary.RootPath = rootPath

	if err := PrintCheckSummary(cmd.OutOrStdout(), summary, asJSON); err != nil {
		return err
	}
	if !summary.Clean {
		return ErrCheckFailed
	}
	return nil
}

// CompareUnits compares the expected units with the files in outputDir.
func CompareUnits(outputDir string, units []emit.Unit) (CheckSummary, error) {
	summary := CheckSummary{
		Mode:      "check",
		OutputDir: outputDir,
		Units:     len(units),
	}

	expected := make(map[string]bool, len(units))
	for _, unit := range units {
		file := emit.FileName(unit.Name)
		expected[file] = true

		data, err := os.ReadFile(filepath.Join(outputDir, file))
		if err != nil {
			if os.IsNotExist(err) {
				summary.Missing = append(summary.Missing, file)
				continue
			}
			return summary, fmt.Errorf("failed to read %s: %w", file, err)
		}
		if string(data) != unit.Text {
			summary.Stale = append(summary.Stale, file)
		}
	}

	existing, err := filepath.Glob(filepath.Join(outputDir, unitFilePattern))
	if err != nil {
		return summary, err
	}
	names := make([]string, 0, len(existing))
	for _, path := range existing {
		names = append(names, filepath.Base(path))
	}
	summary.Orphaned = fileutil.Missing(names, expected)

	sort.Strings(summary.Missing)
	sort.Strings(summary.Stale)
	summary.Clean = len(summary.Missing) == 0 && len(summary.Stale) == 0 && len(summary.Orphaned) == 0
	if !summary.Clean {
		summary.Suggestions = append(summary.Suggestions, "run praefixum generate")
	}
	return summary, nil
}
