package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/praefixum/praefixum/internal/config"
	"github.com/praefixum/praefixum/internal/emit"
	"github.com/praefixum/praefixum/internal/fileutil"
	"github.com/praefixum/praefixum/internal/generator"
	"github.com/praefixum/praefixum/internal/languages"
	"github.com/praefixum/praefixum/internal/parser"
	"github.com/praefixum/praefixum/internal/site"
	"github.com/praefixum/praefixum/internal/state"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func RunGenerate(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadSettings(cmd, rootPath)
	if err != nil {
		return err
	}
	feed, err := OptionalStringFlag(cmd, "feed")
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer logger.Sync() //nolint:errcheck

	summary, err := Generate(cmd.Context(), rootPath, cfg, feed, logger)
	if err != nil {
		return err
	}
	return PrintRunSummary(cmd.OutOrStdout(), *summary, asJSON)
}

// newScanSource builds the tree-sitter backed source for rootPath.
func newScanSource(rootPath string, cfg *config.Config, logger *zap.Logger) (*parser.DirectorySource, error) {
	ignoreRules, err := scanIgnoreRules(rootPath, cfg)
	if err != nil {
		return nil, err
	}
	return &parser.DirectorySource{
		Registry: languages.NewDefaultRegistry(cfg.Namespace),
		Root:     rootPath,
		Ignore:   ignoreRules,
		Logger:   logger,
	}, nil
}

// Generate writes the units for rootPath into the configured output
// directory, prunes units the previous run wrote that are no longer
// produced and saves the state file. A non-empty feed path replaces the
// source scan with a JSON lines occurrence feed.
func Generate(ctx context.Context, rootPath string, cfg *config.Config, feed string, logger *zap.Logger) (*RunSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	outputDir := cfg.OutputDir(rootPath)

	previous, err := loadStateOrEmpty(outputDir, logger)
	if err != nil {
		return nil, err
	}

	var (
		src     site.Source
		scanned *parser.DirectorySource
		mode    = "scan"
	)
	if feed != "" {
		f, err := os.Open(feed)
		if err != nil {
			return nil, fmt.Errorf("failed to open feed: %w", err)
		}
		defer f.Close()
		src = site.NewJSONLSource(f)
		mode = "feed"
	} else {
		scanned, err = newScanSource(rootPath, cfg, logger)
		if err != nil {
			return nil, err
		}
		src = scanned
	}

	sink := emit.NewDirSink(outputDir)
	report, runErr := generator.Run(ctx, src, sink, generator.Options{
		Workers:    cfg.Workers,
		Duplicates: cfg.Duplicates,
		Logger:     logger,
	})
	if scanned != nil && scanned.Result != nil {
		ReportParseIssues(os.Stderr, scanned.Result.Issues)
	}
	if runErr != nil {
		return nil, runErr
	}

	unitFiles := sink.Files()
	pruned, err := PruneStaleOutputs(previous, outputDir, unitFiles)
	if err != nil {
		return nil, err
	}
	for _, file := range pruned {
		logger.Info("pruned stale unit", zap.String("file", file))
	}

	next := state.NewState()
	summary := &RunSummary{
		Mode:        "generate",
		Source:      mode,
		RootPath:    rootPath,
		OutputDir:   outputDir,
		Sites:       report.Sites,
		Units:       len(report.Units),
		Pruned:      len(pruned),
		UnitFiles:   unitFiles,
		PrunedFiles: pruned,
	}
	if scanned != nil {
		files := scanned.Result.Files
		for _, file := range files {
			next.SetFile(file.Path, file.Hash, file.Annotated())
		}
		hashes := FileHashes(files)
		current := fileutil.ToSet(CollectFilePaths(files))
		summary.Scanned = len(files)
		summary.ChangedFiles = previous.ChangedFiles(hashes)
		summary.DeletedFiles = previous.DeletedFiles(current)
		summary.Changed = len(summary.ChangedFiles)
		summary.Deleted = len(summary.DeletedFiles)
	}

	if err := RecordOutputHashes(next, outputDir, unitFiles); err != nil {
		return nil, fmt.Errorf("failed to hash generated units: %w", err)
	}
	summary.Rewritten = CountRewrittenOutputs(previous.OutputHashes, next.OutputHashes)

	// Without units and without a previous run there is nothing to track,
	// and the output directory is left alone.
	if len(unitFiles) > 0 || len(previous.OutputHashes) > 0 {
		if err := next.Save(outputDir); err != nil {
			return nil, fmt.Errorf("failed to persist state: %w", err)
		}
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}
