package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/praefixum/praefixum/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func RunWatch(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadSettings(cmd, rootPath)
	if err != nil {
		return err
	}
	debounce, err := OptionalDurationFlag(cmd, "debounce")
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer logger.Sync() //nolint:errcheck

	ignoreRules, err := scanIgnoreRules(rootPath, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	regenerate := func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			fmt.Fprintf(out, "changed (%d): %s\n", len(changed), SummarizePaths(changed, 8))
		}
		summary, err := Generate(ctx, rootPath, cfg, "", logger)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "generate failed: %v\n", err)
			return err
		}
		return PrintRunSummary(out, *summary, false)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start from a consistent tree before waiting for changes.
	if err := regenerate(ctx, nil); err != nil {
		logger.Warn("initial generate failed", zap.Error(err))
	}

	w, err := watch.New(rootPath, regenerate, watch.Options{
		Ignore:   ignoreRules,
		Debounce: debounce,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "watching %s (ctrl-c to stop)\n", rootPath)
	return w.Run(ctx)
}
