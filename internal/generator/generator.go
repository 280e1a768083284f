// Package generator wires the collector, the grouping pipeline and the
// renderer into one run.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/praefixum/praefixum/internal/emit"
	"github.com/praefixum/praefixum/internal/group"
	"github.com/praefixum/praefixum/internal/site"
	"go.uber.org/zap"
)

// Options configures Run.
type Options struct {
	Workers    int
	Duplicates group.DuplicatePolicy
	Logger     *zap.Logger
}

// Report summarizes a run.
type Report struct {
	Sites    int           `json:"sites"`
	Units    []string      `json:"units"`
	Duration time.Duration `json:"duration_ns"`
}

// Run collects annotated sites from src, groups them by owning declaration
// and hands one rendered unit per declaration to sink. When there are no
// annotated sites the sink is never called. Collector and grouping errors
// abort the run before any unit is accepted.
func Run(ctx context.Context, src site.Source, sink emit.Sink, opts Options) (*Report, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sites, err := site.Collect(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to collect sites: %w", err)
	}
	report := &Report{Sites: len(sites), Units: []string{}}
	if len(sites) == 0 {
		logger.Debug("no annotated parameters found")
		report.Duration = time.Since(start)
		return report, nil
	}

	result, err := group.Group(ctx, sites, group.Options{
		Workers:    opts.Workers,
		Duplicates: opts.Duplicates,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to group sites: %w", err)
	}

	for _, key := range result.Keys() {
		bucket, _ := result.Bucket(key)
		unit := emit.RenderUnit(bucket)
		if err := sink.Accept(ctx, unit.Name, unit.Text); err != nil {
			return nil, fmt.Errorf("failed to emit %s: %w", unit.Name, err)
		}
		report.Units = append(report.Units, unit.Name)
		logger.Debug("emitted unit",
			zap.String("unit", unit.Name),
			zap.Int("bindings", bucket.Len()))
	}

	report.Duration = time.Since(start)
	logger.Info("generation complete",
		zap.Int("sites", report.Sites),
		zap.Int("units", len(report.Units)),
		zap.Duration("duration", report.Duration))
	return report, nil
}
