package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/praefixum/praefixum/internal/fileutil"
)

type RunSummary struct {
	Mode         string   `json:"mode"`
	Source       string   `json:"source,omitempty"`
	RootPath     string   `json:"root_path"`
	OutputDir    string   `json:"output_dir,omitempty"`
	Scanned      int      `json:"scanned"`
	Sites        int      `json:"sites"`
	Units        int      `json:"units"`
	Rewritten    int      `json:"rewritten"`
	Pruned       int      `json:"pruned"`
	Changed      int      `json:"changed"`
	Deleted      int      `json:"deleted"`
	DurationMS   int64    `json:"duration_ms"`
	UnitFiles    []string `json:"unit_files,omitempty"`
	PrunedFiles  []string `json:"pruned_files,omitempty"`
	ChangedFiles []string `json:"changed_files,omitempty"`
	DeletedFiles []string `json:"deleted_files,omitempty"`
}

type CheckSummary struct {
	Mode        string   `json:"mode"`
	RootPath    string   `json:"root_path"`
	OutputDir   string   `json:"output_dir"`
	Clean       bool     `json:"clean"`
	Units       int      `json:"units"`
	Missing     []string `json:"missing,omitempty"`
	Stale       []string `json:"stale,omitempty"`
	Orphaned    []string `json:"orphaned,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func PrintRunSummary(w io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	if summary.Mode == "generate" {
		fmt.Fprintf(w, "generate complete in %dms\n", summary.DurationMS)
		if summary.OutputDir != "" {
			fmt.Fprintf(w, "output: %s\n", summary.OutputDir)
		}
		fmt.Fprintf(w, "sites: source=%s scanned=%d annotated=%d\n", summary.Source, summary.Scanned, summary.Sites)
		fmt.Fprintf(w, "units: total=%d rewritten=%d pruned=%d\n", summary.Units, summary.Rewritten, summary.Pruned)
		if len(summary.PrunedFiles) > 0 {
			fmt.Fprintf(w, "pruned files (%d): %s\n", len(summary.PrunedFiles), SummarizePaths(summary.PrunedFiles, 8))
		}
		if len(summary.ChangedFiles) > 0 {
			fmt.Fprintf(w, "changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
		}
		return nil
	}

	fmt.Fprintf(w,
		"%s: scanned=%d annotated=%d changed=%d deleted=%d duration=%dms\n",
		summary.Mode,
		summary.Scanned,
		summary.Sites,
		summary.Changed,
		summary.Deleted,
		summary.DurationMS,
	)
	if len(summary.ChangedFiles) > 0 {
		fmt.Fprintf(w, "changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
	}
	if len(summary.DeletedFiles) > 0 {
		fmt.Fprintf(w, "deleted files (%d): %s\n", len(summary.DeletedFiles), SummarizePaths(summary.DeletedFiles, 8))
	}
	return nil
}

func PrintCheckSummary(w io.Writer, summary CheckSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	status := "stale"
	if summary.Clean {
		status = "ok"
	}
	fmt.Fprintf(w, "check: %s (units=%d)\n", status, summary.Units)
	fmt.Fprintf(w, "output: %s\n", summary.OutputDir)
	for _, group := range []struct {
		label string
		files []string
	}{
		{"missing", summary.Missing},
		{"stale", summary.Stale},
		{"orphaned", summary.Orphaned},
	} {
		if len(group.files) > 0 {
			fmt.Fprintf(w, "%s (%d): %s\n", group.label, len(group.files), strings.Join(group.files, ", "))
		}
	}
	for _, suggestion := range summary.Suggestions {
		fmt.Fprintf(w, "next: %s\n", suggestion)
	}
	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
