package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/praefixum/praefixum/internal/fileutil"
	"github.com/praefixum/praefixum/internal/parser"
	"github.com/praefixum/praefixum/internal/state"
	"go.uber.org/zap"
)

var (
	warningLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
)

func IsCorruptStateError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

// loadStateOrEmpty loads the state in dir, starting over when it is corrupt.
func loadStateOrEmpty(dir string, logger *zap.Logger) (*state.State, error) {
	st, err := state.Load(dir)
	if err == nil {
		return st, nil
	}
	if IsCorruptStateError(err) {
		logger.Warn("corrupt state file, treating every unit as new", zap.Error(err))
		return state.NewState(), nil
	}
	return nil, fmt.Errorf("failed to load state: %w", err)
}

// RecordOutputHashes stores the content hash of every generated file.
func RecordOutputHashes(st *state.State, outputDir string, files []string) error {
	st.OutputHashes = make(map[string]string, len(files))
	for _, file := range files {
		hash, err := fileutil.HashFile(filepath.Join(outputDir, file))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		st.SetOutputHash(file, hash)
	}
	return nil
}

// PruneStaleOutputs removes files generated by the previous run that the
// current run no longer produces.
func PruneStaleOutputs(previous *state.State, outputDir string, current []string) ([]string, error) {
	pruned := make([]string, 0)
	for _, file := range previous.StaleOutputs(current) {
		removed, err := fileutil.RemoveIfExists(filepath.Join(outputDir, file))
		if err != nil {
			return pruned, fmt.Errorf("failed to prune %s: %w", file, err)
		}
		if removed {
			pruned = append(pruned, file)
		}
	}
	return pruned, nil
}

func CountRewrittenOutputs(before, after map[string]string) int {
	rewritten := 0
	seen := make(map[string]bool, len(before)+len(after))
	for file := range before {
		seen[file] = true
	}
	for file := range after {
		seen[file] = true
	}
	for file := range seen {
		if after[file] != "" && before[file] != after[file] {
			rewritten++
		}
	}
	return rewritten
}

func CollectFilePaths(files []parser.FileSites) []string {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, file.Path)
	}
	sort.Strings(paths)
	return paths
}

func FileHashes(files []parser.FileSites) map[string]string {
	hashes := make(map[string]string, len(files))
	for _, file := range files {
		hashes[file.Path] = file.Hash
	}
	return hashes
}

func ReportParseIssues(w io.Writer, issues []parser.ParseIssue) {
	for _, issue := range issues {
		label := warningLabel(issue.Severity)
		if issue.Severity == parser.SeverityError {
			label = errorLabel(issue.Severity)
		}
		if issue.Language != "" {
			fmt.Fprintf(w, "[%s] %s (%s): %s\n", label, issue.File, issue.Language, issue.Message)
			continue
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", label, issue.File, issue.Message)
	}
}
