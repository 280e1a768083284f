package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/praefixum/praefixum/internal/config"
	"github.com/praefixum/praefixum/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// IgnoreFile holds gitignore-like rules at the scan root.
const IgnoreFile = ".praefixumignore"

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// resolveRoot returns the absolute directory named by the optional path
// argument, defaulting to the working directory.
func resolveRoot(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	rootPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to access path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %q is not a directory", rootPath)
	}
	return rootPath, nil
}

func LoadIgnoreRules(rootPath string) ([]string, error) {
	ignorePath := filepath.Join(rootPath, IgnoreFile)
	f, err := os.Open(ignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", IgnoreFile, err)
	}

	return rules, nil
}

// loadSettings reads praefixum.yaml under rootPath and applies flag
// overrides.
func loadSettings(cmd *cobra.Command, rootPath string) (*config.Config, error) {
	cfg, err := config.LoadDir(rootPath)
	if err != nil {
		return nil, err
	}
	if err := ApplySettingsFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// scanIgnoreRules combines .praefixumignore, the configured rules and the
// output directory when it lies inside the scan root.
func scanIgnoreRules(rootPath string, cfg *config.Config) ([]string, error) {
	rules, err := LoadIgnoreRules(rootPath)
	if err != nil {
		return nil, err
	}
	rules = append(rules, cfg.Ignore...)

	rel, err := filepath.Rel(rootPath, cfg.OutputDir(rootPath))
	if err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		rules = append(rules, "/"+filepath.ToSlash(rel)+"/")
	}
	return rules, nil
}

// newLogger builds the command logger from the persistent --verbose flag.
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := OptionalBoolFlag(cmd, "verbose", false)
	logger, err := logging.New(verbose)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
