package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/praefixum/praefixum/internal/fileutil"
	"github.com/praefixum/praefixum/internal/ignore"
	"github.com/praefixum/praefixum/internal/site"
	"go.uber.org/zap"
)

// LanguageParser defines the interface each language must implement
type LanguageParser interface {
	// Language returns the language name (e.g., "csharp")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Parse extracts parameter occurrences from source code
	Parse(filename string, content []byte) (*FileSites, error)
}

// Registry holds all registered language parsers
type Registry struct {
	parsers   map[string]LanguageParser // language name -> parser
	extToLang map[string]string         // extension -> language name
}

// NewRegistry creates a new parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// Register adds a language parser to the registry
func (r *Registry) Register(p LanguageParser) {
	lang := p.Language()
	r.parsers[lang] = p
	for _, ext := range p.Extensions() {
		r.extToLang[ext] = lang
	}
}

// GetParserForFile returns the appropriate parser for a file
func (r *Registry) GetParserForFile(filename string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// SupportedExtensions returns all supported file extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseFile parses a single file and returns its occurrences
func (r *Registry) ParseFile(path string) (*FileSites, error) {
	parser, ok := r.GetParserForFile(path)
	if !ok {
		return nil, nil // unsupported file type, skip silently
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sites, err := parser.Parse(path, content)
	if err != nil {
		return nil, err
	}
	sites.Hash = fileutil.HashBytes(content)

	return sites, nil
}

// ParseDirectory recursively parses all supported files in a directory.
// Occurrence paths are rewritten to slash-separated paths relative to root
// so that fingerprints do not depend on where the tree is checked out.
func (r *Registry) ParseDirectory(ctx context.Context, root string, ignorePaths []string) (*ParseResult, error) {
	ignoreMatcher := ignore.NewMatcher(ignorePaths)

	result := &ParseResult{
		RootPath: root,
		Files:    make([]FileSites, 0),
		Issues:   make([]ParseIssue, 0),
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			relPath := path
			if rel, relErr := filepath.Rel(root, path); relErr == nil {
				relPath = filepath.ToSlash(rel)
			}
			result.Issues = append(result.Issues, ParseIssue{
				File:     relPath,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("walk error: %v", err),
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories and ignored paths
		relPath, _ := filepath.Rel(root, path)
		relPath = filepath.ToSlash(relPath)
		if ignoreMatcher.ShouldIgnore(relPath, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}

		sites, err := r.ParseFile(path)
		if err != nil {
			lang := ""
			if langParser, ok := r.GetParserForFile(path); ok {
				lang = langParser.Language()
			}
			result.Issues = append(result.Issues, ParseIssue{
				File:     relPath,
				Language: lang,
				Severity: SeverityError,
				Message:  err.Error(),
			})
			return nil
		}
		if sites != nil {
			sites.Path = relPath
			for i := range sites.Occurrences {
				sites.Occurrences[i].Path = relPath
			}
			for _, warning := range sites.Warnings {
				result.Issues = append(result.Issues, ParseIssue{
					File:     relPath,
					Language: sites.Language,
					Severity: SeverityWarning,
					Message:  warning,
				})
			}
			result.Files = append(result.Files, *sites)
		}

		return nil
	})

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.Slice(result.Issues, func(i, j int) bool {
		if result.Issues[i].File == result.Issues[j].File {
			return result.Issues[i].Message < result.Issues[j].Message
		}
		return result.Issues[i].File < result.Issues[j].File
	})

	return result, err
}

// DirectorySource scans a source tree and serves its parameter occurrences
// as an annotation feed.
type DirectorySource struct {
	Registry *Registry
	Root     string
	Ignore   []string
	Logger   *zap.Logger

	// Result is the parse result of the last Occurrences call.
	Result *ParseResult
}

var _ site.Source = (*DirectorySource)(nil)

// Occurrences implements site.Source. Files that fail to parse abort the
// scan so that no declaration is generated from a partial view.
func (s *DirectorySource) Occurrences(ctx context.Context) ([]site.Occurrence, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	result, err := s.Registry.ParseDirectory(ctx, s.Root, s.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.Root, err)
	}
	s.Result = result

	annotated := 0
	for _, file := range result.Files {
		annotated += file.Annotated()
	}
	logger.Debug("scanned source tree",
		zap.String("root", s.Root),
		zap.Int("files", len(result.Files)),
		zap.Int("annotated", annotated),
		zap.Int("issues", len(result.Issues)))

	if result.HasErrors() {
		for _, issue := range result.Issues {
			if issue.Severity == SeverityError {
				return nil, fmt.Errorf("failed to parse %s: %s", issue.File, issue.Message)
			}
		}
	}
	return result.Occurrences(), nil
}
