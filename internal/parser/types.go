package parser

import "github.com/praefixum/praefixum/internal/site"

// Severity levels for parse issues.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// FileSites holds every parameter occurrence found in a single file.
type FileSites struct {
	Path        string
	Language    string
	Occurrences []site.Occurrence
	// Warnings are problems local to one occurrence, e.g. an unreadable
	// format argument.
	Warnings []string
	Hash     string // file content hash
}

// Annotated counts the occurrences that carry the annotation.
func (f FileSites) Annotated() int {
	n := 0
	for _, occ := range f.Occurrences {
		if occ.Annotated {
			n++
		}
	}
	return n
}

// ParseIssue captures parser warnings/errors encountered while scanning files.
type ParseIssue struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// ParseResult holds the complete parse result for a source tree
type ParseResult struct {
	Files    []FileSites
	RootPath string
	Issues   []ParseIssue
}

// HasErrors reports whether any issue has error severity.
func (r *ParseResult) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Occurrences flattens the occurrences of every file in path order.
func (r *ParseResult) Occurrences() []site.Occurrence {
	var out []site.Occurrence
	for _, file := range r.Files {
		out = append(out, file.Occurrences...)
	}
	return out
}
