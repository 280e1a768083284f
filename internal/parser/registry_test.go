package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/praefixum/praefixum/internal/decl"
	"github.com/praefixum/praefixum/internal/site"
)

type mockParser struct {
	lang string
	exts []string
}

func (m mockParser) Language() string {
	return m.lang
}

func (m mockParser) Extensions() []string {
	return m.exts
}

func (m mockParser) Parse(filename string, content []byte) (*FileSites, error) {
	if strings.Contains(string(content), "broken") {
		return nil, errors.New("unreadable format argument")
	}
	result := &FileSites{
		Path:     filename,
		Language: m.lang,
		Occurrences: []site.Occurrence{
			{
				Kind:        site.KindParameter,
				Annotated:   true,
				Path:        filename,
				Declaration: decl.Declaration{Chain: []decl.TypeName{{Name: "Mock"}}},
				Member:      "Run",
				Parameter:   "id",
				Line:        1,
				Column:      2,
			},
		},
	}
	if strings.Contains(string(content), "warn") {
		result.Warnings = append(result.Warnings, "annotated parameter outside a type")
	}
	return result, nil
}

func TestRegistryGetParserForFile(t *testing.T) {
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	p, ok := r.GetParserForFile("demo.MOCK")
	if !ok {
		t.Fatalf("expected parser for .MOCK extension")
	}
	if p.Language() != "mock" {
		t.Fatalf("expected language mock, got %s", p.Language())
	}
	if _, ok := r.GetParserForFile("demo.txt"); ok {
		t.Fatalf("did not expect a parser for .txt")
	}
}

func TestParseDirectoryRespectsIgnoreRules(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	mustWriteFile(t, filepath.Join(root, "keep.mock"), "ok")
	mustWriteFile(t, filepath.Join(root, "skip", "ignored.mock"), "x")
	mustWriteFile(t, filepath.Join(root, "skip", "include.mock"), "y")
	mustWriteFile(t, filepath.Join(root, "obj", "Debug", "hidden.mock"), "z")

	result, err := r.ParseDirectory(context.Background(), root, []string{
		"skip/*",
		"!skip/include.mock",
	})
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}

	got := make([]string, 0, len(result.Files))
	for _, file := range result.Files {
		got = append(got, file.Path)
	}
	sort.Strings(got)

	want := []string{"keep.mock", "skip/include.mock"}
	if len(got) != len(want) {
		t.Fatalf("expected %d parsed files, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseDirectoryRewritesOccurrencePaths(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})
	mustWriteFile(t, filepath.Join(root, "src", "a.mock"), "ok")

	result, err := r.ParseDirectory(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}
	occs := result.Occurrences()
	if len(occs) != 1 {
		t.Fatalf("expected one occurrence, got %d", len(occs))
	}
	if occs[0].Path != "src/a.mock" {
		t.Fatalf("expected root-relative slash path, got %q", occs[0].Path)
	}
	if result.Files[0].Hash == "" {
		t.Fatalf("expected file hash to be recorded")
	}
}

func TestDirectorySourceFailsOnParseErrors(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})
	mustWriteFile(t, filepath.Join(root, "good.mock"), "warn")

	src := &DirectorySource{Registry: r, Root: root}
	occs, err := src.Occurrences(context.Background())
	if err != nil {
		t.Fatalf("Occurrences failed: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("expected one occurrence, got %d", len(occs))
	}
	if len(src.Result.Issues) != 1 || src.Result.Issues[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning issue, got %#v", src.Result.Issues)
	}

	mustWriteFile(t, filepath.Join(root, "bad.mock"), "broken")
	if _, err := src.Occurrences(context.Background()); err == nil || !strings.Contains(err.Error(), "bad.mock") {
		t.Fatalf("expected parse error naming bad.mock, got %v", err)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
