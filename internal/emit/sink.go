package emit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/praefixum/praefixum/internal/fileutil"
)

// Sink accepts generated units.
type Sink interface {
	Accept(ctx context.Context, name, text string) error
}

// DirSink writes each unit to {dir}/{name}.g.cs, leaving files whose
// content is unchanged untouched.
type DirSink struct {
	Dir string

	mu      sync.Mutex
	written []string
	files   []string
}

// NewDirSink returns a sink rooted at dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

// Accept implements Sink.
func (s *DirSink) Accept(ctx context.Context, name, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.Dir, err)
	}
	file := FileName(name)
	changed, err := fileutil.WriteIfChangedTracked(filepath.Join(s.Dir, file), []byte(text))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, file)
	if changed {
		s.written = append(s.written, file)
	}
	return nil
}

// Files returns every file name accepted so far, sorted.
func (s *DirSink) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.files)
}

// Written returns the file names whose content changed on disk, sorted.
func (s *DirSink) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.written)
}

// FileName maps a unit name to the file a DirSink writes.
func FileName(unitName string) string {
	return unitName + FileExtension
}

// MemorySink keeps units in memory.
type MemorySink struct {
	mu    sync.Mutex
	Units []Unit
}

// Accept implements Sink.
func (s *MemorySink) Accept(ctx context.Context, name, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Units = append(s.Units, Unit{Name: name, Text: text})
	return nil
}

// Lookup returns the unit called name.
func (s *MemorySink) Lookup(name string) (Unit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Units {
		if u.Name == name {
			return u, true
		}
	}
	return Unit{}, false
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
