// Package site collects annotated parameter sites from an analysis feed.
package site

import (
	"context"
	"fmt"

	"github.com/praefixum/praefixum/internal/decl"
	"github.com/praefixum/praefixum/internal/fingerprint"
	"github.com/praefixum/praefixum/internal/idformat"
)

// Kind is the syntactic kind of an occurrence in the feed.
type Kind string

const (
	KindParameter Kind = "parameter"
	KindOther     Kind = "other"
)

// Occurrence is one entry of the analysis feed: a position that may carry
// the annotation, already resolved to its owner and coordinates.
type Occurrence struct {
	Kind        Kind             `json:"kind,omitempty"`
	Annotated   bool             `json:"annotated"`
	Path        string           `json:"source_path"`
	Declaration decl.Declaration `json:"owning_declaration"`
	Member      string           `json:"member_name"`
	Parameter   string           `json:"parameter_name"`
	Line        int              `json:"line"`
	Column      int              `json:"column"`
	Format      idformat.Format  `json:"format"`
}

// Source enumerates annotation occurrences with resolved coordinates.
type Source interface {
	Occurrences(ctx context.Context) ([]Occurrence, error)
}

// SliceSource serves a fixed list of occurrences.
type SliceSource []Occurrence

// Occurrences implements Source.
func (s SliceSource) Occurrences(ctx context.Context) ([]Occurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []Occurrence(s), nil
}

// Site is a resolved annotated parameter ready for fingerprinting.
type Site struct {
	Declaration decl.Declaration        `json:"declaration"`
	Key         decl.Key                `json:"key"`
	Member      string                  `json:"member"`
	Parameter   string                  `json:"parameter"`
	Coordinates fingerprint.Coordinates `json:"coordinates"`
	Format      idformat.Format         `json:"format"`
}

// ConstantName is the name of the binding emitted for s.
func (s Site) ConstantName() string {
	return s.Member + "_" + s.Parameter + "_Id"
}

func (s Site) String() string {
	return fmt.Sprintf("%s.%s(%s) at %s", s.Key, s.Member, s.Parameter, s.Coordinates)
}
