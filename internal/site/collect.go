package site

import (
	"context"
	"fmt"
	"strings"

	"github.com/praefixum/praefixum/internal/fingerprint"
)

// MalformedError reports an annotated occurrence that is missing a field
// the pipeline needs. It indicates a bug in the feed, not in user code.
type MalformedError struct {
	Occurrence Occurrence
	Reason     string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed annotation site %s:%d:%d: %s", e.Occurrence.Path, e.Occurrence.Line, e.Occurrence.Column, e.Reason)
}

// Collect reads src and keeps annotated parameters, in feed order.
// An empty result is valid and returns a nil slice.
func Collect(ctx context.Context, src Source) ([]Site, error) {
	occurrences, err := src.Occurrences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation feed: %w", err)
	}

	var sites []Site
	for _, occ := range occurrences {
		if !occ.Annotated || (occ.Kind != "" && occ.Kind != KindParameter) {
			continue
		}
		s, err := resolve(occ)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, nil
}

func resolve(occ Occurrence) (Site, error) {
	malformed := func(reason string) error {
		return &MalformedError{Occurrence: occ, Reason: reason}
	}

	if err := occ.Declaration.Validate(); err != nil {
		return Site{}, malformed(err.Error())
	}
	if strings.TrimSpace(occ.Member) == "" {
		return Site{}, malformed("missing member name")
	}
	if strings.TrimSpace(occ.Parameter) == "" {
		return Site{}, malformed("missing parameter name")
	}
	if occ.Line < 0 || occ.Column < 0 {
		return Site{}, malformed("negative position")
	}
	if !occ.Format.Valid() {
		return Site{}, malformed(fmt.Sprintf("unknown format %s", occ.Format))
	}

	return Site{
		Declaration: occ.Declaration,
		Key:         occ.Declaration.Key(),
		Member:      occ.Member,
		Parameter:   occ.Parameter,
		Coordinates: fingerprint.Coordinates{
			Path:      occ.Path,
			Member:    occ.Member,
			Parameter: occ.Parameter,
			Line:      occ.Line,
			Column:    occ.Column,
		},
		Format: occ.Format,
	}, nil
}
