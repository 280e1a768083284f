package site

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// JSONLSource reads occurrences as JSON lines. Records that omit
// "annotated" are treated as annotated, and records that omit "kind" as
// parameters, so a hand-written feed only needs the coordinate fields.
type JSONLSource struct {
	r io.Reader
}

// NewJSONLSource returns a Source reading from r.
func NewJSONLSource(r io.Reader) *JSONLSource {
	return &JSONLSource{r: r}
}

// Occurrences implements Source.
func (s *JSONLSource) Occurrences(ctx context.Context) ([]Occurrence, error) {
	type wireOccurrence struct {
		Occurrence
		Annotated *bool `json:"annotated"`
	}

	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var out []Occurrence
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var wire wireOccurrence
		if err := json.Unmarshal([]byte(line), &wire); err != nil {
			return nil, fmt.Errorf("feed line %d: %w", lineNo, err)
		}
		occ := wire.Occurrence
		occ.Annotated = wire.Annotated == nil || *wire.Annotated
		if occ.Kind == "" {
			occ.Kind = KindParameter
		}
		out = append(out, occ)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return out, nil
}
