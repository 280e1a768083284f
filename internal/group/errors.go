package group

import (
	"fmt"

	"github.com/praefixum/praefixum/internal/decl"
	"github.com/praefixum/praefixum/internal/site"
)

// DuplicateError reports two distinct sites that would produce the same
// constant in the same declaration, e.g. annotated overloads sharing a
// parameter name.
type DuplicateError struct {
	Key       decl.Key
	Member    string
	Parameter string
	First     site.Site
	Second    site.Site
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: constant %s_%s_Id is produced by both %s and %s",
		e.Key, e.Member, e.Parameter, e.First.Coordinates, e.Second.Coordinates)
}
