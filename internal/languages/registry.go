package languages

import "github.com/praefixum/praefixum/internal/parser"

// NewDefaultRegistry creates a registry with all supported language parsers.
// ns is the namespace the UniqueId attribute is declared in.
func NewDefaultRegistry(ns string) *parser.Registry {
	r := parser.NewRegistry()

	r.Register(NewCSharpParser(ns))

	return r
}
