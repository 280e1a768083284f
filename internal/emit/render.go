// Package emit renders grouped identifiers into C# partial type
// declarations and hands them to a sink.
package emit

import (
	"strconv"
	"strings"

	"github.com/praefixum/praefixum/internal/group"
)

// FileExtension is appended to unit names by file based sinks.
const FileExtension = ".g.cs"

const indentUnit = "    "

// Unit is one generated source text for one owning declaration.
type Unit struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// RenderUnit renders the constants of b wrapped in its namespace and the
// chain of enclosing partial type declarations.
func RenderUnit(b *group.Bucket) Unit {
	d := b.Declaration

	var sb strings.Builder
	sb.WriteString("// <auto-generated/>\n")
	sb.WriteString("using System;\n\n")

	depth := 0
	line := func(text string) {
		if text != "" {
			sb.WriteString(strings.Repeat(indentUnit, depth))
			sb.WriteString(text)
		}
		sb.WriteByte('\n')
	}

	if d.Namespace != "" {
		line("namespace " + d.Namespace)
		line("{")
		depth++
	}
	for _, t := range d.Chain {
		line(t.Header())
		line("{")
		depth++
	}

	for i, binding := range b.Bindings() {
		if i > 0 {
			line("")
		}
		line("// Auto-generated for parameter " + binding.Parameter + " in method " + binding.Member)
		line("public const string " + binding.Name() + " = " + strconv.Quote(binding.Value) + ";")
	}

	for range d.Chain {
		depth--
		line("}")
	}
	if d.Namespace != "" {
		depth--
		line("}")
	}

	return Unit{Name: d.UnitName(), Text: sb.String()}
}
