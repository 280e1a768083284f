// Package decl models the type that owns an annotated member: its
// namespace, the chain of enclosing types and the bits needed to reproduce
// a structurally faithful partial declaration header.
package decl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the keyword a type was declared with.
type Kind string

const (
	KindClass        Kind = "class"
	KindStruct       Kind = "struct"
	KindRecord       Kind = "record"
	KindRecordStruct Kind = "record struct"
	KindInterface    Kind = "interface"
)

// Keyword returns the declaration keyword, defaulting to class.
func (k Kind) Keyword() string {
	if k == "" {
		return string(KindClass)
	}
	return string(k)
}

// TypeName is one link in the chain of nested type declarations.
type TypeName struct {
	Name string `json:"name"`
	// Arity is the number of generic type parameters.
	Arity int `json:"arity,omitempty"`
	// TypeParams is the type parameter list as written, e.g. "<TKey, TValue>".
	TypeParams string `json:"type_params,omitempty"`
	Kind       Kind   `json:"kind,omitempty"`
	Static     bool   `json:"static,omitempty"`
}

// MetadataName is the name with a `N arity suffix for generic types.
func (t TypeName) MetadataName() string {
	if t.Arity == 0 {
		return t.Name
	}
	return t.Name + "`" + strconv.Itoa(t.Arity)
}

// Header renders the partial declaration line, without braces.
func (t TypeName) Header() string {
	var b strings.Builder
	if t.Static {
		b.WriteString("static ")
	}
	b.WriteString("partial ")
	b.WriteString(t.Kind.Keyword())
	b.WriteByte(' ')
	b.WriteString(t.Name)
	b.WriteString(t.typeParams())
	return b.String()
}

func (t TypeName) typeParams() string {
	if t.TypeParams != "" {
		return t.TypeParams
	}
	if t.Arity == 0 {
		return ""
	}
	params := make([]string, t.Arity)
	for i := range params {
		params[i] = "T" + strconv.Itoa(i+1)
	}
	if t.Arity == 1 {
		params[0] = "T"
	}
	return "<" + strings.Join(params, ", ") + ">"
}

// Key identifies an owning declaration. It is comparable and stable across
// the partial parts of one type.
type Key string

// Declaration describes an owning type.
type Declaration struct {
	Namespace string     `json:"namespace,omitempty"`
	Chain     []TypeName `json:"chain"`
}

// Key derives the identity of d from namespace, type names and arity.
// Staticness and type parameter spelling do not participate. Nested types
// are joined with '+' so a namespace segment never reads as an outer type.
func (d Declaration) Key() Key {
	return Key(d.qualified())
}

// Name is the innermost type name.
func (d Declaration) Name() string {
	if len(d.Chain) == 0 {
		return ""
	}
	return d.Chain[len(d.Chain)-1].Name
}

// UnitName is the name of the generated unit for d.
func (d Declaration) UnitName() string {
	return d.qualified() + "_UniqueIds"
}

// qualified is the metadata name of d, e.g. "Demo.App.Outer+Box`2".
func (d Declaration) qualified() string {
	names := make([]string, len(d.Chain))
	for i, t := range d.Chain {
		names[i] = t.MetadataName()
	}
	chain := strings.Join(names, "+")
	if d.Namespace == "" {
		return chain
	}
	return d.Namespace + "." + chain
}

func (d Declaration) String() string {
	return d.qualified()
}

// Validate checks that d names at least one type and no link is empty.
// Separator characters are rejected so distinct declarations keep distinct
// keys.
func (d Declaration) Validate() error {
	if len(d.Chain) == 0 {
		return errors.New("declaration has no type name")
	}
	if strings.ContainsAny(d.Namespace, "+`") {
		return fmt.Errorf("declaration namespace %q contains a separator", d.Namespace)
	}
	for i, t := range d.Chain {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("declaration type %d has an empty name", i)
		}
		if strings.ContainsAny(t.Name, ".+`") {
			return fmt.Errorf("declaration type %q contains a separator", t.Name)
		}
		if t.Arity < 0 {
			return fmt.Errorf("declaration type %s has negative arity", t.Name)
		}
	}
	return nil
}

// Merge folds another partial part of the same type into d. A type is
// static when any of its parts says so; the first non-empty type parameter
// spelling and kind win.
func (d Declaration) Merge(other Declaration) Declaration {
	if d.Key() != other.Key() || d.Namespace != other.Namespace || len(d.Chain) != len(other.Chain) {
		return d
	}
	chain := make([]TypeName, len(d.Chain))
	copy(chain, d.Chain)
	for i := range chain {
		o := other.Chain[i]
		chain[i].Static = chain[i].Static || o.Static
		if chain[i].TypeParams == "" {
			chain[i].TypeParams = o.TypeParams
		}
		if chain[i].Kind == "" {
			chain[i].Kind = o.Kind
		}
	}
	return Declaration{Namespace: d.Namespace, Chain: chain}
}
