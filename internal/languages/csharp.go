package languages

import (
	"context"
	"fmt"
	"strings"

	"github.com/praefixum/praefixum/internal/decl"
	"github.com/praefixum/praefixum/internal/idformat"
	"github.com/praefixum/praefixum/internal/parser"
	"github.com/praefixum/praefixum/internal/site"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// DefaultAttributeNamespace is the namespace the UniqueId attribute lives in.
const DefaultAttributeNamespace = "Praefixum"

// CSharpParser finds [UniqueId] parameters in C# source files.
type CSharpParser struct {
	parser    *sitter.Parser
	namespace string
}

// NewCSharpParser creates a parser recognising the attribute in namespace
// ns, written with or without the Attribute suffix and namespace qualifier.
func NewCSharpParser(ns string) *CSharpParser {
	if ns == "" {
		ns = DefaultAttributeNamespace
	}
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return &CSharpParser{parser: p, namespace: ns}
}

func (c *CSharpParser) Language() string {
	return "csharp"
}

func (c *CSharpParser) Extensions() []string {
	return []string{".cs"}
}

func (c *CSharpParser) Parse(filename string, content []byte) (*parser.FileSites, error) {
	tree, err := c.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	w := &csharpWalker{
		parser:  c,
		content: content,
		result: &parser.FileSites{
			Path:        filename,
			Language:    "csharp",
			Occurrences: make([]site.Occurrence, 0),
		},
	}
	if err := w.walkChildren(tree.RootNode(), scope{}); err != nil {
		return nil, err
	}
	return w.result, nil
}

// scope is the lexical position of a node: namespace and enclosing types.
type scope struct {
	namespace string
	chain     []decl.TypeName
}

func (s scope) withNamespace(name string) scope {
	ns := name
	if s.namespace != "" {
		ns = s.namespace + "." + name
	}
	return scope{namespace: ns, chain: s.chain}
}

func (s scope) withType(t decl.TypeName) scope {
	chain := make([]decl.TypeName, len(s.chain), len(s.chain)+1)
	copy(chain, s.chain)
	return scope{namespace: s.namespace, chain: append(chain, t)}
}

func (s scope) declaration() decl.Declaration {
	return decl.Declaration{Namespace: s.namespace, Chain: s.chain}
}

type csharpWalker struct {
	parser  *CSharpParser
	content []byte
	result  *parser.FileSites
}

func (w *csharpWalker) text(n *sitter.Node) string {
	return strings.TrimSpace(n.Content(w.content))
}

// walkChildren visits the children of node in order. A file scoped
// namespace applies to every declaration that follows it.
func (w *csharpWalker) walkChildren(node *sitter.Node, sc scope) error {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "file_scoped_namespace_declaration" {
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				sc = sc.withNamespace(w.text(nameNode))
			}
			if err := w.walkChildren(child, sc); err != nil {
				return err
			}
			continue
		}
		if err := w.walk(child, sc); err != nil {
			return err
		}
	}
	return nil
}

func (w *csharpWalker) walk(node *sitter.Node, sc scope) error {
	switch node.Type() {
	case "namespace_declaration":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		return w.walkChildren(bodyOf(node), sc.withNamespace(w.text(nameNode)))

	case "class_declaration", "struct_declaration", "record_declaration",
		"record_struct_declaration", "interface_declaration":
		t, ok := w.typeName(node)
		if !ok {
			return nil
		}
		return w.walkChildren(bodyOf(node), sc.withType(t))

	case "method_declaration", "constructor_declaration", "local_function_statement":
		if err := w.member(node, sc); err != nil {
			return err
		}
		// local functions live in the body
		return w.walkChildren(node, sc)
	}

	return w.walkChildren(node, sc)
}

func bodyOf(node *sitter.Node) *sitter.Node {
	if body := node.ChildByFieldName("body"); body != nil {
		return body
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "declaration_list" {
			return child
		}
	}
	return node
}

func (w *csharpWalker) typeName(node *sitter.Node) (decl.TypeName, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return decl.TypeName{}, false
	}

	t := decl.TypeName{Name: w.text(nameNode)}
	switch node.Type() {
	case "struct_declaration":
		t.Kind = decl.KindStruct
	case "interface_declaration":
		t.Kind = decl.KindInterface
	case "record_struct_declaration":
		t.Kind = decl.KindRecordStruct
	case "record_declaration":
		t.Kind = decl.KindRecord
		for i := 0; i < int(node.ChildCount()); i++ {
			if node.Child(i).Type() == "struct" {
				t.Kind = decl.KindRecordStruct
			}
		}
	default:
		t.Kind = decl.KindClass
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "modifier":
			if w.text(child) == "static" {
				t.Static = true
			}
		case "type_parameter_list":
			t.TypeParams = w.text(child)
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if child.NamedChild(j).Type() == "type_parameter" {
					t.Arity++
				}
			}
		}
	}
	return t, true
}

// member reports every parameter of a method-like declaration.
func (w *csharpWalker) member(node *sitter.Node, sc scope) error {
	nameNode := node.ChildByFieldName("name")
	params := node.ChildByFieldName("parameters")
	if nameNode == nil || params == nil {
		return nil
	}
	member := w.text(nameNode)

	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		if param.Type() != "parameter" {
			continue
		}
		paramName := param.ChildByFieldName("name")
		if paramName == nil {
			continue
		}

		annotated, format, err := w.annotation(param)
		if err != nil {
			return err
		}
		start := param.StartPoint()
		if annotated && len(sc.chain) == 0 {
			w.result.Warnings = append(w.result.Warnings, fmt.Sprintf(
				"line %d: [UniqueId] on %s.%s is not inside a type and is ignored",
				start.Row+1, member, w.text(paramName)))
			continue
		}

		w.result.Occurrences = append(w.result.Occurrences, site.Occurrence{
			Kind:        site.KindParameter,
			Annotated:   annotated,
			Path:        w.result.Path,
			Declaration: sc.declaration(),
			Member:      member,
			Parameter:   w.text(paramName),
			Line:        int(start.Row),
			Column:      int(start.Column),
			Format:      format,
		})
	}
	return nil
}

// annotation looks for the UniqueId attribute on a parameter and reads its
// optional format argument.
func (w *csharpWalker) annotation(param *sitter.Node) (bool, idformat.Format, error) {
	for i := 0; i < int(param.NamedChildCount()); i++ {
		list := param.NamedChild(i)
		if list.Type() != "attribute_list" {
			continue
		}
		for j := 0; j < int(list.NamedChildCount()); j++ {
			attr := list.NamedChild(j)
			if attr.Type() != "attribute" {
				continue
			}
			nameNode := attr.ChildByFieldName("name")
			if nameNode == nil || !isUniqueIdAttribute(w.text(nameNode), w.parser.namespace) {
				continue
			}

			format, err := w.formatArgument(attr)
			if err != nil {
				start := attr.StartPoint()
				return false, 0, fmt.Errorf("line %d column %d: %w", start.Row+1, start.Column+1, err)
			}
			return true, format, nil
		}
	}
	return false, idformat.Default, nil
}

func (w *csharpWalker) formatArgument(attr *sitter.Node) (idformat.Format, error) {
	var args *sitter.Node
	for i := 0; i < int(attr.NamedChildCount()); i++ {
		if child := attr.NamedChild(i); child.Type() == "attribute_argument_list" {
			args = child
			break
		}
	}
	if args == nil {
		return idformat.Default, nil
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() != "attribute_argument" {
			continue
		}
		return parseFormatArgument(w.text(arg))
	}
	return idformat.Default, nil
}

// parseFormatArgument accepts "UniqueIdFormat.Hex8", "format: UniqueIdFormat.Hex8",
// "Format = UniqueIdFormat.Hex8", "(UniqueIdFormat)3" and "3".
func parseFormatArgument(raw string) (idformat.Format, error) {
	value := strings.TrimSpace(strings.ReplaceAll(raw, "global::", ""))
	if idx := strings.Index(value, ":"); idx != -1 && !strings.Contains(value[:idx], "(") {
		value = strings.TrimSpace(value[idx+1:])
	}
	if idx := strings.Index(value, "="); idx != -1 {
		value = strings.TrimSpace(value[idx+1:])
	}
	if strings.HasPrefix(value, "(") {
		if end := strings.Index(value, ")"); end != -1 {
			value = strings.TrimSpace(value[end+1:])
		}
	}
	return idformat.ParseFormat(value)
}
