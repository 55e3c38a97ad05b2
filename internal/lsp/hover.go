package lsp

import (
	"fmt"
	"go/token"
	"log"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/analysis"
	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/types"
)

// Hover handles the textDocument/hover request.
// It shows what the name under the cursor declares, with its inferred type.
func Hover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	srv := getServer("Hover")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	position := params.Position

	log.Printf("Hover request at %s line %d, character %d\n",
		uri, position.Line, position.Character)

	doc, name := nameAtPosition(srv, uri, position)
	if !name.IsValid() {
		return nil, nil
	}

	key := fmt.Sprint(name.ID())
	if hover, ok := srv.Hovers().Get(uri, doc.Version, key); ok {
		return hover, nil
	}

	var hover *protocol.Hover

	if text := Describe(srv.Analyzer(), name); text != "" {
		content := protocol.MarkupContent{Kind: protocol.MarkupKindPlainText, Value: text}
		if srv.SupportsMarkdownHover() {
			content = protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: "```go\n" + text + "\n```",
			}
		}

		hover = &protocol.Hover{Contents: content}

		if location, ok := nameLocation(srv, name); ok {
			hover.Range = &location.Range
		}
	}

	srv.Hovers().Set(uri, doc.Version, key, hover)

	return hover, nil
}

// Describe renders the declaration a name refers to as a line of Go: its kind, name and type.
// It returns "" for names that resolve to nothing known.
func Describe(a *analysis.Analyzer, name syntax.Node) string {
	if a.IsIota(name) {
		if v, ok := a.IotaValue(name); ok {
			return fmt.Sprintf("const iota untyped int = %d", v)
		}
	}

	d, ok := a.Resolve(name)
	if !ok {
		if name.Kind() == syntax.KindIdent && types.IsPredeclared(name.Text()) {
			return "type " + name.Text()
		}
		return ""
	}

	switch d.Kind {
	case scope.DeclPackage:
		return fmt.Sprintf("package %s (%q)", d.Name, d.Node.Value())

	case scope.DeclTypeSpec:
		t := a.DeclaredType(d.Node)
		if d.Node.Op() == token.ASSIGN {
			return "type " + d.Name + " = " + typeText(t)
		}
		return "type " + d.Name + " " + typeText(types.Underlying(t))

	case scope.DeclFunction, scope.DeclMethod:
		sig := strings.TrimPrefix(typeText(a.TypeOfDeclaration(d)), "func")
		if recv := d.Node.Child(syntax.RoleRecv); recv.IsValid() {
			return "func (" + recv.Value() + ") " + d.Name + sig
		}
		return "func " + d.Name + sig
	}

	var t types.Type
	if name.Kind() == syntax.KindIdent {
		// the use site narrows type switch variables
		t = a.InferType(name)
	} else {
		t = a.TypeOfDeclaration(d)
	}

	if t == nil {
		return d.Kind.String() + " " + d.Name
	}

	return d.Kind.String() + " " + d.Name + " " + typeText(t)
}

func typeText(t types.Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
