package lsp

import (
	"log"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/analysis"
	"github.com/CWBudde/gosym-lsp/internal/server"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// nameAtPosition returns the open document and the identifier or declaring node under an LSP
// position. The node is the zero Node when the position is not on a name.
func nameAtPosition(srv *server.Server, uri string, pos protocol.Position) (*server.Document, syntax.Node) {
	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Printf("Document not found: %s\n", uri)
		return nil, syntax.Node{}
	}

	if doc.Tree == nil {
		log.Printf("No syntax tree available: %s\n", uri)
		return doc, syntax.Node{}
	}

	line, column, err := doc.Lines().ByteColumn(pos)
	if err != nil {
		log.Printf("Invalid position in %s: %v\n", uri, err)
		return doc, syntax.Node{}
	}

	return doc, analysis.NameAt(doc.Tree, line, column)
}

// importAtPosition returns the ImportSpec whose path string is under an LSP position.
func importAtPosition(doc *server.Document, pos protocol.Position) syntax.Node {
	if doc == nil || doc.Tree == nil {
		return syntax.Node{}
	}

	line, column, err := doc.Lines().ByteColumn(pos)
	if err != nil {
		return syntax.Node{}
	}

	return analysis.ImportPathAt(doc.Tree, line, column)
}

// uriOf returns the document URI a tree was parsed from.
func uriOf(srv *server.Server, tree *syntax.Tree) string {
	if uri, ok := srv.Index().URIOf(tree); ok {
		return uri
	}

	// trees are parsed under their URI
	return tree.Name()
}

// nameLocation returns the location of the name a node carries.
func nameLocation(srv *server.Server, n syntax.Node) (protocol.Location, bool) {
	uri := uriOf(srv, n.Tree())

	text, err := srv.TextOf(uri)
	if err != nil {
		log.Printf("Cannot locate %s: %v\n", n, err)
		return protocol.Location{}, false
	}

	p := n.Position()
	start := text.LSPPosition(p.Line, p.Column)

	end := start
	end.Character += protocol.UInteger(len(utf16.Encode([]rune(nameText(n, text.Line(p.Line-1), p.Column)))))

	return protocol.Location{
		URI:   uri,
		Range: protocol.Range{Start: start, End: end},
	}, true
}

// nameText returns the source text spanned by a node's name starting at a 1-based byte column
// of line. Imports without an explicit name are located at their path.
func nameText(n syntax.Node, line string, column int) string {
	if n.Kind() == syntax.KindImportSpec && column >= 1 && column <= len(line) {
		if c := line[column-1]; c == '"' || c == '`' {
			return `"` + n.Value() + `"`
		}
	}

	return n.Text()
}
