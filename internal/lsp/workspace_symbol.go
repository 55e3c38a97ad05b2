package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// maxWorkspaceSymbols keeps large workspaces from overwhelming the client.
const maxWorkspaceSymbols = 500

// WorkspaceSymbol handles the workspace/symbol request.
// It returns package-level declarations across the workspace whose names contain the query.
func WorkspaceSymbol(context *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	srv := getServer("WorkspaceSymbol")
	if srv == nil {
		return nil, nil
	}

	query := params.Query
	log.Printf("WorkspaceSymbol request with query: %q\n", query)

	decls := srv.Index().Search(query, maxWorkspaceSymbols)

	symbols := make([]protocol.SymbolInformation, 0, len(decls))

	for _, d := range decls {
		location, ok := nameLocation(srv, d.Node)
		if !ok {
			continue
		}

		container := containerName(d)

		symbols = append(symbols, protocol.SymbolInformation{
			Name:          d.Name,
			Kind:          symbolKind(d),
			Location:      location,
			ContainerName: &container,
		})
	}

	log.Printf("Found %d workspace symbols matching query %q\n", len(symbols), query)

	return symbols, nil
}
