package lsp

import (
	"log"
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// References handles the textDocument/references request.
// It returns every identifier that resolves to the declaration of the name under the cursor.
func References(context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	srv := getServer("References")
	if srv == nil {
		return []protocol.Location{}, nil
	}

	uri := params.TextDocument.URI
	position := params.Position
	includeDecl := params.Context.IncludeDeclaration

	log.Printf("References request at %s line %d, character %d (includeDeclaration=%t)\n",
		uri, position.Line, position.Character, includeDecl)

	_, name := nameAtPosition(srv, uri, position)
	if !name.IsValid() {
		return []protocol.Location{}, nil
	}

	d, ok := srv.Analyzer().Resolve(name)
	if !ok {
		log.Printf("No declaration found for %s\n", name.Text())
		return []protocol.Location{}, nil
	}

	locations := []protocol.Location{}

	if includeDecl {
		if location, ok := nameLocation(srv, d.Node); ok {
			locations = append(locations, location)
		}
	}

	for _, ref := range srv.Analyzer().FindReferences(d) {
		if location, ok := nameLocation(srv, ref); ok {
			locations = append(locations, location)
		}
	}

	sortLocationsByFileAndPosition(locations)

	log.Printf("Found %d reference(s) to %s\n", len(locations), d.Name)

	return locations, nil
}

// sortLocationsByFileAndPosition orders locations by URI, then line, then character.
func sortLocationsByFileAndPosition(locations []protocol.Location) {
	sort.SliceStable(locations, func(i, j int) bool {
		a, b := locations[i], locations[j]
		if a.URI != b.URI {
			return a.URI < b.URI
		}
		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line < b.Range.Start.Line
		}
		return a.Range.Start.Character < b.Range.Start.Character
	})
}
