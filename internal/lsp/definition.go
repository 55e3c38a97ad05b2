package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Definition handles the textDocument/definition request.
// The identifier under the cursor is resolved to the declaration it refers to.
func Definition(context *glsp.Context, params *protocol.DefinitionParams) (interface{}, error) {
	srv := getServer("Definition")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	position := params.Position

	log.Printf("Definition request at %s line %d, character %d\n",
		uri, position.Line, position.Character)

	doc, name := nameAtPosition(srv, uri, position)
	if !name.IsValid() {
		log.Printf("Position %d:%d is not on a name\n", position.Line, position.Character)
		return nil, nil
	}

	// An import path leads to the package it names
	if spec := importAtPosition(doc, position); spec.IsValid() {
		if pkg, ok := srv.Analyzer().ImportedPackage(spec); ok {
			if location, ok := nameLocation(srv, pkg); ok {
				log.Printf("Found package %s at %s\n", spec.Value(), location.URI)
				return &location, nil
			}
		}
	}

	d, ok := srv.Analyzer().Resolve(name)
	if !ok {
		log.Printf("No declaration found for %s\n", name.Text())
		return nil, nil
	}

	location, ok := nameLocation(srv, d.Node)
	if !ok {
		return nil, nil
	}

	log.Printf("Found definition of %s at %s:%d\n", d.Name, location.URI, location.Range.Start.Line)

	return &location, nil
}
