package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen handles the textDocument/didOpen notification.
// This is sent when a document is opened in the editor.
// The document is parsed, stored in the document store, and its syntax errors
// are published as diagnostics.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	// Get server instance
	srv := getServer("DidOpen")
	if srv == nil {
		return nil
	}

	// Extract document information
	uri := params.TextDocument.URI
	text := params.TextDocument.Text
	languageID := params.TextDocument.LanguageID
	version := params.TextDocument.Version

	log.Printf("Document opened: %s (version %d, language %s, %d bytes)\n",
		uri, version, languageID, len(text))

	// Parse and store the document, then update the workspace index; a file with
	// syntax errors keeps the partial tree the parser recovered
	doc := srv.OpenDocument(uri, text, version, languageID)

	// Publish diagnostics to the client
	PublishDiagnostics(context, uri, Diagnostics(doc, srv.Config().LSP.MaxProblems))

	return nil
}

// DidChange handles the textDocument/didChange notification.
// This is sent when a document's content changes in the editor.
// It supports both full and incremental sync modes.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// Get server instance
	srv := getServer("DidChange")
	if srv == nil {
		return nil
	}

	// Extract URI
	uri := params.TextDocument.URI

	// Apply all content changes in order and reparse; cached hover and
	// semantic token results are dropped
	doc, err := srv.ChangeDocument(uri, params.TextDocument.Version, params.ContentChanges)
	if err != nil {
		// Unknown document or a change that does not fit the current text;
		// keep the stored version to avoid corruption
		log.Printf("Error applying changes: %v\n", err)
		return nil
	}

	log.Printf("Document changed: %s (version %d, %d change(s))\n", uri, doc.Version, len(params.ContentChanges))

	// Publish diagnostics for the updated text
	PublishDiagnostics(context, uri, Diagnostics(doc, srv.Config().LSP.MaxProblems))

	return nil
}

// DidClose handles the textDocument/didClose notification.
// This is sent when a document is closed in the editor.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	// Get server instance
	srv := getServer("DidClose")
	if srv == nil {
		return nil
	}

	// Remove document from store; the index falls back to the file on disk
	uri := params.TextDocument.URI
	srv.CloseDocument(uri)

	log.Printf("Document closed: %s\n", uri)

	// Send empty diagnostics to clear error markers in the editor
	PublishDiagnostics(context, uri, []protocol.Diagnostic{})

	return nil
}
