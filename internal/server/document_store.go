package server

import (
	"sort"
	"sync"

	"github.com/CWBudde/gosym-lsp/internal/document"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// Document represents an open document in the workspace.
type Document struct {
	URI        string
	Text       string
	Version    int32
	LanguageID string

	// Tree is the parsed file, partial when Errors is not empty, and nil when nothing could be
	// parsed.
	Tree   *syntax.Tree
	Errors []syntax.Error

	lines *document.Text
}

// NewDocument parses text as the content of uri.
func NewDocument(uri, text string, version int32, languageID string) *Document {
	tree, errs := syntax.Parse(uri, []byte(text))

	return &Document{
		URI:        uri,
		Text:       text,
		Version:    version,
		LanguageID: languageID,
		Tree:       tree,
		Errors:     errs,
		lines:      document.NewText(text),
	}
}

// Lines returns the document text indexed for position conversion.
func (d *Document) Lines() *document.Text {
	return d.lines
}

// DocumentStore manages all open documents.
type DocumentStore struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Set stores or updates a document.
func (ds *DocumentStore) Set(uri string, doc *Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (*Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Delete removes a document from the store.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// List returns all document URIs in sorted order.
func (ds *DocumentStore) List() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	uris := make([]string, 0, len(ds.documents))
	for uri := range ds.documents {
		uris = append(uris, uri)
	}

	sort.Strings(uris)

	return uris
}

// Clear removes all documents from the store.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents = make(map[string]*Document)
}
