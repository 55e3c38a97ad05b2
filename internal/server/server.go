// Package server provides the core LSP server state and management.
package server

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/analysis"
	"github.com/CWBudde/gosym-lsp/internal/config"
	"github.com/CWBudde/gosym-lsp/internal/document"
	"github.com/CWBudde/gosym-lsp/internal/workspace"
)

// Server holds the state of the LSP server.
type Server struct {
	// documents stores all open documents
	documents *DocumentStore

	// index holds the package-level declarations of every indexed or open file
	index *workspace.SymbolIndex

	// modules maps directories to import paths
	modules *workspace.ModuleResolver

	analyzer *analysis.Analyzer

	// hovers and tokens cache per-document results until the next edit
	hovers *ResultCache[*protocol.Hover]
	tokens *ResultCache[[]protocol.UInteger]

	legend *SemanticTokensLegend

	// workspaceFolders stores the workspace folders from the client
	workspaceFolders []protocol.WorkspaceFolder

	// clientCapabilities stores the client's capabilities from the initialize request
	clientCapabilities *protocol.ClientCapabilities

	config *config.Config

	// mutex protects server state
	mu sync.RWMutex

	shuttingDown bool

	indexed   chan struct{}
	indexOnce sync.Once
}

// New creates a new LSP server instance. A nil cfg uses the defaults.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	index := workspace.NewSymbolIndex()

	return &Server{
		documents: NewDocumentStore(),
		index:     index,
		modules:   workspace.NewModuleResolver(),
		analyzer:  analysis.NewAnalyzer(index),
		hovers:    NewResultCache[*protocol.Hover](),
		tokens:    NewResultCache[[]protocol.UInteger](),
		legend:    NewSemanticTokensLegend(),
		config:    cfg,
		indexed:   make(chan struct{}),
	}
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuttingDown = true
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// Index returns the workspace symbol index.
func (s *Server) Index() *workspace.SymbolIndex {
	return s.index
}

// Analyzer returns the analyzer backed by the workspace index.
func (s *Server) Analyzer() *analysis.Analyzer {
	return s.analyzer
}

// Hovers returns the hover result cache.
func (s *Server) Hovers() *ResultCache[*protocol.Hover] {
	return s.hovers
}

// Tokens returns the semantic tokens cache.
func (s *Server) Tokens() *ResultCache[[]protocol.UInteger] {
	return s.tokens
}

// SemanticTokensLegend returns the semantic tokens legend.
// The legend is immutable and shared across all requests.
func (s *Server) SemanticTokensLegend() *SemanticTokensLegend {
	return s.legend
}

// Config returns the server configuration. The returned value is never modified afterwards;
// updates replace it.
func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// UpdateConfig updates the server configuration atomically.
// The update function is called with a copy of the current config under a write lock, and the
// copy replaces the current config.
func (s *Server) UpdateConfig(update func(*config.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.config.Clone()
	update(next)
	s.config = next
}

// SetWorkspaceFolders sets the workspace folders.
func (s *Server) SetWorkspaceFolders(folders []protocol.WorkspaceFolder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceFolders = folders
}

// GetWorkspaceFolders returns the workspace folders.
func (s *Server) GetWorkspaceFolders() []protocol.WorkspaceFolder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaceFolders
}

// SetClientCapabilities sets the client's capabilities.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientCapabilities = capabilities
}

// GetClientCapabilities returns the client's capabilities.
func (s *Server) GetClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCapabilities
}

// SupportsMarkdownHover reports whether the client renders markdown hover content.
func (s *Server) SupportsMarkdownHover() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.clientCapabilities == nil || s.clientCapabilities.TextDocument == nil {
		return true
	}

	hover := s.clientCapabilities.TextDocument.Hover
	if hover == nil || len(hover.ContentFormat) == 0 {
		return true
	}

	return hover.ContentFormat[0] == protocol.MarkupKindMarkdown
}

// ImportPathFor returns the import path of the package a document belongs to.
func (s *Server) ImportPathFor(uri string) string {
	return s.modules.ImportPath(filepath.Dir(workspace.URIToPath(uri)))
}

// IndexWorkspace indexes the workspace folders in the background.
func (s *Server) IndexWorkspace() {
	s.IndexFolders(s.GetWorkspaceFolders(), func() {
		s.indexOnce.Do(func() { close(s.indexed) })
	})
}

// IndexFolders indexes folders in the background and calls done, when not nil, afterwards.
// Open documents are re-added once indexing finishes so their in-editor content wins over the
// files on disk.
func (s *Server) IndexFolders(folders []protocol.WorkspaceFolder, done func()) {
	opts := s.Config().IndexOptions()

	workspace.IndexWorkspaceAsync(s.index, s.modules, opts, folders, func() {
		for _, uri := range s.documents.List() {
			if doc, ok := s.documents.Get(uri); ok && doc.Tree != nil {
				s.index.AddFile(doc.URI, s.ImportPathFor(doc.URI), doc.Version, doc.Tree)
			}
		}

		s.clearResults()

		if done != nil {
			done()
		}
	})
}

// RemoveFolders drops the indexed files of folders that left the workspace. Open documents
// stay indexed.
func (s *Server) RemoveFolders(folders []protocol.WorkspaceFolder) {
	for _, folder := range folders {
		s.index.RemoveFolder(folder.URI)
	}

	for _, uri := range s.documents.List() {
		if doc, ok := s.documents.Get(uri); ok && doc.Tree != nil {
			s.index.AddFile(doc.URI, s.ImportPathFor(doc.URI), doc.Version, doc.Tree)
		}
	}

	s.clearResults()
}

// Indexed is closed once workspace indexing has finished.
func (s *Server) Indexed() <-chan struct{} {
	return s.indexed
}

// OpenDocument parses and stores a newly opened document and indexes its declarations.
func (s *Server) OpenDocument(uri, text string, version int32, languageID string) *Document {
	doc := NewDocument(uri, text, version, languageID)
	s.documents.Set(uri, doc)

	if doc.Tree != nil {
		s.index.AddFile(uri, s.ImportPathFor(uri), version, doc.Tree)
	}

	s.clearResults()

	return doc
}

// ChangeDocument applies content changes to an open document and re-parses it.
func (s *Server) ChangeDocument(uri string, version int32, changes []any) (*Document, error) {
	doc, ok := s.documents.Get(uri)
	if !ok {
		return nil, fmt.Errorf("document not open: %s", uri)
	}

	text, err := document.ApplyChanges(doc.Text, changes)
	if err != nil {
		return nil, fmt.Errorf("failed to apply changes to %s: %w", uri, err)
	}

	return s.OpenDocument(uri, text, version, doc.LanguageID), nil
}

// CloseDocument forgets an open document. The file's content on disk replaces it in the
// index, or the file leaves the index when it no longer exists.
func (s *Server) CloseDocument(uri string) {
	s.documents.Delete(uri)

	path := workspace.URIToPath(uri)
	if _, err := os.Stat(path); err != nil {
		s.index.RemoveFile(uri)
	} else {
		workspace.NewIndexer(s.index, s.modules, s.Config().IndexOptions()).IndexFile(path)
	}

	s.clearResults()
	log.Printf("Closed %s", uri)
}

// TextOf returns the content of a document, reading files that are not open from disk.
func (s *Server) TextOf(uri string) (*document.Text, error) {
	if doc, ok := s.documents.Get(uri); ok {
		return doc.Lines(), nil
	}

	data, err := os.ReadFile(workspace.URIToPath(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}

	return document.NewText(string(data)), nil
}

// clearResults drops cached results of every document, since an edit can change the types seen
// from other files.
func (s *Server) clearResults() {
	s.hovers.Clear()
	s.tokens.Clear()
}
