// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/server"
)

// Version is reported to clients in the initialize result.
const Version = "0.1.0"

var (
	// serverInstance holds the global server instance
	// This is set by SetServer and accessed by handlers
	serverInstance interface{}

	logger = commonlog.GetLogger("gosym.lsp")
)

// SetServer sets the global server instance for handlers to access.
func SetServer(srv interface{}) {
	serverInstance = srv
}

// getServer returns the server instance, logging when it is missing.
func getServer(handler string) *server.Server {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Printf("Warning: server instance not available in %s\n", handler)
		return nil
	}

	return srv
}

// NewHandler returns the protocol handler wired to this package's handlers.
func NewHandler() protocol.Handler {
	return protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		SetTrace:    SetTrace,

		TextDocumentDidOpen:   DidOpen,
		TextDocumentDidChange: DidChange,
		TextDocumentDidClose:  DidClose,

		TextDocumentDefinition:         Definition,
		TextDocumentHover:              Hover,
		TextDocumentReferences:         References,
		TextDocumentDocumentSymbol:     DocumentSymbol,
		TextDocumentSemanticTokensFull: SemanticTokensFull,

		WorkspaceSymbol:                    WorkspaceSymbol,
		WorkspaceDidChangeConfiguration:    DidChangeConfiguration,
		WorkspaceDidChangeWorkspaceFolders: DidChangeWorkspaceFolders,
	}
}

// Initialize handles the LSP initialize request.
// This is the first request sent by the client and establishes the server capabilities.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (interface{}, error) {
	if srv := getServer("Initialize"); srv != nil {
		srv.SetClientCapabilities(&params.Capabilities)
		srv.SetWorkspaceFolders(workspaceFolders(params))
	}

	changeKind := protocol.TextDocumentSyncKindIncremental
	trueVal := true
	falseVal := false

	legend := server.NewSemanticTokensLegend()

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
			WillSave:  &falseVal,
		},

		HoverProvider:           &trueVal,
		DefinitionProvider:      &trueVal,
		ReferencesProvider:      &trueVal,
		DocumentSymbolProvider:  &trueVal,
		WorkspaceSymbolProvider: &trueVal,

		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: legend.ToProtocolLegend(),
			Full:   &trueVal,
		},

		Workspace: &protocol.ServerCapabilitiesWorkspace{
			WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{
				Supported:           &trueVal,
				ChangeNotifications: &protocol.BoolOrString{Value: true},
			},
		},
	}

	version := Version

	logger.Infof("initialized for %d workspace folder(s)", len(workspaceFolders(params)))

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "gosym-lsp",
			Version: &version,
		},
	}, nil
}

// workspaceFolders returns the folders of an initialize request, falling back to the
// deprecated root URI.
func workspaceFolders(params *protocol.InitializeParams) []protocol.WorkspaceFolder {
	if len(params.WorkspaceFolders) > 0 {
		return params.WorkspaceFolders
	}

	if params.RootURI != nil && *params.RootURI != "" {
		return []protocol.WorkspaceFolder{{URI: *params.RootURI, Name: "root"}}
	}

	return nil
}

// Initialized handles the initialized notification from the client.
// Workspace indexing starts here and runs in the background.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	srv := getServer("Initialized")
	if srv == nil {
		return nil
	}

	srv.IndexWorkspace()

	return nil
}

// Shutdown handles the shutdown request.
func Shutdown(context *glsp.Context) error {
	if srv := getServer("Shutdown"); srv != nil {
		srv.SetShuttingDown()
		srv.Documents().Clear()
	}

	logger.Info("shutting down")

	return nil
}

// SetTrace handles the $/setTrace notification.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	logger.Infof("trace set to %s", params.Value)
	return nil
}
