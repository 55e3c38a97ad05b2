package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/config"
)

// DidChangeConfiguration handles workspace configuration changes from the client.
// Settings live under the "gosym" key:
//
//	{"gosym": {"maxProblems": 100, "logLevel": "info"}}
func DidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv := getServer("DidChangeConfiguration")
	if srv == nil {
		return nil
	}

	settingsMap, ok := params.Settings.(map[string]any)
	if !ok {
		return nil
	}

	settings, ok := settingsMap["gosym"].(map[string]any)
	if !ok {
		return nil
	}

	if maxProblems, ok := settings["maxProblems"].(float64); ok {
		srv.UpdateConfig(func(cfg *config.Config) {
			cfg.LSP.MaxProblems = int(maxProblems)
		})
		log.Printf("Configuration updated: maxProblems = %d\n", int(maxProblems))
	}

	if level, ok := settings["logLevel"].(string); ok {
		srv.UpdateConfig(func(cfg *config.Config) {
			cfg.Log.Level = level
			cfg.ConfigureLogging()
		})
		logger.Noticef("log level changed to %s", level)
	}

	return nil
}

// DidChangeWorkspaceFolders handles changes to workspace folders.
// Added folders are indexed in the background; files of removed folders leave the index.
func DidChangeWorkspaceFolders(context *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	srv := getServer("DidChangeWorkspaceFolders")
	if srv == nil {
		return nil
	}

	removed := make(map[string]bool, len(params.Event.Removed))
	for _, folder := range params.Event.Removed {
		log.Printf("Workspace folder removed: %s (%s)\n", folder.Name, folder.URI)
		removed[folder.URI] = true
	}

	var folders []protocol.WorkspaceFolder
	for _, folder := range srv.GetWorkspaceFolders() {
		if !removed[folder.URI] {
			folders = append(folders, folder)
		}
	}

	for _, folder := range params.Event.Added {
		log.Printf("Workspace folder added: %s (%s)\n", folder.Name, folder.URI)
		folders = append(folders, folder)
	}

	srv.SetWorkspaceFolders(folders)

	if len(params.Event.Removed) > 0 {
		srv.RemoveFolders(params.Event.Removed)
	}

	if len(params.Event.Added) > 0 {
		srv.IndexFolders(params.Event.Added, nil)
	}

	return nil
}
