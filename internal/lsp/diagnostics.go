package lsp

import (
	"log"
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/server"
)

// PublishDiagnostics sends diagnostic information to the client for a specific document.
// An empty list clears the markers the editor shows for the document.
//
// Parameters:
//   - context: The GLSP context for sending notifications
//   - uri: The document URI to publish diagnostics for
//   - diagnostics: List of diagnostics to publish
func PublishDiagnostics(context *glsp.Context, uri string, diagnostics []protocol.Diagnostic) {
	// Tests call handlers without a live connection
	if context == nil || context.Notify == nil {
		log.Println("Warning: Cannot publish diagnostics - context or Notify is nil")
		return
	}

	// Sort diagnostics by position (line, then column) for consistent ordering
	sortDiagnostics(diagnostics)

	// Build the PublishDiagnosticsParams
	params := &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	}

	log.Printf("Publishing %d diagnostic(s) for %s", len(diagnostics), uri)

	// Send the notification to the client
	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

// Diagnostics converts the syntax errors of a document into diagnostics.
//
// Parameters:
//   - doc: The parsed document whose errors are reported
//   - maxProblems: Upper bound on the number of diagnostics; zero or less means no limit
//
// Each diagnostic covers the single character at the error position, or is empty
// when the error sits at the end of a line.
func Diagnostics(doc *server.Document, maxProblems int) []protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := "gosym"

	diagnostics := make([]protocol.Diagnostic, 0, len(doc.Errors))

	for _, e := range doc.Errors {
		// Stop once the configured limit is reached
		if maxProblems > 0 && len(diagnostics) >= maxProblems {
			break
		}

		// Parser positions are 1-based byte offsets; convert to UTF-16 LSP positions
		start := doc.Lines().LSPPosition(e.Pos.Line, e.Pos.Column)
		end := start
		if e.Pos.Column-1 < len(doc.Lines().Line(e.Pos.Line-1)) {
			end.Character++
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: &severity,
			Source:   &source,
			Message:  e.Message,
		})
	}

	return diagnostics
}

// sortDiagnostics sorts diagnostics by position (line first, then column).
// Errors reported on the same position keep their parser order.
func sortDiagnostics(diagnostics []protocol.Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		// Compare by line first
		if diagnostics[i].Range.Start.Line != diagnostics[j].Range.Start.Line {
			return diagnostics[i].Range.Start.Line < diagnostics[j].Range.Start.Line
		}
		// If same line, compare by column
		return diagnostics[i].Range.Start.Character < diagnostics[j].Range.Start.Character
	})
}
