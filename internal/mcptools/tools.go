// Package mcptools exposes reference resolution and type inference as MCP tools over an indexed
// project directory.
package mcptools

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/analysis"
	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/workspace"
)

// Tools answers queries about the Go files below a project root.
type Tools struct {
	root     string
	index    *workspace.SymbolIndex
	analyzer *analysis.Analyzer
}

// NewTools indexes the project below root and returns tools answering queries about it.
func NewTools(root string, opts workspace.Options) (*Tools, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid project root %q: %w", root, err)
	}

	index := workspace.NewSymbolIndex()
	workspace.IndexWorkspace(index, workspace.NewModuleResolver(), opts, []protocol.WorkspaceFolder{
		{URI: workspace.PathToURI(abs), Name: filepath.Base(abs)},
	})

	return &Tools{
		root:     abs,
		index:    index,
		analyzer: analysis.NewAnalyzer(index),
	}, nil
}

// Root returns the absolute project directory.
func (t *Tools) Root() string {
	return t.root
}

// FileCount returns the number of indexed files.
func (t *Tools) FileCount() int {
	return t.index.GetFileCount()
}

// FindDefinition handles the find_definition tool.
func (t *Tools) FindDefinition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := t.positionOf(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// an import path leads to the package it names
	if spec := analysis.ImportPathAt(pos.tree, pos.line, pos.column); spec.IsValid() {
		if pkg, ok := t.analyzer.ImportedPackage(spec); ok {
			return mcp.NewToolResultText(fmt.Sprintf("%s: package %s", t.location(pkg), pkg.Text())), nil
		}
	}

	name, err := t.nameAt(pos)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, ok := t.analyzer.Resolve(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no declaration found for %s", name.Text())), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s: %s %s", t.location(d.Node), d.Kind, d.Name)), nil
}

// InferType handles the infer_type tool.
func (t *Tools) InferType(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := t.nameAtRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	typ := t.analyzer.InferType(name)
	if typ == nil {
		if d, ok := scope.DeclarationOf(name); ok {
			typ = t.analyzer.TypeOfDeclaration(d)
		}
	}

	if typ == nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot infer the type of %s", name.Text())), nil
	}

	return mcp.NewToolResultText(typ.String()), nil
}

// FindReferences handles the find_references tool. The declaration is listed first, followed by
// every identifier resolving to it.
func (t *Tools) FindReferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := t.nameAtRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, ok := t.analyzer.Resolve(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no declaration found for %s", name.Text())), nil
	}

	refs := t.analyzer.FindReferences(d)

	lines := make([]string, 0, len(refs)+1)
	lines = append(lines, t.location(d.Node)+": declaration")

	for _, ref := range refs {
		lines = append(lines, t.location(ref))
	}

	log.Printf("Found %d reference(s) to %s\n", len(refs), d.Name)

	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

// sourcePos is the position named by the file, line and column arguments of a tool call.
type sourcePos struct {
	file         string
	tree         *syntax.Tree
	line, column int
}

func (t *Tools) positionOf(req mcp.CallToolRequest) (sourcePos, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return sourcePos{}, err
	}

	line, err := req.RequireInt("line")
	if err != nil {
		return sourcePos{}, err
	}

	column, err := req.RequireInt("column")
	if err != nil {
		return sourcePos{}, err
	}

	if !filepath.IsAbs(file) {
		file = filepath.Join(t.root, file)
	}

	info, ok := t.index.File(workspace.PathToURI(filepath.Clean(file)))
	if !ok {
		return sourcePos{}, fmt.Errorf("file %s is not part of the indexed project", file)
	}

	return sourcePos{file: file, tree: info.Tree, line: line, column: column}, nil
}

// nameAt returns the name under pos.
func (t *Tools) nameAt(pos sourcePos) (syntax.Node, error) {
	name := analysis.NameAt(pos.tree, pos.line, pos.column)
	if !name.IsValid() {
		return syntax.Node{}, fmt.Errorf("no name at %s:%d:%d", t.relative(pos.file), pos.line, pos.column)
	}

	return name, nil
}

func (t *Tools) nameAtRequest(req mcp.CallToolRequest) (syntax.Node, error) {
	pos, err := t.positionOf(req)
	if err != nil {
		return syntax.Node{}, err
	}

	return t.nameAt(pos)
}

// location formats the position of a node's name as path:line:column, relative to the root.
func (t *Tools) location(n syntax.Node) string {
	p := n.Position()

	path := n.Tree().Name()
	if uri, ok := t.index.URIOf(n.Tree()); ok {
		path = workspace.URIToPath(uri)
	}

	return fmt.Sprintf("%s:%d:%d", t.relative(path), p.Line, p.Column)
}

func (t *Tools) relative(path string) string {
	rel, err := filepath.Rel(t.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}

	return filepath.ToSlash(rel)
}
