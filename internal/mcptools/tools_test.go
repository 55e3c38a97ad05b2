package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/gosym-lsp/internal/workspace"
)

const shapesSource = `package shapes

type Point struct {
	X, Y int
}

func NewPoint(x int) *Point {
	return &Point{X: x}
}
`

const mainSource = `package main

import "example.com/proj/shapes"

func main() {
	p := shapes.NewPoint(1)
	_ = p.X
}
`

func setupTools(t *testing.T) *Tools {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"go.mod":           "module example.com/proj\n\ngo 1.22\n",
		"main.go":          mainSource,
		"shapes/shapes.go": shapesSource,
	}

	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	tools, err := NewTools(root, workspace.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2, tools.FileCount())

	return tools
}

func callRequest(file string, line, column int) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"file":   file,
		"line":   float64(line),
		"column": float64(column),
	}

	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestFindDefinition(t *testing.T) {
	tools := setupTools(t)

	tests := []struct {
		name   string
		file   string
		line   int
		column int
		want   string
	}{
		{"imported function", "main.go", 6, 14, "shapes/shapes.go:7:6: func NewPoint"},
		{"local variable", "main.go", 7, 6, "main.go:6:2: var p"},
		{"field through pointer", "main.go", 7, 8, "shapes/shapes.go:4:2: field X"},
		{"package name", "main.go", 6, 7, "main.go:3:8: package shapes"},
		{"declaration itself", "shapes/shapes.go", 3, 6, "shapes/shapes.go:3:6: type Point"},
		{"import path", "main.go", 3, 12, "shapes/shapes.go:1:9: package shapes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tools.FindDefinition(context.Background(), callRequest(tt.file, tt.line, tt.column))
			require.NoError(t, err)
			assert.False(t, result.IsError)
			assert.Equal(t, tt.want, resultText(t, result))
		})
	}
}

func TestFindDefinition_AbsolutePath(t *testing.T) {
	tools := setupTools(t)

	file := filepath.Join(tools.Root(), "main.go")
	result, err := tools.FindDefinition(context.Background(), callRequest(file, 6, 14))
	require.NoError(t, err)
	assert.Equal(t, "shapes/shapes.go:7:6: func NewPoint", resultText(t, result))
}

func TestInferType(t *testing.T) {
	tools := setupTools(t)

	tests := []struct {
		name   string
		file   string
		line   int
		column int
		want   string
	}{
		{"variable use", "main.go", 7, 6, "*Point"},
		{"field selector", "main.go", 7, 8, "int"},
		{"parameter declaration", "shapes/shapes.go", 7, 15, "int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tools.InferType(context.Background(), callRequest(tt.file, tt.line, tt.column))
			require.NoError(t, err)
			assert.False(t, result.IsError)
			assert.Equal(t, tt.want, resultText(t, result))
		})
	}
}

func TestFindReferences(t *testing.T) {
	tools := setupTools(t)

	result, err := tools.FindReferences(context.Background(), callRequest("main.go", 7, 8))
	require.NoError(t, err)
	require.False(t, result.IsError)

	lines := strings.Split(resultText(t, result), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "shapes/shapes.go:4:2: declaration", lines[0])
	assert.ElementsMatch(t, []string{"shapes/shapes.go:8:16", "main.go:7:8"}, lines[1:])
}

func TestToolErrors(t *testing.T) {
	tools := setupTools(t)

	tests := []struct {
		name string
		req  mcp.CallToolRequest
		want string
	}{
		{"missing arguments", mcp.CallToolRequest{}, "file"},
		{"unknown file", callRequest("missing.go", 1, 1), "not part of the indexed project"},
		{"not on a name", callRequest("main.go", 5, 12), "no name at main.go:5:12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tools.FindDefinition(context.Background(), tt.req)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(setupTools(t)))
}
