package workspace

import (
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/mod/modfile"

	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// Options bound the work done by an Indexer.
type Options struct {
	MaxDepth    int      // Maximum directory depth
	MaxFiles    int      // Maximum files to index
	ExcludeDirs []string // Directory names never descended into
	IndexTests  bool     // Whether _test.go files are indexed
}

// DefaultOptions returns the limits used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		MaxDepth:    10,
		MaxFiles:    10000,
		ExcludeDirs: []string{"vendor", "testdata", "node_modules"},
		IndexTests:  true,
	}
}

// Indexer handles workspace file indexing.
type Indexer struct {
	index     *SymbolIndex
	modules   *ModuleResolver
	opts      Options
	fileCount int
}

// NewIndexer creates a new workspace indexer.
func NewIndexer(index *SymbolIndex, modules *ModuleResolver, opts Options) *Indexer {
	if modules == nil {
		modules = NewModuleResolver()
	}

	return &Indexer{
		index:   index,
		modules: modules,
		opts:    opts,
	}
}

// FileCount returns the number of files indexed so far.
func (idx *Indexer) FileCount() int {
	return idx.fileCount
}

// BuildWorkspaceIndex scans workspace folders and indexes all .go files.
func (idx *Indexer) BuildWorkspaceIndex(workspaceFolders []protocol.WorkspaceFolder) {
	if len(workspaceFolders) == 0 {
		log.Println("No workspace folders to index")
		return
	}

	log.Printf("Starting workspace indexing for %d folders\n", len(workspaceFolders))

	for _, folder := range workspaceFolders {
		dir := URIToPath(folder.URI)
		if dir == "" {
			log.Printf("Warning: Could not convert URI to path: %s\n", folder.URI)
			continue
		}

		idx.IndexDirectory(dir)
	}
}

// IndexDirectory indexes every Go file below root.
func (idx *Indexer) IndexDirectory(root string) {
	log.Printf("Indexing workspace folder: %s\n", root)

	idx.indexDirectory(root, 0)

	log.Printf("Workspace indexing complete. Indexed %d files, %d packages, %d symbols\n",
		idx.fileCount, idx.index.GetPackageCount(), idx.index.GetSymbolCount())
}

func (idx *Indexer) excluded(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}

	for _, dir := range idx.opts.ExcludeDirs {
		if dir == name {
			return true
		}
	}

	return false
}

// indexDirectory recursively indexes a directory.
func (idx *Indexer) indexDirectory(dirPath string, depth int) {
	if depth > idx.opts.MaxDepth || idx.fileCount >= idx.opts.MaxFiles {
		return
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		// Silently skip directories we can't read (permissions, etc.)
		return
	}

	for _, entry := range entries {
		if idx.excluded(entry.Name()) {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())

		if entry.IsDir() {
			idx.indexDirectory(fullPath, depth+1)
			continue
		}

		if !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}

		if !idx.opts.IndexTests && strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		idx.IndexFile(fullPath)
	}
}

// IndexFile parses a file and adds it to the index. Files with syntax errors are indexed with
// whatever the parser recovered.
func (idx *Indexer) IndexFile(filePath string) {
	if idx.fileCount >= idx.opts.MaxFiles {
		return
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("Warning: Could not read file %s: %v\n", filePath, err)
		return
	}

	uri := PathToURI(filePath)

	tree, errs := syntax.Parse(uri, content)
	if tree == nil {
		log.Printf("Warning: Could not parse file %s: %d errors\n", filePath, len(errs))
		return
	}

	idx.index.AddFile(uri, idx.modules.ImportPath(filepath.Dir(filePath)), 0, tree)

	idx.fileCount++
	if idx.fileCount%100 == 0 {
		log.Printf("Indexed %d files so far...\n", idx.fileCount)
	}
}

// ModuleResolver maps directories to import paths using the nearest go.mod file.
type ModuleResolver struct {
	mu    sync.Mutex
	roots map[string]moduleRoot // keyed by directory
}

type moduleRoot struct {
	dir  string
	path string
}

// NewModuleResolver creates a resolver with an empty cache.
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{roots: make(map[string]moduleRoot)}
}

// ImportPath returns the import path of the package in dir. Directories outside any module are
// identified by their slash-separated path.
func (m *ModuleResolver) ImportPath(dir string) string {
	dir = filepath.Clean(dir)

	root, ok := m.findModule(dir)
	if !ok {
		return filepath.ToSlash(dir)
	}

	rel, err := filepath.Rel(root.dir, dir)
	if err != nil || rel == "." {
		return root.path
	}

	return path.Join(root.path, filepath.ToSlash(rel))
}

func (m *ModuleResolver) findModule(dir string) (moduleRoot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var visited []string

	for cur := dir; ; cur = filepath.Dir(cur) {
		if root, ok := m.roots[cur]; ok {
			m.remember(visited, root)
			return root, root.path != ""
		}

		visited = append(visited, cur)

		if data, err := os.ReadFile(filepath.Join(cur, "go.mod")); err == nil {
			root := moduleRoot{dir: cur, path: modfile.ModulePath(data)}
			m.remember(visited, root)
			return root, root.path != ""
		}

		if parent := filepath.Dir(cur); parent == cur {
			m.remember(visited, moduleRoot{})
			return moduleRoot{}, false
		}
	}
}

func (m *ModuleResolver) remember(dirs []string, root moduleRoot) {
	for _, d := range dirs {
		m.roots[d] = root
	}
}

// URIToPath converts a URI to a file system path.
func URIToPath(uri string) string {
	if after, ok := strings.CutPrefix(uri, "file://"); ok {
		p := after
		// On Windows, URIs are like file:///C:/path, so we need to handle the leading slash
		if len(p) > 2 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}

		return filepath.FromSlash(p)
	}

	return uri
}

// PathToURI converts a file system path to a URI.
func PathToURI(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}

	p = filepath.ToSlash(p)

	// On Windows, prepend an extra slash
	if len(p) > 1 && p[1] == ':' {
		return "file:///" + p
	}

	return "file://" + p
}

// IndexWorkspace creates an indexer and builds the workspace index.
func IndexWorkspace(index *SymbolIndex, modules *ModuleResolver, opts Options, workspaceFolders []protocol.WorkspaceFolder) {
	indexer := NewIndexer(index, modules, opts)
	indexer.BuildWorkspaceIndex(workspaceFolders)
}

// IndexWorkspaceAsync runs workspace indexing in a background goroutine. done, when not nil,
// is called once indexing has finished.
func IndexWorkspaceAsync(index *SymbolIndex, modules *ModuleResolver, opts Options, workspaceFolders []protocol.WorkspaceFolder, done func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in workspace indexing: %v\n", r)
			}
			if done != nil {
				done()
			}
		}()

		IndexWorkspace(index, modules, opts, workspaceFolders)
	}()
}
