// Package workspace provides workspace-wide symbol indexing and management.
package workspace

import (
	"go/token"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// FileInfo stores metadata about an indexed file.
type FileInfo struct {
	URI     string       // Document URI
	Package string       // Key of the package the file belongs to
	Version int32        // Document version
	Tree    *syntax.Tree // Parsed file
}

// packageInfo holds the package-level declarations of one package across its files.
type packageInfo struct {
	importPath string
	name       string
	files      map[string]*FileInfo

	// globals maps names to package-level declarations
	globals map[string][]scope.Declaration

	// methods maps "Type.Method" to method declarations
	methods map[string][]scope.Declaration
}

// SymbolIndex maintains a workspace-wide index of Go packages and their package-level
// declarations. It provides thread-safe access across all files.
type SymbolIndex struct {
	// packages maps package keys (import path, plus "_test" for external test packages)
	packages map[string]*packageInfo

	// files maps document URIs to file metadata
	files map[string]*FileInfo

	// trees maps parsed trees back to their file
	trees map[*syntax.Tree]*FileInfo

	// mutex protects concurrent access to the index
	mutex sync.RWMutex
}

// NewSymbolIndex creates a new empty symbol index.
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		packages: make(map[string]*packageInfo),
		files:    make(map[string]*FileInfo),
		trees:    make(map[*syntax.Tree]*FileInfo),
	}
}

// packageKey separates external test packages from the package under test.
func packageKey(importPath, pkgName string) string {
	if strings.HasSuffix(pkgName, "_test") && !strings.HasSuffix(importPath, "_test") {
		return importPath + "_test"
	}

	return importPath
}

// AddFile indexes tree as the content of uri inside the package with the given import path.
// An earlier version of the same file is replaced.
func (si *SymbolIndex) AddFile(uri, importPath string, version int32, tree *syntax.Tree) {
	if tree == nil {
		return
	}

	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.removeFileLocked(uri)

	key := packageKey(importPath, tree.PackageName())

	pkg, exists := si.packages[key]
	if !exists {
		pkg = &packageInfo{
			importPath: importPath,
			name:       tree.PackageName(),
			files:      make(map[string]*FileInfo),
			globals:    make(map[string][]scope.Declaration),
			methods:    make(map[string][]scope.Declaration),
		}
		si.packages[key] = pkg
	}

	info := &FileInfo{URI: uri, Package: key, Version: version, Tree: tree}
	pkg.files[uri] = info
	si.files[uri] = info
	si.trees[tree] = info

	count := 0
	for _, d := range PackageDeclarations(tree) {
		if d.Kind == scope.DeclMethod {
			recv := d.Node.Child(syntax.RoleRecv).Value()
			pkg.methods[recv+"."+d.Name] = append(pkg.methods[recv+"."+d.Name], d)
		} else {
			pkg.globals[d.Name] = append(pkg.globals[d.Name], d)
		}
		count++
	}

	log.Printf("Indexed %d declarations in %s (package %s)", count, uri, key)
}

// PackageDeclarations returns the package-level declarations of a file, imports excluded.
func PackageDeclarations(tree *syntax.Tree) []scope.Declaration {
	var decls []scope.Declaration

	add := func(n syntax.Node) {
		if d, ok := scope.DeclarationOf(n); ok {
			decls = append(decls, d)
		}
	}

	for _, top := range tree.Root().Children() {
		switch top.Kind() {
		case syntax.KindFuncDecl, syntax.KindMethodDecl:
			add(top)
		case syntax.KindTypeDecl:
			for _, spec := range top.Children() {
				add(spec)
			}
		case syntax.KindVarDecl, syntax.KindConstDecl:
			for _, spec := range top.Children() {
				for _, def := range spec.ChildrenWith(syntax.RoleName) {
					add(def)
				}
			}
		}
	}

	return decls
}

// RemoveFile removes a file and its declarations from the index.
func (si *SymbolIndex) RemoveFile(uri string) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	if si.removeFileLocked(uri) {
		log.Printf("Removed all symbols from file: %s", uri)
	}
}

// RemoveFolder removes every file whose URI lies below folderURI and returns how many were
// removed.
func (si *SymbolIndex) RemoveFolder(folderURI string) int {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	prefix := strings.TrimSuffix(folderURI, "/") + "/"

	var uris []string
	for uri := range si.files {
		if strings.HasPrefix(uri, prefix) {
			uris = append(uris, uri)
		}
	}

	for _, uri := range uris {
		si.removeFileLocked(uri)
	}

	log.Printf("Removed %d files under %s", len(uris), folderURI)

	return len(uris)
}

func (si *SymbolIndex) removeFileLocked(uri string) bool {
	info, exists := si.files[uri]
	if !exists {
		return false
	}

	delete(si.files, uri)
	delete(si.trees, info.Tree)

	pkg := si.packages[info.Package]
	if pkg == nil {
		return true
	}

	delete(pkg.files, uri)

	if len(pkg.files) == 0 {
		delete(si.packages, info.Package)
		return true
	}

	pkg.globals = filterDecls(pkg.globals, info.Tree)
	pkg.methods = filterDecls(pkg.methods, info.Tree)

	return true
}

func filterDecls(m map[string][]scope.Declaration, tree *syntax.Tree) map[string][]scope.Declaration {
	out := make(map[string][]scope.Declaration, len(m))

	for name, decls := range m {
		var remaining []scope.Declaration
		for _, d := range decls {
			if d.File() != tree {
				remaining = append(remaining, d)
			}
		}
		if len(remaining) > 0 {
			out[name] = remaining
		}
	}

	return out
}

// File returns the metadata of an indexed file.
func (si *SymbolIndex) File(uri string) (*FileInfo, bool) {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	info, ok := si.files[uri]
	if !ok {
		return nil, false
	}

	cp := *info
	return &cp, true
}

// URIOf returns the URI under which tree was indexed.
func (si *SymbolIndex) URIOf(tree *syntax.Tree) (string, bool) {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	info, ok := si.trees[tree]
	if !ok {
		return "", false
	}

	return info.URI, true
}

// PackageTrees returns the trees of every file in the package that owns file, file included.
func (si *SymbolIndex) PackageTrees(file *syntax.Tree) []*syntax.Tree {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	pkg := si.packageOfLocked(file)
	if pkg == nil {
		if file == nil {
			return nil
		}
		return []*syntax.Tree{file}
	}

	return sortedTrees(pkg.files)
}

// PackageFiles returns the trees of the package with the given import path, ordered by URI.
// External test packages are not included.
func (si *SymbolIndex) PackageFiles(importPath string) []*syntax.Tree {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	pkg, ok := si.packages[importPath]
	if !ok {
		return nil
	}

	return sortedTrees(pkg.files)
}

// ImporterTrees returns the trees of every file that imports importPath.
func (si *SymbolIndex) ImporterTrees(importPath string) []*syntax.Tree {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	files := make(map[string]*FileInfo)

	for uri, info := range si.files {
		for _, imp := range Imports(info.Tree) {
			if imp.Node.Value() == importPath {
				files[uri] = info
				break
			}
		}
	}

	return sortedTrees(files)
}

func sortedTrees(files map[string]*FileInfo) []*syntax.Tree {
	uris := make([]string, 0, len(files))
	for uri := range files {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	trees := make([]*syntax.Tree, 0, len(uris))
	for _, uri := range uris {
		trees = append(trees, files[uri].Tree)
	}

	return trees
}

func (si *SymbolIndex) packageOfLocked(file *syntax.Tree) *packageInfo {
	info, ok := si.trees[file]
	if !ok {
		return nil
	}

	return si.packages[info.Package]
}

// ImportPathOf returns the import path of the package that owns file.
func (si *SymbolIndex) ImportPathOf(file *syntax.Tree) string {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	if pkg := si.packageOfLocked(file); pkg != nil {
		return pkg.importPath
	}

	return ""
}

// Imports returns the package declarations made by the import specs of a file.
func Imports(tree *syntax.Tree) []scope.Declaration {
	var decls []scope.Declaration

	for _, top := range tree.Root().Children() {
		if top.Kind() != syntax.KindImportDecl {
			continue
		}
		for _, spec := range top.Children() {
			if d, ok := scope.DeclarationOf(spec); ok {
				decls = append(decls, d)
			}
		}
	}

	return decls
}

// LookupGlobal returns the package-level declarations named name in the package owning file.
// Files that were never indexed are searched on their own.
func (si *SymbolIndex) LookupGlobal(file *syntax.Tree, name string) []scope.Declaration {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	pkg := si.packageOfLocked(file)
	if pkg == nil {
		if file == nil {
			return nil
		}
		var found []scope.Declaration
		for _, d := range PackageDeclarations(file) {
			if d.Name == name && d.Kind != scope.DeclMethod {
				found = append(found, d)
			}
		}
		return found
	}

	return copyDecls(pkg.globals[name])
}

// LookupLocal returns the declarations named name in the lexical scope chain of from.
func (si *SymbolIndex) LookupLocal(name string, from syntax.Node) []scope.Declaration {
	return scope.LookupLocal(name, from)
}

// LookupImported returns the package-level declarations named name in the workspace package
// with the given import path. Packages outside the workspace yield nothing, and so do unexported
// names, which an importing package cannot refer to.
func (si *SymbolIndex) LookupImported(importPath, name string) []scope.Declaration {
	if !token.IsExported(name) {
		return nil
	}

	si.mutex.RLock()
	defer si.mutex.RUnlock()

	pkg, ok := si.packages[importPath]
	if !ok {
		return nil
	}

	return copyDecls(pkg.globals[name])
}

// LookupMethods returns the methods named name declared on the receiver base type typeName in
// the package owning file.
func (si *SymbolIndex) LookupMethods(file *syntax.Tree, typeName, name string) []scope.Declaration {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	pkg := si.packageOfLocked(file)
	if pkg == nil {
		if file == nil {
			return nil
		}
		var found []scope.Declaration
		for _, d := range PackageDeclarations(file) {
			if d.Kind == scope.DeclMethod && d.Name == name && d.Node.Child(syntax.RoleRecv).Value() == typeName {
				found = append(found, d)
			}
		}
		return found
	}

	return copyDecls(pkg.methods[typeName+"."+name])
}

func copyDecls(decls []scope.Declaration) []scope.Declaration {
	if len(decls) == 0 {
		return nil
	}

	// Return a copy to avoid external modifications
	result := make([]scope.Declaration, len(decls))
	copy(result, decls)

	return result
}

// Search returns package-level declarations and methods whose names contain query
// (case-insensitive), ordered by name. An empty query matches everything.
func (si *SymbolIndex) Search(query string, maxResults int) []scope.Declaration {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	queryLower := strings.ToLower(query)

	var results []scope.Declaration

	for _, pkg := range si.packages {
		for _, m := range []map[string][]scope.Declaration{pkg.globals, pkg.methods} {
			for _, decls := range m {
				for _, d := range decls {
					if strings.Contains(strings.ToLower(d.Name), queryLower) {
						results = append(results, d)
					}
				}
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].Pos() < results[j].Pos()
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	return results
}

// GetFileCount returns the number of files in the index.
func (si *SymbolIndex) GetFileCount() int {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	return len(si.files)
}

// GetPackageCount returns the number of packages in the index.
func (si *SymbolIndex) GetPackageCount() int {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	return len(si.packages)
}

// GetSymbolCount returns the total number of package-level declarations and methods.
func (si *SymbolIndex) GetSymbolCount() int {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	count := 0
	for _, pkg := range si.packages {
		for _, decls := range pkg.globals {
			count += len(decls)
		}
		for _, decls := range pkg.methods {
			count += len(decls)
		}
	}

	return count
}

// Clear removes all packages and files from the index.
func (si *SymbolIndex) Clear() {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.packages = make(map[string]*packageInfo)
	si.files = make(map[string]*FileInfo)
	si.trees = make(map[*syntax.Tree]*FileInfo)

	log.Println("Symbol index cleared")
}
