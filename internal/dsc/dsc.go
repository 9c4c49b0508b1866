// Package dsc recognizes Desired State Configuration resources: script
// modules under a DSCResources directory and classes marked [DscResource()].
package dsc

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wharflab/pslint/internal/ast"
)

// ResourceFunctions are the functions a script-based resource exports.
var ResourceFunctions = []string{"Get-TargetResource", "Set-TargetResource", "Test-TargetResource"}

// ClassMethods are the methods a class-based resource implements.
var ClassMethods = []string{"Get", "Set", "Test"}

const resourcesDir = "DSCResources"

// IsResourceModule reports whether file is a .psm1 laid out as
// <module>/DSCResources/<resource>/<resource>.psm1.
func IsResourceModule(file string) bool {
	if file == "" || !strings.EqualFold(filepath.Ext(file), ".psm1") {
		return false
	}
	parent := filepath.Dir(filepath.Dir(file))
	return strings.EqualFold(filepath.Base(parent), resourcesDir)
}

// Functions returns the script's top-level functions keyed by lower-case
// name.
func Functions(root ast.Node) map[string]*ast.FunctionDefinition {
	out := make(map[string]*ast.FunctionDefinition)
	isFunc := func(n ast.Node) bool { _, ok := n.(*ast.FunctionDefinition); return ok }
	for n := range ast.Find(root, isFunc, false) {
		fd := n.(*ast.FunctionDefinition)
		key := strings.ToLower(fd.Name)
		if _, dup := out[key]; !dup {
			out[key] = fd
		}
	}
	return out
}

// ResourceFunction returns the top-level definition of one of the
// ResourceFunctions, if present.
func ResourceFunction(root ast.Node, name string) (*ast.FunctionDefinition, bool) {
	fd, ok := Functions(root)[strings.ToLower(name)]
	return fd, ok
}

// HasResourceFunctions reports whether the script defines any of the
// ResourceFunctions at top level.
func HasResourceFunctions(root ast.Node) bool {
	fns := Functions(root)
	for _, name := range ResourceFunctions {
		if _, ok := fns[strings.ToLower(name)]; ok {
			return true
		}
	}
	return false
}

// IsResource reports whether the script should be analyzed as a
// script-based resource.
func IsResource(root ast.Node, file string) bool {
	return IsResourceModule(file) || HasResourceFunctions(root)
}

// Classes returns the classes declared with a [DscResource()] attribute.
func Classes(root ast.Node) []*ast.TypeDefinition {
	var out []*ast.TypeDefinition
	for td := range ast.All[*ast.TypeDefinition](root) {
		if !td.IsEnum && td.HasAttribute("DscResource") {
			out = append(out, td)
		}
	}
	return out
}

// ResourceName is the resource a script-based module implements: its file
// name without extension.
func ResourceName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ModuleRoot returns the directory of the module owning file. For a
// resource module that is two levels above DSCResources/<resource>; for a
// class-based resource it is the script's own directory.
func ModuleRoot(file string) string {
	if IsResourceModule(file) {
		return filepath.Dir(filepath.Dir(filepath.Dir(file)))
	}
	return filepath.Dir(file)
}

// FindArtifacts lists the files under moduleRoot/dir whose name contains
// resource, at any depth. Directory and file names match case-insensitively.
func FindArtifacts(moduleRoot, dir, resource string) ([]string, error) {
	return FindArtifactsFS(os.DirFS(moduleRoot), dir, resource)
}

// FindArtifactsFS is FindArtifacts over fsys.
func FindArtifactsFS(fsys fs.FS, dir, resource string) ([]string, error) {
	pattern := foldCase(dir) + "/**/*" + escapeMeta(resource) + "*"
	return doublestar.Glob(fsys, pattern,
		doublestar.WithFilesOnly(),
		doublestar.WithCaseInsensitive())
}

// foldCase turns a literal name into a pattern matching it in any case
// ("Tests" becomes "[Tt][Ee][Ss][Tt][Ss]"). A literal segment would be
// looked up directly, which is case-sensitive on most file systems.
func foldCase(name string) string {
	var b strings.Builder
	for _, r := range name {
		lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
		if lower == upper {
			b.WriteString(escapeMeta(string(r)))
			continue
		}
		b.WriteByte('[')
		b.WriteRune(upper)
		b.WriteRune(lower)
		b.WriteByte(']')
	}
	return b.String()
}

// escapeMeta quotes the glob metacharacters in a literal name.
func escapeMeta(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
