// Package loader discovers function-like declarations in Go source and
// exposes them to the analysis engine: name, attached documentation
// blocks, body, and source location.
package loader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vihrea/vihrea/types"
)

// FunctionDecl is one function-like declaration ready for analysis.
type FunctionDecl struct {
	// Name identifies the declaration for aggregation: plain function
	// name, Recv.Method for methods, or the bound variable name for an
	// anonymous function assigned to a package-level variable.
	Name string

	// DocBlocks are the ordered documentation blocks attached to the
	// declaration. A doc comment separated by blank lines counts as
	// multiple stacked blocks.
	DocBlocks []string

	// Body is the traversable body structure. Nil for declarations
	// without a body (e.g. assembly stubs).
	Body *ast.BlockStmt

	Location types.Location
}

// Loader parses Go source into ordered declaration lists.
type Loader struct {
	fset *token.FileSet
}

// NewLoader creates a source loader.
func NewLoader() *Loader {
	return &Loader{fset: token.NewFileSet()}
}

// LoadFile parses one Go file and returns its declarations in source order.
func (l *Loader) LoadFile(path string) ([]FunctionDecl, error) {
	file, err := parser.ParseFile(l.fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return l.collectDecls(file), nil
}

// LoadSource parses Go source held in memory. Used by tests and by
// callers that already loaded file contents.
func (l *Loader) LoadSource(filename, src string) ([]FunctionDecl, error) {
	file, err := parser.ParseFile(l.fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return l.collectDecls(file), nil
}

// LoadDir walks a directory tree and parses every non-test Go file.
// Unparseable files are skipped; discovery never aborts the scan.
func (l *Loader) LoadDir(root string) ([]FunctionDecl, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(paths)

	var decls []FunctionDecl
	for _, path := range paths {
		fileDecls, err := l.LoadFile(path)
		if err != nil {
			continue
		}
		decls = append(decls, fileDecls...)
	}
	return decls, nil
}

// collectDecls gathers function declarations and package-level function
// values in source order.
func (l *Loader) collectDecls(file *ast.File) []FunctionDecl {
	var decls []FunctionDecl
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			decls = append(decls, l.fromFuncDecl(d))
		case *ast.GenDecl:
			decls = append(decls, l.fromGenDecl(d)...)
		}
	}
	return decls
}

// fromFuncDecl builds a declaration from a func or method declaration.
func (l *Loader) fromFuncDecl(d *ast.FuncDecl) FunctionDecl {
	name := d.Name.Name
	if recv := receiverName(d); recv != "" {
		name = recv + "." + name
	}
	return FunctionDecl{
		Name:      name,
		DocBlocks: splitDocBlocks(d.Doc),
		Body:      d.Body,
		Location:  l.location(d.Pos()),
	}
}

// fromGenDecl picks up anonymous functions bound to package-level
// variables: var handler = func(...) {...}.
func (l *Loader) fromGenDecl(d *ast.GenDecl) []FunctionDecl {
	if d.Tok != token.VAR {
		return nil
	}
	var decls []FunctionDecl
	for _, spec := range d.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for i, value := range vs.Values {
			lit, ok := value.(*ast.FuncLit)
			if !ok || i >= len(vs.Names) {
				continue
			}
			doc := vs.Doc
			if doc == nil {
				doc = d.Doc
			}
			decls = append(decls, FunctionDecl{
				Name:      vs.Names[i].Name,
				DocBlocks: splitDocBlocks(doc),
				Body:      lit.Body,
				Location:  l.location(lit.Pos()),
			})
		}
	}
	return decls
}

func (l *Loader) location(pos token.Pos) types.Location {
	p := l.fset.Position(pos)
	return types.Location{File: p.Filename, Line: p.Line}
}

// receiverName extracts the receiver type name, unwrapping pointers
// and generic instantiations.
func receiverName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return ""
	}
	expr := d.Recv.List[0].Type
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}

// splitDocBlocks turns a doc comment group into stacked blocks,
// splitting on blank lines so each block is processed independently.
func splitDocBlocks(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	text := strings.TrimSpace(doc.Text())
	if text == "" {
		return nil
	}
	var blocks []string
	for _, raw := range strings.Split(text, "\n\n") {
		if block := strings.TrimSpace(raw); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
