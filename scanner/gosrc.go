package scanner

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// DefaultFuncs maps lookup function names to the index of their key argument.
var DefaultFuncs = map[string]int{
	"Translate": 2, // Backend.Translate(ctx, locale, key, opts)
	"T":         0,
}

// GoScanner collects string-literal keys passed to lookup functions.
type GoScanner struct {
	funcs map[string]int
}

// GoScannerOption configures the Go scanner.
type GoScannerOption func(*GoScanner)

// WithFunc registers a function name and the index of its key argument.
func WithFunc(name string, argIndex int) GoScannerOption {
	return func(s *GoScanner) {
		s.funcs[name] = argIndex
	}
}

// NewGoScanner creates a Go source scanner.
func NewGoScanner(opts ...GoScannerOption) *GoScanner {
	s := &GoScanner{funcs: make(map[string]int, len(DefaultFuncs))}
	for name, idx := range DefaultFuncs {
		s.funcs[name] = idx
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan parses Go source and returns keys in source order.
// Calls with a non-literal key argument are skipped.
func (s *GoScanner) Scan(name string, content []byte) ([]Key, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, content, parser.SkipObjectResolution)
	if err != nil {
		return nil, &ScanError{Message: "failed to parse Go source", Cause: err, File: name}
	}

	var keys []Key
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		idx, ok := s.funcs[funcName(call.Fun)]
		if !ok || idx >= len(call.Args) {
			return true
		}

		lit, ok := call.Args[idx].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return true
		}

		key, err := strconv.Unquote(lit.Value)
		if err != nil || key == "" {
			return true
		}

		keys = append(keys, Key{
			Key:  key,
			File: name,
			Line: fset.Position(lit.Pos()).Line,
			Kind: s.Kind(),
		})
		return true
	})

	return keys, nil
}

// Kind returns "go".
func (s *GoScanner) Kind() string {
	return "go"
}

// Extensions returns [".go"].
func (s *GoScanner) Extensions() []string {
	return []string{".go"}
}

func funcName(expr ast.Expr) string {
	switch fn := expr.(type) {
	case *ast.Ident:
		return fn.Name
	case *ast.SelectorExpr:
		return fn.Sel.Name
	case *ast.IndexExpr:
		return funcName(fn.X)
	}
	return ""
}

// Verify GoScanner implements Scanner
var _ Scanner = (*GoScanner)(nil)
