// Package analyzer reports constructs that lose the current async local context when used in
// functions running within one.
package analyzer

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "asynclocal",
	Doc:      "Checks for constructs losing the async local context in functions taking *asynclocal.Context",
	Run:      run,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{(*ast.FuncDecl)(nil), (*ast.FuncLit)(nil)}

	inspector.Preorder(nodeFilter, func(node ast.Node) {
		var typ *ast.FuncType
		var body *ast.BlockStmt

		switch fn := node.(type) {
		case *ast.FuncDecl:
			typ, body = fn.Type, fn.Body
		case *ast.FuncLit:
			typ, body = fn.Type, fn.Body
		}

		if body == nil || !takesContext(typ) {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncLit:
				// Checked on its own
				return !takesContext(n.Type)

			case *ast.GoStmt:
				pass.Reportf(n.Pos(), "use loop.Go instead of `go`, goroutines do not carry the async local context")

			case *ast.CallExpr:
				switch timeFunc(pass, n) {
				case "Sleep":
					pass.Reportf(n.Pos(), "time.Sleep blocks the loop, use loop.AfterFunc instead")
				case "AfterFunc":
					pass.Reportf(n.Pos(), "use loop.AfterFunc instead of time.AfterFunc, the callback does not carry the async local context")
				}
			}

			return true
		})
	})

	return nil, nil
}

// takesContext reports whether the first parameter is of type *asynclocal.Context.
func takesContext(typ *ast.FuncType) bool {
	if typ.Params == nil || len(typ.Params.List) < 1 {
		return false
	}

	star, ok := typ.Params.List[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}

	sel, ok := star.X.(*ast.SelectorExpr)
	if !ok {
		return false
	}

	xname, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}

	return xname.Name+"."+sel.Sel.Name == "asynclocal.Context"
}

// timeFunc returns the name of the function from package time called by call, if any.
func timeFunc(pass *analysis.Pass, call *ast.CallExpr) string {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return ""
	}

	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "time" {
		return ""
	}

	return fn.Name()
}
