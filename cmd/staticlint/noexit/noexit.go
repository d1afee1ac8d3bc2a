// Package noexit содержит анализатор, запрещающий прямой вызов os.Exit в функции main пакета main.
package noexit

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer сообщает о вызовах os.Exit в main.main.
// Сгенерированные файлы (например, main тестового бинаря) пропускаются.
var Analyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "запрещает прямой вызов os.Exit в функции main пакета main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	generated := make(map[*ast.File]bool)
	for _, file := range pass.Files {
		generated[file] = ast.IsGenerated(file)
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.WithStack([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		if file, ok := stack[0].(*ast.File); ok && generated[file] {
			return false
		}
		if !insideMain(stack) {
			return true
		}
		call := n.(*ast.CallExpr)
		if isOSExit(pass, call) {
			pass.Reportf(call.Pos(), "прямой вызов os.Exit в функции main запрещен")
		}
		return true
	})

	return nil, nil
}

// insideMain проверяет, что узел лежит в теле функции main верхнего уровня
func insideMain(stack []ast.Node) bool {
	for _, node := range stack {
		if decl, ok := node.(*ast.FuncDecl); ok {
			return decl.Recv == nil && decl.Name.Name == "main"
		}
	}
	return false
}

func isOSExit(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Exit" {
		return false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	return ok && fn.Pkg() != nil && fn.Pkg().Path() == "os"
}
