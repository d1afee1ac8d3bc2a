// Package main собирает multichecker для проверки кода сервиса.
//
// В набор входят:
//
//   - анализаторы golang.org/x/tools/go/analysis/passes: assign, atomic, bools,
//     buildtag, copylocks, errorsas, httpresponse, lostcancel, nilness, printf,
//     shadow, stdmethods, structtag, unreachable, unusedresult;
//   - все анализаторы класса SA из staticcheck.io;
//   - ST1000 (комментарий пакета), ST1005 (текст ошибок) и S1000 (лишний select)
//     из остальных классов staticcheck.io;
//   - errcheck (необработанные ошибки);
//   - noexit: прямой вызов os.Exit в функции main пакета main.
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"strings"

	"github.com/kisielk/errcheck/errcheck"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/buildtag"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/tempizhere/linkstat/cmd/staticlint/noexit"
)

// extraChecks проверки staticcheck вне класса SA
var extraChecks = map[string]bool{
	"ST1000": true,
	"ST1005": true,
	"S1000":  true,
}

func main() {
	multichecker.Main(analyzers()...)
}

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		assign.Analyzer,
		atomic.Analyzer,
		bools.Analyzer,
		buildtag.Analyzer,
		copylock.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		nilness.Analyzer,
		printf.Analyzer,
		shadow.Analyzer,
		stdmethods.Analyzer,
		structtag.Analyzer,
		unreachable.Analyzer,
		unusedresult.Analyzer,
	}

	list = append(list, selectChecks(staticcheck.Analyzers, func(name string) bool {
		return strings.HasPrefix(name, "SA")
	})...)
	for _, group := range [][]*lint.Analyzer{stylecheck.Analyzers, simple.Analyzers} {
		list = append(list, selectChecks(group, func(name string) bool {
			return extraChecks[name]
		})...)
	}

	return append(list, errcheck.Analyzer, noexit.Analyzer)
}

func selectChecks(group []*lint.Analyzer, keep func(name string) bool) []*analysis.Analyzer {
	var selected []*analysis.Analyzer
	for _, a := range group {
		if keep(a.Analyzer.Name) {
			selected = append(selected, a.Analyzer)
		}
	}
	return selected
}
