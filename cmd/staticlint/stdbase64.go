package main

import (
	"go/ast"
	"path"

	"golang.org/x/tools/go/analysis"
)

// StdBase64Analyzer следит, чтобы пакет gzip64 кодировал тела только
// стандартным алфавитом Base64 с выравниванием.
var StdBase64Analyzer = &analysis.Analyzer{
	Name: "stdbase64",
	Doc:  "reports non-standard base64 encodings used in the gzip64 package",
	Run:  runStdBase64,
}

var forbiddenEncodings = []string{"URLEncoding", "RawURLEncoding", "RawStdEncoding"}

func runStdBase64(pass *analysis.Pass) (interface{}, error) {
	if path.Base(pass.Pkg.Path()) != "gzip64" {
		return nil, nil
	}

	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			for _, name := range forbiddenEncodings {
				if isPkgSelector(pass, sel, "encoding/base64", name) {
					pass.Reportf(sel.Pos(), "base64.%s is not allowed here, use base64.StdEncoding", name)
				}
			}
			return true
		})
	}

	return nil, nil
}
