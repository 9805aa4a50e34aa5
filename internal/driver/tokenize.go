package driver

import (
	"fortio.org/safecast"
	"github.com/spf13/afero"

	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/lexer"
	"weave/internal/parser"
	"weave/internal/source"
	"weave/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes one document in markup mode. Without the parser driving mode
// switches, code regions come out as the markup lexer sees them.
func Tokenize(fsys afero.Fs, path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSetFS(fsys)
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	lx := lexer.New(file, lexer.Options{
		Reporter: diag.BagReporter{Bag: bag},
		Mode:     lexer.ModeMarkup,
	})

	// Токенизация: собираем все токены до EOF
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	bag.Sort()

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Result  parser.Result
	Bag     *diag.Bag
}

// Parse builds the syntax tree of one document with the builtin directives.
func Parse(fsys afero.Fs, path string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSetFS(fsys)
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	maxErrors, err := safecast.Conv[uint](maxDiagnostics)
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(maxDiagnostics)
	res := parser.ParseFile(file, parser.Options{
		Registry:  directive.Builtins(),
		Reporter:  diag.BagReporter{Bag: bag},
		MaxErrors: maxErrors,
	})
	bag.Sort()

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Result:  res,
		Bag:     bag,
	}, nil
}
