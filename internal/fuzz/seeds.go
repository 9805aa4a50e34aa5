package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addGrammarSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.weave файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".weave" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

// grammarSeeds touch every construct of the template grammar once.
var grammarSeeds = []string{
	"",
	"plain text",
	"<p>Hello @Name</p>",
	"mail@example.com @@ literal",
	"@Model.Items[0].Name()",
	"@(a + b)",
	"@{ x := 1 }",
	"@if a { <b>x</b> } else if b { @:text } else { y }",
	"@for _, v := range xs { <li>@v</li> }",
	"@switch k { case 1: <i>one</i> }",
	"<!-- markup comment --> @* template comment *@",
	"<!DOCTYPE html><br/><img src=\"@src\">",
	"<input value='@v' disabled>",
	"@import \"fmt\"\n@model *M\n@inherits Base\n@inject Svc S",
	"@page \"/home\"\n@layout \"base\"\n@package views\n@implements io.Writer",
	"@tagHelperPrefix \"th:\"\n<th:card title=\"t\"></th:card>",
	"@functions { func f() {} }",
	"@section Head { <title>x</title> }",
	"<card title=\"Hi @name\">body</card>",
}

func addGrammarSeeds(f *testing.F) {
	for _, s := range grammarSeeds {
		f.Add([]byte(s))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
