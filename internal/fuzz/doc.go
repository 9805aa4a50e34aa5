// Package fuzztests houses Go fuzz harnesses that exercise the template
// pipeline (source -> lexer -> parser -> compiler). Its goal is to smoke test
// robustness and guard against panics, hangs and broken tree invariants on
// arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через лексер, парсер и полный конвейер.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
