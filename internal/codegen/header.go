package codegen

import (
	"encoding/hex"

	"github.com/google/uuid"

	"weave/internal/source"
)

// namespace is the UUID namespace of document ids.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://weave.dev/document"))

// Checksum is the hex SHA-256 of the template content.
func Checksum(f *source.File) string {
	if f == nil {
		return ""
	}
	return hex.EncodeToString(f.Hash[:])
}

// DocumentID derives the id of a template from its path and content.
func DocumentID(f *source.File) uuid.UUID {
	if f == nil {
		return uuid.Nil
	}
	return uuid.NewSHA1(namespace, []byte(f.Path+"\x00"+Checksum(f)))
}

func (g *generator) header() {
	g.w.Write("// Code generated by weave. DO NOT EDIT.")
	g.w.Newline()
	if g.file != nil {
		g.w.Write("// source: " + g.file.Path)
		g.w.Newline()
		g.w.Write("// checksum: sha256:" + Checksum(g.file))
		g.w.Newline()
		g.w.Write("// document: " + DocumentID(g.file).String())
		g.w.Newline()
	}
	g.w.Newline()
}
