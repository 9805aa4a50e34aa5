package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM marks content that starts with a UTF-8 byte order mark.
	FileHadBOM
)

// DefaultEncoding is the only encoding the lexer understands natively.
const DefaultEncoding = "utf-8"

// File captures metadata and content for a single source document.
// Content is never mutated after the file is added to a FileSet.
type File struct {
	ID       FileID
	Path     string
	Content  []byte
	Encoding string
	LineIdx  []uint32 // offsets of '\n' bytes
	Hash     [32]byte
	Flags    FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
