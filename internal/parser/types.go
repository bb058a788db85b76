// # internal/parser/types.go
package parser

// File holds the import surface of one parsed source file.
type File struct {
	Path     string
	Language string
	Imports  []Import
}

type Import struct {
	Specifier string
	Dynamic   bool // import(...) or require(...)
	ReExport  bool // export ... from "..."
	Location  Location
}

type Location struct {
	Line   int
	Column int
}

// Specifiers returns the raw import strings in discovery order with
// duplicates collapsed. Several imports of the same specifier are one
// logical import as far as resolution is concerned.
func (f *File) Specifiers() []string {
	seen := make(map[string]bool, len(f.Imports))
	out := make([]string, 0, len(f.Imports))
	for _, imp := range f.Imports {
		if imp.Specifier == "" || seen[imp.Specifier] {
			continue
		}
		seen[imp.Specifier] = true
		out = append(out, imp.Specifier)
	}
	return out
}
