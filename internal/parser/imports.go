// # internal/parser/imports.go
package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// jsImportExtractor collects import specifiers from a JavaScript or
// TypeScript syntax tree. The same grammar node kinds cover javascript,
// typescript and tsx, so one extractor serves all three dialects.
//
// Recognized forms:
//   - import d, {a as b} from "x" / import * as ns from "x" / import "x"
//   - export {a} from "x" / export * from "x"
//   - import("x")
//   - require("x")
//
// Walking the syntax tree means specifier strings inside comments are never
// collected; no separate comment stripping is needed.
type jsImportExtractor struct {
	language string
}

func newImportExtractor(language string) *jsImportExtractor {
	return &jsImportExtractor{language: language}
}

func (e *jsImportExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: e.language,
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement": e.extractImport,
		"export_statement": e.extractReExport,
		"call_expression":  e.extractCall,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *jsImportExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) {
	specifier := sourceSpecifier(ctx, node)
	if specifier == "" {
		return
	}
	ctx.File.Imports = append(ctx.File.Imports, Import{
		Specifier: specifier,
		Location:  ctx.Location(node),
	})
}

func (e *jsImportExtractor) extractReExport(ctx *ExtractionContext, node *sitter.Node) {
	// Only export statements with a source clause reference another module.
	specifier := sourceSpecifier(ctx, node)
	if specifier == "" {
		return
	}
	ctx.File.Imports = append(ctx.File.Imports, Import{
		Specifier: specifier,
		ReExport:  true,
		Location:  ctx.Location(node),
	})
}

func (e *jsImportExtractor) extractCall(ctx *ExtractionContext, node *sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	switch fn.Kind() {
	case "import":
		// dynamic import("x")
	case "identifier":
		if ctx.Text(fn) != "require" {
			return
		}
	default:
		return
	}

	args := node.ChildByFieldName("arguments")
	specifier := firstStringArgument(ctx, args)
	if specifier == "" {
		return
	}
	ctx.File.Imports = append(ctx.File.Imports, Import{
		Specifier: specifier,
		Dynamic:   true,
		Location:  ctx.Location(node),
	})
}

// sourceSpecifier reads the "source" field of an import/export statement,
// falling back to the first string child for grammar variants that omit
// the field.
func sourceSpecifier(ctx *ExtractionContext, node *sitter.Node) string {
	src := node.ChildByFieldName("source")
	if src != nil {
		return trimQuoted(ctx.Text(src))
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "string" {
			return trimQuoted(ctx.Text(child))
		}
	}
	return ""
}

// firstStringArgument returns the text of the first plain string argument.
// Computed or template-substituted arguments are out of scope and yield "".
func firstStringArgument(ctx *ExtractionContext, args *sitter.Node) string {
	if args == nil {
		return ""
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		switch child.Kind() {
		case "string":
			return trimQuoted(ctx.Text(child))
		case "template_string":
			text := trimQuoted(ctx.Text(child))
			if !strings.Contains(text, "${") {
				return text
			}
			return ""
		}
	}
	return ""
}

func trimQuoted(value string) string {
	value = strings.TrimSpace(value)
	return strings.Trim(value, "\"'`")
}
