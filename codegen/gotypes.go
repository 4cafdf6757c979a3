package codegen

import (
	"fmt"
	"path"
	"strings"

	"github.com/gomlx/solmate/idl"
	"github.com/gomlx/solmate/internal/strcase"
	"github.com/gomlx/solmate/lockedit"
	"github.com/gomlx/solmate/solana"
	"github.com/pkg/errors"
)

// TypeContext is where a Go type expression is written: the file, which must import whatever the
// expression refers to, and whether that file belongs to the types package.
type TypeContext struct {
	g       *Generator
	Editor  *lockedit.Editor
	InTypes bool
}

func (g *Generator) typeContext(e *lockedit.Editor, inTypes bool) *TypeContext {
	return &TypeContext{g: g, Editor: e, InTypes: inTypes}
}

// Import adds an import to the file.
func (ctx *TypeContext) Import(importPath string) {
	ctx.Editor.Imports().Add(importPath, "")
}

// ProgramPackage imports the program package and returns its name.
func (ctx *TypeContext) ProgramPackage() string {
	ctx.Import(ctx.g.rootPath)
	return ctx.g.root
}

// HasConstant returns whether the program defines the IDL constant name.
func (ctx *TypeContext) HasConstant(name string) bool {
	for _, c := range ctx.g.spec.Constants {
		if c.Name == name {
			return true
		}
	}
	return false
}

// GoType spells t in Go. The policy gets the first word on every level of nesting.
func (ctx *TypeContext) GoType(t *idl.Type) string {
	if name, ok := ctx.g.policy.TypeName(ctx, t); ok {
		return name
	}
	return ctx.DefaultGoType(t)
}

// DefaultGoType spells t without asking the policy about t itself. Nested types still go through
// GoType.
func (ctx *TypeContext) DefaultGoType(t *idl.Type) string {
	switch t.Kind {
	case idl.KindPrimitive:
		switch t.DType.GoPackage() {
		case "borsh":
			ctx.Import(BorshPackage)
		case "solana":
			ctx.Import(SolanaPackage)
		}
		return t.DType.GoType()
	case idl.KindDefined:
		return ctx.definedType(t.Name)
	case idl.KindOption:
		return "*" + ctx.GoType(t.Elem)
	case idl.KindCOption:
		ctx.Import(BorshPackage)
		return "borsh.COption[" + ctx.GoType(t.Elem) + "]"
	case idl.KindVec:
		return "[]" + ctx.GoType(t.Elem)
	case idl.KindArray:
		return fmt.Sprintf("[%d]%s", t.Len, ctx.GoType(t.Elem))
	}
	panic(fmt.Sprintf("unexpected IDL type kind %s", t.Kind))
}

// definedType spells a reference to a user defined type and records it as expected.
func (ctx *TypeContext) definedType(name string) string {
	g := ctx.g
	g.expected[name] = true
	goName := strcase.GoName(name)
	if importPath, found := g.opts.ExternalTypes[name]; found {
		alias := importAlias(importPath)
		ctx.Editor.Imports().Add(importPath, alias)
		return alias + "." + goName
	}
	if ctx.InTypes {
		return goName
	}
	ctx.Import(g.rootPath + "/types")
	return "types." + goName
}

// importAlias names an external package after the last two elements of its path, so it never
// collides with the generated "types" package: "example.com/other/types" is imported as othertypes.
func importAlias(importPath string) string {
	dir, base := path.Split(strings.TrimSuffix(importPath, "/"))
	alias := path.Base(dir) + base
	if dir == "" {
		alias = base
	}
	var sb strings.Builder
	for _, r := range strings.ToLower(alias) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' && sb.Len() > 0 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// addressExpr returns the Go expression of an address given by name or in base58.
func (g *Generator) addressExpr(value string) (string, error) {
	if _, found := g.opts.Addresses[value]; found {
		return g.root + "." + strcase.GoName(value), nil
	}
	if expr, found := BuiltinAddresses[strcase.Snake(value)]; found {
		return expr, nil
	}
	if _, err := solana.PublicKeyFromBase58(value); err != nil {
		return "", errors.WithMessagef(err, "%q is neither a known address name nor a valid address", value)
	}
	return fmt.Sprintf("solana.MustPublicKeyFromBase58(%q)", value), nil
}

// commentLines renders text as Go comment lines, with the given indentation.
func commentLines(indent string, text []string) []string {
	lines := make([]string, 0, len(text))
	for _, line := range text {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			lines = append(lines, indent+"//\n")
			continue
		}
		lines = append(lines, indent+"// "+line+"\n")
	}
	return lines
}

// docComment returns the IDL documentation of a declaration, or fallback if there is none.
func docComment(docs []string, fallback string) []string {
	if len(docs) == 0 {
		return commentLines("", []string{fallback})
	}
	return commentLines("", docs)
}

// paragraph prefixes text with an empty line, if it isn't empty.
func paragraph(text []string) []string {
	if len(text) == 0 {
		return nil
	}
	return append([]string{""}, text...)
}

// alignColumns renders rows of cells the way gofmt aligns struct fields, const specs and keyed
// values: every cell but the last is padded to the widest cell of its column, plus one space.
// Rows with a single cell are written as is and don't count for the widths.
func alignColumns(indent string, rows [][]string) []string {
	var widths []int
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		for col, cell := range row[:len(row)-1] {
			if col == len(widths) {
				widths = append(widths, 0)
			}
			widths[col] = max(widths[col], len(cell))
		}
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var sb strings.Builder
		sb.WriteString(indent)
		for col, cell := range row {
			sb.WriteString(cell)
			if col < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[col]-len(cell)+1))
			}
		}
		sb.WriteString("\n")
		lines = append(lines, sb.String())
	}
	return lines
}

// receiverName returns the receiver used in methods of the Go type goName.
func receiverName(goName string) string {
	return strings.ToLower(goName[:1])
}
