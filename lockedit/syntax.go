package lockedit

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	lockBegin   = "LOCK-BEGIN["
	lockWarning = "]: DON'T MODIFY"
	lockEnd     = "LOCK-END"
)

// Syntax describes how a target language spells the sentinel comments and the imports preamble.
type Syntax interface {
	// Comment returns the line comment token, e.g. "#" or "//".
	Comment() string

	// RenderImports renders sorted imports into lines, each with its terminator.
	RenderImports(modules []Import, from []FromImport) []string
}

var (
	// Hash uses "#" comments and renders imports as "import x" and "from s import y" lines. It is the default syntax.
	Hash Syntax = hashSyntax{}

	// Go uses "//" comments and renders a Go import declaration.
	Go Syntax = goSyntax{}
)

// BeginMarker returns the sentinel line opening the region name.
func BeginMarker(syntax Syntax, indent, name string) string {
	return indent + syntax.Comment() + " " + lockBegin + name + lockWarning + "\n"
}

// EndMarker returns the sentinel line closing a region.
func EndMarker(syntax Syntax, indent string) string {
	return indent + syntax.Comment() + " " + lockEnd + "\n"
}

// Wrap surrounds lines with the sentinel markers of region name.
func Wrap(syntax Syntax, name string, lines []string, headerIndent, footerIndent string) []string {
	wrapped := make([]string, 0, len(lines)+2)
	wrapped = append(wrapped, BeginMarker(syntax, headerIndent, name))
	wrapped = append(wrapped, lines...)
	wrapped = append(wrapped, EndMarker(syntax, footerIndent))
	return wrapped
}

// indentOf returns the leading whitespace of line.
func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

type hashSyntax struct{}

func (hashSyntax) Comment() string { return "#" }

func (hashSyntax) RenderImports(modules []Import, from []FromImport) []string {
	var lines []string
	for _, m := range modules {
		if m.Alias != "" {
			lines = append(lines, fmt.Sprintf("import %s as %s\n", m.Path, m.Alias))
		} else {
			lines = append(lines, fmt.Sprintf("import %s\n", m.Path))
		}
	}
	if len(modules) > 0 && len(from) > 0 {
		lines = append(lines, "\n")
	}
	symbolText := func(s Symbol) string {
		if s.Alias != "" {
			return s.Name + " as " + s.Alias
		}
		return s.Name
	}
	for _, f := range from {
		if len(f.Symbols) == 1 {
			lines = append(lines, fmt.Sprintf("from %s import %s\n", f.Source, symbolText(f.Symbols[0])))
			continue
		}
		lines = append(lines, fmt.Sprintf("from %s import (\n", f.Source))
		for _, s := range f.Symbols {
			lines = append(lines, "    "+symbolText(s)+",\n")
		}
		lines = append(lines, ")\n")
	}
	return append(lines, "\n")
}

type goSyntax struct{}

func (goSyntax) Comment() string { return "//" }

// RenderImports renders a Go import declaration. Go can't import single symbols, so symbol imports
// import their source package instead.
func (goSyntax) RenderImports(modules []Import, from []FromImport) []string {
	set := make(map[Import]struct{}, len(modules)+len(from))
	for _, m := range modules {
		set[m] = struct{}{}
	}
	for _, f := range from {
		set[Import{Path: f.Source}] = struct{}{}
	}
	all := slices.SortedFunc(maps.Keys(set), func(a, b Import) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Alias, b.Alias))
	})
	spec := func(m Import) string {
		if m.Alias != "" {
			return fmt.Sprintf("%s %q", m.Alias, m.Path)
		}
		return fmt.Sprintf("%q", m.Path)
	}
	if len(all) == 1 {
		return []string{"import " + spec(all[0]) + "\n"}
	}
	lines := []string{"import (\n"}
	for _, m := range all {
		lines = append(lines, "\t"+spec(m)+"\n")
	}
	return append(lines, ")\n")
}
