package lockedit

import (
	"cmp"
	"maps"
	"slices"
)

// Import is one whole-module import, optionally aliased.
type Import struct {
	Path  string
	Alias string
}

// Symbol is one name imported from a source module, optionally aliased.
type Symbol struct {
	Name  string
	Alias string
}

// FromImport groups the symbols imported from one source module.
type FromImport struct {
	Source  string
	Symbols []Symbol
}

// Imports accumulates the external declarations a generated file needs. Repeated additions are no-ops,
// and rendering is sorted, so unchanged input always renders the same text.
type Imports struct {
	modules map[Import]struct{}
	from    map[string]map[Symbol]struct{}
}

// NewImports creates an empty aggregator.
func NewImports() *Imports {
	return &Imports{
		modules: make(map[Import]struct{}),
		from:    make(map[string]map[Symbol]struct{}),
	}
}

// Add requests a whole-module import of path, with an optional alias.
func (im *Imports) Add(path, alias string) {
	im.modules[Import{Path: path, Alias: alias}] = struct{}{}
}

// AddFrom requests symbol from source, with an optional alias.
func (im *Imports) AddFrom(source, symbol, alias string) {
	symbols, found := im.from[source]
	if !found {
		symbols = make(map[Symbol]struct{})
		im.from[source] = symbols
	}
	symbols[Symbol{Name: symbol, Alias: alias}] = struct{}{}
}

// Empty returns whether nothing was requested.
func (im *Imports) Empty() bool {
	return len(im.modules) == 0 && len(im.from) == 0
}

// Reset drops everything requested so far.
func (im *Imports) Reset() {
	clear(im.modules)
	clear(im.from)
}

// Modules returns the whole-module imports sorted by path, then alias.
func (im *Imports) Modules() []Import {
	return slices.SortedFunc(maps.Keys(im.modules), func(a, b Import) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Alias, b.Alias))
	})
}

// FromImports returns the symbol imports sorted by source, each with its symbols sorted by name, then alias.
func (im *Imports) FromImports() []FromImport {
	sources := slices.Sorted(maps.Keys(im.from))
	result := make([]FromImport, 0, len(sources))
	for _, source := range sources {
		symbols := slices.SortedFunc(maps.Keys(im.from[source]), func(a, b Symbol) int {
			return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Alias, b.Alias))
		})
		result = append(result, FromImport{Source: source, Symbols: symbols})
	}
	return result
}

// Render returns the import lines in the given syntax, or nil if nothing was requested.
func (im *Imports) Render(syntax Syntax) []string {
	if im.Empty() {
		return nil
	}
	return syntax.RenderImports(im.Modules(), im.FromImports())
}
