// Package codegen generates Go bindings for a Solana program from its IDL.
//
// Every declaration the generator owns is written inside a lock region (see package lockedit), so
// generation can be re-run over files a developer has edited: the locked regions are rewritten with
// the current IDL, everything outside of them is left alone. Helper code that is meant to be
// customized (e.g. the MarshalBorsh hooks of a type) is written after its region only the first
// time the region is created.
//
// For a program called "points" the generated layout is:
//
//	<OutDir>/points/doc.go                      package points
//	<OutDir>/points/addrs.go                    ProgramID and named addresses
//	<OutDir>/points/constants.go                constants
//	<OutDir>/points/errors.go                   the program's custom errors
//	<OutDir>/points/accounts.go                 account tags and DecodeAccount
//	<OutDir>/points/events.go                   event tags and DecodeEvent
//	<OutDir>/points/types/<type>.go             one file per type, account and event
//	<OutDir>/points/instructions/<ix>.go        one file per instruction
//	<OutDir>/points/instructions/instruction_tag.go
package codegen

import (
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gomlx/solmate/dtypes"
	"github.com/gomlx/solmate/idl"
	"github.com/gomlx/solmate/internal/strcase"
	"github.com/gomlx/solmate/lockedit"
	"github.com/gomlx/solmate/solana"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Import paths of the packages generated code depends on.
const (
	BorshPackage  = "github.com/gomlx/solmate/borsh"
	SolanaPackage = "github.com/gomlx/solmate/solana"
	ErrorsPackage = "github.com/pkg/errors"
)

// PackageRegion is the lock region holding the package clause of every generated file. Imports
// are placed right after it.
const PackageRegion = "package"

// TagValues selects how the tags prefixing instruction data and account data are computed.
type TagValues string

const (
	// TagsAnchor uses Anchor discriminators: the first 8 bytes of a sha256 sighash, packed as a u64.
	TagsAnchor TagValues = "anchor"

	// TagsIncremental numbers tags in declaration order, packed with the configured tag DType.
	TagsIncremental TagValues = "incremental"

	// TagsBySize doesn't tag accounts at all: DecodeAccount tells them apart by their packed size.
	// Only valid for accounts.
	TagsBySize TagValues = "size"
)

// Options configure the generation of one program.
type Options struct {
	// OutDir is the directory where the program's package directory is created.
	OutDir string

	// Package is the Go import path of OutDir. Generated packages import each other through it.
	Package string

	// ProgramID overrides the program address found in the IDL metadata.
	ProgramID string

	// Addresses are named well-known addresses, generated as variables of the program package. They
	// can be referred to by DefaultAccounts.
	Addresses map[string]string

	// DefaultAccounts maps an instruction account name (as in the IDL, or in snake_case) to the key
	// used when the caller leaves it zero: either a name in Addresses, a builtin name (see
	// BuiltinAddresses) or a base58 address.
	DefaultAccounts map[string]string

	// InstructionTags and InstructionTagType define the instruction tag. The type is only used by
	// TagsIncremental and defaults to U8.
	InstructionTags    TagValues
	InstructionTagType dtypes.DType

	// AccountTags and AccountTagType define the account tag.
	AccountTags    TagValues
	AccountTagType dtypes.DType

	// SkipTypes are IDL types not generated: the developer provides them in the types package.
	SkipTypes []string

	// ExternalTypes maps type names to the import path of the Go package defining them, for types
	// shared with another program's bindings.
	ExternalTypes map[string]string

	// CheckMissingTypes makes Generate fail if a type is referenced but never defined.
	CheckMissingTypes bool

	// Policy customizes generation for a family of programs. Defaults to BasePolicy.
	Policy Policy
}

// BuiltinAddresses are the names DefaultAccounts can use for well-known addresses, mapped to the
// expression generated code uses.
var BuiltinAddresses = map[string]string{
	"system_program":           "solana.SystemProgramID",
	"token_program":            "solana.TokenProgramID",
	"associated_token_program": "solana.AssociatedTokenProgramID",
	"rent":                     "solana.SysvarRentPubkey",
	"clock":                    "solana.SysvarClockPubkey",
	"recent_blockhashes":       "solana.SysvarRecentBlockhashes",
}

// Generator writes the bindings of one program.
type Generator struct {
	spec   *idl.IDL
	opts   Options
	policy Policy

	// root is both the name and the directory of the program package.
	root     string
	rootPath string
	docs     map[string][]string

	editors map[string]*lockedit.Editor

	// defined and expected are the type names generated (or provided) and referenced.
	defined  map[string]bool
	expected map[string]bool
}

// New validates opts and creates a Generator for spec. spec is not modified, except for the
// removal of opts.SkipTypes.
func New(spec *idl.IDL, opts Options) (*Generator, error) {
	if spec == nil || spec.Name == "" {
		return nil, errors.New("IDL without a program name")
	}
	if opts.OutDir == "" {
		return nil, errors.Errorf("program %q: no output directory", spec.Name)
	}
	if opts.Package == "" {
		return nil, errors.Errorf("program %q: no Go package path for output directory %q", spec.Name, opts.OutDir)
	}
	if opts.Policy == nil {
		opts.Policy = BasePolicy{}
	}
	var err error
	if opts.InstructionTagType, err = checkTags("instruction", opts.InstructionTags, opts.InstructionTagType, false); err != nil {
		return nil, errors.WithMessagef(err, "program %q", spec.Name)
	}
	if opts.AccountTagType, err = checkTags("account", opts.AccountTags, opts.AccountTagType, true); err != nil {
		return nil, errors.WithMessagef(err, "program %q", spec.Name)
	}
	if opts.InstructionTags == "" {
		opts.InstructionTags = TagsAnchor
	}
	if opts.AccountTags == "" {
		opts.AccountTags = TagsAnchor
	}
	for name, address := range opts.Addresses {
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return nil, errors.WithMessagef(err, "program %q: address %q", spec.Name, name)
		}
	}

	g := &Generator{
		spec:     spec,
		opts:     opts,
		policy:   opts.Policy,
		root:     packageName(spec.Name),
		editors:  make(map[string]*lockedit.Editor),
		defined:  make(map[string]bool),
		expected: make(map[string]bool),
	}
	g.rootPath = path.Join(opts.Package, g.root)
	for _, value := range opts.DefaultAccounts {
		if _, err := g.addressExpr(value); err != nil {
			return nil, errors.WithMessagef(err, "program %q: default account", spec.Name)
		}
	}

	spec.SkipTypes(opts.SkipTypes...)
	for _, name := range opts.SkipTypes {
		g.defined[name] = true
	}
	for name := range opts.ExternalTypes {
		g.defined[name] = true
	}

	g.docs = map[string][]string{
		g.root: append([]string{
			"Package " + g.root + " holds the Go bindings of the \"" + spec.Name + "\" Solana program.",
		}, paragraph(spec.Docs)...),
		g.typesModule():        {"Package types holds the types, accounts and events of the \"" + spec.Name + "\" program."},
		g.instructionsModule(): {"Package instructions builds the instructions of the \"" + spec.Name + "\" program."},
	}
	return g, nil
}

// checkTags validates a tag configuration and returns the tag DType to use.
func checkTags(what string, tags TagValues, dtype dtypes.DType, bySize bool) (dtypes.DType, error) {
	switch tags {
	case "", TagsAnchor, TagsIncremental:
	case TagsBySize:
		if !bySize {
			return dtype, errors.Errorf("%s tags can't be %q", what, tags)
		}
	default:
		return dtype, errors.Errorf("unknown %s tag values %q, valid values are %q and %q", what, tags, TagsAnchor, TagsIncremental)
	}
	if dtype == dtypes.Invalid {
		return dtypes.U8, nil
	}
	if !dtype.IsUnsigned() || dtype.Size() > 8 {
		return dtype, errors.Errorf("%s tag type must be an unsigned integer of up to 64 bits, got %s", what, dtype)
	}
	return dtype, nil
}

// packageName returns the Go package name of a program: its snake_case name without underscores.
func packageName(program string) string {
	return strings.ReplaceAll(strcase.Snake(strcase.KebabToSnake(program)), "_", "")
}

// Root returns the name of the program package.
func (g *Generator) Root() string { return g.root }

func (g *Generator) typesModule() string        { return g.root + ".types" }
func (g *Generator) instructionsModule() string { return g.root + ".instructions" }

// Editor returns the editor of a module, creating and loading it on first use. A dotted module
// "a.b.c" is the file <OutDir>/a/b/c.go if isFile, or the package documentation file
// <OutDir>/a/b/c/doc.go otherwise. The package region is written the first time.
func (g *Generator) Editor(module string, isFile bool) (*lockedit.Editor, error) {
	key := module
	if !isFile {
		key += "/"
	}
	if e, found := g.editors[key]; found {
		return e, nil
	}
	parts := strings.Split(module, ".")
	var filePath, pkg string
	if isFile {
		if len(parts) < 2 {
			return nil, errors.Errorf("file module %q must be inside a package", module)
		}
		filePath = filepath.Join(g.opts.OutDir, filepath.Join(parts...)+".go")
		pkg = parts[len(parts)-2]
	} else {
		filePath = filepath.Join(g.opts.OutDir, filepath.Join(parts...), "doc.go")
		pkg = parts[len(parts)-1]
	}
	e, err := lockedit.Open(filePath, lockedit.WithSyntax(lockedit.Go))
	if err != nil {
		return nil, err
	}
	e.SetImportsAnchor(PackageRegion)

	// The blank line keeps the marker from being taken for the package documentation.
	lines := []string{"\n"}
	if !isFile {
		lines = append(lines, commentLines("", g.docs[module])...)
	}
	lines = append(lines, "package "+pkg+"\n")
	if _, err = e.SetWithLock(PackageRegion, lines, lockedit.AtLine(0)); err != nil {
		return nil, err
	}
	klog.V(2).Infof("editing %s", filePath)
	g.editors[key] = e
	return e, nil
}

// setRegion writes the lock region name of e. A new region is appended at the end of the file,
// separated by a blank line. It returns whether the region was created.
func setRegion(e *lockedit.Editor, name string, lines []string) (bool, error) {
	if !e.Has(name) && e.Len() > 0 {
		if err := e.AddLines("\n"); err != nil {
			return false, err
		}
	}
	fresh, err := e.SetWithLock(name, lines, lockedit.HeaderIndent(""), lockedit.FooterIndent(""))
	if err != nil {
		return false, errors.WithMessagef(err, "region %q", name)
	}
	klog.V(2).Infof("%s: region %q (%d lines, fresh=%v)", e.Path(), name, len(lines), fresh)
	return fresh, nil
}

// Generate writes all the bindings into the editors. Nothing is written to disk before Save.
func (g *Generator) Generate() error {
	if g.spec.State != nil {
		return errors.Errorf("program %q: IDL state is not supported", g.spec.Name)
	}
	for _, def := range g.spec.TypeDefs() {
		g.defined[def.Name] = true
	}
	for _, event := range g.spec.Events {
		g.defined[event.Name] = true
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"packages", g.generatePackages},
		{"addresses", g.generateAddresses},
		{"types", g.generateTypes},
		{"constants", g.generateConstants},
		{"errors", g.generateErrors},
		{"accounts", g.generateAccounts},
		{"events", g.generateEvents},
		{"instructions", g.generateInstructions},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return errors.WithMessagef(err, "program %q: generating %s", g.spec.Name, step.name)
		}
	}

	if g.opts.CheckMissingTypes {
		var missing []string
		for name := range g.expected {
			if !g.defined[name] {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			return errors.Errorf("program %q: types referenced but never defined: %s", g.spec.Name, strings.Join(missing, ", "))
		}
	}
	return nil
}

func (g *Generator) generatePackages() error {
	for _, module := range []string{g.root, g.typesModule(), g.instructionsModule()} {
		if _, err := g.Editor(module, false); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns the files touched by the generator, sorted.
func (g *Generator) Paths() []string {
	paths := make([]string, 0, len(g.editors))
	for _, e := range g.editors {
		paths = append(paths, e.Path())
	}
	slices.Sort(paths)
	return paths
}

// Save writes every touched file, in path order.
func (g *Generator) Save() error {
	editors := slices.SortedFunc(maps.Values(g.editors), func(a, b *lockedit.Editor) int {
		return strings.Compare(a.Path(), b.Path())
	})
	for _, e := range editors {
		if err := e.Save(); err != nil {
			return errors.WithMessagef(err, "program %q", g.spec.Name)
		}
	}
	klog.V(1).Infof("program %q: saved %d files under %s", g.spec.Name, len(editors), filepath.Join(g.opts.OutDir, g.root))
	return nil
}

// Run generates and saves the bindings of spec.
func Run(spec *idl.IDL, opts Options) error {
	g, err := New(spec, opts)
	if err != nil {
		return err
	}
	if err = g.Generate(); err != nil {
		return err
	}
	return g.Save()
}
