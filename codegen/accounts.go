package codegen

import (
	"fmt"

	"github.com/gomlx/solmate/anchor"
	"github.com/gomlx/solmate/dtypes"
	"github.com/gomlx/solmate/internal/strcase"
)

// tagConstants declares a tag type and one constant per name.
func tagConstants(tagType string, tags TagValues, dtype dtypes.DType, names []string, discriminator func(string) uint64) []string {
	goType := dtype.GoType()
	if tags == TagsAnchor {
		goType = "uint64"
	}
	lines := []string{fmt.Sprintf("type %s %s\n", tagType, goType), "\n", "const (\n"}
	rows := make([][]string, 0, len(names))
	for ii, name := range names {
		row := []string{tagType + strcase.GoName(name)}
		switch {
		case tags == TagsAnchor:
			row = append(row, tagType, fmt.Sprintf("= 0x%016x", discriminator(name)))
		case ii == 0:
			row = append(row, tagType, "= iota")
		}
		rows = append(rows, row)
	}
	lines = append(lines, alignColumns("\t", rows)...)
	return append(lines, ")\n")
}

// generateAccounts writes the account tags and DecodeAccount.
func (g *Generator) generateAccounts() error {
	e, err := g.optionalEditor(g.root+".accounts", "accounts", len(g.spec.Accounts) == 0)
	if e == nil || err != nil {
		return err
	}
	names := make([]string, len(g.spec.Accounts))
	for ii, def := range g.spec.Accounts {
		names[ii] = def.Name
	}
	var code []string
	switch {
	case len(names) == 0:
	case g.opts.AccountTags == TagsBySize:
		code = decodeBySize(g.typeContext(e, false), names)
	default:
		code = append(code, "// AccountTag prefixes the data of the accounts of the program, telling their type.\n")
		code = append(code, tagConstants("AccountTag", g.opts.AccountTags, g.opts.AccountTagType, names, anchor.AccountDiscriminator)...)
		code = append(code, "\n")
		code = append(code, decodeTagged(g.typeContext(e, false), "Account", names)...)
	}
	_, err = setRegion(e, "accounts", code)
	return err
}

// generateEvents writes the event tags and DecodeEvent. Events are always tagged with Anchor
// discriminators.
func (g *Generator) generateEvents() error {
	e, err := g.optionalEditor(g.root+".events", "events", len(g.spec.Events) == 0)
	if e == nil || err != nil {
		return err
	}
	names := make([]string, len(g.spec.Events))
	for ii, event := range g.spec.Events {
		names[ii] = event.Name
	}
	var code []string
	if len(names) > 0 {
		code = append(code, "// EventTag prefixes the data of the events of the program, telling their type.\n")
		code = append(code, tagConstants("EventTag", TagsAnchor, dtypes.U64, names, anchor.EventDiscriminator)...)
		code = append(code, "\n")
		code = append(code, decodeTagged(g.typeContext(e, false), "Event", names)...)
	}
	_, err = setRegion(e, "events", code)
	return err
}

// decodeTagged writes Decode<kind>, which reads a <kind>Tag and unpacks the type it selects. Data
// past the value is ignored: accounts are often allocated larger than their content.
func decodeTagged(ctx *TypeContext, kind string, names []string) []string {
	ctx.Import(BorshPackage)
	ctx.Import(ErrorsPackage)
	lines := []string{
		fmt.Sprintf("// Decode%s unpacks the data of an %s into a pointer to the type its tag selects.\n", kind, lower(kind)),
		fmt.Sprintf("func Decode%s(data []byte) (any, error) {\n", kind),
		"\tdec := borsh.NewDecoder(data)\n",
		fmt.Sprintf("\tvar tag %sTag\n", kind),
		"\tif err := dec.Decode(&tag); err != nil {\n",
		fmt.Sprintf("\t\treturn nil, errors.WithMessage(err, \"failed to read the %s tag\")\n", lower(kind)),
		"\t}\n",
		"\tvar value any\n",
		"\tswitch tag {\n",
	}
	for _, name := range names {
		lines = append(lines,
			fmt.Sprintf("\tcase %sTag%s:\n", kind, strcase.GoName(name)),
			fmt.Sprintf("\t\tvalue = new(%s)\n", ctx.definedType(name)))
	}
	return append(lines,
		"\tdefault:\n",
		fmt.Sprintf("\t\treturn nil, errors.Errorf(\"unknown %s tag %%d\", tag)\n", lower(kind)),
		"\t}\n",
		"\tif err := dec.Decode(value); err != nil {\n",
		fmt.Sprintf("\t\treturn nil, errors.WithMessagef(err, \"failed to decode %s %%T\", value)\n", lower(kind)),
		"\t}\n",
		"\treturn value, nil\n",
		"}\n")
}

// decodeBySize writes a DecodeAccount for untagged accounts, selecting the account type whose
// packed size is the size of the data.
func decodeBySize(ctx *TypeContext, names []string) []string {
	ctx.Import(BorshPackage)
	ctx.Import(ErrorsPackage)
	lines := []string{
		"// DecodeAccount unpacks the data of an account into a pointer to the account type of the same size.\n",
		"// Accounts of the program are not tagged.\n",
		"func DecodeAccount(data []byte) (any, error) {\n",
		"\tcandidates := []any{\n",
	}
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("\t\tnew(%s),\n", ctx.definedType(name)))
	}
	return append(lines,
		"\t}\n",
		"\tfor _, account := range candidates {\n",
		"\t\tif size, ok := borsh.StaticSize(account); ok && size == len(data) {\n",
		"\t\t\tif err := borsh.Unmarshal(data, account); err != nil {\n",
		"\t\t\t\treturn nil, errors.WithMessagef(err, \"failed to decode account %T\", account)\n",
		"\t\t\t}\n",
		"\t\t\treturn account, nil\n",
		"\t\t}\n",
		"\t}\n",
		"\treturn nil, errors.Errorf(\"no account type packs to %d bytes\", len(data))\n",
		"}\n")
}

func lower(s string) string {
	if s == "" {
		return s
	}
	return strcase.Snake(s)
}
