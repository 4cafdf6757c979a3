package codegen

import (
	"fmt"

	"github.com/gomlx/solmate/idl"
	"github.com/gomlx/solmate/internal/strcase"
	"github.com/pkg/errors"
)

// classRegion is the lock region of a generated type.
func classRegion(name string) string { return "class(" + name + ")" }

// generateTypes writes one file per IDL type, account and event into the types package.
func (g *Generator) generateTypes() error {
	for _, def := range g.spec.TypeDefs() {
		if err := g.generateType(def); err != nil {
			return errors.WithMessagef(err, "type %q", def.Name)
		}
	}
	for _, event := range g.spec.Events {
		def := &idl.TypeDef{Name: event.Name, Kind: idl.DefStruct}
		for _, field := range event.Fields {
			def.Fields = append(def.Fields, field.Field)
		}
		if err := g.generateType(def); err != nil {
			return errors.WithMessagef(err, "event %q", event.Name)
		}
	}
	return nil
}

func (g *Generator) generateType(def *idl.TypeDef) error {
	e, err := g.Editor(g.typesModule()+"."+strcase.Snake(def.Name), true)
	if err != nil {
		return err
	}
	ctx := g.typeContext(e, true)
	goName := strcase.GoName(def.Name)
	var code []string
	switch {
	case def.Kind == idl.DefStruct:
		code = structCode(ctx, goName, def.Docs, def.Fields)
	case def.IsUnitEnum():
		code = unitEnumCode(ctx, goName, def)
	default:
		code = dataEnumCode(ctx, goName, def)
	}
	fresh, err := setRegion(e, classRegion(def.Name), code)
	if err != nil {
		return err
	}
	ctx.Import(BorshPackage)
	if fresh {
		return e.AddLines(typeHelpers(goName, !def.IsUnitEnum())...)
	}
	return nil
}

// structCode declares a struct type.
func structCode(ctx *TypeContext, goName string, docs []string, fields []idl.Field) []string {
	lines := docComment(docs, fmt.Sprintf("%s is generated from the IDL type %q.", goName, goName))
	lines = append(lines, "type "+goName+" struct {\n")
	lines = append(lines, fieldLines(ctx, fields)...)
	return append(lines, "}\n")
}

func fieldLines(ctx *TypeContext, fields []idl.Field) []string {
	var rows [][]string
	for _, field := range fields {
		for _, line := range field.Docs {
			rows = append(rows, []string{"// " + line})
		}
		rows = append(rows, []string{strcase.GoName(field.Name), ctx.GoType(field.Type)})
	}
	return alignColumns("\t", rows)
}

// unitEnumCode declares an enum without data as a uint8 with named constants.
func unitEnumCode(ctx *TypeContext, goName string, def *idl.TypeDef) []string {
	ctx.Import("fmt")
	lines := docComment(def.Docs, fmt.Sprintf("%s is generated from the IDL enum %q.", goName, def.Name))
	lines = append(lines, "type "+goName+" uint8\n", "\n", "const (\n")
	rows := make([][]string, 0, len(def.Variants))
	for ii, variant := range def.Variants {
		row := []string{goName + strcase.GoName(variant.Name)}
		if ii == 0 {
			row = append(row, goName, "= iota")
		}
		rows = append(rows, row)
	}
	lines = append(lines, alignColumns("\t", rows)...)
	r := receiverName(goName)
	lines = append(lines, ")\n", "\n",
		fmt.Sprintf("func (%s %s) String() string {\n", r, goName),
		fmt.Sprintf("\tswitch %s {\n", r))
	for _, variant := range def.Variants {
		lines = append(lines,
			fmt.Sprintf("\tcase %s%s:\n", goName, strcase.GoName(variant.Name)),
			fmt.Sprintf("\t\treturn %q\n", variant.Name))
	}
	return append(lines, "\t}\n",
		fmt.Sprintf("\treturn fmt.Sprintf(\"%s(%%d)\", uint8(%s))\n", goName, r),
		"}\n")
}

// dataEnumCode declares an enum whose variants carry data: a struct led by a borsh.Enum tag with
// one field per variant, plus the payload types of variants with more than one field.
func dataEnumCode(ctx *TypeContext, goName string, def *idl.TypeDef) []string {
	ctx.Import(BorshPackage)
	var payloads []string
	rows := [][]string{{"borsh.Enum"}}
	for _, variant := range def.Variants {
		variantName := strcase.GoName(variant.Name)
		var fieldType string
		switch {
		case variant.Kind == idl.FieldsNone:
			fieldType = "borsh.Unit"
		case variant.Kind == idl.FieldsTuple && len(variant.Tuple) == 1:
			fieldType = ctx.GoType(variant.Tuple[0])
		default:
			fieldType = goName + variantName
			fields := variant.Named
			if variant.Kind == idl.FieldsTuple {
				fields = make([]idl.Field, len(variant.Tuple))
				for ii, t := range variant.Tuple {
					fields[ii] = idl.Field{Name: fmt.Sprintf("F%d", ii), Type: t}
				}
			}
			payloads = append(payloads, "\n")
			payloads = append(payloads, structCode(ctx, fieldType,
				[]string{fmt.Sprintf("%s is the payload of the %s variant of %s.", fieldType, variant.Name, goName)}, fields)...)
		}
		rows = append(rows, []string{variantName, fieldType})
	}

	lines := docComment(def.Docs, fmt.Sprintf("%s is generated from the IDL enum %q.", goName, def.Name))
	lines = append(lines, commentLines("", []string{
		"",
		"Enum selects the variant: only the field of that variant is packed.",
	})...)
	lines = append(lines, "type "+goName+" struct {\n")
	lines = append(lines, alignColumns("\t", rows)...)
	lines = append(lines, "}\n", "\n",
		fmt.Sprintf("// Variants of %s.\n", goName),
		"const (\n")
	tags := make([][]string, 0, len(def.Variants))
	for ii, variant := range def.Variants {
		row := []string{goName + "Tag" + strcase.GoName(variant.Name)}
		if ii == 0 {
			row = append(row, "borsh.Enum", "= iota")
		}
		tags = append(tags, row)
	}
	lines = append(lines, alignColumns("\t", tags)...)
	lines = append(lines, ")\n")
	return append(lines, payloads...)
}

// typeHelpers returns the code written once after the region of a type. It is the developer's to
// edit: hooks tells whether to include the MarshalBorsh/UnmarshalBorsh customization points.
func typeHelpers(goName string, hooks bool) []string {
	r := receiverName(goName)
	lines := []string{"\n"}
	if hooks {
		lines = append(lines,
			fmt.Sprintf("// MarshalBorsh packs %s field by field. Edit it to customize the layout.\n", r),
			fmt.Sprintf("func (%s *%s) MarshalBorsh(enc *borsh.Encoder) error {\n", r, goName),
			fmt.Sprintf("\treturn enc.EncodeFields(%s)\n", r),
			"}\n",
			"\n",
			fmt.Sprintf("// UnmarshalBorsh unpacks %s field by field. Edit it along with MarshalBorsh.\n", r),
			fmt.Sprintf("func (%s *%s) UnmarshalBorsh(dec *borsh.Decoder) error {\n", r, goName),
			fmt.Sprintf("\treturn dec.DecodeFields(%s)\n", r),
			"}\n",
			"\n")
	}
	return append(lines,
		fmt.Sprintf("// ToBytes packs %s.\n", r),
		fmt.Sprintf("func (%s *%s) ToBytes() ([]byte, error) {\n", r, goName),
		fmt.Sprintf("\treturn borsh.Marshal(%s)\n", r),
		"}\n",
		"\n",
		fmt.Sprintf("// %sFromBytes unpacks a %s.\n", goName, goName),
		fmt.Sprintf("func %sFromBytes(data []byte) (*%s, error) {\n", goName, goName),
		fmt.Sprintf("\t%s := new(%s)\n", r, goName),
		fmt.Sprintf("\tif err := borsh.Unmarshal(data, %s); err != nil {\n", r),
		"\t\treturn nil, err\n",
		"\t}\n",
		fmt.Sprintf("\treturn %s, nil\n", r),
		"}\n")
}
