package codegen

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/solmate/dtypes"
	"github.com/gomlx/solmate/idl"
	"github.com/gomlx/solmate/internal/strcase"
	"github.com/gomlx/solmate/lockedit"
	"github.com/gomlx/solmate/solana"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// optionalEditor returns the editor of a file that is only generated when there is something to
// put in it. If there is nothing, the file is edited only if it already exists with the region:
// the region is then emptied.
func (g *Generator) optionalEditor(module, region string, empty bool) (*lockedit.Editor, error) {
	if !empty {
		return g.Editor(module, true)
	}
	parts := strings.Split(module, ".")
	e, err := lockedit.Open(filepath.Join(g.opts.OutDir, filepath.Join(parts...)+".go"), lockedit.WithSyntax(lockedit.Go))
	if err != nil || !e.Has(region) {
		return nil, err
	}
	return g.Editor(module, true)
}

// generateAddresses writes ProgramID and the configured named addresses.
func (g *Generator) generateAddresses() error {
	e, err := g.Editor(g.root+".addrs", true)
	if err != nil {
		return err
	}
	e.Imports().Add(SolanaPackage, "")

	programID := g.opts.ProgramID
	if programID == "" {
		programID = g.spec.Address()
	}
	var code []string
	if programID == "" {
		klog.Warningf("program %q has no address: ProgramID must be set before building instructions", g.spec.Name)
		code = []string{
			"// ProgramID is the address of the program. It is unknown: set it before building instructions.\n",
			"var ProgramID solana.PublicKey\n",
		}
	} else {
		if _, err := solana.PublicKeyFromBase58(programID); err != nil {
			return errors.WithMessage(err, "invalid program address")
		}
		code = []string{
			"// ProgramID is the address of the program.\n",
			fmt.Sprintf("var ProgramID = solana.MustPublicKeyFromBase58(%q)\n", programID),
		}
	}
	if _, err = setRegion(e, "program_id", code); err != nil {
		return err
	}

	if len(g.opts.Addresses) == 0 && !e.Has("addresses") {
		return nil
	}
	var rows [][]string
	names := make([]string, 0, len(g.opts.Addresses))
	for name := range g.opts.Addresses {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		rows = append(rows, []string{strcase.GoName(name),
			fmt.Sprintf("= solana.MustPublicKeyFromBase58(%q)", g.opts.Addresses[name])})
	}
	code = nil
	if len(rows) > 0 {
		code = append(code, "// Well-known addresses used by the program.\n", "var (\n")
		code = append(code, alignColumns("\t", rows)...)
		code = append(code, ")\n")
	}
	_, err = setRegion(e, "addresses", code)
	return err
}

// generateConstants writes the IDL constants: Go constants where the type allows it, variables
// otherwise.
func (g *Generator) generateConstants() error {
	e, err := g.optionalEditor(g.root+".constants", "constants", len(g.spec.Constants) == 0)
	if e == nil || err != nil {
		return err
	}
	ctx := g.typeContext(e, false)
	var consts, vars [][]string
	for _, c := range g.spec.Constants {
		name := strcase.GoName(c.Name)
		isConst, value, err := constantValue(ctx, c)
		if err != nil {
			klog.Warningf("program %q: skipping constant %q = %s: %v", g.spec.Name, c.Name, c.Value, err)
			continue
		}
		if isConst {
			consts = append(consts, []string{name, ctx.GoType(c.Type), "= " + value})
		} else {
			vars = append(vars, []string{name, "= " + value})
		}
	}
	var code []string
	if len(consts) > 0 {
		code = append(code, "// Constants of the program.\n", "const (\n")
		code = append(code, alignColumns("\t", consts)...)
		code = append(code, ")\n")
	}
	if len(vars) > 0 {
		if len(code) > 0 {
			code = append(code, "\n")
		}
		code = append(code, "// Constants of the program without a Go constant type.\n", "var (\n")
		code = append(code, alignColumns("\t", vars)...)
		code = append(code, ")\n")
	}
	_, err = setRegion(e, "constants", code)
	return err
}

// constantValue renders the value of an IDL constant, which is kept as written in the IDL.
func constantValue(ctx *TypeContext, c idl.Const) (isConst bool, value string, err error) {
	raw := strings.TrimSpace(c.Value)
	t := c.Type
	if t.Kind == idl.KindPrimitive {
		switch dtype := t.DType; {
		case dtype == dtypes.Bool:
			b, err := strconv.ParseBool(raw)
			return true, strconv.FormatBool(b), err
		case dtype == dtypes.U128 || dtype == dtypes.I128:
			ctx.Import(BorshPackage)
			if dtype == dtypes.U128 {
				_, err = strconv.ParseUint(raw, 0, 64)
				return false, "borsh.NewUint128(" + raw + ")", err
			}
			_, err = strconv.ParseInt(raw, 0, 64)
			return false, "borsh.NewInt128(" + raw + ")", err
		case dtype.IsUnsigned():
			_, err = strconv.ParseUint(strings.ReplaceAll(raw, "_", ""), 0, dtype.Size()*8)
			return true, raw, err
		case dtype.IsInteger():
			_, err = strconv.ParseInt(strings.ReplaceAll(raw, "_", ""), 0, dtype.Size()*8)
			return true, raw, err
		case dtype.IsFloat():
			_, err = strconv.ParseFloat(raw, 64)
			return true, raw, err
		case dtype == dtypes.String:
			if unquoted, err := strconv.Unquote(raw); err == nil {
				raw = unquoted
			}
			return true, strconv.Quote(raw), nil
		case dtype == dtypes.PublicKey:
			address := strings.Trim(raw, `"`)
			if _, err = solana.PublicKeyFromBase58(address); err != nil {
				return false, "", err
			}
			ctx.Import(SolanaPackage)
			return false, fmt.Sprintf("solana.MustPublicKeyFromBase58(%q)", address), nil
		case dtype == dtypes.Bytes:
			return false, "[]byte{" + listElements(raw) + "}", nil
		}
	}
	if t.Kind == idl.KindArray || t.Kind == idl.KindVec {
		if t.Elem.Kind == idl.KindPrimitive && (t.Elem.DType.IsInteger() || t.Elem.DType.IsFloat()) {
			return false, ctx.GoType(t) + "{" + listElements(raw) + "}", nil
		}
	}
	return false, "", errors.Errorf("constants of type %s are not supported", t)
}

// listElements turns "[1, 2, 3]" into "1, 2, 3".
func listElements(raw string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]"))
}

// generateErrors writes the custom errors of the program as an Error type.
func (g *Generator) generateErrors() error {
	e, err := g.optionalEditor(g.root+".errors", "errors", len(g.spec.Errors) == 0)
	if e == nil || err != nil {
		return err
	}
	var code []string
	if len(g.spec.Errors) > 0 {
		e.Imports().Add("fmt", "")
		e.Imports().Add(ErrorsPackage, "")
		e.Imports().Add(SolanaPackage, "")
		var consts, messages [][]string
		for _, errCode := range g.spec.Errors {
			name := "Err" + strcase.GoName(errCode.Name)
			consts = append(consts, []string{name, "Error", fmt.Sprintf("= %d", errCode.Code)})
			msg := errCode.Msg
			if msg == "" {
				msg = errCode.Name
			}
			messages = append(messages, []string{name + ":", strconv.Quote(msg) + ","})
		}
		code = append(code,
			"// Error is a custom error of the program, returned as a solana.ProgramError with the Custom kind.\n",
			"type Error uint32\n",
			"\n",
			"const (\n")
		code = append(code, alignColumns("\t", consts)...)
		code = append(code, ")\n", "\n", "var errorMessages = map[Error]string{\n")
		code = append(code, alignColumns("\t", messages)...)
		code = append(code, "}\n",
			"\n",
			"func (e Error) Error() string {\n",
			"\tif msg, found := errorMessages[e]; found {\n",
			"\t\treturn msg\n",
			"\t}\n",
			fmt.Sprintf("\treturn fmt.Sprintf(\"%s error %%d\", uint32(e))\n", g.root),
			"}\n",
			"\n",
			"// FromProgramError returns the program error err carries, if it is a known custom error.\n",
			"func FromProgramError(err error) (Error, bool) {\n",
			"\tvar programErr *solana.ProgramError\n",
			"\tif !errors.As(err, &programErr) || programErr.Kind != solana.Custom {\n",
			"\t\treturn 0, false\n",
			"\t}\n",
			"\tcustom := Error(programErr.Code)\n",
			"\t_, found := errorMessages[custom]\n",
			"\treturn custom, found\n",
			"}\n")
	}
	_, err = setRegion(e, "errors", code)
	return err
}
