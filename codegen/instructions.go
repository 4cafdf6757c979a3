package codegen

import (
	"fmt"
	"strings"

	"github.com/gomlx/solmate/anchor"
	"github.com/gomlx/solmate/idl"
	"github.com/gomlx/solmate/internal/strcase"
	"github.com/pkg/errors"
)

// IxAccount is an account of an instruction, as the generated code names it.
type IxAccount struct {
	*idl.Account

	// Path holds the enclosing account groups, outermost first.
	Path []string

	// Field is the name of the account in the Keys and Accounts structs.
	Field string

	// Local is the variable holding the AccountMeta (or the slice of them, for arrays) in the
	// builder function.
	Local string

	// Array is set for a variable length list of accounts.
	Array bool

	// KeyDefault holds the policy statements computing the key when the caller leaves it zero, see
	// Policy.KeyDefault.
	KeyDefault []string
}

// omitZero is set for optional accounts whose key is computed by the policy: when it stays zero, the
// account is left out of the instruction.
func (account *IxAccount) omitZero() bool {
	return account.IsOptional && !account.Array && len(account.KeyDefault) > 0
}

// IxArg is an argument of an instruction.
type IxArg struct {
	Name  string
	Type  *idl.Type
	Field string
}

// IxContext describes the instruction being generated, for policies.
type IxContext struct {
	*TypeContext
	Instruction *idl.Instruction

	// GoName is the name of the builder function. The generated types are prefixed with it.
	GoName   string
	Accounts []*IxAccount
	Args     []*IxArg
}

// Account returns the account with the given IDL (or snake_case) name, or nil.
func (ix *IxContext) Account(name string) *IxAccount {
	if name == "" {
		return nil
	}
	for _, account := range ix.Accounts {
		if account.Name == name || strcase.Snake(account.Name) == strcase.Snake(name) {
			return account
		}
	}
	return nil
}

// Arg returns the argument with the given IDL (or snake_case) name, or nil.
func (ix *IxContext) Arg(name string) *IxArg {
	for _, arg := range ix.Args {
		if arg.Name == name || strcase.Snake(arg.Name) == strcase.Snake(name) {
			return arg
		}
	}
	return nil
}

// reservedFields are the fields of the generated Keys and Accounts structs that don't come from the IDL.
var reservedFields = map[string]bool{"ProgramID": true, "Remaining": true}

func (ix *IxContext) addAccount(account *idl.Account, path []string) {
	parts := make([]string, 0, len(path)+1)
	for _, group := range path {
		parts = append(parts, strcase.Snake(group))
	}
	field := strcase.GoName(strings.Join(append(parts, strcase.Snake(account.Name)), "_"))
	if reservedFields[field] {
		field += "Account"
	}
	ix.Accounts = append(ix.Accounts, &IxAccount{
		Account: account,
		Path:    path,
		Field:   field,
		Local:   strcase.GoParam(field) + "Meta",
		Array:   account.IsArray || account.MetadataBool("isArray") || account.MetadataString("length") != "",
	})
}

// generateInstructions writes the instruction tags and one file per instruction.
func (g *Generator) generateInstructions() error {
	e, err := g.optionalEditor(g.instructionsModule()+".instruction_tag", "instruction_tag", len(g.spec.Instructions) == 0)
	if err != nil {
		return err
	}
	if e != nil {
		names := make([]string, len(g.spec.Instructions))
		for ii, ix := range g.spec.Instructions {
			names[ii] = ix.Name
		}
		var code []string
		if len(names) > 0 {
			code = append(code, "// InstructionTag prefixes the data of the instructions of the program, telling which one it is.\n")
			code = append(code, tagConstants("InstructionTag", g.opts.InstructionTags, g.opts.InstructionTagType,
				names, anchor.InstructionDiscriminator)...)
		}
		if _, err = setRegion(e, "instruction_tag", code); err != nil {
			return err
		}
	}

	for ii := range g.spec.Instructions {
		ix := &g.spec.Instructions[ii]
		if err := g.generateInstruction(ix); err != nil {
			return errors.WithMessagef(err, "instruction %q", ix.Name)
		}
	}
	return nil
}

func (g *Generator) generateInstruction(instruction *idl.Instruction) error {
	snake := strcase.Snake(instruction.Name)
	e, err := g.Editor(g.instructionsModule()+"."+snake, true)
	if err != nil {
		return err
	}
	ix := &IxContext{
		TypeContext: g.typeContext(e, false),
		Instruction: instruction,
		GoName:      strcase.GoName(instruction.Name),
	}
	for _, flat := range idl.Flatten(instruction.Accounts) {
		ix.addAccount(flat.Account, flat.Path)
	}
	for _, extra := range g.policy.ExtraAccounts(ix) {
		ix.addAccount(extra, nil)
	}
	for _, arg := range instruction.Args {
		ix.Args = append(ix.Args, &IxArg{Name: arg.Name, Type: arg.Type, Field: strcase.GoName(arg.Name)})
	}
	for _, account := range ix.Accounts {
		if !account.Array {
			account.KeyDefault = g.policy.KeyDefault(ix, account)
		}
	}

	if _, err = setRegion(e, "ix_cls("+snake+")", g.ixClassCode(ix)); err != nil {
		return err
	}
	code, err := g.ixBuilderCode(ix)
	if err != nil {
		return err
	}
	_, err = setRegion(e, "ix_fn("+snake+")", code)
	return err
}

// ixClassCode declares the accounts, the arguments and the instruction types, and how to pack them.
func (g *Generator) ixClassCode(ix *IxContext) []string {
	ix.Import(SolanaPackage)
	ix.Import(BorshPackage)
	ix.Import(ErrorsPackage)
	name := ix.GoName
	lines := []string{
		fmt.Sprintf("// %sAccounts are the accounts of the %q instruction, in order.\n", name, ix.Instruction.Name),
		fmt.Sprintf("type %sAccounts struct {\n", name),
	}
	var rows [][]string
	for _, account := range ix.Accounts {
		for _, doc := range account.Docs {
			rows = append(rows, []string{"// " + doc})
		}
		metaType := "solana.AccountMeta"
		if account.Array {
			metaType = "[]solana.AccountMeta"
		}
		rows = append(rows, []string{account.Field, metaType})
	}
	rows = append(rows, []string{"Remaining", "[]solana.AccountMeta"})
	lines = append(lines, alignColumns("\t", rows)...)
	lines = append(lines, "}\n", "\n")

	args := make([]idl.Field, len(ix.Args))
	for ii, arg := range ix.Args {
		args[ii] = idl.Field{Name: arg.Name, Type: arg.Type}
		if def := ix.Instruction.Args[ii]; def.Name == arg.Name {
			args[ii].Docs = def.Docs
		}
	}
	lines = append(lines, fmt.Sprintf("// %sArgs are the arguments of the %q instruction.\n", name, ix.Instruction.Name),
		fmt.Sprintf("type %sArgs struct {\n", name))
	lines = append(lines, fieldLines(ix.TypeContext, args)...)
	lines = append(lines, "}\n", "\n")

	lines = append(lines, docComment(ix.Instruction.Docs, fmt.Sprintf("%sIx is the %q instruction.", name, ix.Instruction.Name))...)
	lines = append(lines, fmt.Sprintf("type %sIx struct {\n", name))
	lines = append(lines, alignColumns("\t", [][]string{
		{"ProgramID", "solana.PublicKey"},
		{"Accounts", name + "Accounts"},
		{"Args", name + "Args"},
	})...)
	lines = append(lines, "}\n", "\n",
		"// ToInstruction packs the instruction tag and the arguments, and lists the accounts in order.\n",
		fmt.Sprintf("func (ix *%sIx) ToInstruction() (solana.Instruction, error) {\n", name))

	singles := 0
	for _, account := range ix.Accounts {
		if !account.Array {
			singles++
		}
	}
	lines = append(lines, fmt.Sprintf("\taccounts := make([]solana.AccountMeta, 0, %d+len(ix.Accounts.Remaining))\n", singles))
	var pending []string
	flush := func() {
		if len(pending) > 0 {
			lines = append(lines, fmt.Sprintf("\taccounts = append(accounts, %s)\n", strings.Join(pending, ", ")))
			pending = nil
		}
	}
	for _, account := range ix.Accounts {
		if account.Array {
			flush()
			lines = append(lines, fmt.Sprintf("\taccounts = append(accounts, ix.Accounts.%s...)\n", account.Field))
			continue
		}
		if account.omitZero() {
			flush()
			lines = append(lines,
				fmt.Sprintf("\tif !ix.Accounts.%s.PublicKey.IsZero() {\n", account.Field),
				fmt.Sprintf("\t\taccounts = append(accounts, ix.Accounts.%s)\n", account.Field),
				"\t}\n")
			continue
		}
		pending = append(pending, "ix.Accounts."+account.Field)
	}
	flush()
	return append(lines,
		"\taccounts = append(accounts, ix.Accounts.Remaining...)\n",
		"\tdata, err := borsh.Marshal(&struct {\n",
		"\t\tTag  InstructionTag\n",
		fmt.Sprintf("\t\tArgs %sArgs\n", name),
		fmt.Sprintf("\t}{InstructionTag%s, ix.Args})\n", name),
		"\tif err != nil {\n",
		fmt.Sprintf("\t\treturn solana.Instruction{}, errors.WithMessage(err, \"failed to pack %sIx\")\n", name),
		"\t}\n",
		"\treturn solana.Instruction{ProgramID: ix.ProgramID, Accounts: accounts, Data: data}, nil\n",
		"}\n")
}

// accountDefault returns the Go expression of the default key of an account, or "".
func (g *Generator) accountDefault(ix *IxContext, account *IxAccount) (string, error) {
	for _, name := range []string{account.Name, strcase.Snake(account.Name)} {
		value, found := g.opts.DefaultAccounts[name]
		if !found {
			continue
		}
		expr, err := g.addressExpr(value)
		if err != nil {
			return "", errors.WithMessagef(err, "account %q", account.Name)
		}
		return expr, nil
	}
	if expr := g.policy.AccountDefault(ix, account); expr != "" {
		return expr, nil
	}
	if account.IsOptional {
		return "keys.ProgramID", nil
	}
	return "", nil
}

// ixBuilderCode declares the keys struct and the builder function: it fills in default keys,
// checks the required ones, builds the account metas and runs the policy's key preprocessors.
func (g *Generator) ixBuilderCode(ix *IxContext) ([]string, error) {
	name := ix.GoName
	lines := []string{
		fmt.Sprintf("// %sKeys are the keys of the accounts of %s. A zero key takes the default of its account, if\n", name, name),
		"// it has one.\n",
		fmt.Sprintf("type %sKeys struct {\n", name),
	}
	rows := [][]string{{"ProgramID", "solana.PublicKey"}}
	for _, account := range ix.Accounts {
		keyType := "solana.PublicKey"
		if account.Array {
			keyType = "[]solana.PublicKey"
		}
		rows = append(rows, []string{account.Field, keyType})
	}
	rows = append(rows, []string{"Remaining", "[]solana.AccountMeta"})
	lines = append(lines, alignColumns("\t", rows)...)
	lines = append(lines, "}\n", "\n")

	lines = append(lines, fmt.Sprintf("// %s builds the %q instruction.\n", name, ix.Instruction.Name))
	lines = append(lines, commentLines("", paragraph(ix.Instruction.Docs))...)
	lines = append(lines,
		fmt.Sprintf("func %s(keys %sKeys, args %sArgs) (solana.Instruction, error) {\n", name, name, name),
		"\tif keys.ProgramID.IsZero() {\n",
		fmt.Sprintf("\t\tkeys.ProgramID = %s.ProgramID\n", ix.ProgramPackage()),
		"\t}\n")

	var required []*IxAccount
	for _, account := range ix.Accounts {
		if account.Array {
			continue
		}
		if len(account.KeyDefault) > 0 {
			lines = append(lines, fmt.Sprintf("\tif keys.%s.IsZero() {\n", account.Field))
			lines = append(lines, account.KeyDefault...)
			lines = append(lines, "\t}\n")
			continue
		}
		expr, err := g.accountDefault(ix, account)
		if err != nil {
			return nil, err
		}
		if expr == "" {
			required = append(required, account)
			continue
		}
		if strings.HasPrefix(expr, g.root+".") {
			ix.ProgramPackage()
		}
		lines = append(lines,
			fmt.Sprintf("\tif keys.%s.IsZero() {\n", account.Field),
			fmt.Sprintf("\t\tkeys.%s = %s\n", account.Field, expr),
			"\t}\n")
	}
	for _, account := range required {
		ix.Import(ErrorsPackage)
		lines = append(lines,
			fmt.Sprintf("\tif keys.%s.IsZero() {\n", account.Field),
			fmt.Sprintf("\t\treturn solana.Instruction{}, errors.New(%q)\n",
				fmt.Sprintf("%s: missing key of account %q", name, account.Name)),
			"\t}\n")
	}

	for _, account := range ix.Accounts {
		if account.Array {
			lines = append(lines,
				fmt.Sprintf("\t%s := make([]solana.AccountMeta, len(keys.%s))\n", account.Local, account.Field),
				fmt.Sprintf("\tfor ii, key := range keys.%s {\n", account.Field),
				fmt.Sprintf("\t\t%s[ii] = solana.NewAccountMeta(key, %v, %v)\n", account.Local, account.IsSigner, account.IsMut),
				"\t}\n")
			continue
		}
		lines = append(lines, fmt.Sprintf("\t%s := solana.NewAccountMeta(keys.%s, %v, %v)\n",
			account.Local, account.Field, account.IsSigner, account.IsMut))
	}
	for _, account := range ix.Accounts {
		lines = append(lines, g.policy.KeyPreprocessor(ix, account)...)
	}

	lines = append(lines,
		fmt.Sprintf("\tix := %sIx{\n", name),
		"\t\tProgramID: keys.ProgramID,\n",
		fmt.Sprintf("\t\tAccounts: %sAccounts{\n", name))
	rows = rows[:0]
	for _, account := range ix.Accounts {
		rows = append(rows, []string{account.Field + ":", account.Local + ","})
	}
	rows = append(rows, []string{"Remaining:", "keys.Remaining,"})
	lines = append(lines, alignColumns("\t\t\t", rows)...)
	return append(lines,
		"\t\t},\n",
		"\t\tArgs: args,\n",
		"\t}\n",
		"\treturn ix.ToInstruction()\n",
		"}\n"), nil
}
