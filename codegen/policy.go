package codegen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/solmate/idl"
	"github.com/gomlx/solmate/internal/strcase"
	"github.com/pkg/errors"
)

// Policy customizes the generated code for a family of programs, e.g. programs following the SPL
// Token conventions. Policies are composed by embedding: a policy embeds BasePolicy (or another
// policy) and overrides the methods it cares about.
type Policy interface {
	// Name identifies the policy in configuration files.
	Name() string

	// TypeName spells t in Go, if the policy has an opinion. Returning false falls back to the
	// default mapping.
	TypeName(ctx *TypeContext, t *idl.Type) (string, bool)

	// AccountDefault returns the Go expression of the key used when the caller leaves an account
	// of an instruction zero, or "" for no default.
	AccountDefault(ix *IxContext, account *IxAccount) string

	// KeyDefault returns statements, indented by two tabs, run when the caller leaves the key of
	// account zero. They may set keys.<Field> or return an error. An account with statements gets
	// no other default and isn't required; if it is optional and its key stays zero, it is left out
	// of the instruction.
	KeyDefault(ix *IxContext, account *IxAccount) []string

	// KeyPreprocessor returns statements (with their indentation and line terminators) inserted in
	// an instruction builder after the AccountMeta of account is built. They can refer to "keys",
	// "args" and the account locals (IxAccount.Local).
	KeyPreprocessor(ix *IxContext, account *IxAccount) []string

	// ExtraAccounts returns accounts appended to the IDL accounts of an instruction.
	ExtraAccounts(ix *IxContext) []*idl.Account
}

// BasePolicy generates the IDL as is. Accounts named after a builtin address (see BuiltinAddresses),
// e.g. "systemProgram" or "rent", default to it.
type BasePolicy struct{}

var _ Policy = BasePolicy{}

// Name implements Policy.
func (BasePolicy) Name() string { return "base" }

// TypeName implements Policy.
func (BasePolicy) TypeName(*TypeContext, *idl.Type) (string, bool) { return "", false }

// AccountDefault implements Policy.
func (BasePolicy) AccountDefault(_ *IxContext, account *IxAccount) string {
	return BuiltinAddresses[strcase.Snake(account.Name)]
}

// KeyDefault implements Policy.
func (BasePolicy) KeyDefault(*IxContext, *IxAccount) []string { return nil }

// KeyPreprocessor implements Policy.
func (BasePolicy) KeyPreprocessor(*IxContext, *IxAccount) []string { return nil }

// ExtraAccounts implements Policy.
func (BasePolicy) ExtraAccounts(*IxContext) []*idl.Account { return nil }

// TokenPolicy follows the conventions of the SPL Token program:
//
//   - Options inside account types use the fixed size COption layout (instruction arguments keep
//     the Borsh Option layout).
//   - An authority account flagged with the "allowMultisig" metadata can be a multisig account:
//     the instruction then takes the signers of the multisig, and the authority stops being a
//     signer itself.
//   - A "signers" account with a "length" metadata must get as many keys as the argument it names.
type TokenPolicy struct {
	BasePolicy
}

var _ Policy = TokenPolicy{}

// DefaultMaxSigners bounds the number of multisig signers when the program has no MAX_SIGNERS constant.
const DefaultMaxSigners = 11

// Name implements Policy.
func (TokenPolicy) Name() string { return "token" }

// TypeName implements Policy.
func (TokenPolicy) TypeName(ctx *TypeContext, t *idl.Type) (string, bool) {
	if t.Kind != idl.KindOption || !ctx.InTypes {
		return "", false
	}
	ctx.Import(BorshPackage)
	return "borsh.COption[" + ctx.GoType(t.Elem) + "]", true
}

// ExtraAccounts implements Policy.
func (TokenPolicy) ExtraAccounts(ix *IxContext) []*idl.Account {
	if ix.Account("signers") != nil {
		return nil
	}
	for _, account := range ix.Accounts {
		if account.MetadataBool("allowMultisig") {
			return []*idl.Account{{
				Name:     "signers",
				Docs:     []string{"Signers of the multisig " + account.Name + ", if it is one."},
				IsSigner: true,
				IsArray:  true,
			}}
		}
	}
	return nil
}

// KeyPreprocessor implements Policy.
func (TokenPolicy) KeyPreprocessor(ix *IxContext, account *IxAccount) []string {
	signers := ix.Account("signers")
	if signers == nil {
		return nil
	}
	if account.MetadataBool("allowMultisig") {
		return []string{
			fmt.Sprintf("\tif len(keys.%s) > 0 {\n", signers.Field),
			fmt.Sprintf("\t\t%s.IsSigner = false\n", account.Local),
			"\t}\n",
		}
	}
	if account != signers {
		return nil
	}
	maxSigners := fmt.Sprint(DefaultMaxSigners)
	if ix.HasConstant("MAX_SIGNERS") {
		maxSigners = "int(" + ix.ProgramPackage() + ".MaxSigners)"
	}
	ix.Import(ErrorsPackage)
	lines := []string{
		fmt.Sprintf("\tif len(keys.%s) > %s {\n", account.Field, maxSigners),
		fmt.Sprintf("\t\treturn solana.Instruction{}, errors.Errorf(\"%s: at most %%d signers, got %%d\", %s, len(keys.%s))\n",
			ix.GoName, maxSigners, account.Field),
		"\t}\n",
	}
	if length := account.MetadataString("length"); length != "" {
		arg := ix.Arg(length)
		if arg == nil {
			return lines
		}
		lines = append(lines,
			fmt.Sprintf("\tif len(keys.%s) != int(args.%s) {\n", account.Field, arg.Field),
			fmt.Sprintf("\t\treturn solana.Instruction{}, errors.Errorf(\"%s: wanted %%d signers, got %%d\", args.%s, len(keys.%s))\n",
				ix.GoName, arg.Field, account.Field),
			"\t}\n")
	}
	return lines
}

// SystemPolicy follows the conventions of the system program's *WithSeed instructions:
//
//   - "basePubkey" defaults to the "base" argument. With a "set_if_different" metadata naming another
//     account, it is only set when base differs from that account's key, and is otherwise left out of
//     the instruction (the other account signs for it).
//   - "derivedPubkey" defaults to the address derived from the base key, the "seed" and the "owner"
//     arguments, with solana.CreateWithSeed.
//
// In "transferWithSeed" the base key is an account of its own, with no default.
type SystemPolicy struct {
	BasePolicy
}

var _ Policy = SystemPolicy{}

// Name implements Policy.
func (SystemPolicy) Name() string { return "system" }

// KeyDefault implements Policy.
func (SystemPolicy) KeyDefault(ix *IxContext, account *IxAccount) []string {
	transfer := strcase.Snake(ix.Instruction.Name) == "transfer_with_seed"
	switch strcase.Snake(account.Name) {
	case "base_pubkey":
		base := ix.Arg("base")
		if transfer || base == nil {
			return nil
		}
		if refer := ix.Account(account.MetadataString("set_if_different")); refer != nil {
			return []string{
				fmt.Sprintf("\t\tif args.%s != keys.%s {\n", base.Field, refer.Field),
				fmt.Sprintf("\t\t\tkeys.%s = args.%s\n", account.Field, base.Field),
				"\t\t}\n",
			}
		}
		return []string{fmt.Sprintf("\t\tkeys.%s = args.%s\n", account.Field, base.Field)}

	case "derived_pubkey":
		seed, owner := ix.Arg("seed"), ix.Arg("owner")
		if seed == nil || owner == nil {
			return nil
		}
		var baseKey string
		if transfer {
			base := ix.Account("base_pubkey")
			if base == nil {
				return nil
			}
			baseKey = "keys." + base.Field
		} else {
			base := ix.Arg("base")
			if base == nil {
				return nil
			}
			baseKey = "args." + base.Field
		}
		ix.Import(ErrorsPackage)
		return []string{
			fmt.Sprintf("\t\tderived, err := solana.CreateWithSeed(%s, args.%s, args.%s)\n", baseKey, seed.Field, owner.Field),
			"\t\tif err != nil {\n",
			fmt.Sprintf("\t\t\treturn solana.Instruction{}, errors.WithMessage(err, %q)\n",
				fmt.Sprintf("%s: failed to derive %s", ix.GoName, account.Name)),
			"\t\t}\n",
			fmt.Sprintf("\t\tkeys.%s = derived\n", account.Field),
		}
	}
	return nil
}

// Policies are the policies selectable by name.
var Policies = map[string]Policy{
	"base":   BasePolicy{},
	"system": SystemPolicy{},
	"token":  TokenPolicy{},
}

// PolicyByName returns the policy registered under name. The empty name is BasePolicy.
func PolicyByName(name string) (Policy, error) {
	if name == "" {
		return BasePolicy{}, nil
	}
	policy, found := Policies[name]
	if !found {
		names := make([]string, 0, len(Policies))
		for known := range Policies {
			names = append(names, known)
		}
		slices.Sort(names)
		return nil, errors.Errorf("unknown policy %q, known policies are: %s", name, strings.Join(names, ", "))
	}
	return policy, nil
}
