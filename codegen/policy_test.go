package codegen

import (
	"path/filepath"
	"testing"

	"github.com/gomlx/solmate/dtypes"
	"github.com/gomlx/solmate/idl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyByName(t *testing.T) {
	policy, err := PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, "base", policy.Name())
	policy, err = PolicyByName("token")
	require.NoError(t, err)
	assert.Equal(t, "token", policy.Name())
	policy, err = PolicyByName("system")
	require.NoError(t, err)
	assert.Equal(t, "system", policy.Name())
	_, err = PolicyByName("stake")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known policies are: base, system, token")
}

func TestTokenPolicy(t *testing.T) {
	dir := t.TempDir()
	spec := parseTestIDL(t, filepath.Join("testdata", "token.json"))
	require.NoError(t, Run(spec, Options{
		OutDir:          dir,
		Package:         testPackage,
		InstructionTags: TagsIncremental,
		AccountTags:     TagsBySize,
		Policy:          TokenPolicy{},
	}))
	files := readTree(t, dir)
	requireGoSource(t, files)

	// Options of account types use the COption layout, options of arguments don't.
	assert.Regexp(t, `MintAuthority\s+borsh\.COption\[solana\.PublicKey\]\n`, files["tokenprogram/types/mint.go"])
	assert.Regexp(t, `NewAuthority\s+\*solana\.PublicKey\n`, files["tokenprogram/instructions/set_authority.go"])

	accounts := files["tokenprogram/accounts.go"]
	assert.NotContains(t, accounts, "AccountTag")
	assert.Contains(t, accounts, "\t\tnew(types.Mint),\n\t\tnew(types.Multisig),\n")
	assert.Contains(t, accounts, "borsh.StaticSize(account)")

	tags := files["tokenprogram/instructions/instruction_tag.go"]
	assert.Contains(t, tags, "type InstructionTag uint8\n")
	assert.Contains(t, tags, "\tInstructionTagInitializeMultisig InstructionTag = iota\n\tInstructionTagTransfer\n\tInstructionTagSetAuthority\n")

	transfer := files["tokenprogram/instructions/transfer.go"]
	assert.Regexp(t, `Signers\s+\[\]solana\.PublicKey\n`, transfer)
	assert.Regexp(t, `Signers\s+\[\]solana\.AccountMeta\n`, transfer)
	assert.Contains(t, transfer, "\tsignersMeta := make([]solana.AccountMeta, len(keys.Signers))\n")
	assert.Contains(t, transfer, "\t\tsignersMeta[ii] = solana.NewAccountMeta(key, true, false)\n")
	assert.Contains(t, transfer, "\tif len(keys.Signers) > 0 {\n\t\townerMeta.IsSigner = false\n\t}\n")
	assert.Contains(t, transfer, "\tif len(keys.Signers) > int(tokenprogram.MaxSigners) {\n")
	assert.Contains(t, transfer, "\taccounts = append(accounts, ix.Accounts.Source, ix.Accounts.Destination, ix.Accounts.Owner)\n"+
		"\taccounts = append(accounts, ix.Accounts.Signers...)\n"+
		"\taccounts = append(accounts, ix.Accounts.Remaining...)\n")

	multisig := files["tokenprogram/instructions/initialize_multisig.go"]
	assert.Contains(t, multisig, "\t\tkeys.Rent = solana.SysvarRentPubkey\n")
	assert.Contains(t, multisig, "\tif len(keys.Signers) != int(args.M) {\n")
	assert.Contains(t, multisig, "\t\tsignersMeta[ii] = solana.NewAccountMeta(key, false, false)\n")
	assert.NotContains(t, multisig, "IsSigner = false")
}

func TestSystemPolicy(t *testing.T) {
	dir := t.TempDir()
	spec := parseTestIDL(t, filepath.Join("testdata", "system.json"))
	require.NoError(t, Run(spec, Options{
		OutDir:             dir,
		Package:            testPackage,
		InstructionTags:    TagsIncremental,
		InstructionTagType: dtypes.U32,
		Policy:             SystemPolicy{},
	}))
	files := readTree(t, dir)
	requireGoSource(t, files)

	assert.Contains(t, files["systemprogram/addrs.go"], `solana.MustPublicKeyFromBase58("11111111111111111111111111111111")`)
	assert.Contains(t, files["systemprogram/instructions/instruction_tag.go"], "type InstructionTag uint32\n")

	// The base key is only passed when it differs from the funding account, and the derived
	// address is computed from it.
	withSeed := files["systemprogram/instructions/create_account_with_seed.go"]
	assert.Contains(t, withSeed, "\tif keys.BasePubkey.IsZero() {\n"+
		"\t\tif args.Base != keys.FromPubkey {\n"+
		"\t\t\tkeys.BasePubkey = args.Base\n"+
		"\t\t}\n"+
		"\t}\n")
	assert.Contains(t, withSeed, "\tif keys.DerivedPubkey.IsZero() {\n"+
		"\t\tderived, err := solana.CreateWithSeed(args.Base, args.Seed, args.Owner)\n"+
		"\t\tif err != nil {\n"+
		"\t\t\treturn solana.Instruction{}, errors.WithMessage(err, \"CreateAccountWithSeed: failed to derive derivedPubkey\")\n"+
		"\t\t}\n"+
		"\t\tkeys.DerivedPubkey = derived\n"+
		"\t}\n")
	assert.Contains(t, withSeed, "\taccounts = append(accounts, ix.Accounts.FromPubkey, ix.Accounts.DerivedPubkey)\n"+
		"\tif !ix.Accounts.BasePubkey.PublicKey.IsZero() {\n"+
		"\t\taccounts = append(accounts, ix.Accounts.BasePubkey)\n"+
		"\t}\n"+
		"\taccounts = append(accounts, ix.Accounts.Remaining...)\n")
	assert.NotContains(t, withSeed, "keys.BasePubkey = keys.ProgramID")
	assert.NotContains(t, withSeed, `missing key of account \"derivedPubkey\"`)
	assert.Contains(t, withSeed, `missing key of account \"fromPubkey\"`)

	// In transferWithSeed the base is a regular account.
	transfer := files["systemprogram/instructions/transfer_with_seed.go"]
	assert.Contains(t, transfer, "\t\tderived, err := solana.CreateWithSeed(keys.BasePubkey, args.Seed, args.Owner)\n")
	assert.Contains(t, transfer, `missing key of account \"basePubkey\"`)
	assert.Contains(t, transfer, "\taccounts = append(accounts, ix.Accounts.DerivedPubkey, ix.Accounts.BasePubkey, ix.Accounts.ToPubkey)\n")

	createAccount := files["systemprogram/instructions/create_account.go"]
	assert.NotContains(t, createAccount, "CreateWithSeed")
}

func TestTokenPolicy_TypeName(t *testing.T) {
	g, err := New(&idl.IDL{Name: "token"}, Options{OutDir: t.TempDir(), Package: testPackage, Policy: TokenPolicy{}})
	require.NoError(t, err)
	e, err := g.Editor("token.types.mint", true)
	require.NoError(t, err)

	option := idl.OptionOf(idl.Primitive(dtypes.U64))
	nested := idl.VecOf(idl.OptionOf(idl.Defined("Mint")))
	inTypes := g.typeContext(e, true)
	assert.Equal(t, "borsh.COption[uint64]", inTypes.GoType(option))
	assert.Equal(t, "[]borsh.COption[Mint]", inTypes.GoType(nested))
	outside := g.typeContext(e, false)
	assert.Equal(t, "*uint64", outside.GoType(option))
	assert.Equal(t, "[]*types.Mint", outside.GoType(nested))
}
