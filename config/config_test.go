package config

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/gomlx/solmate/codegen"
	"github.com/gomlx/solmate/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	rentID         = "SysvarRent111111111111111111111111111111111"
)

const yamlConfig = `
out_dir: out
package: example.com/bindings
idl_dir: idls
check_missing_types: true
addresses:
  rent_sysvar: SysvarRent111111111111111111111111111111111
programs:
  - idl: idls/token_program.json
    policy: token
    program_id: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
    instruction_tags: incremental
    instruction_tag_type: u8
    account_tags: size
    check_missing_types: false
    default_accounts:
      rent: rent_sysvar
    skip_types: [Pubkey]
`

const tomlConfig = `
out_dir = "out"
package = "example.com/bindings"
idl_dir = "idls"
check_missing_types = true

[addresses]
rent_sysvar = "SysvarRent111111111111111111111111111111111"

[[programs]]
idl = "idls/token_program.json"
policy = "token"
program_id = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
instruction_tags = "incremental"
instruction_tag_type = "u8"
account_tags = "size"
check_missing_types = false
skip_types = ["Pubkey"]

[programs.default_accounts]
rent = "rent_sysvar"
`

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParse(t *testing.T) {
	for ext, content := range map[string]string{".yaml": yamlConfig, ".toml": tomlConfig} {
		t.Run(ext, func(t *testing.T) {
			cfg, err := Parse([]byte(content), ext)
			require.NoError(t, err)
			assert.Equal(t, "out", cfg.OutDir)
			assert.Equal(t, "example.com/bindings", cfg.Package)
			assert.Equal(t, "idls", cfg.IDLDir)
			assert.True(t, cfg.CheckMissingTypes)
			require.Contains(t, cfg.Addresses, "rent_sysvar")
			assert.Equal(t, rentID, cfg.Addresses["rent_sysvar"].String())

			require.Len(t, cfg.Programs, 1)
			program := cfg.Programs[0]
			assert.Equal(t, "idls/token_program.json", program.IDL)
			assert.Equal(t, "token", program.Policy)
			require.NotNil(t, program.ProgramID)
			assert.Equal(t, tokenProgramID, program.ProgramID.String())
			assert.Equal(t, "incremental", program.InstructionTags)
			assert.Equal(t, "u8", program.InstructionTagType)
			assert.Equal(t, "size", program.AccountTags)
			assert.Equal(t, map[string]string{"rent": "rent_sysvar"}, program.DefaultAccounts)
			assert.Equal(t, []string{"Pubkey"}, program.SkipTypes)
			require.NotNil(t, program.CheckMissingTypes)
			assert.False(t, *program.CheckMissingTypes)
		})
	}

	cfg, err := Parse(nil, ".yml")
	require.NoError(t, err)
	assert.Empty(t, cfg.Programs)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name, ext, content, want string
	}{
		{"unknown yaml key", ".yaml", "out_dir: out\nouput: x\n", "invalid YAML"},
		{"unknown toml key", ".toml", "out_dir = \"out\"\nouput = \"x\"\n", "unknown TOML keys: ouput"},
		{"bad public key", ".yaml", "addresses:\n  foo: not-base58!\n", "invalid YAML"},
		{"bad toml", ".toml", "out_dir = \n", "invalid TOML"},
		{"unknown format", ".json", "{}", "unknown configuration format"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.content), tc.ext)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solmate.yaml")
	writeFile(t, path, yamlConfig)
	writeFile(t, filepath.Join(dir, "idls", "token_program.json"), "{}")
	writeFile(t, filepath.Join(dir, "idls", "points.json"), "{}")
	writeFile(t, filepath.Join(dir, "idls", "amm.json"), "{}")
	writeFile(t, filepath.Join(dir, "idls", "notes.txt"), "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutDir)
	assert.Equal(t, filepath.Join(dir, "idls"), cfg.IDLDir)

	jobs, err := cfg.Jobs()
	require.NoError(t, err)
	var paths []string
	for _, job := range jobs {
		paths = append(paths, job.IDLPath)
		assert.Equal(t, cfg.OutDir, job.Options.OutDir)
		assert.Equal(t, "example.com/bindings", job.Options.Package)
		assert.Equal(t, map[string]string{"rent_sysvar": rentID}, job.Options.Addresses)
	}
	assert.Equal(t, []string{
		filepath.Join(dir, "idls", "token_program.json"),
		filepath.Join(dir, "idls", "amm.json"),
		filepath.Join(dir, "idls", "points.json"),
	}, paths)

	token := jobs[0].Options
	assert.Equal(t, tokenProgramID, token.ProgramID)
	assert.Equal(t, "token", token.Policy.Name())
	assert.Equal(t, codegen.TagsIncremental, token.InstructionTags)
	assert.Equal(t, dtypes.U8, token.InstructionTagType)
	assert.Equal(t, codegen.TagsBySize, token.AccountTags)
	assert.Equal(t, dtypes.Invalid, token.AccountTagType)
	assert.False(t, token.CheckMissingTypes)

	points := jobs[2].Options
	assert.Empty(t, points.ProgramID)
	assert.Equal(t, "base", points.Policy.Name())
	assert.Equal(t, codegen.TagValues(""), points.InstructionTags)
	assert.True(t, points.CheckMissingTypes)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestJobs_Errors(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no output", Config{}, "no output directory"},
		{"no idl", Config{OutDir: "out", Programs: []Program{{Policy: "token"}}}, "has no IDL"},
		{"bad policy", Config{OutDir: "out", Programs: []Program{{IDL: "a.json", Policy: "stake"}}}, "unknown policy"},
		{"bad tag type", Config{OutDir: "out", Programs: []Program{{IDL: "a.json", InstructionTagType: "u9"}}},
			"instruction_tag_type: unknown type \"u9\""},
		{"bad account tag type", Config{OutDir: "out", Programs: []Program{{IDL: "a.json", AccountTagType: "bigint"}}},
			"account_tag_type"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Jobs()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestResolvePaths(t *testing.T) {
	usr, err := user.Current()
	require.NoError(t, err)
	cfg := &Config{
		OutDir:   "~/bindings",
		IDLDir:   "/abs/idls",
		Programs: []Program{{IDL: "token.json"}, {}},
	}
	cfg.ResolvePaths("/etc/solmate")
	assert.Equal(t, filepath.Join(usr.HomeDir, "bindings"), cfg.OutDir)
	assert.Equal(t, "/abs/idls", cfg.IDLDir)
	assert.Equal(t, "/etc/solmate/token.json", cfg.Programs[0].IDL)
	assert.Empty(t, cfg.Programs[1].IDL)
}
