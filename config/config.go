// Package config reads the configuration of a generation run: where to write the bindings and, for
// each program, the codegen.Options to generate it with.
//
// Configuration files are YAML (".yaml", ".yml") or TOML (".toml"). A YAML example:
//
//	out_dir: ~/src/bindings
//	package: example.com/bindings
//	idl_dir: idls
//	check_missing_types: true
//	addresses:
//	  msol_mint: mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So
//	programs:
//	  - idl: idls/token_program.json
//	    policy: token
//	    instruction_tags: incremental
//	    account_tags: size
//	    default_accounts:
//	      rent: rent
//
// Every IDL file (*.json) in idl_dir not listed under programs is generated with the defaults.
// Relative paths are relative to the configuration file.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gomlx/solmate/codegen"
	"github.com/gomlx/solmate/dtypes"
	"github.com/gomlx/solmate/solana"
	"github.com/janpfeifer/gonb/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// Program configures the generation of one program.
type Program struct {
	// IDL is the path to the program's IDL file.
	IDL string `yaml:"idl" toml:"idl"`

	// Policy is the name of a codegen policy, see codegen.PolicyByName.
	Policy string `yaml:"policy" toml:"policy"`

	// ProgramID overrides the address in the IDL metadata.
	ProgramID *solana.PublicKey `yaml:"program_id" toml:"program_id"`

	// Addresses are added to the global ones.
	Addresses       map[string]solana.PublicKey `yaml:"addresses" toml:"addresses"`
	DefaultAccounts map[string]string           `yaml:"default_accounts" toml:"default_accounts"`

	// InstructionTags and AccountTags are "anchor" (the default), "incremental" or, for accounts
	// only, "size". Tag types are IDL names of unsigned integers, e.g. "u8".
	InstructionTags    string `yaml:"instruction_tags" toml:"instruction_tags"`
	InstructionTagType string `yaml:"instruction_tag_type" toml:"instruction_tag_type"`
	AccountTags        string `yaml:"account_tags" toml:"account_tags"`
	AccountTagType     string `yaml:"account_tag_type" toml:"account_tag_type"`

	SkipTypes     []string          `yaml:"skip_types" toml:"skip_types"`
	ExternalTypes map[string]string `yaml:"external_types" toml:"external_types"`

	// CheckMissingTypes overrides the global setting.
	CheckMissingTypes *bool `yaml:"check_missing_types" toml:"check_missing_types"`
}

// Config of a generation run.
type Config struct {
	// OutDir is where the program packages are written, and Package its Go import path.
	OutDir  string `yaml:"out_dir" toml:"out_dir"`
	Package string `yaml:"package" toml:"package"`

	// IDLDir holds IDL files generated with default options.
	IDLDir string `yaml:"idl_dir" toml:"idl_dir"`

	// Addresses are shared by all programs.
	Addresses map[string]solana.PublicKey `yaml:"addresses" toml:"addresses"`

	CheckMissingTypes bool `yaml:"check_missing_types" toml:"check_missing_types"`

	Programs []Program `yaml:"programs" toml:"programs"`
}

// Job is one program to generate: its IDL file and the options to generate it with.
type Job struct {
	IDLPath string
	Options codegen.Options
}

// Load reads a configuration file, choosing the format by its extension. Relative paths in it are
// made relative to the directory of the file.
func Load(path string) (*Config, error) {
	path = common.ReplaceTildeInDir(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read configuration")
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.WithMessagef(err, "configuration %q", path)
	}
	cfg.ResolvePaths(filepath.Dir(path))
	klog.V(1).Infof("loaded configuration %s: %d programs", path, len(cfg.Programs))
	return cfg, nil
}

// Parse decodes a configuration in the format given by ext: ".yaml", ".yml" or ".toml". Unknown
// keys are an error.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "invalid YAML")
		}
	case ".toml":
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.Wrap(err, "invalid TOML")
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for ii, key := range undecoded {
				keys[ii] = key.String()
			}
			return nil, errors.Errorf("unknown TOML keys: %s", strings.Join(keys, ", "))
		}
	default:
		return nil, errors.Errorf("unknown configuration format %q, use .yaml, .yml or .toml", ext)
	}
	return cfg, nil
}

// ResolvePaths expands "~" and makes relative paths relative to baseDir.
func (cfg *Config) ResolvePaths(baseDir string) {
	resolve := func(p string) string {
		if p == "" {
			return p
		}
		p = common.ReplaceTildeInDir(p)
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	cfg.OutDir = resolve(cfg.OutDir)
	cfg.IDLDir = resolve(cfg.IDLDir)
	for ii := range cfg.Programs {
		cfg.Programs[ii].IDL = resolve(cfg.Programs[ii].IDL)
	}
}

// Jobs returns the programs to generate: the configured ones, followed by the IDL files of IDLDir
// not configured explicitly, in name order.
func (cfg *Config) Jobs() ([]Job, error) {
	if cfg.OutDir == "" {
		return nil, errors.New("no output directory configured")
	}
	var jobs []Job
	listed := make(map[string]bool)
	for _, program := range cfg.Programs {
		if program.IDL == "" {
			return nil, errors.Errorf("program #%d has no IDL", len(jobs))
		}
		opts, err := cfg.options(program)
		if err != nil {
			return nil, errors.WithMessagef(err, "program %q", program.IDL)
		}
		jobs = append(jobs, Job{IDLPath: program.IDL, Options: opts})
		listed[filepath.Clean(program.IDL)] = true
	}
	if cfg.IDLDir == "" {
		return jobs, nil
	}
	matches, err := filepath.Glob(filepath.Join(cfg.IDLDir, "*.json"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list IDL files in %q", cfg.IDLDir)
	}
	slices.Sort(matches)
	for _, match := range matches {
		if listed[filepath.Clean(match)] {
			continue
		}
		opts, err := cfg.options(Program{IDL: match})
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, Job{IDLPath: match, Options: opts})
	}
	return jobs, nil
}

// options merges the global configuration with the one of program.
func (cfg *Config) options(program Program) (codegen.Options, error) {
	opts := codegen.Options{
		OutDir:            cfg.OutDir,
		Package:           cfg.Package,
		DefaultAccounts:   program.DefaultAccounts,
		InstructionTags:   codegen.TagValues(program.InstructionTags),
		AccountTags:       codegen.TagValues(program.AccountTags),
		SkipTypes:         program.SkipTypes,
		ExternalTypes:     program.ExternalTypes,
		CheckMissingTypes: cfg.CheckMissingTypes,
	}
	if program.CheckMissingTypes != nil {
		opts.CheckMissingTypes = *program.CheckMissingTypes
	}
	if program.ProgramID != nil {
		opts.ProgramID = program.ProgramID.String()
	}
	if len(cfg.Addresses)+len(program.Addresses) > 0 {
		opts.Addresses = make(map[string]string, len(cfg.Addresses)+len(program.Addresses))
		for _, addresses := range []map[string]solana.PublicKey{cfg.Addresses, program.Addresses} {
			for name, key := range addresses {
				opts.Addresses[name] = key.String()
			}
		}
	}

	var err error
	if opts.InstructionTagType, err = tagType(program.InstructionTagType); err != nil {
		return opts, errors.WithMessage(err, "instruction_tag_type")
	}
	if opts.AccountTagType, err = tagType(program.AccountTagType); err != nil {
		return opts, errors.WithMessage(err, "account_tag_type")
	}
	if opts.Policy, err = codegen.PolicyByName(program.Policy); err != nil {
		return opts, err
	}
	return opts, nil
}

func tagType(name string) (dtypes.DType, error) {
	if name == "" {
		return dtypes.Invalid, nil
	}
	dtype := dtypes.FromName(name)
	if dtype == dtypes.Invalid {
		return dtype, errors.Errorf("unknown type %q", name)
	}
	return dtype, nil
}
