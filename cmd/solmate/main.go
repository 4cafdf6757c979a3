// solmate generates Go bindings for Solana programs from their IDL files.
//
// Generated files carry lock regions ("// LOCK-BEGIN[...]: DON'T MODIFY" ... "// LOCK-END"): running
// solmate again only rewrites those regions, and code added outside of them is preserved.
//
// Usage:
//
//	solmate --config=solmate.yaml
//	solmate --idl=idls/points.json --out=./bindings --package=example.com/bindings
//	solmate --idl_dir=idls --out=./bindings --package=example.com/bindings --watch
package main

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/gomlx/solmate/codegen"
	"github.com/gomlx/solmate/config"
	"github.com/gomlx/solmate/idl"
	"github.com/gomlx/solmate/solana"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagConfig = flag.String("config", "",
		"Configuration file (.yaml, .yml or .toml). When set, the other generation flags are ignored.")
	flagIDL     = flag.String("idl", "", "IDL file of the program to generate.")
	flagIDLDir  = flag.String("idl_dir", "", "Directory with IDL files (*.json): each one is generated with the default options.")
	flagOut     = flag.String("out", ".", "Directory where the program packages are written.")
	flagPackage = flag.String("package", "",
		"Go import path of --out, used by generated packages to import each other (e.g.: example.com/bindings).")
	flagProgramID = flag.String("program_id", "", "Program address (base58), overrides the IDL metadata. Only used with --idl.")
	flagPolicy    = flag.String("policy", "", fmt.Sprintf("Generation policy used with --idl, one of %q.", policyNames()))
	flagIxTags    = flag.String("instruction_tags", "", "Instruction tags used with --idl: anchor (default) or incremental.")
	flagAcctTags  = flag.String("account_tags", "", "Account tags used with --idl: anchor (default), incremental or size.")
	flagCheck     = flag.Bool("check_missing_types", false, "Fail if a referenced type is never defined.")
	flagWatch     = flag.Bool("watch", false, "Keep running and regenerate whenever an IDL or the configuration changes.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		klog.Fatal(err)
	}
	if !*flagWatch {
		must.M(generateAll(cfg))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := generateAll(cfg); err != nil {
		klog.Errorf("%+v", err)
	}
	if err := watch(ctx, cfg); err != nil {
		klog.Fatal(err)
	}
}

// loadConfig reads --config, or builds the configuration from the flags.
func loadConfig() (*config.Config, error) {
	if *flagConfig != "" {
		return config.Load(*flagConfig)
	}
	cfg := &config.Config{
		OutDir:            *flagOut,
		Package:           *flagPackage,
		IDLDir:            *flagIDLDir,
		CheckMissingTypes: *flagCheck,
	}
	if *flagIDL != "" {
		program := config.Program{
			IDL:             *flagIDL,
			Policy:          *flagPolicy,
			InstructionTags: *flagIxTags,
			AccountTags:     *flagAcctTags,
		}
		if *flagProgramID != "" {
			key, err := solana.PublicKeyFromBase58(*flagProgramID)
			if err != nil {
				return nil, errors.WithMessage(err, "--program_id")
			}
			program.ProgramID = &key
		}
		cfg.Programs = append(cfg.Programs, program)
	}
	if *flagIDL == "" && *flagIDLDir == "" {
		return nil, errors.New("nothing to generate: set --config, --idl or --idl_dir")
	}
	cwd := must.M1(os.Getwd())
	cfg.ResolvePaths(cwd)
	return cfg, nil
}

// generateAll generates every program of cfg, stopping at the first failure.
func generateAll(cfg *config.Config) error {
	jobs, err := cfg.Jobs()
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		klog.Warningf("no IDL files found in %q", cfg.IDLDir)
	}
	for _, job := range jobs {
		if err := generate(job); err != nil {
			return err
		}
	}
	return nil
}

func generate(job config.Job) error {
	spec, err := idl.ParseFile(job.IDLPath)
	if err != nil {
		return err
	}
	g, err := codegen.New(spec, job.Options)
	if err != nil {
		return errors.WithMessagef(err, "generating %q", job.IDLPath)
	}
	if err = g.Generate(); err != nil {
		return errors.WithMessagef(err, "generating %q", job.IDLPath)
	}
	if err = g.Save(); err != nil {
		return err
	}
	paths := g.Paths()
	klog.Infof("generated %s from %s: %d files", spec.Name, job.IDLPath, len(paths))
	for _, path := range paths {
		klog.V(1).Infof("  %s", path)
	}
	return nil
}

func policyNames() []string {
	return slices.Sorted(maps.Keys(codegen.Policies))
}
