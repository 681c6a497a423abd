package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"yuk/classfile"
	"yuk/compile"
	"yuk/internal/config"
	"yuk/vm"
)

type runCmd struct {
	enable  string
	disable string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Run a .yk source file or .ykb bytecode file" }
func (*runCmd) Usage() string {
	return `run <input.yk|input.ykb> [-e feat,...] [-d feat,...]:
  Compile (if needed) and execute a program.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.enable, "e", "", "comma-separated feature flags to enable")
	f.StringVar(&c.disable, "d", "", "comma-separated feature flags to disable")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no input file provided\n")
		return subcommands.ExitUsageError
	}
	inputPath := args[0]

	file, err := loadProgram(inputPath, c.enable, c.disable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	m, err := vm.New(file, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start VM: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := m.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// loadProgram reads inputPath and produces a classfile.File, compiling it
// from source if it looks like .yk and reading it as bytecode otherwise.
func loadProgram(inputPath, enable, disable string) (*classfile.File, error) {
	if isSourceFile(inputPath) {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
		}
		feats, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		feats = feats.Apply(splitFeatures(enable), splitFeatures(disable))

		file, sink, err := compile.Source(inputPath, string(data), feats)
		sink.Render(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("compile failed")
		}
		return file, nil
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	defer in.Close()
	file, err := classfile.Read(in)
	if err != nil {
		return nil, fmt.Errorf("malformed bytecode file: %w", err)
	}
	return file, nil
}

func isSourceFile(path string) bool {
	return len(path) >= 3 && path[len(path)-3:] == ".yk"
}
