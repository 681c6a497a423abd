package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"yuk/classfile"
)

type disasmCmd struct{}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "Disassemble a .ykb bytecode file to stdout" }
func (*disasmCmd) Usage() string {
	return `disasm <input.ykb>:
  Print a human-readable instruction listing.
`
}

func (*disasmCmd) SetFlags(f *flag.FlagSet) {}

func (*disasmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no input file provided\n")
		return subcommands.ExitUsageError
	}
	inputPath := args[0]

	in, err := os.Open(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", inputPath, err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	file, err := classfile.Read(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 malformed bytecode file: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := classfile.Disassemble(os.Stdout, file); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to disassemble: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
