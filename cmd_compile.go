package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"yuk/classfile"
	"yuk/compile"
	"yuk/internal/config"
)

type compileCmd struct {
	output  string
	enable  string
	disable string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a .yk source file to a .ykb bytecode file" }
func (*compileCmd) Usage() string {
	return `compile <input.yk> [-o output.ykb] [-e feat,...] [-d feat,...]:
  Compile source to bytecode.
`
}

func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output .ykb path (defaults to the input path with its extension replaced)")
	f.StringVar(&c.enable, "e", "", "comma-separated feature flags to enable")
	f.StringVar(&c.disable, "d", "", "comma-separated feature flags to disable")
}

func (c *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no input file provided\n")
		return subcommands.ExitUsageError
	}
	inputPath := args[0]

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", inputPath, err)
		return subcommands.ExitFailure
	}

	feats, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to load config: %v\n", err)
		return subcommands.ExitFailure
	}
	feats = feats.Apply(splitFeatures(c.enable), splitFeatures(c.disable))

	file, sink, err := compile.Source(inputPath, string(data), feats)
	if err != nil {
		sink.Render(os.Stderr)
		return subcommands.ExitFailure
	}
	sink.Render(os.Stderr)

	outputPath := c.output
	if outputPath == "" {
		outputPath = outputPathFor(inputPath)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to create %s: %v\n", outputPath, err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	if err := classfile.Write(out, file); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write bytecode: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func splitFeatures(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func outputPathFor(inputPath string) string {
	if idx := strings.LastIndex(inputPath, "."); idx >= 0 {
		return inputPath[:idx] + ".ykb"
	}
	return inputPath + ".ykb"
}
