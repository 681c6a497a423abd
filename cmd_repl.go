package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"yuk/compile"
	"yuk/diag"
	"yuk/internal/config"
	"yuk/lexer"
	"yuk/token"
	"yuk/vm"
)

type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive read-compile-run loop" }
func (*replCmd) Usage() string {
	return `repl:
  Read a line at a time, compile the accumulated buffer once it looks
  complete, and run it.
`
}

func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	feats, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to load config: %v\n", err)
		return subcommands.ExitFailure
	}

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}

		if buffer.Len() == 0 && strings.TrimSpace(line) == "exit" {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		if !isInputReady(source) {
			rl.SetPrompt("... ")
			continue
		}
		rl.SetPrompt(">>> ")

		file, sink, err := compile.Source("<repl>", source, feats)
		if err != nil {
			sink.Render(os.Stderr)
			buffer.Reset()
			continue
		}
		sink.Render(os.Stderr)

		m, err := vm.New(file, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to start VM: %v\n", err)
			buffer.Reset()
			continue
		}
		if err := m.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		buffer.Reset()
	}
}

// isInputReady reports whether source looks like a complete program: its
// braces balance and it doesn't end on a token that obviously expects a
// continuation. It re-lexes the whole buffer on every line, which is wasteful for a
// REPL but source buffers here are a handful of lines at most.
func isInputReady(source string) bool {
	toks := lexer.New("<repl>", source, diag.NewSink("<repl>")).Tokens()

	depth := 0
	for _, tok := range toks {
		switch tok.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
	if depth > 0 {
		return false
	}

	last := lastNonEOF(toks)
	if last == nil {
		return true
	}
	switch last.Type {
	case token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.BANG,
		token.EQUAL_EQUAL, token.NOT_EQUAL, token.LESS, token.LESS_EQUAL,
		token.GREATER, token.GREATER_EQUAL, token.COMMA, token.LPAREN, token.LBRACE,
		token.IF, token.ELSE, token.WHILE, token.FOR, token.FUN, token.RETURN,
		token.VAR, token.AND, token.OR, token.PRINT:
		return false
	}
	return true
}

func lastNonEOF(toks []token.Token) *token.Token {
	for i := len(toks) - 1; i >= 0; i-- {
		if toks[i].Type != token.EOF {
			return &toks[i]
		}
	}
	return nil
}
