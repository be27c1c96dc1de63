package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"pyast/internal/ast"
	"pyast/internal/convert"
	"pyast/internal/cst"
	"pyast/internal/diag"
	"pyast/internal/lexer"
	"pyast/internal/parser"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// replMode selects what the REPL prints for each input.
type replMode string

const (
	modeAST    replMode = "ast"
	modeCST    replMode = "cst"
	modeTokens replMode = "tokens"
)

// ---- repl command ----

func cmdRepl(args []string) int {
	var opts options
	fs := newFlagSet("repl", &opts)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := opts.initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	conv, err := convert.New(opts.version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// History file path (~/.pyast_history)
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".pyast_history")
	}

	prompt := colorGreen + ">>> " + colorReset
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		return 1
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s%spyast REPL%s %s(Python %s; :ast, :cst, :tokens switch output; 'exit' or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, conv.Version(), colorReset)

	mode := modeAST
	var input blockReader
	for {
		if input.pending() {
			rl.SetPrompt(colorGray + "... " + colorReset)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if input.pending() {
					input.reset()
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if !input.pending() {
			switch cmd := strings.TrimSpace(line); cmd {
			case "exit", "quit()":
				return 0
			case "":
				continue
			case ":ast", ":cst", ":tokens":
				mode = replMode(cmd[1:])
				fmt.Fprintf(rl.Stdout(), "%soutput: %s%s\n", colorGray, mode, colorReset)
				continue
			}
		}

		source, ok := input.add(line)
		if !ok {
			continue
		}
		evalInput(rl.Stdout(), rl.Stderr(), conv, mode, source)
	}
	return 0
}

// evalInput prints one complete REPL input in the selected mode.
func evalInput(stdout, stderr io.Writer, conv *convert.Converter, mode replMode, source string) {
	switch mode {
	case modeTokens:
		tokens, diags := lexer.New(source, "<repl>").Tokenize()
		for _, tok := range tokens {
			fmt.Fprintf(stdout, "%-16s %-20s %d:%d\n", tok.Kind, tokenLexeme(tok), tok.Span.Start.Line, tok.Span.Start.Column)
		}
		printDiagsColored(stderr, diags)
	case modeCST:
		root, diags := parser.ParseSource(source, "<repl>")
		if len(diags) > 0 {
			printDiagsColored(stderr, diags)
			return
		}
		writeJSON(stdout, stderr, cst.NodeToMap(root))
	default:
		program, err := conv.Source(source, "<repl>")
		if err != nil {
			var listErr *diag.ListError
			if errors.As(err, &listErr) {
				printDiagsColored(stderr, listErr.Diagnostics)
			} else {
				fmt.Fprintf(stderr, "%serror: %s%s\n", colorRed, err, colorReset)
			}
			return
		}
		stmts := program[0].EventListeners[0].Action.Statements
		out := make([]interface{}, len(stmts))
		for i, s := range stmts {
			out[i] = ast.ToMap(s)
		}
		writeJSON(stdout, stderr, out)
	}
}

// printDiagsColored prints diagnostics with red color for REPL display.
func printDiagsColored(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s%s%s\n", colorRed, d.String(), colorReset)
	}
}
