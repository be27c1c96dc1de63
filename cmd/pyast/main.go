// Command pyast converts Python source into the general AST.
//
// Usage:
//
//	pyast tokens  <file> [--json]                         Print tokens
//	pyast cst     <file>                                  Print the concrete syntax tree as JSON
//	pyast convert [-python v] [-cache db] <file>          Print the general AST as JSON
//	pyast batch   [-python v] [-workers n] [-cache db] <files...>
//	                                                      Convert files in parallel, one JSON line each
//	pyast repl    [-python v]                             Start interactive REPL
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"pyast/internal/cache"
	"pyast/internal/cst"
	"pyast/internal/diag"
	"pyast/internal/lexer"
	"pyast/internal/logger"
	"pyast/internal/parser"
	"pyast/internal/pipeline"
)

const defaultVersion = "3.13"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command, args := os.Args[1], os.Args[2:]
	var code int
	switch command {
	case "tokens":
		code = cmdTokens(args)
	case "cst":
		code = cmdCST(args)
	case "convert":
		code = cmdConvert(args)
	case "batch":
		code = cmdBatch(args)
	case "repl":
		code = cmdRepl(args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		code = 1
	}
	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error: closing log file: %v\n", err)
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  pyast tokens  <file> [--json]                  Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  pyast cst     <file>                           Parse and print the CST (JSON)")
	fmt.Fprintln(os.Stderr, "  pyast convert [flags] <file>                   Print the general AST (JSON)")
	fmt.Fprintln(os.Stderr, "  pyast batch   [flags] <files...>               Convert files in parallel (JSON lines)")
	fmt.Fprintln(os.Stderr, "  pyast repl    [flags]                          Start interactive REPL")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags: -python <version>, -log-level <level>, -log-format text|json, -log-file <file>,")
	fmt.Fprintln(os.Stderr, "       -cache <db file>, -workers <n>. PYAST_LOG_LEVEL sets the default log level.")
}

// ---- shared flags ----

type options struct {
	version   string
	logLevel  string
	logFormat string
	logFile   string
	cachePath string
	workers   int
}

// newFlagSet registers the flags every conversion command accepts.
func newFlagSet(name string, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	level := os.Getenv("PYAST_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	fs.StringVar(&opts.version, "python", defaultVersion, "Python language version")
	fs.StringVar(&opts.logLevel, "log-level", level, "log level: debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&opts.logFile, "log-file", "", "append logs to this file instead of stderr")
	return fs
}

func (o *options) initLogging() error {
	level, err := logger.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	cfg := logger.DefaultConfig()
	cfg.Level = level
	cfg.Format = o.logFormat
	cfg.LogFile = o.logFile
	cfg.AddSource = level == logger.LevelDebug
	return logger.Init(cfg)
}

// openCache opens the cache named by -cache, or returns nil when unset.
func (o *options) openCache() (*cache.Cache, error) {
	if o.cachePath == "" {
		return nil, nil
	}
	return cache.Open(o.cachePath)
}

func readFile(filename string) (string, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return string(source), nil
}

// ---- tokens command ----

func cmdTokens(args []string) int {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	jsonMode := fs.Bool("json", false, "print tokens as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "error: missing file argument")
		return 1
	}
	for _, arg := range rest[1:] {
		if arg == "--json" || arg == "-json" {
			*jsonMode = true
		}
	}
	source, err := readFile(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	tokens, diags := lexer.New(source, rest[0]).Tokenize()
	if *jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}
	if len(diags) > 0 {
		return 1
	}
	return 0
}

// ---- cst command ----

func cmdCST(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "error: missing file argument")
		return 1
	}
	source, err := readFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	root, diags := parser.ParseSource(source, args[0])
	printJSON(map[string]interface{}{
		"cst":         cst.NodeToMap(root),
		"diagnostics": diagsToSlice(diags),
	})
	if len(diags) > 0 {
		return 1
	}
	return 0
}

// ---- convert command ----

func cmdConvert(args []string) int {
	var opts options
	fs := newFlagSet("convert", &opts)
	fs.StringVar(&opts.cachePath, "cache", "", "bbolt cache file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: expected exactly one file argument")
		return 1
	}
	if err := opts.initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	filename := fs.Arg(0)
	source, err := readFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	db, err := opts.openCache()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	popts := pipeline.Options{Version: opts.version, Workers: 1}
	if db != nil {
		defer db.Close()
		popts.Cache = db
	}

	results, err := pipeline.Run(context.Background(), []pipeline.Job{{Name: filename, Source: source}}, popts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if r := results[0]; r.Err != nil {
		printConvertError(r.Err)
		return 1
	}
	printRawJSON(results[0].JSON)
	return 0
}

// printConvertError prints syntax errors one diagnostic per line and any
// other error as a single line.
func printConvertError(err error) {
	var listErr *diag.ListError
	if errors.As(err, &listErr) {
		printDiagsText(listErr.Diagnostics)
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

// ---- batch command ----

type batchLine struct {
	File  string          `json:"file"`
	AST   json.RawMessage `json:"ast,omitempty"`
	Error string          `json:"error,omitempty"`
}

func cmdBatch(args []string) int {
	var opts options
	fs := newFlagSet("batch", &opts)
	fs.StringVar(&opts.cachePath, "cache", "", "bbolt cache file")
	fs.IntVar(&opts.workers, "workers", 0, "parallel conversions (0 = GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "error: missing file arguments")
		return 1
	}
	if err := opts.initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	db, err := opts.openCache()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	popts := pipeline.Options{Version: opts.version, Workers: opts.workers}
	if db != nil {
		defer db.Close()
		popts.Cache = db
	}

	// Unreadable files are reported in place without stopping the batch.
	lines := make([]batchLine, fs.NArg())
	var jobs []pipeline.Job
	var slots []int
	for i, filename := range fs.Args() {
		lines[i].File = filename
		source, err := readFile(filename)
		if err != nil {
			lines[i].Error = err.Error()
			continue
		}
		jobs = append(jobs, pipeline.Job{Name: filename, Source: source})
		slots = append(slots, i)
	}

	results, err := pipeline.Run(context.Background(), jobs, popts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if db != nil {
		if n, err := db.Len(); err == nil {
			logger.LogCacheSize(opts.cachePath, n)
		}
	}
	for j, r := range results {
		line := &lines[slots[j]]
		if r.Err != nil {
			line.Error = r.Err.Error()
		} else {
			line.AST = r.JSON
		}
	}

	code := 0
	enc := json.NewEncoder(os.Stdout)
	for _, line := range lines {
		if line.Error != "" {
			code = 1
		}
		if err := enc.Encode(line); err != nil {
			fmt.Fprintf(os.Stderr, "error: JSON encoding failed: %v\n", err)
			return 1
		}
	}
	return code
}
