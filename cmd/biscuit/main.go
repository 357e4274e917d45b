package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	biscuit "github.com/xirelogy/go-biscuit"
	"github.com/xirelogy/go-biscuit/internal/runtime"
	"github.com/xirelogy/go-biscuit/internal/tokenizer"
)

const cliToolVersion = "biscuit-cli 0.1.0-dev"

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "tokens":
		return runTokens(args[1:])
	case "builtins":
		return runBuiltins()
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: biscuit <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  tokens [--config file] [--color auto|always|never] <file>")
	fmt.Fprintln(w, "            dump the token stream of a source file")
	fmt.Fprintln(w, "  builtins  list built-in functions")
	fmt.Fprintln(w, "  version   print the tool version")
}

type tokensOptions struct {
	configPath string
	color      string
	file       string
}

func parseTokensArgs(args []string) (tokensOptions, error) {
	opts := tokensOptions{color: "auto"}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		key, val, hasVal := strings.Cut(arg, "=")
		switch key {
		case "--config", "--color":
			if !hasVal {
				if i+1 >= len(args) {
					return opts, fmt.Errorf("%s requires a value", key)
				}
				i++
				val = args[i]
			}
			if key == "--config" {
				opts.configPath = val
			} else {
				opts.color = val
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unknown flag %s", arg)
			}
			if opts.file != "" {
				return opts, fmt.Errorf("unexpected argument %s", arg)
			}
			opts.file = arg
		}
	}
	if opts.file == "" {
		return opts, fmt.Errorf("tokens requires a source file")
	}
	switch opts.color {
	case "auto", "always", "never":
	default:
		return opts, fmt.Errorf("--color must be auto, always or never, got %q", opts.color)
	}
	return opts, nil
}

func runTokens(args []string) int {
	opts, err := parseTokensArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg := biscuit.DefaultConfig()
	if opts.configPath != "" {
		cfg, err = biscuit.LoadConfig(opts.configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	rt, err := biscuit.New(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	level, _ := cfg.Log.SlogLevel()
	rt.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	tkr, err := rt.LoadFile(opts.file)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	toks, err := tokenizer.ScanAll(tkr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := tokenizer.NewDumper(stdout, useColor(opts.color)).Dump(tkr, toks); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runBuiltins() int {
	for _, spec := range runtime.All() {
		arity := fmt.Sprint(spec.Arity)
		if spec.Arity == runtime.Variadic {
			arity = "variadic"
		}
		fmt.Fprintf(stdout, "%-10s %s\n", spec.Name, arity)
	}
	return 0
}
