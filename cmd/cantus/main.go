package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cantus-lang/cantus/pkg/cantus"
	"golang.org/x/term"
)

const version = "0.1.0"

// commandAliases lets a short letter stand in for a full subcommand name.
var commandAliases = map[string]string{
	"r": "run",
	"i": "repl",
}

// blockKeywords mirrors internal/statement's own block-opening keyword
// table, so the REPL recognizes the same headers the parser does.
var blockKeywords = []string{
	"if", "elif", "else",
	"while", "until", "for", "repeat", "run",
	"function", "class",
	"switch", "case", "default",
	"try", "catch", "finally",
	"namespace",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		runRepl(nil)
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("cantus %s\n", version)
	case "run":
		runFile(args[1:])
	case "repl":
		runRepl(args[1:])
	default:
		// `cantus script.can` with no explicit subcommand, the way a
		// host running a single script most often invokes this binary.
		runFile(args)
	}
}

func showUsage() {
	fmt.Println(`cantus is the reference interpreter for the Cantus scripting language.

Usage:
  cantus <script.can> [flags]      run a script
  cantus run <script.can> [flags]  run a script
  cantus repl [flags]              start an interactive session
  cantus help                      show this message
  cantus version                   show the interpreter version

Flags (run and repl):
  -explicit          require every variable to be declared with let before use
  -significant       track significant figures instead of exact precision
  -angle string      "radians" (default) or "degrees" for sin/cos/tan and friends
  -load string        base directory the load statement resolves relative paths against
  -include string     base directory the load statement resolves dotted scope paths against`)
}

func sharedFlags(fs *flag.FlagSet) (*bool, *bool, *string, *string, *string) {
	explicit := fs.Bool("explicit", false, "require let before assignment")
	significant := fs.Bool("significant", false, "track significant figures")
	angle := fs.String("angle", "radians", `"radians" or "degrees"`)
	loadDir := fs.String("load", "", "base directory for the load statement")
	includeDir := fs.String("include", "", "base directory for dotted load scopes")
	return explicit, significant, angle, loadDir, includeDir
}

func buildConfig(explicit, significant bool, angle string) cantus.Config {
	cfg := cantus.DefaultConfig()
	cfg.ExplicitMode = explicit
	cfg.SignificantMode = significant
	if strings.EqualFold(angle, "degrees") {
		cfg.AngleMode = cantus.Degrees
	}
	return cfg
}

func newStateFromFlags(explicit, significant bool, angle, loadDir, includeDir string) *cantus.State {
	opts := []cantus.StateOption{cantus.WithConfig(buildConfig(explicit, significant, angle))}
	if loadDir != "" || includeDir != "" {
		opts = append(opts, cantus.WithLoader(loadDir, includeDir))
	}
	return cantus.NewState(opts...)
}

func runFile(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	explicit, significant, angle, loadDir, includeDir := sharedFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "cantus run: missing script path")
		os.Exit(2)
	}
	path := rest[0]

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	if *loadDir == "" {
		*loadDir = filepath.Dir(path)
	}
	state := newStateFromFlags(*explicit, *significant, *angle, *loadDir, *includeDir)
	defer state.Close()

	if _, err := state.Eval(string(source)); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// runRepl starts a line-oriented read-eval-print loop: a blank line ends
// whatever indented block is being typed and runs everything entered
// since the last run, matching how a script's own indentation blocks are
// already delimited by dedent rather than an explicit terminator.
func runRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	explicit, significant, angle, loadDir, includeDir := sharedFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	state := newStateFromFlags(*explicit, *significant, *angle, *loadDir, *includeDir)
	defer state.Close()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Printf("cantus %s | blank line runs, Ctrl-D exits\n", version)
	}

	scanner := bufio.NewScanner(os.Stdin)
	var pending []string
	prompt := func() {
		if !interactive {
			return
		}
		if len(pending) == 0 {
			fmt.Print(">>> ")
		} else {
			fmt.Print("... ")
		}
	}

	prompt()
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			if len(pending) > 0 {
				evalAndReport(state, strings.Join(pending, "\n"))
				pending = nil
			}
			prompt()
			continue
		}
		if len(pending) == 0 && (trimmed == "exit" || trimmed == "quit") {
			break
		}

		opening := len(pending) == 0 && startsBlock(line)
		pending = append(pending, line)
		if !opening && len(pending) == 1 {
			// A single line that doesn't open a block is a complete
			// statement on its own; a line that does open one waits for
			// its body, which only a blank line (or end of input) closes.
			evalAndReport(state, strings.Join(pending, "\n"))
			pending = nil
		}
		prompt()
	}
	if len(pending) > 0 {
		evalAndReport(state, strings.Join(pending, "\n"))
	}
	if interactive {
		fmt.Println()
	}
}

// startsBlock reports whether line opens one of Cantus's indented block
// keywords (if/for/while/function/class/try/catch and their relatives),
// so the REPL knows to keep reading indented continuation lines instead
// of evaluating a single incomplete header on its own.
func startsBlock(line string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(line), " \t")
	if trimmed == "" {
		return false
	}
	for _, kw := range blockKeywords {
		if trimmed == kw || strings.HasPrefix(trimmed, kw+" ") || strings.HasPrefix(trimmed, kw+"(") {
			return true
		}
	}
	return false
}

func evalAndReport(state *cantus.State, src string) {
	result, err := state.Eval(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}
	if !cantus.IsNil(result) {
		fmt.Println(result.String())
	}
}
