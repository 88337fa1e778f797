package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Solifugus/mbl/internal/lexer"
	"github.com/Solifugus/mbl/internal/workspace"
	"github.com/alecthomas/kingpin/v2"
	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

var (
	asJSON  = kingpin.Flag("json", "Print tokens as JSON instead of a table").Bool()
	dump    = kingpin.Flag("dump", "Dump raw token values for debugging").Bool()
	noColor = kingpin.Flag("no-color", "Disable colored output").Bool()
	watch   = kingpin.Flag("watch", "Watch files for changes and rescan automatically").Short('w').Bool()
	files   = kingpin.Arg("files", "List of files to scan").Required().ExistingFiles()
)

var (
	posColor   = color.New(color.FgYellow)
	typeColor  = color.New(color.FgCyan)
	errorColor = color.New(color.FgRed, color.Bold)
)

func main() {
	kingpin.Parse()

	if *noColor {
		color.NoColor = true
	}

	if *watch {
		if err := watchFiles(); err != nil {
			kingpin.Fatalf("failed to watch files: %s", err)
		}
		return
	}

	if err := scanAll(); err != nil {
		kingpin.Fatalf("%s", err)
	}
}

func scanAll() error {
	wd, _ := os.Getwd()
	ws := workspace.New(wd)

	hadError := false

	for _, fname := range *files {
		f, err := ws.Load(fname)
		if err != nil {
			return fmt.Errorf("load file %q: %w", fname, err)
		}

		if err := printFile(f); err != nil {
			return fmt.Errorf("print tokens for %q: %w", fname, err)
		}

		if f.HadError {
			hadError = true
		}
	}

	if hadError {
		os.Exit(1)
	}

	return nil
}

type jsonToken struct {
	Type   string `json:"type"`
	Lexeme string `json:"lexeme"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func printFile(f *workspace.File) error {
	switch {
	case *asJSON:
		out := make([]jsonToken, len(f.Tokens))
		for i, tk := range f.Tokens {
			out[i] = jsonToken{
				Type:   tk.Type.String(),
				Lexeme: tk.Lexeme,
				File:   tk.Start.File,
				Line:   tk.Start.Line,
				Column: tk.Start.Column,
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case *dump:
		spew.Dump(f.Tokens)

	default:
		printTable(f)
	}

	return nil
}

func printTable(f *workspace.File) {
	if len(*files) > 1 {
		fmt.Printf("%s:\n", f.Path)
	}

	for _, tk := range f.Tokens {
		pos := posColor.Sprintf("%4d:%-3d", tk.Start.Line, tk.Start.Column)

		if tk.Type == lexer.TokenError {
			fmt.Printf("%s %s\n", pos, errorColor.Sprint(tk.Lexeme))
			continue
		}

		fmt.Printf("%s %s %q\n", pos, typeColor.Sprintf("%-18s", tk.Type), tk.Lexeme)
	}

	if errs := lexer.ErrorTokens(f.Tokens); len(errs) > 0 {
		errorColor.Fprintf(os.Stderr, "%d lexical error(s) in %s\n", len(errs), f.Path)

		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", &e.Start, e.Lexeme)
		}
	}
}

func watchFiles() error {
	wd, _ := os.Getwd()

	watcher, err := NewWatcher(wd)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	for _, f := range *files {
		if err := watcher.WatchFile(f); err != nil {
			return fmt.Errorf("watch file %q: %w", f, err)
		}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	log.Println("watching files for changes...")

	<-ch
	return nil
}
