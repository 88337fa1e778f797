package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Solifugus/mbl/internal/lexer"
	"github.com/fatih/color"
	"github.com/peterh/liner"
)

const historyFile = ".mbl_history"

var (
	posColor   = color.New(color.FgYellow)
	typeColor  = color.New(color.FgCyan)
	errorColor = color.New(color.FgRed, color.Bold)
)

func main() {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(complete)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Println("mbl token repl. Type a line of code to scan it, :keywords to list reserved words, :quit to exit.")

	for {
		line, err := ln.Prompt("mbl> ")
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, errorColor.Sprint(err.Error()))
			return
		}

		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(code, ":") {
			switch strings.ToLower(code) {
			case ":quit":
				return
			case ":keywords":
				fmt.Println(strings.Join(lexer.Keywords(), " "))
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		printTokens(line)
	}
}

func printTokens(src string) {
	tokens, _ := lexer.Scan([]byte(src), "repl")

	for _, tk := range tokens {
		if tk.Type == lexer.TokenEOF {
			continue
		}

		pos := posColor.Sprintf("%d:%-3d", tk.Start.Line, tk.Start.Column)

		if tk.Type == lexer.TokenError {
			fmt.Printf("  %s %s\n", pos, errorColor.Sprint(tk.Lexeme))
		} else {
			fmt.Printf("  %s %s %q\n", pos, typeColor.Sprintf("%-18s", tk.Type), tk.Lexeme)
		}
	}
}

// complete offers keyword completions for the word being typed.
func complete(line string) []string {
	i := len(line)
	for i > 0 && isWordByte(line[i-1]) {
		i--
	}

	head, word := line[:i], line[i:]
	if word == "" {
		return nil
	}

	var out []string
	for _, kw := range lexer.Keywords() {
		if strings.HasPrefix(kw, strings.ToLower(word)) {
			out = append(out, head+kw)
		}
	}

	return out
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
