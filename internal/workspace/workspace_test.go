package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Solifugus/mbl/internal/lexer"
)

func TestLoadScansAndCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.mbl")

	if err := os.WriteFile(path, []byte("x = 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := New(dir)

	f, err := w.Load("main.mbl")
	if err != nil {
		t.Fatalf("load: %s", err)
	}

	if f.HadError {
		t.Fatal("expected a clean scan")
	}
	if len(f.Tokens) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(f.Tokens))
	}
	if f.Tokens[0].Start.File != "main.mbl" {
		t.Fatalf("expected token file %q, got %q", "main.mbl", f.Tokens[0].Start.File)
	}

	if err := os.WriteFile(path, []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}

	again, err := w.Load("main.mbl")
	if err != nil {
		t.Fatalf("load: %s", err)
	}
	if again != f {
		t.Fatal("expected the cached scan before invalidation")
	}

	w.Invalidate("main.mbl")

	fresh, err := w.Load("main.mbl")
	if err != nil {
		t.Fatalf("load: %s", err)
	}
	if fresh == f {
		t.Fatal("expected a fresh scan after invalidation")
	}
	if len(fresh.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(fresh.Tokens))
	}
}

func TestLoadMissingFile(t *testing.T) {
	w := New(t.TempDir())

	if _, err := w.Load("nope.mbl"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadWithContents(t *testing.T) {
	w := New(t.TempDir())

	f := w.LoadWithContents("buffer.mbl", []byte(`"open`))
	if !f.HadError {
		t.Fatal("expected a scan error")
	}

	errs := lexer.ErrorTokens(f.Tokens)
	if len(errs) != 1 || errs[0].Lexeme != "Unterminated string" {
		t.Fatalf("unexpected error tokens: %v", errs)
	}

	cached, err := w.Load("buffer.mbl")
	if err != nil {
		t.Fatalf("load: %s", err)
	}
	if cached != f {
		t.Fatal("expected the buffer scan to be cached")
	}
}
