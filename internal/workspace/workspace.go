package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Solifugus/mbl/internal/lexer"
)

// File is one scanned source file.
type File struct {
	Path     string
	Source   []byte
	Tokens   []lexer.Token
	HadError bool
}

// Workspace loads and scans source files under a root directory, caching
// results until they are invalidated.
type Workspace struct {
	rootPath string

	files map[string]*File
}

func New(rootPath string) *Workspace {
	return &Workspace{
		rootPath: rootPath,
		files:    make(map[string]*File),
	}
}

// Load reads and scans the file at relPath, reusing the cached scan if one
// exists.
func (w *Workspace) Load(relPath string) (*File, error) {
	fullPath := filepath.Join(w.rootPath, relPath)

	if f, ok := w.files[fullPath]; ok {
		return f, nil
	}

	bytes, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	f := w.scan(relPath, bytes)
	w.files[fullPath] = f

	return f, nil
}

// LoadWithContents scans contents as the file at relPath, replacing any
// cached scan. Editors hand us unsaved buffers through this path.
func (w *Workspace) LoadWithContents(relPath string, contents []byte) *File {
	f := w.scan(relPath, contents)
	w.files[filepath.Join(w.rootPath, relPath)] = f

	return f
}

// Invalidate drops the cached scan for relPath, if any.
func (w *Workspace) Invalidate(relPath string) {
	delete(w.files, filepath.Join(w.rootPath, relPath))
}

func (w *Workspace) scan(relPath string, contents []byte) *File {
	tokens, hadError := lexer.Scan(contents, relPath)

	return &File{
		Path:     relPath,
		Source:   contents,
		Tokens:   tokens,
		HadError: hadError,
	}
}
