package main

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Solifugus/mbl/internal/lexer"
	"github.com/Solifugus/mbl/internal/workspace"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "mbl"

var version string = "0.0.1"
var handler protocol.Handler

var documents = map[string]string{}

// Semantic token type indexes, matching the legend sent on initialize.
const (
	semKeyword protocol.UInteger = iota
	semVariable
	semString
	semNumber
	semOperator
	semComment
)

var semTokenTypes = []string{"keyword", "variable", "string", "number", "operator", "comment"}

func main() {
	// This increases logging verbosity (optional)
	commonlog.Configure(1, nil)

	protocol.SetTraceValue(protocol.TraceValueMessage)

	handler = protocol.Handler{
		Initialize:  initialize,
		Initialized: initialized,
		Shutdown:    shutdown,
		SetTrace:    setTrace,
		TextDocumentDidOpen: func(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
			documents[params.TextDocument.URI] = params.TextDocument.Text

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidChange: func(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
			content, ok := documents[params.TextDocument.URI]
			if !ok {
				return nil
			}

			for _, change := range params.ContentChanges {
				switch change := change.(type) {
				case protocol.TextDocumentContentChangeEventWhole:
					documents[params.TextDocument.URI] = change.Text

				case protocol.TextDocumentContentChangeEvent:
					startIndex, endIndex := change.Range.IndexesIn(content)
					documents[params.TextDocument.URI] = content[:startIndex] + change.Text + content[endIndex:]
				}
			}

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidClose: func(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
			delete(documents, params.TextDocument.URI)
			return nil
		},
		TextDocumentCompletion:         completion,
		TextDocumentSemanticTokensFull: semanticTokensFull,
	}

	server := server.NewServer(&handler, lsName, false)

	server.RunStdio()
}

func handleDocument(context *glsp.Context, docURI string) error {
	url, err := url.Parse(docURI)
	if err != nil {
		return fmt.Errorf("parse document uri: %w", err)
	}
	if url.Scheme != "file" {
		return fmt.Errorf("invalid document uri scheme %q", url.Scheme)
	}

	contents, ok := documents[docURI]
	if !ok {
		return nil
	}

	filePath := url.Path
	fileName := filepath.Base(filePath)

	ws := workspace.New(filepath.Dir(filePath))

	f := ws.LoadWithContents(fileName, []byte(contents))

	diag := []protocol.Diagnostic{}

	for _, e := range lexer.ErrorTokens(f.Tokens) {
		diag = append(diag, protocol.Diagnostic{
			Range: protocol.Range{
				Start: pos(e.Start),
				End:   pos(e.Start),
			},
			Severity: ptr(protocol.DiagnosticSeverityError),
			Message:  e.Lexeme,
		})
	}

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diag,
	})

	return nil
}

func initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := handler.CreateServerCapabilities()
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     semTokenTypes,
			TokenModifiers: []string{},
		},
		Range: false,
		Full:  true,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func completion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	content, ok := documents[params.TextDocument.URI]
	if !ok {
		return nil, nil
	}

	words := lexer.Keywords()

	if prefix := wordBefore(content, params.Position); prefix != "" {
		ranks := fuzzy.RankFindNormalizedFold(prefix, words)
		sort.Sort(ranks)

		words = make([]string, len(ranks))
		for i, r := range ranks {
			words[i] = r.Target
		}
	}

	items := make([]protocol.CompletionItem, len(words))
	for i, w := range words {
		items[i] = protocol.CompletionItem{
			Label: w,
			Kind:  ptr(protocol.CompletionItemKindKeyword),
		}
	}

	return items, nil
}

func semanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	content, ok := documents[params.TextDocument.URI]
	if !ok {
		return nil, fmt.Errorf("document %q not found", params.TextDocument.URI)
	}

	toks, _ := lexer.Scan([]byte(content), filepath.Base(params.TextDocument.URI))

	data := make([]protocol.UInteger, 0)

	prevLine, prevCol := 0, 0
	for _, tk := range toks {
		var tokenType protocol.UInteger

		switch tk.Type {
		case lexer.TokenIf, lexer.TokenThen, lexer.TokenElse, lexer.TokenWhile,
			lexer.TokenDo, lexer.TokenFor, lexer.TokenIn, lexer.TokenFunction,
			lexer.TokenReturn, lexer.TokenBoolean, lexer.TokenUnknown:
			tokenType = semKeyword

		case lexer.TokenText:
			if strings.HasPrefix(tk.Lexeme, `"`) {
				tokenType = semString
			} else {
				tokenType = semVariable
			}

		case lexer.TokenNumber, lexer.TokenMoney, lexer.TokenTime:
			tokenType = semNumber

		case lexer.TokenAssign, lexer.TokenEqual, lexer.TokenGreater, lexer.TokenGreaterEqual,
			lexer.TokenLess, lexer.TokenLessEqual, lexer.TokenDot,
			lexer.TokenParenOpen, lexer.TokenParenClose:
			tokenType = semOperator

		case lexer.TokenCommentStart, lexer.TokenCommentEnd:
			tokenType = semComment

		default:
			continue
		}

		// Tokens spanning lines need multilineTokenSupport, which we don't
		// negotiate.
		if strings.ContainsRune(tk.Lexeme, '\n') {
			continue
		}

		line := tk.Start.Line - 1
		col := tk.Start.Column - 1

		startDelta := col
		if line == prevLine {
			startDelta = col - prevCol
		}

		data = append(data,
			protocol.UInteger(line-prevLine),
			protocol.UInteger(startDelta),
			protocol.UInteger(utf8.RuneCountInString(tk.Lexeme)),
			tokenType,
			0,
		)

		prevLine, prevCol = line, col
	}

	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

// wordBefore returns the bare word immediately left of the cursor, if any.
func wordBefore(content string, p protocol.Position) string {
	lines := strings.Split(content, "\n")
	if int(p.Line) >= len(lines) {
		return ""
	}

	line := lines[p.Line]
	end := int(p.Character)
	if end > len(line) {
		end = len(line)
	}

	start := end
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}

	return line[start:end]
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

func ptr[T any](v T) *T {
	return &v
}

func pos(l lexer.Location) protocol.Position {
	return protocol.Position{
		Line:      uint32(l.Line - 1),
		Character: uint32(l.Column - 1),
	}
}
