package lspserver

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/moxide/internal/actions"
	"github.com/starford/moxide/internal/parser"
)

// uriToPath converts a file:// URI to an absolute filesystem path.
func uriToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("lsp: bad uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("lsp: unsupported uri scheme %q", u.Scheme)
	}
	p := u.Path
	if runtime.GOOS == "windows" {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p), nil
}

// pathToURI converts an absolute path to a file:// URI.
func pathToURI(abs string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return protocol.DocumentUri(u.String())
}

// relPath converts a document URI into a vault-relative path.
func (s *Server) relPath(uri protocol.DocumentUri) (string, error) {
	abs, err := uriToPath(string(uri))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return "", fmt.Errorf("lsp: path outside vault: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// uriFor converts a vault-relative path into a document URI.
func (s *Server) uriFor(rel string) protocol.DocumentUri {
	return pathToURI(filepath.Join(s.root, filepath.FromSlash(rel)))
}

func toPosition(p protocol.Position) parser.Position {
	return parser.Position{Line: p.Line, Character: p.Character}
}

func fromPosition(p parser.Position) protocol.Position {
	return protocol.Position{Line: p.Line, Character: p.Character}
}

func toRange(r protocol.Range) parser.Range {
	return parser.Range{Start: toPosition(r.Start), End: toPosition(r.End)}
}

func fromRange(r parser.Range) protocol.Range {
	return protocol.Range{Start: fromPosition(r.Start), End: fromPosition(r.End)}
}

// fromWorkspaceEdit converts a computed multi-file edit into the protocol
// shape, using document changes so file creations and renames order
// correctly around the text edits.
func (s *Server) fromWorkspaceEdit(w *actions.WorkspaceEdit) *protocol.WorkspaceEdit {
	var ops []any

	for _, create := range w.Creates {
		ops = append(ops, protocol.CreateFile{
			Kind: "create",
			URI:  s.uriFor(create),
		})
	}
	for _, rename := range w.Renames {
		ops = append(ops, protocol.RenameFile{
			Kind:   "rename",
			OldURI: s.uriFor(rename.From),
			NewURI: s.uriFor(rename.To),
		})
	}
	for path, edits := range w.Changes {
		var protoEdits []any
		for _, e := range edits {
			protoEdits = append(protoEdits, protocol.TextEdit{
				Range:   fromRange(e.Rng),
				NewText: e.NewText,
			})
		}
		ops = append(ops, protocol.TextDocumentEdit{
			TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: s.uriFor(path)},
			},
			Edits: protoEdits,
		})
	}

	return &protocol.WorkspaceEdit{DocumentChanges: ops}
}
