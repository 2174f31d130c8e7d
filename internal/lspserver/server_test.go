package lspserver

import (
	"context"
	"log/slog"
	"os"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/moxide/internal/config"
	"github.com/starford/moxide/internal/session"
	"github.com/starford/moxide/internal/testutil"
	"github.com/starford/moxide/internal/vault"
)

func newTestServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	root, store := testutil.TempVault(t, files)
	settings := config.NewDefaultSettings()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	v, err := vault.Build(context.Background(), store, root, settings, logger)
	if err != nil {
		t.Fatal(err)
	}
	s := &Server{logger: logger, version: "test", root: root}
	s.sess = session.New(v, store, settings, logger)
	s.diag = newPublisher(s.sess, logger, s.uriFor)
	return s
}

func (s *Server) docParams(rel string, line, char uint32) (protocol.TextDocumentIdentifier, protocol.Position) {
	return protocol.TextDocumentIdentifier{URI: s.uriFor(rel)},
		protocol.Position{Line: line, Character: char}
}

func TestDefinition_HeadingLink(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"A.md": "# Section X\nbody\n",
		"B.md": "[[A#Section X]]\n",
	})

	doc, pos := s.docParams("B.md", 0, 5)
	res, err := s.definition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{TextDocument: doc, Position: pos},
	})
	if err != nil {
		t.Fatal(err)
	}
	locations, ok := res.([]protocol.Location)
	if !ok || len(locations) != 1 {
		t.Fatalf("result = %#v", res)
	}
	if locations[0].URI != s.uriFor("A.md") {
		t.Errorf("uri = %s", locations[0].URI)
	}
	if locations[0].Range.Start.Line != 0 {
		t.Errorf("line = %d, want 0", locations[0].Range.Start.Line)
	}
}

func TestReferences_FileBacklinks(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"A.md": "target\n",
		"B.md": "[[A]]\n",
		"C.md": "[[A]]\n",
	})

	doc, pos := s.docParams("A.md", 0, 0)
	locations, err := s.references(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{TextDocument: doc, Position: pos},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(locations) != 2 {
		t.Fatalf("locations = %d, want 2", len(locations))
	}
}

func TestHover_Disabled(t *testing.T) {
	s := newTestServer(t, map[string]string{"A.md": "# X\n"})
	s.sess.Settings().Hover = false

	doc, pos := s.docParams("A.md", 0, 0)
	res, err := s.hover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{TextDocument: doc, Position: pos},
	})
	if err != nil || res != nil {
		t.Errorf("hover = %v err %v, want nil", res, err)
	}
}

func TestDocumentSymbol_Outline(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"A.md": "# Top\n## Child\n### Grand\n## Child2\n# Top2\n",
	})

	doc, _ := s.docParams("A.md", 0, 0)
	res, err := s.documentSymbol(nil, &protocol.DocumentSymbolParams{TextDocument: doc})
	if err != nil {
		t.Fatal(err)
	}
	symbols := res.([]protocol.DocumentSymbol)
	if len(symbols) != 2 {
		t.Fatalf("roots = %d, want 2", len(symbols))
	}
	top := symbols[0]
	if top.Name != "Top" || len(top.Children) != 2 {
		t.Errorf("top = %s children %d", top.Name, len(top.Children))
	}
	if len(top.Children[0].Children) != 1 || top.Children[0].Children[0].Name != "Grand" {
		t.Errorf("nesting wrong: %+v", top.Children)
	}
}

func TestSemanticTokens_UnresolvedOnly(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"A.md": "real\n",
		"B.md": "[[A]] then [[Missing]]\nand [[Gone]]\n",
	})

	doc, _ := s.docParams("B.md", 0, 0)
	res, err := s.semanticTokensFull(nil, &protocol.SemanticTokensParams{TextDocument: doc})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Data) != 10 {
		t.Fatalf("data = %v, want 2 tokens (10 ints)", res.Data)
	}
	// First token: line 0, col 11, [[Missing]] is 11 units long.
	if res.Data[0] != 0 || res.Data[1] != 11 || res.Data[2] != 11 {
		t.Errorf("first token = %v", res.Data[:5])
	}
	// Second token: next line, absolute column.
	if res.Data[5] != 1 || res.Data[6] != 4 {
		t.Errorf("second token = %v", res.Data[5:10])
	}
}

func TestCodeLens_Counts(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"A.md": "# Head\n",
		"B.md": "[[A]] [[A#Head]]\n",
	})

	doc, _ := s.docParams("A.md", 0, 0)
	lenses, err := s.codeLens(nil, &protocol.CodeLensParams{TextDocument: doc})
	if err != nil {
		t.Fatal(err)
	}
	if len(lenses) != 2 {
		t.Fatalf("lenses = %d, want 2 (file + heading)", len(lenses))
	}
	if lenses[0].Command.Title != "2 references" {
		t.Errorf("file lens = %q", lenses[0].Command.Title)
	}
	if lenses[1].Command.Title != "1 references" {
		t.Errorf("heading lens = %q", lenses[1].Command.Title)
	}
}

func TestDiagnostics_Unresolved(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"B.md": "see [[Missing]] and [[B]]\n",
	})

	var diags []protocol.Diagnostic
	s.sess.WithRead(func(v *vault.Vault) {
		diags = diagnosticsFor(v, "B.md")
	})
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(diags))
	}
	if diags[0].Message != "unresolved reference" {
		t.Errorf("message = %q", diags[0].Message)
	}

	s.sess.Settings().UnresolvedDiagnostics = false
	s.sess.WithRead(func(v *vault.Vault) {
		diags = diagnosticsFor(v, "B.md")
	})
	if len(diags) != 0 {
		t.Errorf("diagnostics while disabled = %d", len(diags))
	}
}

func TestWorkspaceSymbol_Filtered(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"Alpha.md": "# Intro\n#atag\n",
		"Beta.md":  "x\n",
	})

	symbols, err := s.workspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "alp"})
	if err != nil {
		t.Fatal(err)
	}
	for _, sym := range symbols {
		if sym.Name == "Beta" {
			t.Errorf("unmatched symbol returned: %v", sym.Name)
		}
	}
	found := false
	for _, sym := range symbols {
		if sym.Name == "Alpha" {
			found = true
		}
	}
	if !found {
		t.Error("Alpha not in filtered symbols")
	}
}

func TestCapabilities_AdvertiseWiredHandlers(t *testing.T) {
	caps := newCapabilities()
	if !caps.InlayHintProvider {
		t.Error("inlay hints wired but not advertised")
	}
	if caps.CompletionProvider.ResolveProvider == nil || !*caps.CompletionProvider.ResolveProvider {
		t.Error("completionItem/resolve wired but not advertised")
	}
}

func TestCompletionResolve_AttachesPreview(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"A.md": "# Alpha\nthe body\n",
	})

	kind := protocol.CompletionItemKindFile
	item := &protocol.CompletionItem{Label: "A", Kind: &kind}
	resolved, err := s.completionResolve(nil, item)
	if err != nil {
		t.Fatal(err)
	}
	doc, ok := resolved.Documentation.(protocol.MarkupContent)
	if !ok {
		t.Fatalf("documentation = %#v", resolved.Documentation)
	}
	if doc.Kind != protocol.MarkupKindMarkdown || doc.Value == "" {
		t.Errorf("documentation = %+v", doc)
	}
}

func TestCompletionResolve_NonFileUntouched(t *testing.T) {
	s := newTestServer(t, map[string]string{"A.md": "x\n"})

	kind := protocol.CompletionItemKindEnum
	item := &protocol.CompletionItem{Label: "warning", Kind: &kind}
	resolved, err := s.completionResolve(nil, item)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Documentation != nil {
		t.Errorf("documentation = %#v, want untouched", resolved.Documentation)
	}
}

func TestURIRoundTrip(t *testing.T) {
	s := newTestServer(t, map[string]string{"sub/My Note.md": "x\n"})
	uri := s.uriFor("sub/My Note.md")
	rel, err := s.relPath(uri)
	if err != nil {
		t.Fatal(err)
	}
	if rel != "sub/My Note.md" {
		t.Errorf("round trip = %q", rel)
	}
}
