package lspserver

import (
	"github.com/sahilm/fuzzy"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/moxide/internal/parser"
	"github.com/starford/moxide/internal/vault"
)

// documentSymbol builds the hierarchical outline from heading levels 1..6.
func (s *Server) documentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var symbols []protocol.DocumentSymbol
	s.sess.WithRead(func(v *vault.Vault) {
		f := v.File(rel)
		if f == nil {
			return
		}
		symbols = outline(f)
	})
	return symbols, nil
}

type outlineNode struct {
	sym      protocol.DocumentSymbol
	level    int
	children []*outlineNode
}

// outline nests headings by level: each heading owns the following
// headings of strictly deeper level.
func outline(f *vault.ParsedFile) []protocol.DocumentSymbol {
	var roots []*outlineNode
	var stack []*outlineNode

	for _, h := range f.Headings() {
		node := &outlineNode{
			sym: protocol.DocumentSymbol{
				Name:           h.Heading,
				Kind:           protocol.SymbolKindString,
				Range:          fromRange(headingExtent(f, h)),
				SelectionRange: fromRange(h.Rng),
			},
			level: h.Level,
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
		}
		stack = append(stack, node)
	}
	return collectOutline(roots)
}

func collectOutline(nodes []*outlineNode) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(nodes))
	for _, n := range nodes {
		n.sym.Children = collectOutline(n.children)
		out = append(out, n.sym)
	}
	return out
}

// headingExtent spans from a heading to the next heading of the same or a
// higher level.
func headingExtent(f *vault.ParsedFile, heading vault.Referenceable) parser.Range {
	start := heading.Rng.Start.Line
	endLine := uint32(f.LineCount())
	for _, h := range f.Headings() {
		if h.Rng.Start.Line > start && h.Level <= heading.Level {
			endLine = h.Rng.Start.Line
			break
		}
	}
	lastLine := endLine
	if lastLine > start {
		lastLine--
	}
	return parser.Range{
		Start: heading.Rng.Start,
		End:   parser.Position{Line: lastLine, Character: uint32(parser.UTF16Len(f.Line(int(lastLine))))},
	}
}

// workspaceSymbol returns files, headings and tags, fuzzy-filtered by the
// query.
func (s *Server) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	var out []protocol.SymbolInformation
	s.sess.WithRead(func(v *vault.Vault) {
		type entry struct {
			name string
			kind protocol.SymbolKind
			path string
			rng  parser.Range
		}
		var entries []entry
		for _, p := range v.Paths() {
			f := v.File(p)
			entries = append(entries, entry{name: f.Refname(), kind: protocol.SymbolKindFile, path: p})
			for _, h := range f.Headings() {
				entries = append(entries, entry{
					name: f.Refname() + "#" + h.Heading,
					kind: protocol.SymbolKindString,
					path: p,
					rng:  h.Rng,
				})
			}
		}
		for _, t := range v.Tags() {
			entries = append(entries, entry{name: "#" + t.Tag, kind: protocol.SymbolKindConstant, path: t.Path, rng: t.Rng})
		}

		keep := make([]int, 0, len(entries))
		if params.Query == "" {
			for i := range entries {
				keep = append(keep, i)
			}
		} else {
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.name
			}
			for _, m := range fuzzy.Find(params.Query, names) {
				keep = append(keep, m.Index)
			}
		}

		for _, i := range keep {
			e := entries[i]
			out = append(out, protocol.SymbolInformation{
				Name: e.name,
				Kind: e.kind,
				Location: protocol.Location{
					URI:   s.uriFor(e.path),
					Range: fromRange(e.rng),
				},
			})
		}
	})
	return out, nil
}
