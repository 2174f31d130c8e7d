package lspserver

import (
	"fmt"
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	protocol317 "github.com/tliron/glsp/protocol_3_17"

	"github.com/starford/moxide/internal/preview"
	"github.com/starford/moxide/internal/vault"
)

const semanticTokenUnresolved = "unresolvedReference"

// semanticTokensFull marks unresolved references, so editors can style
// them even when diagnostics are off.
func (s *Server) semanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	if !s.sess.Settings().SemanticTokens {
		return nil, nil
	}
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var refs []vault.Reference
	s.sess.WithRead(func(v *vault.Vault) {
		refs = unresolvedIn(v, rel)
	})
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Rng.Start.Line != refs[j].Rng.Start.Line {
			return refs[i].Rng.Start.Line < refs[j].Rng.Start.Line
		}
		return refs[i].Rng.Start.Character < refs[j].Rng.Start.Character
	})

	data := make([]protocol.UInteger, 0, len(refs)*5)
	prevLine, prevChar := uint32(0), uint32(0)
	for _, ref := range refs {
		line, char := ref.Rng.Start.Line, ref.Rng.Start.Character
		deltaLine := line - prevLine
		deltaChar := char
		if deltaLine == 0 {
			deltaChar = char - prevChar
		}
		length := ref.Rng.End.Character - ref.Rng.Start.Character
		data = append(data, deltaLine, deltaChar, length, 0, 0)
		prevLine, prevChar = line, char
	}
	return &protocol.SemanticTokens{Data: data}, nil
}

// codeLens shows "N references" over the file and over each heading.
func (s *Server) codeLens(ctx *glsp.Context, params *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var out []protocol.CodeLens
	s.sess.WithRead(func(v *vault.Vault) {
		f := v.File(rel)
		if f == nil {
			return
		}
		lens := func(target vault.Referenceable, rng protocol.Range) {
			n := len(v.ReferencesTo(target))
			out = append(out, protocol.CodeLens{
				Range: rng,
				Command: &protocol.Command{
					Title:   fmt.Sprintf("%d references", n),
					Command: "",
				},
			})
		}
		lens(vault.Referenceable{Kind: vault.RefableFile, Path: rel}, protocol.Range{})
		for _, h := range f.Headings() {
			lens(h, fromRange(h.Rng))
		}
	})
	return out, nil
}

// inlayHint renders the resolved content of embedded references after the
// embed span, truncated per configuration.
func (s *Server) inlayHint(ctx *glsp.Context, params *protocol317.InlayHintParams) ([]protocol317.InlayHint, error) {
	settings := s.sess.Settings()
	if !settings.InlayHints || !settings.BlockTransclusion {
		return nil, nil
	}
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var out []protocol317.InlayHint
	s.sess.WithRead(func(v *vault.Vault) {
		rng := toRange(params.Range)
		for _, ref := range v.References(rel) {
			if ref.Kind != vault.RefWikiEmbed || !rng.Contains(ref.Rng.Start) {
				continue
			}
			for _, res := range v.Resolve(ref) {
				if !res.Resolved() {
					continue
				}
				text := preview.Transclusion(v, res,
					settings.BlockTransclusionLength.Full,
					settings.BlockTransclusionLength.N)
				if text == "" {
					continue
				}
				out = append(out, protocol317.InlayHint{
					Position: fromPosition(ref.Rng.End),
					Label:    text,
				})
				break
			}
		}
	})
	return out, nil
}
