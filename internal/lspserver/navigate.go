package lspserver

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/moxide/internal/preview"
	"github.com/starford/moxide/internal/vault"
)

func (s *Server) definition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var locations []protocol.Location
	s.sess.WithRead(func(v *vault.Vault) {
		ref, ok := v.ReferenceAt(rel, toPosition(params.Position))
		if !ok {
			return
		}
		for _, res := range v.Resolve(ref) {
			if !res.Resolved() {
				continue
			}
			path := res.Path
			if path == "" {
				path = rel
			}
			locations = append(locations, protocol.Location{
				URI:   s.uriFor(path),
				Range: fromRange(res.Rng),
			})
		}
	})
	if len(locations) == 0 {
		return nil, nil
	}
	return locations, nil
}

func (s *Server) references(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var locations []protocol.Location
	s.sess.WithRead(func(v *vault.Vault) {
		target, ok := s.targetAt(v, rel, params.Position)
		if !ok {
			return
		}
		for _, ref := range v.ReferencesTo(target) {
			locations = append(locations, protocol.Location{
				URI:   s.uriFor(ref.File),
				Range: fromRange(ref.Rng),
			})
		}
	})
	return locations, nil
}

// targetAt finds the referenceable a cursor denotes: a reference under the
// cursor resolves to its target; otherwise the referenceable defined at
// the position (the file itself when nothing narrower covers it).
func (s *Server) targetAt(v *vault.Vault, rel string, pos protocol.Position) (vault.Referenceable, bool) {
	if ref, ok := v.ReferenceAt(rel, toPosition(pos)); ok {
		for _, res := range v.Resolve(ref) {
			return res, true
		}
		return vault.Referenceable{}, false
	}
	return v.RefableAt(rel, toPosition(pos))
}

func (s *Server) hover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	if !s.sess.Settings().Hover {
		return nil, nil
	}
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var out *protocol.Hover
	s.sess.WithRead(func(v *vault.Vault) {
		target, ok := s.targetAt(v, rel, params.Position)
		if !ok {
			return
		}
		content := preview.Render(v, target, preview.HoverLimits)
		if content == "" {
			return
		}
		out = &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: content,
			},
		}
	})
	return out, nil
}
