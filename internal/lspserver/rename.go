package lspserver

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/moxide/internal/actions"
	"github.com/starford/moxide/internal/vault"
)

func (s *Server) prepareRename(ctx *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var result any
	var prepErr error
	s.sess.WithRead(func(v *vault.Vault) {
		rng, placeholder, err := actions.Prepare(v, rel, toPosition(params.Position))
		if err != nil {
			prepErr = err
			return
		}
		result = struct {
			Range       protocol.Range `json:"range"`
			Placeholder string         `json:"placeholder"`
		}{
			Range:       fromRange(rng),
			Placeholder: placeholder,
		}
	})
	return result, prepErr
}

func (s *Server) rename(ctx *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var edit *protocol.WorkspaceEdit
	var renameErr error
	s.sess.WithRead(func(v *vault.Vault) {
		w, err := actions.Rename(v, rel, toPosition(params.Position), params.NewName)
		if err != nil {
			renameErr = err
			return
		}
		edit = s.fromWorkspaceEdit(w)
	})
	return edit, renameErr
}

func (s *Server) codeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var out []protocol.CodeAction
	s.sess.WithRead(func(v *vault.Vault) {
		kind := protocol.CodeActionKindQuickFix
		for _, action := range actions.ForPosition(v, rel, toPosition(params.Range.Start)) {
			out = append(out, protocol.CodeAction{
				Title: action.Title,
				Kind:  &kind,
				Edit:  s.fromWorkspaceEdit(action.Edit),
			})
		}
	})
	return out, nil
}
