package lspserver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/moxide/internal/actions"
	"github.com/starford/moxide/internal/apperr"
	"github.com/starford/moxide/internal/vault"
)

// Workspace commands.
const (
	cmdJump      = "jump"
	cmdToday     = "today"
	cmdTomorrow  = "tomorrow"
	cmdYesterday = "yesterday"
	cmdDaily     = "daily"
	cmdApplyEdit = "apply_edit"
)

func (s *Server) executeCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	switch params.Command {
	case cmdToday, cmdTomorrow, cmdYesterday:
		return nil, s.jumpToDaily(ctx, params.Command)
	case cmdJump, cmdDaily:
		phrase, err := stringArg(params.Arguments, 0)
		if err != nil {
			return nil, err
		}
		return nil, s.jumpToDaily(ctx, phrase)
	case cmdApplyEdit:
		return nil, s.applyItemEdit(ctx, params.Arguments)
	default:
		return nil, fmt.Errorf("unknown command %q: %w", params.Command, apperr.ErrBadRequest)
	}
}

func stringArg(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing argument %d: %w", i, apperr.ErrBadRequest)
	}
	str, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d is not a string: %w", i, apperr.ErrBadRequest)
	}
	return str, nil
}

// jumpToDaily resolves a date phrase, creates the daily note through a
// client-side workspace edit when it does not exist yet, and asks the
// client to show it.
func (s *Server) jumpToDaily(ctx *glsp.Context, phrase string) error {
	var rel string
	var create *actions.WorkspaceEdit
	var parseOK bool
	s.sess.WithRead(func(v *vault.Vault) {
		t, ok := v.Daily().ParsePhrase(phrase, time.Now())
		if !ok {
			return
		}
		parseOK = true
		rel = v.Daily().Path(t)
		if v.File(rel) == nil {
			create = actions.CreateFile(v, refnameArg(rel))
		}
	})
	if !parseOK {
		return fmt.Errorf("cannot parse date phrase %q: %w", phrase, apperr.ErrBadRequest)
	}

	if create != nil {
		ctx.Notify(protocol.ServerWorkspaceApplyEdit, protocol.ApplyWorkspaceEditParams{
			Edit: *s.fromWorkspaceEdit(create),
		})
	}
	takeFocus := true
	ctx.Notify(protocol.ServerWindowShowDocument, protocol.ShowDocumentParams{
		URI:       protocol.URI(s.uriFor(rel)),
		TakeFocus: &takeFocus,
	})
	return nil
}

// refnameArg strips the .md extension for CreateFile, which expects a
// refname-style target.
func refnameArg(rel string) string {
	if len(rel) > 3 && rel[len(rel)-3:] == ".md" {
		return rel[:len(rel)-3]
	}
	return rel
}

// applyItemEdit forwards the cross-file edit attached to a completion item
// (unindexed-block indexing) as a workspace edit.
func (s *Server) applyItemEdit(ctx *glsp.Context, args []any) error {
	uri, err := stringArg(args, 0)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("missing edit argument: %w", apperr.ErrBadRequest)
	}
	raw, err := json.Marshal(args[1])
	if err != nil {
		return fmt.Errorf("bad edit argument: %w", apperr.ErrBadRequest)
	}
	var edit protocol.TextEdit
	if err := json.Unmarshal(raw, &edit); err != nil {
		return fmt.Errorf("bad edit argument: %w", apperr.ErrBadRequest)
	}

	ctx.Notify(protocol.ServerWorkspaceApplyEdit, protocol.ApplyWorkspaceEditParams{
		Edit: protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{
				protocol.DocumentUri(uri): {edit},
			},
		},
	})
	return nil
}
