package lspserver

import (
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/moxide/internal/completion"
	"github.com/starford/moxide/internal/preview"
	"github.com/starford/moxide/internal/vault"
)

func (s *Server) completion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	var list completion.List
	s.sess.WithRead(func(v *vault.Vault) {
		list = completion.Complete(v, rel, toPosition(params.Position), time.Now())
	})

	items := make([]protocol.CompletionItem, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, s.toCompletionItem(item))
	}
	return &protocol.CompletionList{
		IsIncomplete: list.IsIncomplete,
		Items:        items,
	}, nil
}

// completionResolve lazily attaches a content preview of the target to a
// selected item, keeping the initial completion response small.
func (s *Server) completionResolve(ctx *glsp.Context, item *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	if item.Kind == nil {
		return item, nil
	}
	switch *item.Kind {
	case protocol.CompletionItemKindFile, protocol.CompletionItemKindReference:
	default:
		return item, nil
	}

	s.sess.WithRead(func(v *vault.Vault) {
		for _, res := range v.ResolveRefname(item.Label) {
			if !res.Resolved() {
				continue
			}
			content := preview.Content(v, res, preview.HoverLimits)
			if content == "" {
				return
			}
			item.Documentation = protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: content,
			}
			return
		}
	})
	return item, nil
}

func (s *Server) toCompletionItem(item completion.Item) protocol.CompletionItem {
	kind := completionKind(item.Kind)
	out := protocol.CompletionItem{
		Label: item.Label,
		Kind:  &kind,
		TextEdit: protocol.TextEdit{
			Range:   fromRange(item.Edit.Rng),
			NewText: item.Edit.NewText,
		},
	}
	if item.Detail != "" {
		detail := item.Detail
		out.Detail = &detail
	}
	if item.FilterText != "" {
		filter := item.FilterText
		out.FilterText = &filter
	}
	if item.SortText != "" {
		sortText := item.SortText
		out.SortText = &sortText
	}
	for _, extra := range item.ExtraEdits {
		edit := protocol.TextEdit{
			Range:   fromRange(extra.Edit.Rng),
			NewText: extra.Edit.NewText,
		}
		if extra.Path == "" {
			out.AdditionalTextEdits = append(out.AdditionalTextEdits, edit)
			continue
		}
		// Cross-file edits ride on a command; the editor extension
		// applies the workspace edit when the item is accepted.
		out.Command = &protocol.Command{
			Title:     "Index block",
			Command:   cmdApplyEdit,
			Arguments: []any{string(s.uriFor(extra.Path)), edit},
		}
	}
	return out
}

func completionKind(kind completion.ItemKind) protocol.CompletionItemKind {
	switch kind {
	case completion.KindFile, completion.KindDaily:
		return protocol.CompletionItemKindFile
	case completion.KindHeading:
		return protocol.CompletionItemKindReference
	case completion.KindBlock, completion.KindLine:
		return protocol.CompletionItemKindText
	case completion.KindTag:
		return protocol.CompletionItemKindConstant
	case completion.KindFootnote:
		return protocol.CompletionItemKindReference
	case completion.KindCallout:
		return protocol.CompletionItemKindEnum
	case completion.KindAlias:
		return protocol.CompletionItemKindInterface
	case completion.KindUnresolved:
		return protocol.CompletionItemKindSnippet
	default:
		return protocol.CompletionItemKindText
	}
}
