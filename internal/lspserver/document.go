package lspserver

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/moxide/internal/session"
	"github.com/starford/moxide/internal/vault"
)

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.diag.bind(ctx)
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(rel, ".md") {
		return nil
	}
	s.sess.OpenDocument(rel, params.TextDocument.Text)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.diag.bind(ctx)
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	// Change notifications arrive in order and are applied in order.
	var changes []session.Change
	for _, raw := range params.ContentChanges {
		switch ch := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			rng := toRange(*ch.Range)
			changes = append(changes, session.Change{Rng: &rng, Text: ch.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, session.Change{Text: ch.Text})
		}
	}
	s.sess.ChangeDocument(rel, changes)
	return nil
}

func (s *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	rel, err := s.relPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	s.sess.CloseDocument(rel)
	return nil
}

func (s *Server) didChangeWatchedFiles(ctx *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		rel, err := s.relPath(change.URI)
		if err != nil || !strings.HasSuffix(rel, ".md") {
			continue
		}
		switch change.Type {
		case protocol.FileChangeTypeCreated:
			s.sess.FsEvent(vault.EventCreated, rel)
		case protocol.FileChangeTypeChanged:
			s.sess.FsEvent(vault.EventUpdated, rel)
		case protocol.FileChangeTypeDeleted:
			s.sess.FsEvent(vault.EventDeleted, rel)
		}
	}
	return nil
}
