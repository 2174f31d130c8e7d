// Package lspserver speaks the Language Server Protocol over stdio and
// dispatches requests against the session's vault.
package lspserver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	protocol317 "github.com/tliron/glsp/protocol_3_17"
	glspserver "github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/starford/moxide/internal/config"
	"github.com/starford/moxide/internal/session"
	"github.com/starford/moxide/internal/storage"
	"github.com/starford/moxide/internal/vault"
)

const serverName = "moxide"

// Server is the LSP front-end. The session is created at initialize time,
// once the workspace root is known.
type Server struct {
	logger  *slog.Logger
	version string

	sess        *session.Session
	root        string
	diag        *publisher
	cancelWatch context.CancelFunc
}

// New creates an LSP server.
func New(logger *slog.Logger, version string) *Server {
	return &Server{logger: logger, version: version}
}

// Run serves LSP over stdio until the transport closes.
func (s *Server) Run() error {
	commonlog.Configure(0, nil)

	handler := protocol317.Handler{}
	handler.Handler = protocol.Handler{
		Initialize:                     s.initialize,
		Initialized:                    s.initialized,
		Shutdown:                       s.shutdown,
		SetTrace:                       s.setTrace,
		TextDocumentDidOpen:            s.didOpen,
		TextDocumentDidChange:          s.didChange,
		TextDocumentDidSave:            s.didSave,
		TextDocumentDidClose:           s.didClose,
		TextDocumentCompletion:         s.completion,
		CompletionItemResolve:          s.completionResolve,
		TextDocumentDefinition:         s.definition,
		TextDocumentReferences:         s.references,
		TextDocumentHover:              s.hover,
		TextDocumentDocumentSymbol:     s.documentSymbol,
		WorkspaceSymbol:                s.workspaceSymbol,
		TextDocumentPrepareRename:      s.prepareRename,
		TextDocumentRename:             s.rename,
		TextDocumentCodeAction:         s.codeAction,
		TextDocumentSemanticTokensFull: s.semanticTokensFull,
		TextDocumentCodeLens:           s.codeLens,
		WorkspaceExecuteCommand:        s.executeCommand,
		WorkspaceDidChangeWatchedFiles: s.didChangeWatchedFiles,
	}
	handler.TextDocumentInlayHint = s.inlayHint

	srv := glspserver.NewServer(&handler, serverName, false)
	if err := srv.RunStdio(); err != nil {
		return fmt.Errorf("lsp: transport: %w", err)
	}
	return nil
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root := rootFromParams(params)
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("lsp: no workspace root: %w", err)
		}
		root = cwd
	}
	root, _ = filepath.Abs(root)
	s.root = root

	settings, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFS(root, settings.IgnoreDirs)
	if err != nil {
		return nil, err
	}

	v, err := vault.Build(context.Background(), store, root, settings, s.logger)
	if err != nil {
		return nil, err
	}

	s.sess = session.New(v, store, settings, s.logger)
	s.diag = newPublisher(s.sess, s.logger, s.uriFor)
	s.sess.OnChange(s.diag.enqueue)

	return initializeResult{
		Capabilities: newCapabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.diag.bind(ctx)

	watchCtx, cancel := context.WithCancel(context.Background())
	s.cancelWatch = cancel
	go func() {
		if err := s.sess.Watch(watchCtx, s.root); err != nil {
			s.logger.Error("watcher failed", slog.String("error", err.Error()))
		}
	}()
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
	if s.diag != nil {
		s.diag.stop()
	}
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func rootFromParams(params *protocol.InitializeParams) string {
	if len(params.WorkspaceFolders) > 0 {
		if p, err := uriToPath(params.WorkspaceFolders[0].URI); err == nil {
			return p
		}
	}
	if params.RootURI != nil {
		if p, err := uriToPath(*params.RootURI); err == nil {
			return p
		}
	}
	if params.RootPath != nil {
		return *params.RootPath
	}
	return ""
}

// serverCapabilities extends the 3.16 capability set with the inlay-hint
// provider introduced in 3.17, which the base struct does not carry.
type serverCapabilities struct {
	protocol.ServerCapabilities
	InlayHintProvider bool `json:"inlayHintProvider"`
}

// initializeResult mirrors protocol.InitializeResult with the extended
// capability set.
type initializeResult struct {
	Capabilities serverCapabilities                   `json:"capabilities"`
	ServerInfo   *protocol.InitializeResultServerInfo `json:"serverInfo,omitempty"`
}

func newCapabilities() serverCapabilities {
	syncKind := protocol.TextDocumentSyncKindIncremental
	truthy := true
	base := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &truthy,
			Change:    &syncKind,
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"[", "#", "^", "|", "(", " "},
			ResolveProvider:   &truthy,
		},
		DefinitionProvider:      truthy,
		ReferencesProvider:      truthy,
		HoverProvider:           truthy,
		DocumentSymbolProvider:  truthy,
		WorkspaceSymbolProvider: truthy,
		RenameProvider: protocol.RenameOptions{
			PrepareProvider: &truthy,
		},
		CodeActionProvider: truthy,
		SemanticTokensProvider: protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     []string{semanticTokenUnresolved},
				TokenModifiers: []string{},
			},
			Full: true,
		},
		CodeLensProvider: &protocol.CodeLensOptions{},
		ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
			Commands: []string{cmdJump, cmdToday, cmdTomorrow, cmdYesterday, cmdDaily, cmdApplyEdit},
		},
	}
	return serverCapabilities{
		ServerCapabilities: base,
		InlayHintProvider:  true,
	}
}
