package lspserver

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/starford/moxide/internal/session"
	"github.com/starford/moxide/internal/vault"
)

const diagnosticSource = "moxide"

// publisher coalesces vault changes and republishes diagnostics after a
// short quiet period, so a burst of edits produces one push.
type publisher struct {
	sess   *session.Session
	logger *slog.Logger
	uriFor func(rel string) protocol.DocumentUri

	mu      sync.Mutex
	ctx     *glsp.Context
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool
}

func newPublisher(sess *session.Session, logger *slog.Logger, uriFor func(rel string) protocol.DocumentUri) *publisher {
	return &publisher{
		sess:    sess,
		logger:  logger,
		uriFor:  uriFor,
		pending: make(map[string]struct{}),
	}
}

// bind remembers the connection context used for pushes.
func (p *publisher) bind(ctx *glsp.Context) {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
}

// enqueue schedules diagnostics for the given paths.
func (p *publisher) enqueue(paths []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	for _, path := range paths {
		p.pending[path] = struct{}{}
	}
	if p.timer == nil {
		p.timer = time.AfterFunc(200*time.Millisecond, p.flush)
	} else {
		p.timer.Reset(200 * time.Millisecond)
	}
}

func (p *publisher) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
	}
}

func (p *publisher) flush() {
	p.mu.Lock()
	ctx := p.ctx
	paths := make([]string, 0, len(p.pending))
	for path := range p.pending {
		paths = append(paths, path)
	}
	p.pending = make(map[string]struct{})
	p.mu.Unlock()

	if ctx == nil {
		return
	}
	for _, path := range paths {
		var diags []protocol.Diagnostic
		p.sess.WithRead(func(v *vault.Vault) {
			diags = diagnosticsFor(v, path)
		})
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         p.uriFor(path),
			Diagnostics: diags,
		})
	}
}

// diagnosticsFor computes one diagnostic per unresolved reference in path,
// unless disabled by configuration.
func diagnosticsFor(v *vault.Vault, path string) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	if !v.Settings.UnresolvedDiagnostics {
		return diags
	}
	severity := protocol.DiagnosticSeverityInformation
	source := diagnosticSource
	for _, ref := range unresolvedIn(v, path) {
		diags = append(diags, protocol.Diagnostic{
			Range:    fromRange(ref.Rng),
			Severity: &severity,
			Source:   &source,
			Message:  "unresolved reference",
		})
	}
	return diags
}

// unresolvedIn returns the references in path whose resolution set is
// empty or synthetic.
func unresolvedIn(v *vault.Vault, path string) []vault.Reference {
	var out []vault.Reference
	for _, ref := range v.References(path) {
		if !ref.IsLink() && ref.Kind != vault.RefFootnote {
			continue
		}
		resolved := false
		for _, res := range v.Resolve(ref) {
			if res.Resolved() {
				resolved = true
				break
			}
		}
		if !resolved {
			out = append(out, ref)
		}
	}
	return out
}
