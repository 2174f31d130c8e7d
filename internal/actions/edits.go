// Package actions computes multi-file workspace edits for rename and code
// actions. Edits are returned to the client; the server never writes vault
// files itself.
package actions

import (
	"strings"

	"github.com/starford/moxide/internal/parser"
	"github.com/starford/moxide/internal/vault"
)

// TextEdit replaces Rng with NewText in one document. Edits within a file
// are non-overlapping.
type TextEdit struct {
	Rng     parser.Range
	NewText string
}

// FileRename renames a vault file on disk (both paths vault-relative).
type FileRename struct {
	From string
	To   string
}

// WorkspaceEdit is a multi-file edit: per-file text edits, file renames
// and file creations.
type WorkspaceEdit struct {
	Changes map[string][]TextEdit
	Renames []FileRename
	Creates []string
}

func newWorkspaceEdit() *WorkspaceEdit {
	return &WorkspaceEdit{Changes: make(map[string][]TextEdit)}
}

func (w *WorkspaceEdit) add(path string, edit TextEdit) {
	w.Changes[path] = append(w.Changes[path], edit)
}

// renderLink regenerates the full text of a link reference with a new
// target, preserving the syntactic form, display text and extension style
// of the original.
func renderLink(v *vault.Vault, ref vault.Reference, path, heading, block string) string {
	ext := ""
	if path != "" && (ref.HadExt ||
		(ref.Kind == vault.RefMdLink || ref.Kind == vault.RefLinkRefDef) && v.Settings.IncludeMdExtensionMdLink ||
		(ref.Kind == vault.RefWikiLink || ref.Kind == vault.RefWikiEmbed) && v.Settings.IncludeMdExtensionWikilink) {
		ext = ".md"
	}
	frag := ""
	switch {
	case block != "":
		frag = "#^" + block
	case heading != "":
		frag = "#" + heading
	}
	target := path + ext + frag

	switch ref.Kind {
	case vault.RefMdLink:
		return "[" + ref.Display + "](" + strings.ReplaceAll(target, " ", "%20") + ")"
	case vault.RefLinkRefDef:
		return "[" + ref.Display + "]: " + strings.ReplaceAll(target, " ", "%20")
	case vault.RefWikiEmbed:
		if ref.Display != "" {
			return "![[" + target + "|" + ref.Display + "]]"
		}
		return "![[" + target + "]]"
	default:
		if ref.Display != "" {
			return "[[" + target + "|" + ref.Display + "]]"
		}
		return "[[" + target + "]]"
	}
}
