package vault

import "github.com/starford/moxide/internal/parser"

// RefKind enumerates the reference variants.
type RefKind int

const (
	RefWikiLink RefKind = iota
	RefWikiEmbed
	RefMdLink
	RefLinkRefDef
	RefTag
	RefFootnote
)

// Reference is a textual occurrence pointing at a referenceable. For link
// kinds, Path/Heading/BlockID carry the structured target (Path empty means
// the current file); for tags Path holds the tag name; for footnotes the
// label.
type Reference struct {
	Kind    RefKind
	File    string // source vault-relative path
	Rng     parser.Range
	Display string
	Path    string
	Heading string
	BlockID string
	HadExt  bool
	InFence bool
}

// IsLink reports whether the reference is a wiki or markdown link form.
func (r Reference) IsLink() bool {
	switch r.Kind {
	case RefWikiLink, RefWikiEmbed, RefMdLink, RefLinkRefDef:
		return true
	}
	return false
}

// TargetPath returns the path part of the target, defaulting to the source
// file for current-file fragments like [[#heading]].
func (r Reference) TargetPath() string {
	if r.Path == "" && r.IsLink() {
		return refnameOf(r.File)
	}
	return r.Path
}
