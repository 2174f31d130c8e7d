package vault

import (
	"strings"

	"github.com/starford/moxide/internal/parser"
)

// RefableKind enumerates the referenceable variants. Synthetic unresolved
// kinds are materialised by the resolver for targets that do not exist, so
// completion, references and code actions still compose over them.
type RefableKind int

const (
	RefableFile RefableKind = iota
	RefableHeading
	RefableBlock
	RefableTag
	RefableFootnote
	RefableUnresolvedFile
	RefableUnresolvedHeading
	RefableUnresolvedBlock
)

// Referenceable is anything a reference can point at. Fields beyond Kind
// are populated per kind; Path is the owning file's vault-relative path
// (for tags, which are vault-scoped, a file where the tag occurs; empty
// for unresolved kinds).
type Referenceable struct {
	Kind    RefableKind
	Path    string
	Rng     parser.Range
	Heading string
	Level   int
	BlockID string
	Tag     string
	Label   string
	Target  string // textual path carried by unresolved kinds
}

// Refname is the canonical string a reference target is matched against.
func (r Referenceable) Refname() string {
	switch r.Kind {
	case RefableFile:
		return strings.TrimSuffix(r.Path, ".md")
	case RefableHeading:
		return strings.TrimSuffix(r.Path, ".md") + "#" + r.Heading
	case RefableBlock:
		return strings.TrimSuffix(r.Path, ".md") + "#^" + r.BlockID
	case RefableTag:
		return "#" + r.Tag
	case RefableFootnote:
		return r.Path + "[^" + r.Label + "]"
	case RefableUnresolvedFile:
		return r.Target
	case RefableUnresolvedHeading:
		return r.Target + "#" + r.Heading
	case RefableUnresolvedBlock:
		return r.Target + "#^" + r.BlockID
	}
	return ""
}

// Resolved reports whether the referenceable is a real vault entity rather
// than a synthetic unresolved target.
func (r Referenceable) Resolved() bool {
	switch r.Kind {
	case RefableUnresolvedFile, RefableUnresolvedHeading, RefableUnresolvedBlock:
		return false
	}
	return true
}

// subsumes reports whether a reference resolved to other also counts as a
// reference to r: a file subsumes its headings and blocks, a tag subsumes
// its hierarchical descendants.
func (r Referenceable) subsumes(other Referenceable) bool {
	switch r.Kind {
	case RefableFile:
		switch other.Kind {
		case RefableFile, RefableHeading, RefableBlock:
			return other.Path == r.Path
		}
	case RefableTag:
		return other.Kind == RefableTag &&
			(other.Tag == r.Tag || strings.HasPrefix(other.Tag, r.Tag+"/"))
	case RefableUnresolvedFile:
		if other.Kind == RefableUnresolvedHeading {
			return other.Target == r.Target
		}
	}
	return r.Kind == other.Kind && r.Refname() == other.Refname()
}
