// Package vault maintains the parsed, cross-referenced model of every
// markdown file in the workspace: the files themselves, the referenceables
// they define, the references they contain, and the resolution between the
// two.
package vault

import (
	"sort"
	"strings"

	"github.com/starford/moxide/internal/config"
	"github.com/starford/moxide/internal/daily"
	"github.com/starford/moxide/internal/parser"
)

// Vault is the sole owner of parsed state: a mapping from vault-relative
// path to ParsedFile plus derived indices. It is not safe for concurrent
// mutation; the session serialises writers and shares readers.
type Vault struct {
	Root     string
	Settings *config.Settings

	files map[string]*ParsedFile
	daily *daily.Parser

	// Derived caches, rebuilt lazily after any mutation. Coarse
	// invalidation is sufficient at human-interactive request rates.
	dirty     bool
	byRefname map[string][]Referenceable
	tags      []Referenceable
}

// New creates an empty Vault for a root directory.
func New(root string, settings *config.Settings) *Vault {
	return &Vault{
		Root:     root,
		Settings: settings,
		files:    make(map[string]*ParsedFile),
		daily:    daily.New(settings.Dailynote, settings.DailyNotesFolder),
		dirty:    true,
	}
}

// Daily returns the daily-note parser configured for this vault.
func (v *Vault) Daily() *daily.Parser { return v.daily }

// File returns the ParsedFile at a vault-relative path, or nil.
func (v *Vault) File(path string) *ParsedFile { return v.files[path] }

// FileByRefname returns the ParsedFile whose refname matches exactly.
func (v *Vault) FileByRefname(refname string) *ParsedFile {
	return v.files[refname+".md"]
}

// Paths returns all vault-relative paths in sorted order.
func (v *Vault) Paths() []string {
	out := make([]string, 0, len(v.files))
	for p := range v.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Install atomically replaces (or adds) the entry for f.RelPath.
func (v *Vault) Install(f *ParsedFile) {
	v.files[f.RelPath] = f
	v.dirty = true
}

// Remove drops the entry at path, unless an open buffer still claims it.
func (v *Vault) Remove(path string) {
	if f, ok := v.files[path]; ok && f.Open {
		return
	}
	delete(v.files, path)
	v.dirty = true
}

// rebuildIndices recomputes the refname index and the tag referenceable
// set from scratch.
func (v *Vault) rebuildIndices() {
	if !v.dirty {
		return
	}
	v.byRefname = make(map[string][]Referenceable)
	add := func(r Referenceable) {
		name := r.Refname()
		v.byRefname[name] = append(v.byRefname[name], r)
	}

	tagSeen := make(map[string]Referenceable)
	for _, f := range v.files {
		for _, r := range f.Referenceables {
			add(r)
		}
		for _, ref := range f.References {
			if ref.Kind != RefTag {
				continue
			}
			if ref.InFence && !v.Settings.TagsInCodeblocks {
				continue
			}
			// Every non-empty prefix of a hierarchical tag is itself
			// a referenceable.
			name := ref.Path
			for {
				if _, ok := tagSeen[name]; !ok {
					tagSeen[name] = Referenceable{
						Kind: RefableTag,
						Path: ref.File,
						Rng:  ref.Rng,
						Tag:  name,
					}
				}
				i := strings.LastIndexByte(name, '/')
				if i < 0 {
					break
				}
				name = name[:i]
			}
		}
	}

	v.tags = v.tags[:0]
	for _, t := range tagSeen {
		v.tags = append(v.tags, t)
	}
	sort.Slice(v.tags, func(i, j int) bool { return v.tags[i].Tag < v.tags[j].Tag })
	for _, t := range v.tags {
		add(t)
	}
	v.dirty = false
}

// Tags returns the derived tag referenceables, every hierarchical prefix
// included, sorted by name.
func (v *Vault) Tags() []Referenceable {
	v.rebuildIndices()
	return v.tags
}

// TagsWithPrefix returns tags whose name equals or extends prefix.
func (v *Vault) TagsWithPrefix(prefix string) []Referenceable {
	var out []Referenceable
	for _, t := range v.Tags() {
		if t.Tag == prefix || strings.HasPrefix(t.Tag, prefix+"/") || prefix == "" {
			out = append(out, t)
		}
	}
	return out
}

// ByRefname returns the referenceables whose refname matches name under
// the configured case policy.
func (v *Vault) ByRefname(name string) []Referenceable {
	v.rebuildIndices()
	if exact, ok := v.byRefname[name]; ok && v.Settings.CaseMatching == config.CaseRespect {
		return exact
	}
	var out []Referenceable
	for candidate, refs := range v.byRefname {
		if matchName(name, candidate, v.Settings.CaseMatching) {
			out = append(out, refs...)
		}
	}
	return out
}

// matchName applies the case policy: Ignore is case-insensitive, Respect
// is exact, Smart is insensitive unless the query contains an uppercase
// letter.
func matchName(query, candidate, policy string) bool {
	switch policy {
	case config.CaseRespect:
		return query == candidate
	case config.CaseIgnore:
		return strings.EqualFold(query, candidate)
	default:
		if strings.ToLower(query) != query {
			return query == candidate
		}
		return strings.EqualFold(query, candidate)
	}
}

// References returns the reference list of one file, honouring the
// code-fence configuration.
func (v *Vault) References(path string) []Reference {
	f := v.files[path]
	if f == nil {
		return nil
	}
	return v.filterRefs(f.References)
}

// AllReferences iterates every reference in the vault.
func (v *Vault) AllReferences() []Reference {
	var out []Reference
	for _, p := range v.Paths() {
		out = append(out, v.filterRefs(v.files[p].References)...)
	}
	return out
}

func (v *Vault) filterRefs(refs []Reference) []Reference {
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		if r.InFence {
			if r.Kind == RefTag && !v.Settings.TagsInCodeblocks {
				continue
			}
			if r.IsLink() && !v.Settings.ReferencesInCodeblocks {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// ReferencesTo scans all reference lists, resolves each, and keeps those
// whose resolution set contains target. Results are sorted by source file
// mtime descending (open buffers first), then path, then position — the
// order is stable across calls for unchanged state.
func (v *Vault) ReferencesTo(target Referenceable) []Reference {
	type hit struct {
		ref Reference
		f   *ParsedFile
	}
	var hits []hit
	for _, p := range v.Paths() {
		f := v.files[p]
		for _, ref := range v.filterRefs(f.References) {
			for _, res := range v.Resolve(ref) {
				if target.subsumes(res) {
					hits = append(hits, hit{ref, f})
					break
				}
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		fi, fj := hits[i].f, hits[j].f
		if fi.RelPath != fj.RelPath {
			if fi.Open != fj.Open {
				return fi.Open
			}
			if !fi.ModTime.Equal(fj.ModTime) {
				return fi.ModTime.After(fj.ModTime)
			}
			return fi.RelPath < fj.RelPath
		}
		pi, pj := hits[i].ref.Rng.Start, hits[j].ref.Rng.Start
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Character < pj.Character
	})
	out := make([]Reference, len(hits))
	for i, h := range hits {
		out[i] = h.ref
	}
	return out
}

// RefableAt returns the innermost referenceable defined at a position. A
// position on no heading, block or footnote yields the file referenceable
// itself.
func (v *Vault) RefableAt(path string, pos parser.Position) (Referenceable, bool) {
	f := v.files[path]
	if f == nil {
		return Referenceable{}, false
	}
	// Tag occurrences act as their referenceable when hovered directly.
	for _, ref := range f.References {
		if ref.Kind == RefTag && ref.Rng.Contains(pos) {
			return Referenceable{Kind: RefableTag, Path: path, Rng: ref.Rng, Tag: ref.Path}, true
		}
	}
	for _, r := range f.Referenceables {
		if r.Kind != RefableFile && r.Rng.Contains(pos) {
			return r, true
		}
	}
	return Referenceable{Kind: RefableFile, Path: path}, true
}

// ReferenceAt returns the reference spanning a position, if any.
func (v *Vault) ReferenceAt(path string, pos parser.Position) (Reference, bool) {
	f := v.files[path]
	if f == nil {
		return Reference{}, false
	}
	for _, ref := range f.References {
		if ref.Rng.Contains(pos) {
			return ref, true
		}
	}
	return Reference{}, false
}
