package vault

import (
	"strings"
	"time"
)

// Resolve maps a reference to the referenceables it denotes. Zero results
// mean the reference could not be resolved at all (footnotes without a
// definition); link misses materialise synthetic Unresolved referenceables
// so downstream features still compose.
func (v *Vault) Resolve(ref Reference) []Referenceable {
	v.rebuildIndices()
	switch ref.Kind {
	case RefTag:
		// A tag occurrence defines its tag; resolution cannot miss.
		for _, t := range v.Tags() {
			if t.Tag == ref.Path {
				return []Referenceable{t}
			}
		}
		return []Referenceable{{Kind: RefableTag, Path: ref.File, Rng: ref.Rng, Tag: ref.Path}}

	case RefFootnote:
		f := v.files[ref.File]
		if f == nil {
			return nil
		}
		for _, def := range f.Footnotes() {
			if def.Label == ref.Path {
				return []Referenceable{def}
			}
		}
		return nil

	default:
		return v.ResolveTarget(ref.Path, ref.Heading, ref.BlockID, ref.File)
	}
}

// ResolveTarget resolves a structured link target from a source file:
// daily-phrase substitution, then exact path match, then basename match,
// then alias match, each under the configured case policy. Misses yield
// synthetic unresolved referenceables carrying the textual target.
func (v *Vault) ResolveTarget(path, heading, block, srcFile string) []Referenceable {
	v.rebuildIndices()

	if path == "" {
		// Current-file fragment: [[#heading]] or [[#^block]].
		if f := v.files[srcFile]; f != nil {
			return v.fragment(f, refnameOf(srcFile), heading, block)
		}
		return nil
	}

	// A daily-date phrase substitutes the formatted daily-note name
	// before any lookup.
	if t, ok := v.daily.ParsePhrase(path, time.Now()); ok {
		path = refnameOf(v.daily.Path(t))
	}

	var out []Referenceable
	for _, f := range v.matchFiles(path) {
		out = append(out, v.fragment(f, f.Refname(), heading, block)...)
	}
	if len(out) > 0 {
		return out
	}

	switch {
	case block != "":
		return []Referenceable{{Kind: RefableUnresolvedBlock, Target: path, BlockID: block}}
	case heading != "":
		return []Referenceable{{Kind: RefableUnresolvedHeading, Target: path, Heading: heading}}
	default:
		return []Referenceable{{Kind: RefableUnresolvedFile, Target: path}}
	}
}

// matchFiles finds files for a path part: vault-relative refname first,
// then basename, then frontmatter alias.
func (v *Vault) matchFiles(path string) []*ParsedFile {
	policy := v.Settings.CaseMatching
	var out []*ParsedFile
	for _, p := range v.Paths() {
		if matchName(path, refnameOf(p), policy) {
			out = append(out, v.files[p])
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, p := range v.Paths() {
		stem := refnameOf(p)
		if i := strings.LastIndexByte(stem, '/'); i >= 0 {
			stem = stem[i+1:]
		}
		if matchName(path, stem, policy) {
			out = append(out, v.files[p])
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, p := range v.Paths() {
		for _, alias := range v.files[p].Aliases {
			if matchName(path, alias, policy) {
				out = append(out, v.files[p])
				break
			}
		}
	}
	return out
}

// fragment narrows a matched file to its heading or block, when the target
// carries one.
func (v *Vault) fragment(f *ParsedFile, refname, heading, block string) []Referenceable {
	switch {
	case block != "":
		for _, b := range f.Blocks() {
			if b.BlockID == block {
				return []Referenceable{b}
			}
		}
		return []Referenceable{{Kind: RefableUnresolvedBlock, Target: refname, BlockID: block}}
	case heading != "":
		for _, h := range f.Headings() {
			if matchName(heading, h.Heading, v.Settings.CaseMatching) {
				return []Referenceable{h}
			}
		}
		return []Referenceable{{Kind: RefableUnresolvedHeading, Target: refname, Heading: heading}}
	default:
		return []Referenceable{{Kind: RefableFile, Path: f.RelPath}}
	}
}

// ResolveRefname resolves a textual refname the way a link target would
// be: "#tag" names a tag, anything else a file/heading/block target.
func (v *Vault) ResolveRefname(name string) []Referenceable {
	if strings.HasPrefix(name, "#") {
		var out []Referenceable
		for _, t := range v.Tags() {
			if matchName(strings.TrimPrefix(name, "#"), t.Tag, v.Settings.CaseMatching) {
				out = append(out, t)
			}
		}
		return out
	}
	path, heading, block := name, "", ""
	if i := strings.Index(name, "#"); i >= 0 {
		path = name[:i]
		frag := name[i+1:]
		if strings.HasPrefix(frag, "^") {
			block = frag[1:]
		} else {
			heading = frag
		}
	}
	return v.ResolveTarget(path, heading, block, "")
}
