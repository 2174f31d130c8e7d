package completion

import (
	"strings"
	"time"

	"github.com/starford/moxide/internal/parser"
	"github.com/starford/moxide/internal/vault"
)

type linkStyle int

const (
	wikiStyle linkStyle = iota
	mdStyle
)

// closing returns the text that completes a link target in this style.
func (s linkStyle) closing() string {
	if s == mdStyle {
		return ")"
	}
	return "]]"
}

// target renders a link target for insertion, honouring the extension
// configuration and markdown percent-encoding.
func (s linkStyle) target(v *vault.Vault, refname string) string {
	path, frag := refname, ""
	if i := strings.Index(refname, "#"); i >= 0 {
		path, frag = refname[:i], refname[i:]
	}
	if s == mdStyle {
		if v.Settings.IncludeMdExtensionMdLink {
			path += ".md"
		}
		return strings.ReplaceAll(path+frag, " ", "%20")
	}
	if v.Settings.IncludeMdExtensionWikilink {
		path += ".md"
	}
	return path + frag
}

// links completes a bare link target: files, headings, aliases, daily-date
// phrases and known unresolved targets, fuzzy-ranked against the partial.
func links(v *vault.Vault, partial string, contentStart uint32, pos parser.Position, style linkStyle, now time.Time) List {
	var cands []candidate

	for _, p := range v.Paths() {
		f := v.File(p)
		refname := f.Refname()
		display := f.DisplayName(v.Settings.TitleHeadings)
		cands = append(cands, candidate{
			label:  refname,
			detail: display,
			filter: refname + " " + display,
			insert: style.target(v, refname) + style.closing(),
			kind:   KindFile,
		})
		for _, alias := range f.Aliases {
			insert := style.target(v, refname) + style.closing()
			if style == wikiStyle {
				insert = style.target(v, refname) + "|" + alias + style.closing()
			}
			cands = append(cands, candidate{
				label:  alias,
				detail: refname,
				filter: alias,
				insert: insert,
				kind:   KindAlias,
			})
		}
		if v.Settings.HeadingCompletions {
			for _, h := range f.Headings() {
				name := refname + "#" + h.Heading
				cands = append(cands, candidate{
					label:  name,
					detail: h.Heading,
					filter: name,
					insert: style.target(v, name) + style.closing(),
					kind:   KindHeading,
				})
			}
		}
	}

	d := v.Daily()
	for _, phrase := range dailyPhrases() {
		t, ok := d.ParsePhrase(phrase, now)
		if !ok {
			continue
		}
		refname := strings.TrimSuffix(d.Path(t), ".md")
		cands = append(cands, candidate{
			label:  phrase,
			detail: refname,
			filter: phrase,
			insert: style.target(v, refname) + style.closing(),
			kind:   KindDaily,
		})
	}

	for _, target := range unresolvedTargets(v) {
		cands = append(cands, candidate{
			label:  target,
			detail: "unresolved",
			filter: target,
			insert: style.target(v, target) + style.closing(),
			kind:   KindUnresolved,
		})
	}

	editRange := parser.Range{
		Start: parser.Position{Line: pos.Line, Character: contentStart},
		End:   pos,
	}
	list := rank(cands, partial, editRange)
	// Typing more characters re-ranks daily phrases and unresolved
	// targets, so the set is never final.
	list.IsIncomplete = true
	return list
}

// fragments completes the heading or block part of a target, scoped to the
// resolved file (the current file when the path part is empty).
func fragments(v *vault.Vault, srcPath, pathPart, frag string, fragStart uint32, pos parser.Position, style linkStyle) List {
	var f *vault.ParsedFile
	if pathPart == "" {
		f = v.File(srcPath)
	} else {
		for _, r := range v.ResolveTarget(pathPart, "", "", srcPath) {
			if r.Kind == vault.RefableFile {
				f = v.File(r.Path)
				break
			}
		}
	}
	if f == nil {
		return List{}
	}

	if strings.HasPrefix(frag, "^") {
		var cands []candidate
		for _, b := range f.Blocks() {
			cands = append(cands, candidate{
				label:  "^" + b.BlockID,
				detail: strings.TrimSpace(v.File(b.Path).Line(int(b.Rng.Start.Line))),
				filter: b.BlockID,
				insert: "^" + b.BlockID + style.closing(),
				kind:   KindBlock,
			})
		}
		editRange := parser.Range{
			Start: parser.Position{Line: pos.Line, Character: fragStart},
			End:   pos,
		}
		return rank(cands, strings.TrimPrefix(frag, "^"), editRange)
	}

	var cands []candidate
	for _, h := range f.Headings() {
		cands = append(cands, candidate{
			label:  h.Heading,
			detail: f.Refname(),
			filter: h.Heading,
			insert: h.Heading + style.closing(),
			kind:   KindHeading,
		})
	}
	editRange := parser.Range{
		Start: parser.Position{Line: pos.Line, Character: fragStart},
		End:   pos,
	}
	return rank(cands, frag, editRange)
}

// unresolvedTargets collects the distinct unresolved link targets across
// the vault, so a link can be completed ahead of creating its note.
func unresolvedTargets(v *vault.Vault) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ref := range v.AllReferences() {
		if !ref.IsLink() || ref.Path == "" {
			continue
		}
		for _, r := range v.Resolve(ref) {
			if r.Kind == vault.RefableUnresolvedFile {
				if _, dup := seen[r.Target]; !dup {
					seen[r.Target] = struct{}{}
					out = append(out, r.Target)
				}
			}
		}
	}
	return out
}
