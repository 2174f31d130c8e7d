package completion

import (
	"github.com/starford/moxide/internal/daily"
	"github.com/starford/moxide/internal/parser"
	"github.com/starford/moxide/internal/vault"
)

func dailyPhrases() []string { return daily.Phrases() }

// tags completes #partial from the existing tag referenceables, every
// hierarchical prefix included.
func tags(v *vault.Vault, partial string, contentStart uint32, pos parser.Position) List {
	var cands []candidate
	for _, t := range v.Tags() {
		cands = append(cands, candidate{
			label:  "#" + t.Tag,
			filter: t.Tag,
			insert: t.Tag,
			kind:   KindTag,
		})
	}
	editRange := parser.Range{
		Start: parser.Position{Line: pos.Line, Character: contentStart},
		End:   pos,
	}
	return rank(cands, partial, editRange)
}

// footnotes completes [^partial from the current file's definitions;
// footnote scope never crosses files.
func footnotes(v *vault.Vault, srcPath, partial string, contentStart uint32, pos parser.Position) List {
	f := v.File(srcPath)
	if f == nil {
		return List{}
	}
	var cands []candidate
	for _, def := range f.Footnotes() {
		cands = append(cands, candidate{
			label:  "^" + def.Label,
			detail: f.Line(int(def.Rng.Start.Line)),
			filter: def.Label,
			insert: "^" + def.Label + "]",
			kind:   KindFootnote,
		})
	}
	editRange := parser.Range{
		Start: parser.Position{Line: pos.Line, Character: contentStart - 1},
		End:   pos,
	}
	return rank(cands, partial, editRange)
}

// calloutNames is the fixed Obsidian callout vocabulary.
var calloutNames = []string{
	"note", "abstract", "summary", "tldr", "info", "todo", "tip", "hint",
	"important", "success", "check", "done", "question", "help", "faq",
	"warning", "caution", "attention", "failure", "fail", "missing",
	"danger", "error", "bug", "example", "quote", "cite",
}

// callouts completes `> [!partial`. Inside an existing callout block the
// same vocabulary completes as a nested callout.
func callouts(partial string, nested bool, pos parser.Position) List {
	detail := "callout"
	if nested {
		detail = "nested callout"
	}
	var cands []candidate
	for _, name := range calloutNames {
		cands = append(cands, candidate{
			label:  name,
			detail: detail,
			filter: name,
			insert: name + "]",
			kind:   KindCallout,
		})
	}
	start := pos.Character - uint32(parser.UTF16Len(partial))
	editRange := parser.Range{
		Start: parser.Position{Line: pos.Line, Character: start},
		End:   pos,
	}
	return rank(cands, partial, editRange)
}
