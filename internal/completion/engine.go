// Package completion implements context-sensitive completion: the context
// is determined from the incomplete token immediately left of the cursor,
// candidates are gathered from the vault, and results are ranked by fuzzy
// match score.
package completion

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/starford/moxide/internal/parser"
	"github.com/starford/moxide/internal/vault"
)

// ItemKind classifies a completion item for presentation.
type ItemKind int

const (
	KindFile ItemKind = iota
	KindHeading
	KindBlock
	KindTag
	KindFootnote
	KindCallout
	KindAlias
	KindDaily
	KindUnresolved
	KindLine
)

// Edit replaces Rng with NewText in the document being completed.
type Edit struct {
	Rng     parser.Range
	NewText string
}

// ExtraEdit is an edit in another vault file, applied alongside the
// completion (unindexed-block completion indexes the chosen line).
type ExtraEdit struct {
	Path string
	Edit Edit
}

// Item is one completion candidate.
type Item struct {
	Label      string
	Detail     string
	Kind       ItemKind
	FilterText string
	SortText   string
	Edit       Edit
	ExtraEdits []ExtraEdit
}

// List is a ranked completion result. IsIncomplete is set whenever the
// candidate set was truncated or typing more characters would change it.
type List struct {
	Items        []Item
	IsIncomplete bool
}

// maxItems caps a single response; larger candidate sets are truncated
// and marked incomplete.
const maxItems = 200

var calloutRe = regexp.MustCompile(`^\s*(>\s*)+\[!([A-Za-z]*)$`)

// Complete computes completions for a cursor position in an open document.
func Complete(v *vault.Vault, path string, pos parser.Position, now time.Time) List {
	f := v.File(path)
	if f == nil {
		return List{}
	}
	line := f.Line(int(pos.Line))
	prefix := line[:parser.ByteOffset(line, pos.Character)]

	if m := calloutRe.FindStringSubmatch(prefix); m != nil {
		nested := strings.Count(prefix, ">") > 1
		return callouts(m[2], nested, pos)
	}

	if open := strings.LastIndex(prefix, "[["); open >= 0 && !strings.Contains(prefix[open:], "]]") {
		inner := prefix[open+2:]
		contentStart := charAt(line, open+2)
		switch {
		case strings.HasPrefix(inner, " "):
			return unindexedBlocks(v, strings.TrimPrefix(inner, " "), contentStart, pos)
		case strings.Contains(inner, "|"):
			return List{}
		case strings.Contains(inner, "#"):
			h := strings.Index(inner, "#")
			return fragments(v, path, inner[:h], inner[h+1:], charAt(line, open+2+h+1), pos, wikiStyle)
		default:
			return links(v, inner, contentStart, pos, wikiStyle, now)
		}
	}

	if open := strings.LastIndex(prefix, "]("); open >= 0 && !strings.Contains(prefix[open:], ")") {
		inner := prefix[open+2:]
		contentStart := charAt(line, open+2)
		if h := strings.Index(inner, "#"); h >= 0 {
			return fragments(v, path, inner[:h], inner[h+1:], charAt(line, open+2+h+1), pos, mdStyle)
		}
		return links(v, inner, contentStart, pos, mdStyle, now)
	}

	if open := strings.LastIndex(prefix, "[^"); open >= 0 && !strings.Contains(prefix[open:], "]") {
		return footnotes(v, path, prefix[open+2:], charAt(line, open+2), pos)
	}

	if ok, start, partial := tagContext(prefix); ok {
		return tags(v, partial, charAt(line, start), pos)
	}

	return List{}
}

// charAt converts a byte offset on line to a UTF-16 column.
func charAt(line string, byteOff int) uint32 {
	if byteOff > len(line) {
		byteOff = len(line)
	}
	return uint32(parser.UTF16Len(line[:byteOff]))
}

// tagContext finds an incomplete #tag token ending at the cursor.
func tagContext(prefix string) (bool, int, string) {
	hash := strings.LastIndexByte(prefix, '#')
	if hash < 0 {
		return false, 0, ""
	}
	if hash > 0 && prefix[hash-1] != ' ' && prefix[hash-1] != '\t' {
		return false, 0, ""
	}
	partial := prefix[hash+1:]
	for i := 0; i < len(partial); i++ {
		b := partial[i]
		if !(b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '-' || b == '/') {
			return false, 0, ""
		}
	}
	return true, hash + 1, partial
}

// candidate is an unranked completion source entry.
type candidate struct {
	label  string
	detail string
	filter string
	insert string
	kind   ItemKind
	extra  []ExtraEdit
}

// rank fuzzy-matches candidates against the partial query and produces the
// final ordered list: score descending, ties by label ascending.
func rank(cands []candidate, partial string, editRange parser.Range) List {
	type scored struct {
		candidate
		score int
	}
	var kept []scored
	if partial == "" {
		for _, c := range cands {
			kept = append(kept, scored{c, 0})
		}
	} else {
		filters := make([]string, len(cands))
		for i, c := range cands {
			filters[i] = c.filter
		}
		for _, m := range fuzzy.Find(partial, filters) {
			kept = append(kept, scored{cands[m.Index], m.Score})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].label < kept[j].label
	})

	list := List{}
	if len(kept) > maxItems {
		kept = kept[:maxItems]
		list.IsIncomplete = true
	}
	for i, c := range kept {
		list.Items = append(list.Items, Item{
			Label:      c.label,
			Detail:     c.detail,
			Kind:       c.kind,
			FilterText: c.filter,
			SortText:   sortKey(i),
			Edit:       Edit{Rng: editRange, NewText: c.insert},
			ExtraEdits: c.extra,
		})
	}
	return list
}

// sortKey yields lexicographically ordered sort texts.
func sortKey(i int) string {
	const digits = "0123456789"
	return string([]byte{
		digits[i/1000%10], digits[i/100%10], digits[i/10%10], digits[i%10],
	})
}
