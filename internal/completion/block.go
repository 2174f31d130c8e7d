package completion

import (
	"math/rand/v2"
	"strings"

	"github.com/starford/moxide/internal/parser"
	"github.com/starford/moxide/internal/vault"
)

// blockCandidates caps the unindexed-block scan; the result set is always
// marked incomplete since typing narrows a vault-wide search.
const blockCandidates = 50

// unindexedBlocks completes `[[ query` by grep-matching every line in the
// vault. Accepting an item appends a generated ^id to the chosen line (an
// edit in the target file) and inserts [[path#^id]] at the cursor.
func unindexedBlocks(v *vault.Vault, query string, contentStart uint32, pos parser.Position) List {
	var cands []candidate
	for _, p := range v.Paths() {
		f := v.File(p)
		for i := 0; i < f.LineCount(); i++ {
			line := f.Line(i)
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			if f.InFence(parser.Position{Line: uint32(i)}) {
				continue
			}
			if indexed(f, uint32(i)) {
				continue
			}
			id := newBlockID(f)
			lineEnd := parser.Position{Line: uint32(i), Character: uint32(parser.UTF16Len(line))}
			cands = append(cands, candidate{
				label:  trimmed,
				detail: f.Refname(),
				filter: trimmed,
				insert: f.Refname() + "#^" + id + "]]",
				kind:   KindLine,
				extra: []ExtraEdit{{
					Path: p,
					Edit: Edit{
						Rng:     parser.Range{Start: lineEnd, End: lineEnd},
						NewText: " ^" + id,
					},
				}},
			})
		}
	}

	editRange := parser.Range{
		Start: parser.Position{Line: pos.Line, Character: contentStart},
		End:   pos,
	}
	list := rank(cands, query, editRange)
	if len(list.Items) > blockCandidates {
		list.Items = list.Items[:blockCandidates]
	}
	list.IsIncomplete = true
	return list
}

// indexed reports whether a line already carries a block index.
func indexed(f *vault.ParsedFile, line uint32) bool {
	for _, b := range f.Blocks() {
		if b.Rng.Start.Line == line {
			return true
		}
	}
	return false
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newBlockID generates a fresh 6-character alphanumeric block id, retrying
// on the unlikely collision with an existing id in the file.
func newBlockID(f *vault.ParsedFile) string {
	for {
		b := make([]byte, 6)
		for i := range b {
			b[i] = idAlphabet[rand.IntN(len(idAlphabet))]
		}
		id := string(b)
		collision := false
		for _, blk := range f.Blocks() {
			if blk.BlockID == id {
				collision = true
				break
			}
		}
		if !collision {
			return id
		}
	}
}
