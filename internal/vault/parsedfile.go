package vault

import (
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/starford/moxide/internal/parser"
)

// ParsedFile is the immutable parse result for one vault file. Updates
// replace the whole entry, so references into a ParsedFile held for the
// duration of a query stay valid.
type ParsedFile struct {
	RelPath string
	Text    string
	ModTime time.Time
	Digest  uint64
	Open    bool // an editor buffer is authoritative for this path

	Referenceables []Referenceable
	References     []Reference
	FirstHeading   string
	Aliases        []string
	Fences         []parser.Range

	lines []string
}

// refnameOf strips the .md extension from a vault-relative path.
func refnameOf(relPath string) string {
	return strings.TrimSuffix(relPath, ".md")
}

// NewParsedFile tokenizes text and assembles the referenceables and
// references defined in it. A malformed construct is simply not a token;
// parsing never fails.
func NewParsedFile(relPath, text string, modTime time.Time) *ParsedFile {
	f := &ParsedFile{
		RelPath: relPath,
		Text:    text,
		ModTime: modTime,
		Digest:  xxhash.Sum64String(text),
		lines:   parser.SplitLines(text),
	}
	fm := parser.ExtractFrontmatter(text)
	f.Aliases = fm.Aliases

	res := parser.Tokenize(text)
	f.Fences = res.Fences

	f.Referenceables = append(f.Referenceables, Referenceable{
		Kind: RefableFile,
		Path: relPath,
	})

	blocks := make(map[string]struct{})
	for _, tok := range res.Tokens {
		switch tok.Kind {
		case parser.KindHeading:
			if f.FirstHeading == "" {
				f.FirstHeading = tok.Heading
			}
			f.Referenceables = append(f.Referenceables, Referenceable{
				Kind:    RefableHeading,
				Path:    relPath,
				Rng:     tok.Rng,
				Heading: tok.Heading,
				Level:   tok.Level,
			})

		case parser.KindBlockIndex:
			// Duplicate ids within a file: first occurrence wins.
			if _, dup := blocks[tok.BlockID]; dup {
				continue
			}
			blocks[tok.BlockID] = struct{}{}
			f.Referenceables = append(f.Referenceables, Referenceable{
				Kind:    RefableBlock,
				Path:    relPath,
				Rng:     blockLineRange(f.lines, tok.Rng.Start.Line),
				BlockID: tok.BlockID,
			})

		case parser.KindFootnoteDef:
			f.Referenceables = append(f.Referenceables, Referenceable{
				Kind:  RefableFootnote,
				Path:  relPath,
				Rng:   tok.Rng,
				Label: tok.Path,
			})

		case parser.KindWikiLink, parser.KindWikiEmbed, parser.KindMdLink, parser.KindLinkRefDef:
			f.References = append(f.References, Reference{
				Kind:    linkKind(tok.Kind),
				File:    relPath,
				Rng:     tok.Rng,
				Display: tok.Display,
				Path:    tok.Path,
				Heading: tok.Heading,
				BlockID: tok.BlockID,
				HadExt:  tok.HadExt,
				InFence: tok.InFence,
			})

		case parser.KindTag:
			f.References = append(f.References, Reference{
				Kind:    RefTag,
				File:    relPath,
				Rng:     tok.Rng,
				Path:    tok.Path,
				InFence: tok.InFence,
			})

		case parser.KindFootnoteRef:
			f.References = append(f.References, Reference{
				Kind:    RefFootnote,
				File:    relPath,
				Rng:     tok.Rng,
				Path:    tok.Path,
				InFence: tok.InFence,
			})
		}
	}
	return f
}

func linkKind(k parser.Kind) RefKind {
	switch k {
	case parser.KindWikiEmbed:
		return RefWikiEmbed
	case parser.KindMdLink:
		return RefMdLink
	case parser.KindLinkRefDef:
		return RefLinkRefDef
	default:
		return RefWikiLink
	}
}

// blockLineRange spans the whole line carrying a block index marker.
func blockLineRange(lines []string, line uint32) parser.Range {
	length := 0
	if int(line) < len(lines) {
		length = parser.UTF16Len(lines[line])
	}
	return parser.Range{
		Start: parser.Position{Line: line},
		End:   parser.Position{Line: line, Character: uint32(length)},
	}
}

// Refname is the file's canonical refname (vault-relative path, no .md).
func (f *ParsedFile) Refname() string { return refnameOf(f.RelPath) }

// DisplayName is the file stem, or the first heading when titleHeadings is
// enabled and the file has one.
func (f *ParsedFile) DisplayName(titleHeadings bool) string {
	if titleHeadings && f.FirstHeading != "" {
		return f.FirstHeading
	}
	stem := f.Refname()
	if i := strings.LastIndexByte(stem, '/'); i >= 0 {
		stem = stem[i+1:]
	}
	return stem
}

// Line returns the text of a zero-based line, or "" past the end.
func (f *ParsedFile) Line(i int) string {
	if i < 0 || i >= len(f.lines) {
		return ""
	}
	return f.lines[i]
}

// LineCount returns the number of lines in the file.
func (f *ParsedFile) LineCount() int { return len(f.lines) }

// InFence reports whether a position falls inside a fenced code block.
func (f *ParsedFile) InFence(pos parser.Position) bool {
	for _, fence := range f.Fences {
		if fence.Contains(pos) {
			return true
		}
	}
	return false
}

// Headings returns the heading referenceables in document order.
func (f *ParsedFile) Headings() []Referenceable {
	var out []Referenceable
	for _, r := range f.Referenceables {
		if r.Kind == RefableHeading {
			out = append(out, r)
		}
	}
	return out
}

// Blocks returns the indexed-block referenceables in document order.
func (f *ParsedFile) Blocks() []Referenceable {
	var out []Referenceable
	for _, r := range f.Referenceables {
		if r.Kind == RefableBlock {
			out = append(out, r)
		}
	}
	return out
}

// Footnotes returns the footnote definitions in document order.
func (f *ParsedFile) Footnotes() []Referenceable {
	var out []Referenceable
	for _, r := range f.Referenceables {
		if r.Kind == RefableFootnote {
			out = append(out, r)
		}
	}
	return out
}
