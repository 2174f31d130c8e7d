package parser

import (
	"testing"
)

func tokensOf(t *testing.T, text string, kind Kind) []Token {
	t.Helper()
	var out []Token
	for _, tok := range Tokenize(text).Tokens {
		if tok.Kind == kind {
			out = append(out, tok)
		}
	}
	return out
}

func TestTokenize_WikiLinkForms(t *testing.T) {
	text := "see [[Note]] and [[folder/Note#Section]] and [[Note#^abc12]] and [[Note|shown]]\n"
	links := tokensOf(t, text, KindWikiLink)
	if len(links) != 4 {
		t.Fatalf("len(links) = %d, want 4", len(links))
	}
	if links[0].Path != "Note" || links[0].Heading != "" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].Path != "folder/Note" || links[1].Heading != "Section" {
		t.Errorf("links[1] = %+v", links[1])
	}
	if links[2].BlockID != "abc12" {
		t.Errorf("links[2] = %+v", links[2])
	}
	if links[3].Display != "shown" {
		t.Errorf("links[3] = %+v", links[3])
	}
}

func TestTokenize_WikiCurrentFileFragments(t *testing.T) {
	links := tokensOf(t, "[[#Heading]] [[#^blk]]\n", KindWikiLink)
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0].Path != "" || links[0].Heading != "Heading" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].Path != "" || links[1].BlockID != "blk" {
		t.Errorf("links[1] = %+v", links[1])
	}
}

func TestTokenize_WikiEmbed(t *testing.T) {
	embeds := tokensOf(t, "content ![[Other#Part]]\n", KindWikiEmbed)
	if len(embeds) != 1 {
		t.Fatalf("len(embeds) = %d, want 1", len(embeds))
	}
	if embeds[0].Path != "Other" || embeds[0].Heading != "Part" {
		t.Errorf("embed = %+v", embeds[0])
	}
	// The span includes the bang.
	if embeds[0].Rng.Start.Character != 8 {
		t.Errorf("start col = %d, want 8", embeds[0].Rng.Start.Character)
	}
}

func TestTokenize_WikiUnclosedAndNested(t *testing.T) {
	if got := tokensOf(t, "open [[Note\nmore]]\n", KindWikiLink); len(got) != 0 {
		t.Errorf("unclosed across lines matched: %v", got)
	}
	if got := tokensOf(t, "bad [[a[b]]\n", KindWikiLink); len(got) != 0 {
		t.Errorf("nested bracket matched: %v", got)
	}
}

func TestTokenize_MdLink(t *testing.T) {
	text := "[shown](folder/Note.md) and [x](<With Space.md>) and [y](a%20b#Sec)\n"
	links := tokensOf(t, text, KindMdLink)
	if len(links) != 3 {
		t.Fatalf("len(links) = %d, want 3", len(links))
	}
	if links[0].Path != "folder/Note" || !links[0].HadExt || links[0].Display != "shown" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].Path != "With Space" {
		t.Errorf("links[1] = %+v", links[1])
	}
	if links[2].Path != "a b" || links[2].Heading != "Sec" {
		t.Errorf("links[2] = %+v", links[2])
	}
}

func TestTokenize_MdLinkURLSkipped(t *testing.T) {
	text := "[site](https://example.com) [mail](mailto:x@y.z)\n"
	if got := tokensOf(t, text, KindMdLink); len(got) != 0 {
		t.Errorf("URL targets matched: %v", got)
	}
}

func TestTokenize_Heading(t *testing.T) {
	text := "# Top\nbody\n### Deep  \nnot # a heading\n"
	hs := tokensOf(t, text, KindHeading)
	if len(hs) != 2 {
		t.Fatalf("len(headings) = %d, want 2", len(hs))
	}
	if hs[0].Heading != "Top" || hs[0].Level != 1 {
		t.Errorf("hs[0] = %+v", hs[0])
	}
	if hs[1].Heading != "Deep" || hs[1].Level != 3 {
		t.Errorf("hs[1] = %+v", hs[1])
	}
}

func TestTokenize_BlockIndex(t *testing.T) {
	text := "a paragraph ^blk-1\n# Heading ^nope\nbare\n^alone\n"
	blocks := tokensOf(t, text, KindBlockIndex)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1: %v", len(blocks), blocks)
	}
	if blocks[0].BlockID != "blk-1" {
		t.Errorf("block = %+v", blocks[0])
	}
}

func TestTokenize_Tags(t *testing.T) {
	text := "#proj and #proj/alpha mid#notag\nsee https://x.com/#anchor\n[[Note#NotATag]]\n"
	tags := tokensOf(t, text, KindTag)
	if len(tags) != 2 {
		t.Fatalf("tags = %v, want 2", tags)
	}
	if tags[0].Path != "proj" || tags[1].Path != "proj/alpha" {
		t.Errorf("tags = %+v", tags)
	}
}

func TestTokenize_TagMustStartWithLetter(t *testing.T) {
	if got := tokensOf(t, "#1st and #-x\n", KindTag); len(got) != 0 {
		t.Errorf("numeric tag matched: %v", got)
	}
}

func TestTokenize_Footnotes(t *testing.T) {
	text := "claim[^1] more[^note]\n[^1]: the definition\n"
	refs := tokensOf(t, text, KindFootnoteRef)
	defs := tokensOf(t, text, KindFootnoteDef)
	if len(refs) != 2 {
		t.Fatalf("refs = %v, want 2", refs)
	}
	if refs[0].Path != "1" || refs[1].Path != "note" {
		t.Errorf("refs = %+v", refs)
	}
	if len(defs) != 1 || defs[0].Path != "1" {
		t.Errorf("defs = %+v", defs)
	}
}

func TestTokenize_Fences(t *testing.T) {
	text := "before [[Live]]\n```\n[[Fenced]] #fenced\n```\nafter\n"
	res := Tokenize(text)
	if len(res.Fences) != 1 {
		t.Fatalf("fences = %v, want 1", res.Fences)
	}
	var fenced, live int
	for _, tok := range res.Tokens {
		if tok.Kind == KindWikiLink {
			if tok.InFence {
				fenced++
			} else {
				live++
			}
		}
	}
	if live != 1 || fenced != 1 {
		t.Errorf("live = %d fenced = %d, want 1/1", live, fenced)
	}
}

func TestTokenize_IndentedFenceIgnored(t *testing.T) {
	text := "    ```\n[[Live]]\n"
	links := tokensOf(t, text, KindWikiLink)
	if len(links) != 1 || links[0].InFence {
		t.Errorf("links = %+v", links)
	}
}

func TestTokenize_FrontmatterSkipped(t *testing.T) {
	text := "---\ntitle: x\naliases: [y]\n---\n[[Real]]\n"
	links := tokensOf(t, text, KindWikiLink)
	if len(links) != 1 || links[0].Rng.Start.Line != 4 {
		t.Errorf("links = %+v", links)
	}
}

func TestTokenize_LinkRefDef(t *testing.T) {
	defs := tokensOf(t, "[label]: Other#Sec\n", KindLinkRefDef)
	if len(defs) != 1 {
		t.Fatalf("defs = %v, want 1", defs)
	}
	if defs[0].Path != "Other" || defs[0].Heading != "Sec" || defs[0].Display != "label" {
		t.Errorf("def = %+v", defs[0])
	}
}

func TestUTF16Columns(t *testing.T) {
	// 𝕏 is outside the BMP and counts as two UTF-16 units.
	text := "𝕏 [[N]]\n"
	links := tokensOf(t, text, KindWikiLink)
	if len(links) != 1 {
		t.Fatalf("links = %v", links)
	}
	if links[0].Rng.Start.Character != 3 {
		t.Errorf("start col = %d, want 3", links[0].Rng.Start.Character)
	}
}

func TestByteOffset(t *testing.T) {
	line := "𝕏abc"
	if got := ByteOffset(line, 3); got != 5 {
		t.Errorf("ByteOffset = %d, want 5", got)
	}
	if got := ByteOffset(line, 99); got != len(line) {
		t.Errorf("clamped ByteOffset = %d, want %d", got, len(line))
	}
}
