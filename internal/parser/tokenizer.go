// Package parser tokenizes Obsidian-flavored Markdown: wiki links, markdown
// links, tags, headings, indexed blocks, footnotes and code fences. It is a
// line-oriented scanner; only the constructs that matter for linking are
// recognised.
package parser

import (
	"regexp"
	"strings"
)

var (
	headingRe     = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	blockIndexRe  = regexp.MustCompile(`(?:^|\s)(\^[A-Za-z0-9_-]{1,32})\s*$`)
	footnoteDefRe = regexp.MustCompile(`^\[\^([^\s\]]+)\]:`)
	linkRefDefRe  = regexp.MustCompile(`^\[([^\^\]][^\]]*)\]:\s+(\S+)`)
	fenceRe       = regexp.MustCompile("^ {0,3}```")
)

// Tokenize scans text and returns the ordered tokens plus fenced code-block
// ranges. Tokens inside fences carry InFence; headings, block indices and
// footnotes are not recognised there at all.
func Tokenize(text string) Result {
	lines := SplitLines(text)
	var res Result

	start := 0
	if len(lines) > 0 && lines[0] == "---" {
		for i := 1; i < len(lines); i++ {
			if lines[i] == "---" || lines[i] == "..." {
				start = i + 1
				break
			}
		}
	}

	inFence := false
	fenceStart := uint32(0)
	for i := start; i < len(lines); i++ {
		line := lines[i]
		ln := uint32(i)

		if fenceRe.MatchString(line) {
			if inFence {
				res.Fences = append(res.Fences, Range{
					Start: Position{Line: fenceStart},
					End:   Position{Line: ln, Character: uint32(UTF16Len(line))},
				})
				inFence = false
			} else {
				inFence = true
				fenceStart = ln
			}
			continue
		}

		s := &lineScanner{line: line, ln: ln, inFence: inFence}
		if !inFence {
			if tok, ok := s.heading(); ok {
				res.Tokens = append(res.Tokens, tok)
			}
		}
		s.footnoteDef()
		s.wikiLinks()
		s.mdLinks()
		if !s.isHeading && !inFence {
			s.blockIndex()
			s.footnoteRefs()
		}
		s.tags()
		res.Tokens = append(res.Tokens, s.tokens...)
	}
	if inFence {
		last := uint32(len(lines) - 1)
		res.Fences = append(res.Fences, Range{
			Start: Position{Line: fenceStart},
			End:   Position{Line: last, Character: uint32(UTF16Len(lines[last]))},
		})
	}
	return res
}

// lineScanner accumulates tokens for one line, tracking byte intervals
// already claimed by link spans so tags and footnotes do not match inside
// them.
type lineScanner struct {
	line      string
	ln        uint32
	inFence   bool
	isHeading bool
	tokens    []Token
	occupied  [][2]int
}

func (s *lineScanner) claim(from, to int) { s.occupied = append(s.occupied, [2]int{from, to}) }

func (s *lineScanner) taken(from, to int) bool {
	for _, iv := range s.occupied {
		if from < iv[1] && to > iv[0] {
			return true
		}
	}
	return false
}

func (s *lineScanner) span(from, to int) Range {
	return Range{
		Start: Position{Line: s.ln, Character: uint32(UTF16Len(s.line[:from]))},
		End:   Position{Line: s.ln, Character: uint32(UTF16Len(s.line[:to]))},
	}
}

func (s *lineScanner) emit(tok Token) {
	tok.InFence = s.inFence
	s.tokens = append(s.tokens, tok)
}

func (s *lineScanner) heading() (Token, bool) {
	m := headingRe.FindStringSubmatch(s.line)
	if m == nil {
		return Token{}, false
	}
	s.isHeading = true
	return Token{
		Kind:    KindHeading,
		Rng:     s.span(0, len(s.line)),
		Raw:     s.line,
		Heading: strings.TrimSpace(m[2]),
		Level:   len(m[1]),
	}, true
}

func (s *lineScanner) wikiLinks() {
	line := s.line
	i := 0
	for {
		idx := strings.Index(line[i:], "[[")
		if idx < 0 {
			return
		}
		open := i + idx
		close := strings.Index(line[open+2:], "]]")
		if close < 0 {
			return
		}
		close = open + 2 + close
		inner := line[open+2 : close]
		// Nested brackets abort the token.
		if strings.ContainsAny(inner, "[]") {
			i = open + 2
			continue
		}
		start := open
		kind := KindWikiLink
		if open > 0 && line[open-1] == '!' {
			start = open - 1
			kind = KindWikiEmbed
		}
		end := close + 2

		target := inner
		display := ""
		if p := strings.Index(inner, "|"); p >= 0 {
			target = inner[:p]
			display = inner[p+1:]
		}
		path, heading, block, hadExt := splitFragment(target)

		s.claim(start, end)
		s.emit(Token{
			Kind:    kind,
			Rng:     s.span(start, end),
			Raw:     line[start:end],
			Path:    path,
			Heading: heading,
			BlockID: block,
			Display: display,
			HadExt:  hadExt,
		})
		i = end
	}
}

func (s *lineScanner) mdLinks() {
	line := s.line

	// Reference-style definition: the whole line is [label]: target.
	if m := linkRefDefRe.FindStringSubmatch(line); m != nil && !s.taken(0, len(m[0])) {
		if target, ok := mdTarget(m[2]); ok {
			path, heading, block, hadExt := splitFragment(target)
			s.claim(0, len(m[0]))
			s.emit(Token{
				Kind:    KindLinkRefDef,
				Rng:     s.span(0, len(m[0])),
				Raw:     m[0],
				Path:    path,
				Heading: heading,
				BlockID: block,
				Display: m[1],
				HadExt:  hadExt,
			})
			return
		}
	}

	i := 0
	for {
		idx := strings.Index(line[i:], "[")
		if idx < 0 {
			return
		}
		open := i + idx
		if strings.HasPrefix(line[open:], "[[") || strings.HasPrefix(line[open:], "[^") || s.taken(open, open+1) {
			i = open + 1
			continue
		}
		mid := strings.Index(line[open:], "](")
		if mid < 0 {
			return
		}
		mid = open + mid
		end := strings.Index(line[mid+2:], ")")
		if end < 0 {
			return
		}
		end = mid + 2 + end + 1
		if s.taken(open, end) {
			i = open + 1
			continue
		}
		target, ok := mdTarget(line[mid+2 : end-1])
		if !ok {
			i = end
			continue
		}
		path, heading, block, hadExt := splitFragment(target)
		s.claim(open, end)
		s.emit(Token{
			Kind:    KindMdLink,
			Rng:     s.span(open, end),
			Raw:     line[open:end],
			Path:    path,
			Heading: heading,
			BlockID: block,
			Display: line[open+1 : mid],
			HadExt:  hadExt,
		})
		i = end
	}
}

// mdTarget normalises a markdown link destination: angle brackets stripped,
// %20 decoded. URLs with a scheme are not vault references.
func mdTarget(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<")
	raw = strings.TrimSuffix(raw, ">")
	if raw == "" || strings.Contains(raw, "://") || strings.HasPrefix(raw, "mailto:") {
		return "", false
	}
	return strings.ReplaceAll(raw, "%20", " "), true
}

// splitFragment splits target on the first # into path and heading/block
// parts, and strips a .md extension from the path. hadExt records whether
// the extension was present, so rewrites can preserve the author's form.
func splitFragment(target string) (path, heading, block string, hadExt bool) {
	path = strings.TrimSpace(target)
	if h := strings.Index(path, "#"); h >= 0 {
		frag := path[h+1:]
		path = path[:h]
		if strings.HasPrefix(frag, "^") {
			block = frag[1:]
		} else {
			heading = frag
		}
	}
	if strings.HasSuffix(path, ".md") {
		path = strings.TrimSuffix(path, ".md")
		hadExt = true
	}
	return path, heading, block, hadExt
}

func (s *lineScanner) blockIndex() {
	m := blockIndexRe.FindStringSubmatchIndex(s.line)
	if m == nil {
		return
	}
	from, to := m[2], m[3]
	if s.taken(from, to) {
		return
	}
	// A line that is nothing but the marker is not indexed; only trailing
	// markers on content lines are block indices.
	if strings.TrimSpace(s.line[:from]) == "" {
		return
	}
	s.emit(Token{
		Kind:    KindBlockIndex,
		Rng:     s.span(from, to),
		Raw:     s.line[from:to],
		BlockID: s.line[from+1 : to],
	})
}

func (s *lineScanner) footnoteDef() {
	m := footnoteDefRe.FindStringSubmatch(s.line)
	if m == nil || s.inFence {
		return
	}
	end := len(m[0])
	s.claim(0, end)
	s.emit(Token{
		Kind: KindFootnoteDef,
		Rng:  s.span(0, end),
		Raw:  m[0],
		Path: m[1],
	})
}

func (s *lineScanner) footnoteRefs() {
	line := s.line
	i := 0
	for {
		idx := strings.Index(line[i:], "[^")
		if idx < 0 {
			return
		}
		open := i + idx
		close := strings.Index(line[open:], "]")
		if close < 0 {
			return
		}
		close = open + close
		end := close + 1
		// Definitions carry a trailing colon and were claimed already.
		if end < len(line) && line[end] == ':' {
			i = end
			continue
		}
		if s.taken(open, end) {
			i = end
			continue
		}
		label := line[open+2 : close]
		if label == "" || strings.ContainsAny(label, " \t") {
			i = open + 2
			continue
		}
		s.claim(open, end)
		s.emit(Token{
			Kind: KindFootnoteRef,
			Rng:  s.span(open, end),
			Raw:  line[open:end],
			Path: label,
		})
		i = end
	}
}

func isTagStart(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

func isTagByte(b byte) bool {
	return isTagStart(b) || b >= '0' && b <= '9' || b == '_' || b == '-' || b == '/'
}

func (s *lineScanner) tags() {
	line := s.line
	for i := 0; i < len(line); i++ {
		if line[i] != '#' {
			continue
		}
		if i > 0 && line[i-1] != ' ' && line[i-1] != '\t' {
			continue
		}
		j := i + 1
		if j >= len(line) || !isTagStart(line[j]) {
			continue
		}
		for j < len(line) && isTagByte(line[j]) {
			j++
		}
		name := strings.TrimRight(line[i+1:j], "/")
		end := i + 1 + len(name)
		if s.taken(i, end) {
			i = end
			continue
		}
		s.emit(Token{
			Kind: KindTag,
			Rng:  s.span(i, end),
			Raw:  line[i:end],
			Path: name,
		})
		i = end
	}
}
