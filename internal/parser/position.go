package parser

import "strings"

// Position is a zero-based (line, character) pair. Character counts UTF-16
// code units, matching the LSP text encoding.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open [Start, End) span.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether pos lies within r (end-inclusive, so a cursor
// sitting just after the last character still hits the span).
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// ByteOffset converts a UTF-16 column on line to a byte offset. Columns
// past the end of the line clamp to len(line).
func ByteOffset(line string, character uint32) int {
	col := 0
	for i, r := range line {
		if col >= int(character) {
			return i
		}
		if r > 0xFFFF {
			col += 2
		} else {
			col++
		}
	}
	return len(line)
}

// OffsetOf converts a Position to a byte offset into text. Positions past
// the end of the text clamp to len(text).
func OffsetOf(text string, pos Position) int {
	off := 0
	line := uint32(0)
	for line < pos.Line {
		nl := strings.IndexByte(text[off:], '\n')
		if nl < 0 {
			return len(text)
		}
		off += nl + 1
		line++
	}
	end := strings.IndexByte(text[off:], '\n')
	lineText := text[off:]
	if end >= 0 {
		lineText = text[off : off+end]
	}
	return off + ByteOffset(lineText, pos.Character)
}

// SplitLines splits text into lines without the trailing newline bytes.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
