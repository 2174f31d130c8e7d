// Package preview renders markdown previews of referenceables: the
// entity's own content followed by its backlinks, with limits that differ
// between editor hover and LLM-context use.
package preview

import (
	"fmt"
	"strings"

	"github.com/starford/moxide/internal/vault"
)

// Limits bound a rendering: backlink count, lines shown for a whole file,
// lines shown after a heading.
type Limits struct {
	Backlinks    int
	FileLines    int
	HeadingLines int
}

// HoverLimits is the profile for editor hovers.
var HoverLimits = Limits{Backlinks: 20, FileLines: 14, HeadingLines: 10}

// ContextLimits is the profile for LLM context (MCP entity_context).
var ContextLimits = Limits{Backlinks: 100, FileLines: 200, HeadingLines: 50}

// Render produces a markdown block: a preview of the referenceable's own
// content, then its backlinks ordered by source mtime descending with one
// context line each.
func Render(v *vault.Vault, target vault.Referenceable, lim Limits) string {
	var b strings.Builder

	content := Content(v, target, lim)
	if content != "" {
		b.WriteString(content)
		b.WriteString("\n")
	}

	refs := v.ReferencesTo(target)
	if len(refs) == 0 {
		return b.String()
	}

	b.WriteString(fmt.Sprintf("\n---\n%d references:\n\n", len(refs)))
	shown := refs
	if len(shown) > lim.Backlinks {
		shown = shown[:lim.Backlinks]
	}
	for _, ref := range shown {
		line := ""
		if f := v.File(ref.File); f != nil {
			line = strings.TrimSpace(f.Line(int(ref.Rng.Start.Line)))
		}
		b.WriteString(fmt.Sprintf("- `%s:%d` %s\n", ref.File, ref.Rng.Start.Line+1, line))
	}
	if len(refs) > lim.Backlinks {
		b.WriteString(fmt.Sprintf("- … and %d more\n", len(refs)-lim.Backlinks))
	}
	return b.String()
}

// Content renders just the referenceable's own content preview.
func Content(v *vault.Vault, target vault.Referenceable, lim Limits) string {
	switch target.Kind {
	case vault.RefableFile:
		f := v.File(target.Path)
		if f == nil {
			return ""
		}
		return firstLines(f, 0, lim.FileLines)

	case vault.RefableHeading:
		f := v.File(target.Path)
		if f == nil {
			return ""
		}
		return headingBlock(f, target, lim.HeadingLines)

	case vault.RefableBlock:
		f := v.File(target.Path)
		if f == nil {
			return ""
		}
		return f.Line(int(target.Rng.Start.Line))

	case vault.RefableTag:
		return "`#" + target.Tag + "`"

	case vault.RefableFootnote:
		f := v.File(target.Path)
		if f == nil {
			return ""
		}
		return f.Line(int(target.Rng.Start.Line))

	default:
		return fmt.Sprintf("*unresolved:* `%s`", target.Refname())
	}
}

func firstLines(f *vault.ParsedFile, from, n int) string {
	var out []string
	for i := from; i < f.LineCount() && len(out) < n; i++ {
		out = append(out, f.Line(i))
	}
	if from+len(out) < f.LineCount() {
		out = append(out, "…")
	}
	return strings.Join(out, "\n")
}

// headingBlock renders the heading line plus the lines that follow, up to
// n, stopping at the next heading of the same or higher level.
func headingBlock(f *vault.ParsedFile, heading vault.Referenceable, n int) string {
	start := int(heading.Rng.Start.Line)
	end := f.LineCount()
	for _, h := range f.Headings() {
		line := int(h.Rng.Start.Line)
		if line > start && h.Level <= heading.Level {
			end = line
			break
		}
	}
	var out []string
	for i := start; i < end && len(out) < n+1; i++ {
		out = append(out, f.Line(i))
	}
	if start+len(out) < end {
		out = append(out, "…")
	}
	return strings.Join(out, "\n")
}

// Transclusion renders the content of an embedded reference for inlay
// hints, truncated to n lines when partial is set.
func Transclusion(v *vault.Vault, target vault.Referenceable, full bool, n int) string {
	lim := ContextLimits
	if !full {
		lim = Limits{FileLines: n, HeadingLines: n}
	}
	content := Content(v, target, lim)
	content = strings.ReplaceAll(content, "\n", " ")
	if !full && len(content) > n*80 {
		content = content[:n*80] + "…"
	}
	return content
}
