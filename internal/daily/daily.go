// Package daily parses fuzzy natural-language date phrases and renders
// daily-note filenames from the configured strftime pattern.
package daily

import (
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// numericLayouts are the explicit date forms accepted ahead of the
// natural-language pass: Y-M-D, M/D/Y, M.D.Y and month-name forms.
var numericLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"1/2/2006",
	"01/02/2006",
	"1.2.2006",
	"01.02.2006",
	"January 2 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
}

// Parser resolves date phrases and formats daily-note names.
type Parser struct {
	format string
	folder string
	w      *when.Parser
}

// New creates a Parser for the given strftime pattern and daily-notes
// folder (may be empty).
func New(format, folder string) *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{format: format, folder: folder, w: w}
}

// Format renders the daily-note file stem for a date.
func (p *Parser) Format(t time.Time) string {
	return strftime.Format(p.format, t)
}

// Path returns the vault-relative path of the daily note for a date,
// honouring the daily-notes folder.
func (p *Parser) Path(t time.Time) string {
	name := p.Format(t) + ".md"
	if p.folder == "" {
		return name
	}
	return strings.TrimSuffix(p.folder, "/") + "/" + name
}

// ParseFilename reports whether a file stem matches the daily-note
// pattern, and the date it denotes.
func (p *Parser) ParseFilename(stem string) (time.Time, bool) {
	t, err := strftime.Parse(p.format, stem)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParsePhrase resolves a date phrase against now in local time. Accepted
// forms: today/tomorrow/yesterday, this|next|last <weekday|week|month>,
// "N <units> ago", "in N <units>", numeric Y-M-D / M/D/Y / M.D.Y and
// month-name dates. The whole phrase must be consumed.
func (p *Parser) ParsePhrase(phrase string, now time.Time) (time.Time, bool) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return time.Time{}, false
	}

	for _, layout := range numericLayouts {
		if t, err := time.ParseInLocation(layout, phrase, now.Location()); err == nil {
			return t, true
		}
	}
	if t, err := strftime.Parse(p.format, phrase); err == nil {
		return t, true
	}

	r, err := p.w.Parse(strings.ToLower(phrase), now)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	if len(strings.TrimSpace(r.Text)) != len(phrase) {
		return time.Time{}, false
	}
	return r.Time, true
}

// Phrases returns the completion vocabulary for daily-note phrases.
func Phrases() []string {
	out := []string{"today", "tomorrow", "yesterday"}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		out = append(out, "next "+day, "last "+day, "this "+day)
	}
	return out
}
