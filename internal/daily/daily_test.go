package daily

import (
	"testing"
	"time"
)

var now = time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC) // a Wednesday

func TestParsePhrase_Casual(t *testing.T) {
	p := New("%Y-%m-%d", "")

	cases := map[string]string{
		"today":     "2024-06-05",
		"tomorrow":  "2024-06-06",
		"yesterday": "2024-06-04",
	}
	for phrase, want := range cases {
		got, ok := p.ParsePhrase(phrase, now)
		if !ok {
			t.Errorf("%q did not parse", phrase)
			continue
		}
		if p.Format(got) != want {
			t.Errorf("%q = %s, want %s", phrase, p.Format(got), want)
		}
	}
}

func TestParsePhrase_Numeric(t *testing.T) {
	p := New("%Y-%m-%d", "")

	for _, phrase := range []string{"2024-01-05", "1/5/2024", "1.5.2024", "January 5 2024"} {
		got, ok := p.ParsePhrase(phrase, now)
		if !ok {
			t.Errorf("%q did not parse", phrase)
			continue
		}
		if p.Format(got) != "2024-01-05" {
			t.Errorf("%q = %s, want 2024-01-05", phrase, p.Format(got))
		}
	}
}

func TestParsePhrase_Weekday(t *testing.T) {
	p := New("%Y-%m-%d", "")
	got, ok := p.ParsePhrase("next friday", now)
	if !ok {
		t.Fatal("next friday did not parse")
	}
	if got.Weekday() != time.Friday {
		t.Errorf("weekday = %s", got.Weekday())
	}
	if !got.After(now) {
		t.Errorf("next friday not in the future: %s", got)
	}
}

func TestParsePhrase_RejectsTrailingGarbage(t *testing.T) {
	p := New("%Y-%m-%d", "")
	if _, ok := p.ParsePhrase("today maybe", now); ok {
		t.Error("partial match accepted")
	}
	if _, ok := p.ParsePhrase("", now); ok {
		t.Error("empty phrase accepted")
	}
}

func TestFormatAndParseFilename(t *testing.T) {
	p := New("%Y-%m-%d", "notes/daily")

	if got := p.Format(now); got != "2024-06-05" {
		t.Errorf("Format = %q", got)
	}
	if got := p.Path(now); got != "notes/daily/2024-06-05.md" {
		t.Errorf("Path = %q", got)
	}

	parsed, ok := p.ParseFilename("2024-06-05")
	if !ok {
		t.Fatal("filename did not parse")
	}
	if parsed.Year() != 2024 || parsed.Month() != time.June || parsed.Day() != 5 {
		t.Errorf("parsed = %s", parsed)
	}
	if _, ok := p.ParseFilename("not-a-date"); ok {
		t.Error("garbage filename parsed")
	}
}

func TestPhrases(t *testing.T) {
	seen := map[string]bool{}
	for _, phrase := range Phrases() {
		seen[phrase] = true
	}
	for _, want := range []string{"today", "tomorrow", "yesterday", "next monday", "last friday"} {
		if !seen[want] {
			t.Errorf("missing phrase %q", want)
		}
	}
}
