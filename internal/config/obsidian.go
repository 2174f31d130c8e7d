package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// obsidianApp mirrors the fields of .obsidian/app.json that map onto
// moxide settings.
type obsidianApp struct {
	NewFileFolderPath string `json:"newFileFolderPath"`
}

// obsidianDaily mirrors .obsidian/daily-notes.json.
type obsidianDaily struct {
	Format string `json:"format"`
	Folder string `json:"folder"`
}

// applyObsidian imports vault settings written by Obsidian, when present.
// The daily-note format arrives as a Moment.js pattern and is translated
// to the strftime vocabulary used everywhere else.
func applyObsidian(root string, s *Settings) {
	if data, err := os.ReadFile(filepath.Join(root, ".obsidian", "app.json")); err == nil {
		var app obsidianApp
		if json.Unmarshal(data, &app) == nil && app.NewFileFolderPath != "" {
			s.NewFileFolderPath = app.NewFileFolderPath
		}
	}
	if data, err := os.ReadFile(filepath.Join(root, ".obsidian", "daily-notes.json")); err == nil {
		var daily obsidianDaily
		if json.Unmarshal(data, &daily) == nil {
			if daily.Format != "" {
				s.Dailynote = MomentToStrftime(daily.Format)
			}
			if daily.Folder != "" {
				s.DailyNotesFolder = daily.Folder
			}
		}
	}
}

// momentTokens maps Moment.js format tokens to their strftime equivalents,
// longest first so e.g. YYYY is consumed before YY.
var momentTokens = [][2]string{
	{"YYYY", "%Y"},
	{"YY", "%y"},
	{"MMMM", "%B"},
	{"MMM", "%b"},
	{"MM", "%m"},
	{"M", "%-m"},
	{"DD", "%d"},
	{"D", "%-d"},
	{"dddd", "%A"},
	{"ddd", "%a"},
}

// MomentToStrftime translates a Moment.js date pattern into the
// strftime-family pattern the daily-note machinery expects.
func MomentToStrftime(moment string) string {
	var b strings.Builder
	for i := 0; i < len(moment); {
		matched := false
		for _, tok := range momentTokens {
			if strings.HasPrefix(moment[i:], tok[0]) {
				b.WriteString(tok[1])
				i += len(tok[0])
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(moment[i])
			i++
		}
	}
	return b.String()
}
