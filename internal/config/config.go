// Package config holds the moxide settings model and its merge order:
// Obsidian vault settings, then the user settings file, then the per-vault
// .moxide.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	pkgconfig "github.com/starford/moxide/pkg/config"
)

// Case matching policies for link resolution.
const (
	CaseIgnore  = "Ignore"
	CaseSmart   = "Smart"
	CaseRespect = "Respect"
)

// Settings is the closed set of recognised options. Unknown keys in any
// config file warn and are ignored.
type Settings struct {
	Dailynote                  string             `toml:"dailynote"`
	HeadingCompletions         bool               `toml:"heading_completions"`
	TitleHeadings              bool               `toml:"title_headings"`
	UnresolvedDiagnostics      bool               `toml:"unresolved_diagnostics"`
	SemanticTokens             bool               `toml:"semantic_tokens"`
	TagsInCodeblocks           bool               `toml:"tags_in_codeblocks"`
	ReferencesInCodeblocks     bool               `toml:"references_in_codeblocks"`
	NewFileFolderPath          string             `toml:"new_file_folder_path"`
	DailyNotesFolder           string             `toml:"daily_notes_folder"`
	IncludeMdExtensionMdLink   bool               `toml:"include_md_extension_md_link"`
	IncludeMdExtensionWikilink bool               `toml:"include_md_extension_wikilink"`
	Hover                      bool               `toml:"hover"`
	CaseMatching               string             `toml:"case_matching"`
	InlayHints                 bool               `toml:"inlay_hints"`
	BlockTransclusion          bool               `toml:"block_transclusion"`
	BlockTransclusionLength    TransclusionLength `toml:"block_transclusion_length"`
	IgnoreDirs                 []string           `toml:"ignore_dirs"`
}

// TransclusionLength is either Full or Partial{N}. In TOML it is the string
// "Full" or an integer line count.
type TransclusionLength struct {
	Full bool
	N    int
}

// UnmarshalTOML implements toml.Unmarshaler.
func (t *TransclusionLength) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		if x != "Full" {
			return fmt.Errorf("block_transclusion_length: unknown value %q", x)
		}
		*t = TransclusionLength{Full: true}
		return nil
	case int64:
		if x < 1 {
			return fmt.Errorf("block_transclusion_length: must be positive, got %d", x)
		}
		*t = TransclusionLength{N: int(x)}
		return nil
	default:
		return fmt.Errorf("block_transclusion_length: expected \"Full\" or an integer")
	}
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Dailynote, validation.Required),
		validation.Field(&s.CaseMatching, validation.Required, validation.In(CaseIgnore, CaseSmart, CaseRespect)),
	)
}

// NewDefaultSettings returns Settings with the documented defaults.
func NewDefaultSettings() *Settings {
	return &Settings{
		Dailynote:               "%Y-%m-%d",
		HeadingCompletions:      true,
		TitleHeadings:           true,
		UnresolvedDiagnostics:   true,
		SemanticTokens:          true,
		TagsInCodeblocks:        true,
		ReferencesInCodeblocks:  true,
		Hover:                   true,
		CaseMatching:            CaseSmart,
		InlayHints:              true,
		BlockTransclusion:       true,
		BlockTransclusionLength: TransclusionLength{Full: true},
		IgnoreDirs:              []string{".git", ".obsidian"},
	}
}

// Load merges settings for a vault root: defaults, then Obsidian vault
// settings, then ~/.config/moxide/settings.toml, then <root>/.moxide.toml.
func Load(root string) (*Settings, error) {
	s := NewDefaultSettings()
	applyObsidian(root, s)

	if home, err := os.UserHomeDir(); err == nil {
		user := filepath.Join(home, ".config", "moxide", "settings.toml")
		if err := pkgconfig.LoadIfExists(user, s); err != nil {
			return nil, err
		}
	}

	local := filepath.Join(root, ".moxide.toml")
	if err := pkgconfig.LoadIfExists(local, s); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return s, nil
}
