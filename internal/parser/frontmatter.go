package parser

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the fields the indexer cares about from a file's
// leading YAML block.
type Frontmatter struct {
	Aliases []string
}

// ExtractFrontmatter parses the --- fenced YAML block at the very first
// line of text. Invalid YAML or a missing block yields an empty result;
// frontmatter never fails a parse.
func ExtractFrontmatter(text string) Frontmatter {
	lines := SplitLines(text)
	if len(lines) == 0 || lines[0] != "---" {
		return Frontmatter{}
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if lines[i] == "---" || lines[i] == "..." {
			end = i
			break
		}
	}
	if end < 0 {
		return Frontmatter{}
	}

	var raw struct {
		Aliases any `yaml:"aliases"`
	}
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &raw); err != nil {
		return Frontmatter{}
	}

	var fm Frontmatter
	switch v := raw.Aliases.(type) {
	case string:
		if v != "" {
			fm.Aliases = []string{v}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				fm.Aliases = append(fm.Aliases, s)
			}
		}
	}
	return fm
}
