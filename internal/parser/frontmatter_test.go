package parser

import "testing"

func TestExtractFrontmatter_AliasList(t *testing.T) {
	text := "---\naliases:\n  - First\n  - Second\n---\nbody\n"
	fm := ExtractFrontmatter(text)
	if len(fm.Aliases) != 2 || fm.Aliases[0] != "First" || fm.Aliases[1] != "Second" {
		t.Errorf("aliases = %v", fm.Aliases)
	}
}

func TestExtractFrontmatter_AliasScalar(t *testing.T) {
	fm := ExtractFrontmatter("---\naliases: Solo\n---\n")
	if len(fm.Aliases) != 1 || fm.Aliases[0] != "Solo" {
		t.Errorf("aliases = %v", fm.Aliases)
	}
}

func TestExtractFrontmatter_Absent(t *testing.T) {
	if fm := ExtractFrontmatter("# Heading\n"); fm.Aliases != nil {
		t.Errorf("aliases = %v, want nil", fm.Aliases)
	}
}

func TestExtractFrontmatter_InvalidYAML(t *testing.T) {
	if fm := ExtractFrontmatter("---\n: bad: {{{\n---\n"); fm.Aliases != nil {
		t.Errorf("aliases = %v, want nil", fm.Aliases)
	}
}

func TestExtractFrontmatter_Unclosed(t *testing.T) {
	if fm := ExtractFrontmatter("---\naliases: [X]\nno close\n"); fm.Aliases != nil {
		t.Errorf("aliases = %v, want nil", fm.Aliases)
	}
}
