package preview

import (
	"fmt"
	"strings"
	"testing"

	"github.com/starford/moxide/internal/testutil"
	"github.com/starford/moxide/internal/vault"
)

func TestRender_FileWithBacklinks(t *testing.T) {
	v := testutil.BuildVault(t, map[string]string{
		"A.md": "# Alpha\nsome body\n",
		"B.md": "first [[A]]\n",
		"C.md": "second [[A]]\n",
	})

	out := Render(v, vault.Referenceable{Kind: vault.RefableFile, Path: "A.md"}, HoverLimits)
	if !strings.Contains(out, "# Alpha") {
		t.Errorf("missing content:\n%s", out)
	}
	if !strings.Contains(out, "2 references:") {
		t.Errorf("missing backlink count:\n%s", out)
	}
	if !strings.Contains(out, "`B.md:1` first [[A]]") {
		t.Errorf("missing context line:\n%s", out)
	}
}

func TestRender_FileLineLimit(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	v := testutil.BuildVault(t, map[string]string{
		"Long.md": strings.Join(lines, "\n") + "\n",
	})

	out := Render(v, vault.Referenceable{Kind: vault.RefableFile, Path: "Long.md"}, HoverLimits)
	if strings.Contains(out, "line 14") {
		t.Errorf("hover preview exceeds %d lines:\n%s", HoverLimits.FileLines, out)
	}
	if !strings.Contains(out, "…") {
		t.Error("truncation marker missing")
	}

	full := Render(v, vault.Referenceable{Kind: vault.RefableFile, Path: "Long.md"}, ContextLimits)
	if !strings.Contains(full, "line 39") {
		t.Error("context preview should include the whole file")
	}
}

func TestRender_HeadingStopsAtSibling(t *testing.T) {
	v := testutil.BuildVault(t, map[string]string{
		"A.md": "# One\ninside one\n# Two\ninside two\n",
	})

	var heading vault.Referenceable
	for _, h := range v.File("A.md").Headings() {
		if h.Heading == "One" {
			heading = h
		}
	}
	out := Render(v, heading, HoverLimits)
	if !strings.Contains(out, "inside one") {
		t.Errorf("heading body missing:\n%s", out)
	}
	if strings.Contains(out, "inside two") {
		t.Errorf("sibling section leaked:\n%s", out)
	}
}

func TestRender_BacklinkLimit(t *testing.T) {
	files := map[string]string{"A.md": "target\n"}
	for i := 0; i < 25; i++ {
		files[fmt.Sprintf("ref%02d.md", i)] = "[[A]]\n"
	}
	v := testutil.BuildVault(t, files)

	out := Render(v, vault.Referenceable{Kind: vault.RefableFile, Path: "A.md"}, HoverLimits)
	if !strings.Contains(out, "25 references:") {
		t.Errorf("total count wrong:\n%s", out)
	}
	if !strings.Contains(out, "and 5 more") {
		t.Errorf("overflow marker missing:\n%s", out)
	}
}

func TestTransclusion_Partial(t *testing.T) {
	v := testutil.BuildVault(t, map[string]string{
		"A.md": "para one\npara two\npara three\n",
	})

	got := Transclusion(v, vault.Referenceable{Kind: vault.RefableFile, Path: "A.md"}, false, 2)
	if !strings.Contains(got, "para one") {
		t.Errorf("content missing: %q", got)
	}
	if strings.Contains(got, "para three") {
		t.Errorf("partial rendering too long: %q", got)
	}
	if strings.Contains(got, "\n") {
		t.Errorf("inlay text must be single-line: %q", got)
	}
}
