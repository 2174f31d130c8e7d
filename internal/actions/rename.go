package actions

import (
	"fmt"
	"strings"

	"github.com/starford/moxide/internal/apperr"
	"github.com/starford/moxide/internal/parser"
	"github.com/starford/moxide/internal/vault"
)

// renameTarget locates the referenceable under the cursor: a reference
// resolves to its target, otherwise the referenceable defined at the
// position (ultimately the file itself).
func renameTarget(v *vault.Vault, path string, pos parser.Position) (vault.Referenceable, bool) {
	if ref, ok := v.ReferenceAt(path, pos); ok {
		for _, r := range v.Resolve(ref) {
			if r.Resolved() {
				return r, true
			}
		}
		return vault.Referenceable{}, false
	}
	return v.RefableAt(path, pos)
}

// Prepare validates a rename position and returns the range to be replaced
// together with the placeholder text.
func Prepare(v *vault.Vault, path string, pos parser.Position) (parser.Range, string, error) {
	target, ok := renameTarget(v, path, pos)
	if !ok {
		return parser.Range{}, "", fmt.Errorf("prepare rename: %w", apperr.ErrNotFound)
	}
	switch target.Kind {
	case vault.RefableFile:
		return parser.Range{}, target.Refname(), nil
	case vault.RefableHeading:
		return target.Rng, target.Heading, nil
	case vault.RefableTag:
		return target.Rng, target.Tag, nil
	default:
		return parser.Range{}, "", fmt.Errorf("prepare rename: unsupported target: %w", apperr.ErrBadRequest)
	}
}

// Rename computes the workspace edit renaming the referenceable under the
// cursor to newName. Files rename on disk and rewrite every reference;
// headings rewrite their line and referencing fragments; tags rewrite
// every occurrence including hierarchical descendants.
func Rename(v *vault.Vault, path string, pos parser.Position, newName string) (*WorkspaceEdit, error) {
	target, ok := renameTarget(v, path, pos)
	if !ok {
		return nil, fmt.Errorf("rename: %w", apperr.ErrNotFound)
	}

	switch target.Kind {
	case vault.RefableFile:
		return renameFile(v, target, newName)
	case vault.RefableHeading:
		return renameHeading(v, target, newName)
	case vault.RefableTag:
		return renameTag(v, target, newName)
	default:
		return nil, fmt.Errorf("rename: unsupported target: %w", apperr.ErrBadRequest)
	}
}

func renameFile(v *vault.Vault, target vault.Referenceable, newName string) (*WorkspaceEdit, error) {
	newRefname := strings.TrimSuffix(strings.TrimSpace(newName), ".md")
	if newRefname == "" {
		return nil, fmt.Errorf("rename: empty name: %w", apperr.ErrBadRequest)
	}

	w := newWorkspaceEdit()
	w.Renames = append(w.Renames, FileRename{From: target.Path, To: newRefname + ".md"})

	for _, ref := range v.AllReferences() {
		if !ref.IsLink() || ref.Path == "" {
			continue
		}
		if !resolvesToFile(v, ref, target.Path) {
			continue
		}
		w.add(ref.File, TextEdit{
			Rng:     ref.Rng,
			NewText: renderLink(v, ref, newRefname, ref.Heading, ref.BlockID),
		})
	}
	return w, nil
}

func renameHeading(v *vault.Vault, target vault.Referenceable, newName string) (*WorkspaceEdit, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("rename: empty heading: %w", apperr.ErrBadRequest)
	}

	w := newWorkspaceEdit()
	w.add(target.Path, TextEdit{
		Rng:     target.Rng,
		NewText: strings.Repeat("#", target.Level) + " " + newName,
	})

	for _, ref := range v.AllReferences() {
		if !ref.IsLink() || ref.Heading == "" {
			continue
		}
		if !resolvesTo(v, ref, target) {
			continue
		}
		pathPart := ref.Path
		w.add(ref.File, TextEdit{
			Rng:     ref.Rng,
			NewText: renderLink(v, ref, pathPart, newName, ""),
		})
	}
	return w, nil
}

func renameTag(v *vault.Vault, target vault.Referenceable, newName string) (*WorkspaceEdit, error) {
	newName = strings.TrimPrefix(strings.TrimSpace(newName), "#")
	if newName == "" {
		return nil, fmt.Errorf("rename: empty tag: %w", apperr.ErrBadRequest)
	}

	w := newWorkspaceEdit()
	for _, ref := range v.AllReferences() {
		if ref.Kind != vault.RefTag {
			continue
		}
		if ref.Path != target.Tag && !strings.HasPrefix(ref.Path, target.Tag+"/") {
			continue
		}
		suffix := strings.TrimPrefix(ref.Path, target.Tag)
		w.add(ref.File, TextEdit{
			Rng:     ref.Rng,
			NewText: "#" + newName + suffix,
		})
	}
	return w, nil
}

// resolvesToFile reports whether a link reference resolves into path (the
// file itself or any of its headings and blocks).
func resolvesToFile(v *vault.Vault, ref vault.Reference, path string) bool {
	file := vault.Referenceable{Kind: vault.RefableFile, Path: path}
	return resolvesTo(v, ref, file)
}

func resolvesTo(v *vault.Vault, ref vault.Reference, target vault.Referenceable) bool {
	for _, res := range v.Resolve(ref) {
		if res.Kind == target.Kind && res.Refname() == target.Refname() {
			return true
		}
		if target.Kind == vault.RefableFile {
			switch res.Kind {
			case vault.RefableHeading, vault.RefableBlock:
				if res.Path == target.Path {
					return true
				}
			}
		}
	}
	return false
}
