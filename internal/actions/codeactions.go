package actions

import (
	"strings"

	"github.com/starford/moxide/internal/parser"
	"github.com/starford/moxide/internal/vault"
)

// Action is one offered code action with its computed edit.
type Action struct {
	Title string
	Edit  *WorkspaceEdit
}

// ForPosition returns the code actions available at a cursor position:
// creating the file behind an unresolved link, or appending a missing
// heading to its (possibly missing) file.
func ForPosition(v *vault.Vault, path string, pos parser.Position) []Action {
	ref, ok := v.ReferenceAt(path, pos)
	if !ok || !ref.IsLink() {
		return nil
	}

	var out []Action
	for _, res := range v.Resolve(ref) {
		switch res.Kind {
		case vault.RefableUnresolvedFile:
			out = append(out, Action{
				Title: "Create file " + res.Target + ".md",
				Edit:  CreateFile(v, res.Target),
			})
		case vault.RefableUnresolvedHeading:
			out = append(out, Action{
				Title: "Append heading \"" + res.Heading + "\" to " + res.Target + ".md",
				Edit:  AppendHeading(v, res.Target, res.Heading),
			})
		}
	}
	return out
}

// newFilePath places a new note: targets carrying a folder are used as-is;
// bare names go to the daily-notes folder when they match the daily-note
// format, otherwise to the configured new-file folder.
func newFilePath(v *vault.Vault, target string) string {
	if strings.Contains(target, "/") {
		return target + ".md"
	}
	folder := v.Settings.NewFileFolderPath
	if _, ok := v.Daily().ParseFilename(target); ok && v.Settings.DailyNotesFolder != "" {
		folder = v.Settings.DailyNotesFolder
	}
	if folder == "" {
		return target + ".md"
	}
	return strings.TrimSuffix(folder, "/") + "/" + target + ".md"
}

// CreateFile materialises the note behind an unresolved file target. With
// title_headings enabled the new file starts with a heading named after
// the note.
func CreateFile(v *vault.Vault, target string) *WorkspaceEdit {
	path := newFilePath(v, target)
	w := newWorkspaceEdit()
	w.Creates = append(w.Creates, path)

	if v.Settings.TitleHeadings {
		stem := target
		if i := strings.LastIndexByte(stem, '/'); i >= 0 {
			stem = stem[i+1:]
		}
		w.add(path, TextEdit{NewText: "# " + stem + "\n"})
	}
	return w
}

// AppendHeading creates the target file if missing, then appends the
// heading to it.
func AppendHeading(v *vault.Vault, target, heading string) *WorkspaceEdit {
	w := newWorkspaceEdit()

	f := v.FileByRefname(target)
	if f == nil {
		path := newFilePath(v, target)
		w.Creates = append(w.Creates, path)
		w.add(path, TextEdit{NewText: "# " + heading + "\n"})
		return w
	}

	end := parser.Position{Line: uint32(f.LineCount())}
	w.add(f.RelPath, TextEdit{
		Rng:     parser.Range{Start: end, End: end},
		NewText: "\n# " + heading + "\n",
	})
	return w
}
