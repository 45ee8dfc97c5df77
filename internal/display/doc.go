// Package display provides user-facing terminal output for cmdlist runs:
// per-file progress while command files are searched, and boxed warnings.
//
//	progress := display.NewProgressIndicator(os.Stderr, len(files))
//	for _, file := range files {
//	    progress.Step(file)
//	    // ... search file ...
//	}
//	progress.Complete()
//
//	display.Warning{
//	    Title: "2 files were overwritten while staging the workspace",
//	    Files: []string{"interface.xml", "vlan.xml"},
//	}.Display(os.Stderr)
//
// Colors are applied only when the writer is a terminal and NO_COLOR is unset.
package display

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// colorEnabled reports whether output to w should carry ANSI colors.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
