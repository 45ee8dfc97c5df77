package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
)

// ProgressIndicator prints one line per processed file: "  [N/Total] filename"
type ProgressIndicator struct {
	writer     io.Writer
	totalFiles int
	current    int
	color      bool
}

// NewProgressIndicator creates a new progress indicator. A nil writer discards output.
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer:     w,
		totalFiles: total,
		color:      colorEnabled(w),
	}
}

// Step displays progress for the current file (cyan on terminals)
func (p *ProgressIndicator) Step(filename string) {
	p.current++
	if p.writer == nil {
		return
	}
	line := fmt.Sprintf("  [%d/%d] %s", p.current, p.totalFiles, filepath.Base(filename))
	if p.color {
		line = color.New(color.FgCyan).Sprint(line)
	}
	fmt.Fprintln(p.writer, line)
}

// Complete displays the success line with a green checkmark
func (p *ProgressIndicator) Complete() {
	if p.writer == nil {
		return
	}
	mark := "✓"
	if p.color {
		mark = color.New(color.FgGreen).Sprint(mark)
	}
	fmt.Fprintf(p.writer, "%s Searched %d command files\n", mark, p.totalFiles)
}

// Current returns the number of steps taken so far.
func (p *ProgressIndicator) Current() int {
	return p.current
}
