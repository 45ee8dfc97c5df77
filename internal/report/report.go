// Package report renders search results as the commands.list listing and
// writes it to disk.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/harrison/cmdlist/internal/config"
	"github.com/harrison/cmdlist/internal/filelock"
	"github.com/harrison/cmdlist/internal/models"
	"github.com/harrison/cmdlist/internal/ptype"
	"github.com/yuin/goldmark"
)

const title = "List of xml files and the commands they contain."

// filterLine describes the substring the listing was filtered by.
func filterLine(substring string) string {
	return fmt.Sprintf("Commands are filtered by the substring ('%s' or '%s' - with and without escaping) contained in the pattern of the command's ptype.",
		substring, ptype.Escaped(substring))
}

// Format renders r in the given output format (text, markdown or html).
// Files appear in report order, command names sorted within each file.
func Format(r *models.Report, substring, format string) (string, error) {
	if r == nil {
		r = &models.Report{}
	}

	switch format {
	case "", config.FormatText:
		return formatText(r, substring), nil
	case config.FormatMarkdown:
		return formatMarkdown(r, substring), nil
	case config.FormatHTML:
		return formatHTML(r, substring)
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
}

func formatText(r *models.Report, substring string) string {
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(filterLine(substring) + "\n\n")
	for _, fc := range r.Files {
		b.WriteString(fc.File + ":\n")
		for _, command := range fc.Commands.Sorted() {
			b.WriteString("\t" + command + "\n")
		}
	}
	return b.String()
}

func formatMarkdown(r *models.Report, substring string) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	fmt.Fprintf(&b, "Commands are filtered by the substring (`%s` or `%s` - with and without escaping) contained in the pattern of the command's ptype.\n",
		substring, ptype.Escaped(substring))
	for _, fc := range r.Files {
		b.WriteString("\n## " + escapeMarkdown(fc.File) + "\n\n")
		for _, command := range fc.Commands.Sorted() {
			b.WriteString("- " + escapeMarkdown(command) + "\n")
		}
	}
	return b.String()
}

func formatHTML(r *models.Report, substring string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(formatMarkdown(r, substring)), &buf); err != nil {
		return "", fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Mode of a newly created report; a rewritten report keeps its own
const reportPerm = 0644

// Write stores text at path, replacing any previous report atomically.
func Write(text, path string) error {
	if err := filelock.AtomicWrite(path, []byte(text), reportPerm); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
