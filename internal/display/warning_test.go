package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarningDisplay(t *testing.T) {
	tests := []struct {
		name    string
		warning Warning
		want    []string
		notWant []string
	}{
		{
			name:    "title only",
			warning: Warning{Title: "Nothing matched"},
			want:    []string{"⚠️  Warning: Nothing matched\n"},
			notWant: []string{"Affected", "Suggestion"},
		},
		{
			name: "single file",
			warning: Warning{
				Title:   "1 file was overwritten",
				Message: "Later copies replace earlier ones",
				Files:   []string{"interface.xml"},
			},
			want: []string{"    Later copies replace earlier ones\n", "    Affected file:\n", "      1. interface.xml\n"},
		},
		{
			name: "multiple files with suggestion",
			warning: Warning{
				Title:      "2 files were overwritten",
				Files:      []string{"interface.xml", "vlan.xml"},
				Suggestion: "Rename board specific command files",
			},
			want: []string{"Affected files:\n", "      2. vlan.xml\n", "    Suggestion:\n    Rename board specific command files\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.warning.Display(&buf)
			out := buf.String()

			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("expected %q in:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("did not expect %q in:\n%s", s, out)
				}
			}
		})
	}
}

func TestWarningDisplayNilWriter(t *testing.T) {
	Warning{Title: "ignored"}.Display(nil)
}
