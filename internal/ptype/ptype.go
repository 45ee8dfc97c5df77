// Package ptype selects the parameter types whose validation pattern contains
// an interface-range substring.
package ptype

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/cmdlist/internal/fileutil"
	"github.com/harrison/cmdlist/internal/models"
	"github.com/harrison/cmdlist/internal/parser"
)

// Logger receives selection progress messages
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
}

// Escaped returns substring with every "/" written as "\/", the way regex
// patterns in the schema escape the slash.
func Escaped(substring string) string {
	return strings.ReplaceAll(substring, "/", `\/`)
}

// Qualifies reports whether pattern contains substring, either verbatim or in its
// escaped form. An empty substring never qualifies.
func Qualifies(pattern, substring string) bool {
	if substring == "" {
		return false
	}
	return strings.Contains(pattern, substring) || strings.Contains(pattern, Escaped(substring))
}

// FromTree returns the names of the root's PTYPE children whose pattern qualifies.
// PTYPEs without a pattern or without a name are ignored.
func FromTree(root *models.Node, substring string) models.StringSet {
	names := models.NewStringSet()
	for _, node := range root.ChildrenByTag(models.TagPtype) {
		pattern, ok := node.Attr(models.AttrPattern)
		if !ok || !Qualifies(pattern, substring) {
			continue
		}
		if name, ok := node.Attr(models.AttrName); ok && name != "" {
			names.Add(name)
		}
	}
	return names
}

// Result is the outcome of scanning a types folder
type Result struct {
	Names models.StringSet // Qualifying ptype names across all files
	Files int              // Number of type definition files parsed
}

// Select parses every file in typesDir (flat) and unions the qualifying ptype
// names. The first file that fails to parse aborts the selection.
func Select(typesDir, substring string, log Logger) (*Result, error) {
	scan, err := fileutil.ScanDirectory(typesDir, fileutil.ScanOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list type files: %w", err)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("failed to list type files: %w", err)
	}

	result := &Result{Names: models.NewStringSet()}
	for _, file := range scan.Files {
		root, err := parser.ParseFile(file)
		if err != nil {
			return nil, err
		}
		names := FromTree(root, substring)
		if log != nil {
			log.LogDebug(fmt.Sprintf("%s: %d qualifying ptypes", filepath.Base(file), names.Len()))
			for _, name := range names.Sorted() {
				log.LogTrace(fmt.Sprintf("ptype %s qualifies", name))
			}
		}
		result.Names.Union(names)
		result.Files++
	}
	return result, nil
}
