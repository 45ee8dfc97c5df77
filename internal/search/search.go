// Package search walks CLISH command trees and reports the commands that use
// one of a set of parameter types.
package search

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/harrison/cmdlist/internal/fileutil"
	"github.com/harrison/cmdlist/internal/models"
	"github.com/harrison/cmdlist/internal/parser"
)

// Logger receives search progress messages
type Logger interface {
	LogDebug(message string)
}

// Progress is notified once per command file, before the file is searched
type Progress interface {
	Step(filename string)
}

// FindCommands returns the names of the COMMAND elements under root that use
// one of ptypes, either on the command itself or on a nested PARAM, SWITCH or
// SUBCOMMAND. The walk stops descending at the first element that qualifies.
func FindCommands(root *models.Node, ptypes models.StringSet) models.StringSet {
	found := models.NewStringSet()
	if root == nil {
		return found
	}
	visit(root, "", ptypes, found)
	return found
}

func visit(node *models.Node, command string, ptypes models.StringSet, found models.StringSet) {
	// An unnamed COMMAND keeps the enclosing command's name
	if node.Tag == models.TagCommand {
		if name, _ := node.Attr(models.AttrName); name != "" {
			command = name
		}
	}

	if models.IsSearchable(node.Tag) {
		if ptype, ok := node.Attr(models.AttrPtype); ok && ptypes.Has(ptype) {
			// Elements outside any COMMAND have nothing to report
			if command != "" {
				found.Add(command)
			}
			return
		}
	}

	for _, tag := range models.SearchOrder {
		for _, child := range node.ChildrenByTag(tag) {
			visit(child, command, ptypes, found)
		}
	}
}

// Dir searches every file in commandsDir (flat, in name order) and returns the
// per-file results. Files without matches are left out of the report.
// The first file that fails to parse aborts the search, as does cancelling ctx.
func Dir(ctx context.Context, commandsDir string, ptypes models.StringSet, progress Progress, log Logger) (*models.Report, error) {
	files, err := List(commandsDir)
	if err != nil {
		return nil, err
	}

	report := &models.Report{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if progress != nil {
			progress.Step(file)
		}
		root, err := parser.ParseFile(file)
		if err != nil {
			return nil, err
		}
		commands := FindCommands(root, ptypes)
		if log != nil {
			log.LogDebug(fmt.Sprintf("%s: %d matching commands", filepath.Base(file), commands.Len()))
		}
		report.Add(filepath.Base(file), commands)
	}
	return report, nil
}

// List returns the command files in commandsDir in name order.
func List(commandsDir string) ([]string, error) {
	scan, err := fileutil.ScanDirectory(commandsDir, fileutil.ScanOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list command files: %w", err)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("failed to list command files: %w", err)
	}
	return scan.Files, nil
}
