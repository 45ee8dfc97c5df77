// Package workspace stages CLISH XML files into a scratch directory for one run
// and removes it again when the run ends.
//
// The source tree holds one directory per board plus a "common" directory.
// Type definition files are collected into TypesDir, everything else that
// can hold commands into CommandsDir:
//
//	board dir   types-*      -> types_xmls/
//	board dir   other files  -> commands_xmls/
//	common      types.xml    -> types_xmls/
//	common      not types*   -> commands_xmls/
//
// A Workspace is a scoped resource: every successful Open must be paired with
// a deferred Close. Only the two scratch folders and the lock file are ever
// removed; the root itself goes away on Close when Open created it and
// nothing else was put there.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/cmdlist/internal/config"
	"github.com/harrison/cmdlist/internal/filelock"
	"github.com/harrison/cmdlist/internal/fileutil"
	"github.com/samber/lo"
)

const lockFileName = ".lock"

// Logger receives workspace progress messages
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogWarn(string) {}

// Workspace is the scratch directory tree of a single run
type Workspace struct {
	cfg         config.WorkspaceConfig
	lock        *filelock.FileLock
	log         Logger
	copied      map[string]string // destination path -> source path
	overwritten []string
	createdRoot bool
	closed      bool
}

// Open creates the scratch workspace, locks it against concurrent runs, removes
// leftovers of a previous run and copies the relevant files from sourceRoot.
// On failure after the lock was taken the workspace is removed before returning.
func Open(cfg config.WorkspaceConfig, sourceRoot string, log Logger) (*Workspace, error) {
	_, statErr := os.Stat(cfg.Root)
	createdRoot := os.IsNotExist(statErr)
	if err := os.MkdirAll(cfg.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create working directory %s: %w", cfg.Root, err)
	}

	lock := filelock.NewFileLock(filepath.Join(cfg.Root, lockFileName))
	if err := lock.Acquire(); err != nil {
		return nil, fmt.Errorf("working directory %s is in use: %w", cfg.Root, err)
	}

	if log == nil {
		log = nopLogger{}
	}
	ws := &Workspace{
		cfg:         cfg,
		lock:        lock,
		log:         log,
		copied:      make(map[string]string),
		createdRoot: createdRoot,
	}

	if err := ws.prepare(sourceRoot); err != nil {
		if cerr := ws.Close(); cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		return nil, err
	}
	return ws, nil
}

// Root returns the scratch root directory.
func (w *Workspace) Root() string {
	return w.cfg.Root
}

// TypesDir returns the folder holding the staged type definition files.
func (w *Workspace) TypesDir() string {
	return w.cfg.TypesDir()
}

// CommandsDir returns the folder holding the staged command files.
func (w *Workspace) CommandsDir() string {
	return w.cfg.CommandsDir()
}

// Overwritten returns the staged file names that more than one source file mapped to.
func (w *Workspace) Overwritten() []string {
	return lo.Uniq(w.overwritten)
}

// Close removes the scratch folders and the lock file, then releases the lock.
// The root is removed too when Open created it and it is empty by then.
// It is safe to call on a nil Workspace and more than once.
func (w *Workspace) Close() error {
	if w == nil || w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if err := w.removeScratch(); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(w.lock.Path()); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove lock file: %w", err))
	}
	if w.lock.Locked() {
		if err := w.lock.Release(); err != nil {
			errs = append(errs, err)
		}
	}

	if w.createdRoot {
		// Fails harmlessly when something else was put into the root meanwhile
		if err := os.Remove(w.cfg.Root); err == nil {
			w.log.LogDebug(fmt.Sprintf("Working directory '%s' was deleted", w.cfg.Root))
		}
	}
	return errors.Join(errs...)
}

// removeScratch deletes the types and commands folders.
func (w *Workspace) removeScratch() error {
	for _, dir := range []string{w.TypesDir(), w.CommandsDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		w.log.LogDebug(fmt.Sprintf("Directory '%s' was deleted", dir))
	}
	return nil
}

func (w *Workspace) prepare(sourceRoot string) error {
	if err := w.removeScratch(); err != nil {
		return err
	}

	for _, dir := range []string{w.TypesDir(), w.CommandsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		w.log.LogDebug(fmt.Sprintf("Directory '%s' was created", dir))
	}

	return w.stage(sourceRoot)
}

// stage walks sourceRoot and copies files out of board and common directories.
func (w *Workspace) stage(sourceRoot string) error {
	scratch, err := filepath.Abs(w.cfg.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", w.cfg.Root, err)
	}

	return filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != sourceRoot && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		// Never stage the scratch tree into itself
		if abs, err := filepath.Abs(path); err == nil && abs == scratch {
			return filepath.SkipDir
		}

		switch {
		case lo.Contains(w.cfg.Boards, d.Name()):
			return w.stageBoard(path)
		case d.Name() == config.CommonDirName:
			return w.stageCommon(path)
		}
		return nil
	})
}

func (w *Workspace) stageBoard(dir string) error {
	if err := w.copyMatching(dir, fileutil.ScanOptions{Pattern: "^types-"}, w.TypesDir()); err != nil {
		return err
	}
	return w.copyMatching(dir, fileutil.ScanOptions{ExcludePattern: "^types-"}, w.CommandsDir())
}

func (w *Workspace) stageCommon(dir string) error {
	if err := w.copy(filepath.Join(dir, "types.xml"), w.TypesDir()); err != nil {
		return err
	}
	return w.copyMatching(dir, fileutil.ScanOptions{ExcludePattern: "^types"}, w.CommandsDir())
}

func (w *Workspace) copyMatching(dir string, opts fileutil.ScanOptions, dst string) error {
	result, err := fileutil.ScanDirectory(dir, opts)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	for _, file := range result.Files {
		if err := w.copy(file, dst); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workspace) copy(src, dstDir string) error {
	dst, err := fileutil.CopyFile(src, dstDir)
	if err != nil {
		return err
	}
	if prev, ok := w.copied[dst]; ok && prev != src {
		w.overwritten = append(w.overwritten, filepath.Base(dst))
		w.log.LogWarn(fmt.Sprintf("'%s' replaces '%s' in %s", src, prev, dstDir))
	}
	w.copied[dst] = src
	return nil
}
