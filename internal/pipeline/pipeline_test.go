package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/cmdlist/internal/config"
	"github.com/harrison/cmdlist/internal/models"
	"github.com/harrison/cmdlist/internal/parser"
	"github.com/harrison/cmdlist/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	stages   []string
	warnings []string
	errors   []string
	summary  *models.RunSummary
}

func (r *recordingLogger) LogTrace(message string) {}
func (r *recordingLogger) LogDebug(message string) {}
func (r *recordingLogger) LogInfo(message string) {}
func (r *recordingLogger) LogWarn(message string) { r.warnings = append(r.warnings, message) }
func (r *recordingLogger) LogError(message string) { r.errors = append(r.errors, message) }
func (r *recordingLogger) LogStageStart(stage string) {
	r.stages = append(r.stages, stage)
}
func (r *recordingLogger) LogStageComplete(stage string, duration time.Duration) {}
func (r *recordingLogger) LogSummary(summary models.RunSummary) {
	r.summary = &summary
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// testConfig keeps the scratch tree and the report inside a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.WorkDir = filepath.Join(dir, "xmls")
	cfg.Output = filepath.Join(dir, "commands.list")
	return cfg
}

func readReport(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	return string(data)
}

func TestRunShowInterface(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml": `<CLISH_MODULE><PTYPE name="ifrange" pattern="[1-2]/[0-9]+"/></CLISH_MODULE>`,
		"common/interface.xml": `<CLISH_MODULE><VIEW name="root-view">
			<COMMAND name="show-interface"><PARAM name="if" ptype="ifrange"/><PARAM name="if2" ptype="ifrange"/></COMMAND>
		</VIEW></CLISH_MODULE>`,
		"common/system.xml": `<CLISH_MODULE><VIEW name="root-view"><COMMAND name="reload"/></VIEW></CLISH_MODULE>`,
	})
	cfg := testConfig(t)
	log := &recordingLogger{}
	var out bytes.Buffer

	summary, err := Run(context.Background(), cfg, src, &out, log)
	require.NoError(t, err)

	got := readReport(t, cfg)
	assert.Contains(t, got, "interface.xml:\n\tshow-interface\n")
	assert.Equal(t, 1, strings.Count(got, "show-interface"))
	assert.NotContains(t, got, "system.xml")
	assert.NotContains(t, got, "reload")

	require.NotNil(t, summary)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.TypeFiles)
	assert.Equal(t, 2, summary.CommandFiles)
	assert.Equal(t, 1, summary.QualifyingTypes)
	assert.Equal(t, 1, summary.MatchedFiles)
	assert.Equal(t, 1, summary.Commands)
	assert.Equal(t, cfg.Output, summary.Output)

	assert.Equal(t, []string{StagePrepare, StageSelect, StageSearch, StageWrite}, log.stages)
	require.NotNil(t, log.summary)
	assert.Equal(t, summary.RunID, log.summary.RunID)

	assert.Contains(t, out.String(), "[1/2] interface.xml")
	assert.Contains(t, out.String(), "[2/2] system.xml")
	assert.Contains(t, out.String(), "Searched 2 command files")

	assert.NoDirExists(t, cfg.WorkDir)
}

func TestRunCommandWithOwnPtype(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml": `<CLISH_MODULE><PTYPE name="port" pattern="gi[1-2]\/0\/[0-9]+"/></CLISH_MODULE>`,
		"esr1000/port.xml": `<CLISH_MODULE><VIEW name="config">
			<COMMAND name="interface" ptype="port"><PARAM name="p" ptype="port"/></COMMAND>
		</VIEW></CLISH_MODULE>`,
	})
	cfg := testConfig(t)

	_, err := Run(context.Background(), cfg, src, nil, nil)
	require.NoError(t, err)

	got := readReport(t, cfg)
	assert.Contains(t, got, "port.xml:\n\tinterface\n")
	assert.Equal(t, 1, strings.Count(got, "\tinterface\n"))
}

func TestRunBoardTypes(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml":          `<CLISH_MODULE><PTYPE name="num" pattern="[0-9]+"/></CLISH_MODULE>`,
		"esr1000/types-esr1000.xml": `<CLISH_MODULE><PTYPE name="ifrange" pattern="[1-2]/[0-9]+"/></CLISH_MODULE>`,
		"esr1000/vlan.xml":          `<CLISH_MODULE><VIEW name="v"><COMMAND name="vlan"><PARAM name="if" ptype="ifrange"/></COMMAND></VIEW></CLISH_MODULE>`,
		"unknown/ignored.xml":       `<CLISH_MODULE><VIEW name="v"><COMMAND name="ignored" ptype="ifrange"/></VIEW></CLISH_MODULE>`,
	})
	cfg := testConfig(t)

	summary, err := Run(context.Background(), cfg, src, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TypeFiles)
	assert.Equal(t, 1, summary.CommandFiles)

	got := readReport(t, cfg)
	assert.Contains(t, got, "vlan.xml:\n\tvlan\n")
	assert.NotContains(t, got, "ignored")
}

func TestRunIsIdempotent(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml": `<CLISH_MODULE><PTYPE name="ifrange" pattern="[1-2]/[0-9]+"/></CLISH_MODULE>`,
		"common/a.xml": `<CLISH_MODULE><VIEW name="v">
			<COMMAND name="zeta"><PARAM name="p" ptype="ifrange"/></COMMAND>
			<COMMAND name="alpha"><PARAM name="p" ptype="ifrange"/></COMMAND>
			<COMMAND name="mid"><SWITCH name="s"><PARAM name="p" ptype="ifrange"/></SWITCH></COMMAND>
		</VIEW></CLISH_MODULE>`,
	})
	cfg := testConfig(t)

	_, err := Run(context.Background(), cfg, src, nil, nil)
	require.NoError(t, err)
	first := readReport(t, cfg)

	_, err = Run(context.Background(), cfg, src, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first, readReport(t, cfg))
	assert.Contains(t, first, "a.xml:\n\talpha\n\tmid\n\tzeta\n")
}

func TestRunCorruptXMLCleansUp(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml":  `<CLISH_MODULE><PTYPE name="ifrange" pattern="[1-2]/[0-9]+"/></CLISH_MODULE>`,
		"common/broken.xml": `<CLISH_MODULE><VIEW name="v"><COMMAND name="x">`,
	})
	cfg := testConfig(t)

	summary, err := Run(context.Background(), cfg, src, nil, nil)
	assert.Nil(t, summary)

	var parseErr *parser.ParseError
	require.True(t, errors.As(err, &parseErr), "expected *parser.ParseError, got %v", err)
	assert.Equal(t, "broken.xml", filepath.Base(parseErr.File))

	assert.NoDirExists(t, cfg.WorkDir)
	assert.NoFileExists(t, cfg.Output)
}

func TestRunCorruptTypesCleansUp(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml": `<CLISH_MODULE><PTYPE`,
	})
	cfg := testConfig(t)

	_, err := Run(context.Background(), cfg, src, nil, nil)
	var parseErr *parser.ParseError
	require.True(t, errors.As(err, &parseErr), "expected *parser.ParseError, got %v", err)
	assert.NoDirExists(t, cfg.WorkDir)
}

func TestRunMissingCommon(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"esr1000/a.xml": `<CLISH_MODULE/>`,
	})
	cfg := testConfig(t)

	_, err := Run(context.Background(), cfg, src, nil, nil)

	var pathErr *workspace.PathError
	require.True(t, errors.As(err, &pathErr), "expected *workspace.PathError, got %v", err)
	assert.Contains(t, err.Error(), "has no 'common' subdirectory")
	assert.NoDirExists(t, cfg.WorkDir)
	assert.NoFileExists(t, cfg.Output)
}

func TestRunMissingTypesXML(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/interface.xml": `<CLISH_MODULE/>`,
	})
	cfg := testConfig(t)

	_, err := Run(context.Background(), cfg, src, nil, nil)
	require.Error(t, err)
	assert.NoDirExists(t, cfg.WorkDir)
}

func TestRunInvalidConfig(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml": `<CLISH_MODULE/>`,
	})
	cfg := testConfig(t)
	cfg.Format = "pdf"

	_, err := Run(context.Background(), cfg, src, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.NoDirExists(t, cfg.WorkDir)
}

func TestRunWarnsWhenNothingQualifies(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml": `<CLISH_MODULE><PTYPE name="num" pattern="[0-9]+"/></CLISH_MODULE>`,
		"common/a.xml":     `<CLISH_MODULE><VIEW name="v"><COMMAND name="x"><PARAM name="p" ptype="num"/></COMMAND></VIEW></CLISH_MODULE>`,
	})
	cfg := testConfig(t)
	log := &recordingLogger{}

	summary, err := Run(context.Background(), cfg, src, nil, log)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Commands)
	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "no ptype pattern contains")

	got := readReport(t, cfg)
	assert.True(t, strings.HasSuffix(got, "ptype.\n\n"), "report should hold only the header, got %q", got)
}

func TestRunReportsOverwrittenFiles(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml": `<CLISH_MODULE/>`,
		"esr1000/vlan.xml": `<CLISH_MODULE/>`,
		"esr1200/vlan.xml": `<CLISH_MODULE/>`,
	})
	cfg := testConfig(t)
	var out bytes.Buffer

	_, err := Run(context.Background(), cfg, src, &out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1 staged file(s) were overwritten")
	assert.Contains(t, out.String(), "vlan.xml")
}

func TestRunCancelledCleansUp(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml": `<CLISH_MODULE><PTYPE name="ifrange" pattern="[1-2]/[0-9]+"/></CLISH_MODULE>`,
		"common/a.xml":     `<CLISH_MODULE/>`,
	})
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := Run(ctx, cfg, src, nil, nil)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, cfg.WorkDir)
	assert.NoFileExists(t, cfg.Output)
}

func TestRunRejectsUnsafeWorkDir(t *testing.T) {
	newSource := func(t *testing.T) string {
		src := t.TempDir()
		writeTree(t, src, map[string]string{
			"common/types.xml": `<CLISH_MODULE><PTYPE name="ifrange" pattern="[1-2]/[0-9]+"/></CLISH_MODULE>`,
			"keep.txt":         "user data",
		})
		return src
	}

	tests := []struct {
		name   string
		setup  func(cfg *config.Config, src string)
		reason string
	}{
		{
			name:   "work dir is the source root",
			setup:  func(cfg *config.Config, src string) { cfg.WorkDir = src },
			reason: "contains the source tree",
		},
		{
			name:   "work dir is the parent of the source root",
			setup:  func(cfg *config.Config, src string) { cfg.WorkDir = filepath.Dir(src) },
			reason: "contains the source tree",
		},
		{
			name:   "work dir is the current directory",
			setup:  func(cfg *config.Config, src string) { cfg.WorkDir = "." },
			reason: "contains the current directory",
		},
		{
			name:   "report inside the work dir",
			setup:  func(cfg *config.Config, src string) { cfg.Output = filepath.Join(cfg.WorkDir, "commands.list") },
			reason: "contains the report output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newSource(t)
			cfg := testConfig(t)
			tt.setup(cfg, src)

			summary, err := Run(context.Background(), cfg, src, nil, nil)
			assert.Nil(t, summary)

			var pathErr *workspace.PathError
			require.True(t, errors.As(err, &pathErr), "expected *workspace.PathError, got %v", err)
			assert.Equal(t, tt.reason, pathErr.Reason)

			assert.FileExists(t, filepath.Join(src, "keep.txt"))
			assert.FileExists(t, filepath.Join(src, "common", "types.xml"))
			assert.NoFileExists(t, cfg.Output)
		})
	}
}

func TestRunKeepsForeignFilesInWorkDir(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"common/types.xml": `<CLISH_MODULE><PTYPE name="ifrange" pattern="[1-2]/[0-9]+"/></CLISH_MODULE>`,
	})
	cfg := testConfig(t)
	writeTree(t, cfg.WorkDir, map[string]string{"notes.txt": "not scratch"})

	_, err := Run(context.Background(), cfg, src, nil, nil)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(cfg.WorkDir, "notes.txt"))
	assert.NoDirExists(t, filepath.Join(cfg.WorkDir, config.TypesDirName))
	assert.NoDirExists(t, filepath.Join(cfg.WorkDir, config.CommandsDirName))
}
