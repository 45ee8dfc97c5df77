// Package pipeline runs one report generation: validate the source tree, stage
// it into a scratch workspace, select qualifying ptypes, search the command
// files and write the report. The workspace is removed on every exit path.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/cmdlist/internal/config"
	"github.com/harrison/cmdlist/internal/display"
	"github.com/harrison/cmdlist/internal/logger"
	"github.com/harrison/cmdlist/internal/models"
	"github.com/harrison/cmdlist/internal/ptype"
	"github.com/harrison/cmdlist/internal/report"
	"github.com/harrison/cmdlist/internal/search"
	"github.com/harrison/cmdlist/internal/workspace"
)

// Logger interface for pipeline progress logging
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogStageStart(stage string)
	LogStageComplete(stage string, duration time.Duration)
	LogSummary(summary models.RunSummary)
}

// Stage names as they appear in the log
const (
	StagePrepare = "Preparing working directory"
	StageSelect  = "Selecting ptypes"
	StageSearch  = "Generating commands list"
	StageWrite   = "Writing report"
)

// Run generates the report for the source tree at sourceRoot as configured by
// cfg. Per-file progress and warnings go to out (nil discards them).
//
// The source tree is validated before anything is created on disk. Once the
// workspace is open it is closed on return whatever the outcome; a cleanup
// failure after an otherwise successful run is returned as the error.
// Cancelling ctx aborts the run between files and stages.
func Run(ctx context.Context, cfg *config.Config, sourceRoot string, out io.Writer, log Logger) (summary *models.RunSummary, err error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := workspace.ValidateSourceRoot(sourceRoot); err != nil {
		return nil, err
	}
	if err := workspace.ValidateWorkDir(cfg.WorkDir, sourceRoot, cfg.Output); err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.New().String()
	log.LogDebug(fmt.Sprintf("run %s: source %s, work dir %s", runID, sourceRoot, cfg.WorkDir))

	stageStart := time.Now()
	log.LogStageStart(StagePrepare)
	ws, err := workspace.Open(cfg.Workspace(), sourceRoot, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		cerr := ws.Close()
		if cerr == nil {
			return
		}
		if err != nil {
			log.LogError(fmt.Sprintf("cleanup after failed run: %v", cerr))
			return
		}
		summary, err = nil, cerr
	}()
	log.LogDebug(fmt.Sprintf("workspace %s ready", ws.Root()))
	log.LogStageComplete(StagePrepare, time.Since(stageStart))

	if overwritten := ws.Overwritten(); len(overwritten) > 0 {
		display.Warning{
			Title:      fmt.Sprintf("%d staged file(s) were overwritten by a file with the same name", len(overwritten)),
			Message:    "Only the last copy in walk order is searched.",
			Files:      overwritten,
			Suggestion: "Restrict --boards to the boards that should be scanned.",
		}.Display(out)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stageStart = time.Now()
	log.LogStageStart(StageSelect)
	selected, err := ptype.Select(ws.TypesDir(), cfg.Substring, log)
	if err != nil {
		return nil, err
	}
	log.LogStageComplete(StageSelect, time.Since(stageStart))
	if selected.Names.Len() == 0 {
		log.LogWarn(fmt.Sprintf("no ptype pattern contains %q, the report will be empty", cfg.Substring))
	}

	stageStart = time.Now()
	log.LogStageStart(StageSearch)
	files, err := search.List(ws.CommandsDir())
	if err != nil {
		return nil, err
	}
	progress := display.NewProgressIndicator(out, len(files))
	found, err := search.Dir(ctx, ws.CommandsDir(), selected.Names, progress, log)
	if err != nil {
		return nil, err
	}
	progress.Complete()
	log.LogStageComplete(StageSearch, time.Since(stageStart))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stageStart = time.Now()
	log.LogStageStart(StageWrite)
	text, err := report.Format(found, cfg.Substring, cfg.Format)
	if err != nil {
		return nil, err
	}
	if err := report.Write(text, cfg.Output); err != nil {
		return nil, err
	}
	log.LogInfo(fmt.Sprintf("'%s' file is ready", cfg.Output))
	log.LogStageComplete(StageWrite, time.Since(stageStart))

	summary = &models.RunSummary{
		RunID:           runID,
		TypeFiles:       selected.Files,
		CommandFiles:    progress.Current(),
		QualifyingTypes: selected.Names.Len(),
		MatchedFiles:    len(found.Files),
		Commands:        found.TotalCommands(),
		Output:          cfg.Output,
		Duration:        time.Since(started),
	}
	log.LogSummary(*summary)
	return summary, nil
}

