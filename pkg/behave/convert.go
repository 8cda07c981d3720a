package behave

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Summary is the end-of-run report.
type Summary struct {
	TasksConverted  int
	TasksFailed     int
	SessionFiles    int
	Participants    int
	TSVFiles        int
	SidecarsRemoved int
	Warnings        int
	Validation      ValidationStatus
}

// Convert runs the full pipeline: demographics, one sidecar per task,
// per-session TSV extraction, orphan cleanup and the external
// validator. Per-file Structure and Data errors are isolated and
// counted; Convert itself fails only on preflight, demographics, an
// empty input set, or when not a single task converts.
func Convert(ctx context.Context, dataDir, resourcesDir, outDir, studyName string, cfg Config) (*Summary, error) {
	if err := CheckFolders(dataDir, resourcesDir); err != nil {
		return nil, err
	}
	if err := CheckOutputDir(outDir); err != nil {
		return nil, err
	}

	summary := &Summary{}

	participants, err := BuildParticipants(
		filepath.Join(dataDir, DemographicsFile),
		filepath.Join(dataDir, VariablesFile),
		outDir, studyName, cfg)
	if err != nil {
		return nil, fmt.Errorf("building participants files: %w", err)
	}
	summary.Participants = participants.Records
	summary.Warnings += participants.Warnings

	sessionFiles, err := FindSessionFiles(dataDir)
	if err != nil {
		return nil, err
	}
	if len(sessionFiles) == 0 {
		return nil, fmt.Errorf("no session files found in %s", dataDir)
	}
	summary.SessionFiles = len(sessionFiles)

	taskFiles, err := FindTaskFiles(resourcesDir)
	if err != nil {
		return nil, err
	}
	if len(taskFiles) == 0 {
		return nil, fmt.Errorf("no task definitions found in %s", resourcesDir)
	}

	brokenSessions := make(map[string]bool)
	for _, taskFile := range taskFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if convertTask(taskFile, sessionFiles, outDir, cfg, summary, brokenSessions) {
			summary.TasksConverted++
		} else {
			summary.TasksFailed++
		}
	}

	if summary.TasksConverted == 0 {
		return nil, fmt.Errorf("no task could be converted (%d failed)", summary.TasksFailed)
	}

	removed, err := CleanupOrphans(outDir)
	if err != nil {
		return nil, fmt.Errorf("cleaning up orphan sidecars: %w", err)
	}
	summary.SidecarsRemoved = removed

	if cfg.SkipValidation {
		summary.Validation = ValidationSkipped
	} else {
		summary.Validation = ValidateBIDS(ctx, outDir, cfg)
	}

	logSummary(summary)
	return summary, nil
}

// convertTask writes one task's sidecar and extracts it from every
// session file. Returns false when the task definition itself cannot
// be parsed; session-file failures are logged and skipped so one
// malformed spreadsheet does not abort the batch.
func convertTask(taskFile string, sessionFiles []string, outDir string, cfg Config, summary *Summary, brokenSessions map[string]bool) bool {
	def, err := LoadTaskDefinition(taskFile, cfg)
	if err != nil {
		log.Error("cannot parse task definition", "file", taskFile, "error", err)
		return false
	}
	summary.Warnings += def.Warnings

	sidecarPath := filepath.Join(outDir, fmt.Sprintf("task-%s_beh.json", strings.ToLower(def.Name)))
	if err := WriteJSON(sidecarPath, def.Sidecar); err != nil {
		log.Error("cannot write task sidecar", "file", sidecarPath, "error", err)
		return false
	}
	log.Info("wrote task sidecar", "task", def.Name, "file", sidecarPath)

	for _, sessionFile := range sessionFiles {
		if brokenSessions[sessionFile] {
			continue
		}
		res, err := ExtractTask(sessionFile, def.Name, def.Items, outDir, cfg)
		if err != nil {
			log.Error("cannot extract session data",
				"file", sessionFile, "task", def.Name, "error", err)
			brokenSessions[sessionFile] = true
			continue
		}
		summary.TSVFiles += res.FilesWritten
		summary.Warnings += res.Warnings
	}
	return true
}

func logSummary(s *Summary) {
	log.Info("conversion finished",
		"tasks_converted", s.TasksConverted,
		"tasks_failed", s.TasksFailed,
		"session_files", s.SessionFiles,
		"participants", s.Participants,
		"tsv_files", s.TSVFiles,
		"sidecars_removed", s.SidecarsRemoved,
		"warnings", s.Warnings)
}
