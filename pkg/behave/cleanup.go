package behave

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// CleanupOrphans deletes task sidecars at the output root that have no
// TSV anywhere under the root. It works purely from filenames on disk,
// so it can run independently of the writers and is idempotent.
// Returns the number of sidecars removed.
func CleanupOrphans(outputRoot string) (int, error) {
	sidecars, err := filepath.Glob(filepath.Join(outputRoot, "task-*_beh.json"))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, sidecar := range sidecars {
		base := filepath.Base(sidecar)
		taskName := strings.TrimSuffix(strings.TrimPrefix(base, "task-"), "_beh.json")

		pattern := filepath.Join(outputRoot, "**", "*task-"+taskName+"_beh.tsv")
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return removed, err
		}
		if len(matches) > 0 {
			log.Debug("keeping task sidecar", "task", taskName, "tsv_files", len(matches))
			continue
		}
		log.Info("removing sidecar without data files", "file", sidecar)
		if err := os.Remove(sidecar); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
