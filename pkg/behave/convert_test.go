package behave

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// TestConvertEndToEnd drives the whole pipeline: a PHQ9 task with nine
// unit-carrying items, one session file with two subjects, plus an
// unused task whose sidecar must not survive cleanup.
func TestConvertEndToEnd(t *testing.T) {
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	resourcesDir := filepath.Join(base, "resources")
	outDir := filepath.Join(base, "bids")
	require.NoError(t, mkdirs(dataDir, resourcesDir))

	demographicsFixture(t, dataDir)
	variablesFixture(t, dataDir, [][]string{
		{"Name", "Example Study"},
		{"BIDSVersion", "1.8.0"},
		{"DatasetType", "raw"},
	})

	taskFixture(t, resourcesDir, "PHQ9.xlsx", func(f *excelize.File) {
		for i := 1; i <= 9; i++ {
			f.SetCellValue("Sheet1", fmt.Sprintf("A%d", i+1), fmt.Sprintf("PHQ9-%d", i))
			f.SetCellValue("Sheet1", fmt.Sprintf("B%d", i+1), fmt.Sprintf("Item %d", i))
			f.SetCellValue("Sheet1", fmt.Sprintf("E%d", i+1), "score")
		}
	})
	taskFixture(t, resourcesDir, "UNUSED.xlsx", func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A2", "unused-1")
		f.SetCellValue("Sheet1", "B2", "never answered")
	})

	rows := [][]any{
		{"42", 1, 1, 2, 3, 0, 1, 2, 3, 0, 1},
		{"43", 1, 3, 2, 1, 0, 3, 2, 1, 0, 3},
	}
	sessionFixture(t, dataDir, "session1.xlsx", phq9Headers(), rows)

	cfg := DefaultConfig()
	cfg.SkipValidation = true
	summary, err := Convert(context.Background(), dataDir, resourcesDir, outDir, "Example Study", cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TasksConverted)
	assert.Zero(t, summary.TasksFailed)
	assert.Equal(t, 1, summary.SessionFiles)
	assert.Equal(t, 3, summary.Participants)
	assert.Equal(t, 2, summary.TSVFiles)
	assert.Equal(t, 1, summary.SidecarsRemoved)
	assert.Equal(t, ValidationSkipped, summary.Validation)

	assert.FileExists(t, filepath.Join(outDir, "participants.tsv"))
	assert.FileExists(t, filepath.Join(outDir, "participants.json"))
	assert.FileExists(t, filepath.Join(outDir, "dataset_description.json"))
	assert.FileExists(t, filepath.Join(outDir, "task-phq9_beh.json"))
	assert.NoFileExists(t, filepath.Join(outDir, "task-unused_beh.json"))

	for _, sub := range []string{"sub-042", "sub-043"} {
		tsv := readTSV(t, filepath.Join(outDir, sub, "ses-01", "beh", sub+"_ses-01_task-phq9_beh.tsv"))
		require.Len(t, tsv, 2)
		assert.Len(t, tsv[0], 9)
	}
}

func TestConvertFailsOnMissingFolders(t *testing.T) {
	base := t.TempDir()
	_, err := Convert(context.Background(), filepath.Join(base, "nope"), base, filepath.Join(base, "out"), "s", DefaultConfig())
	assert.Error(t, err)
}

func TestConvertIsolatesBrokenTask(t *testing.T) {
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	resourcesDir := filepath.Join(base, "resources")
	outDir := filepath.Join(base, "bids")
	require.NoError(t, mkdirs(dataDir, resourcesDir))

	demographicsFixture(t, dataDir)
	variablesFixture(t, dataDir, [][]string{{"Name", "S"}, {"BIDSVersion", "1.8.0"}, {"DatasetType", "raw"}})
	sessionFixture(t, dataDir, "session1.xlsx",
		[]string{"id", "ses", "ADS-1"}, [][]any{{"42", 1, 2}})

	// One good task, one with too few sheets.
	taskFixture(t, resourcesDir, "ADS.xlsx", func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A2", "ads-1")
		f.SetCellValue("Sheet1", "B2", "item")
	})
	broken := excelize.NewFile()
	require.NoError(t, broken.SetCellValue("Sheet1", "A1", "itemname"))
	require.NoError(t, broken.SaveAs(filepath.Join(resourcesDir, "BROKEN.xlsx")))
	require.NoError(t, broken.Close())

	cfg := DefaultConfig()
	cfg.SkipValidation = true
	summary, err := Convert(context.Background(), dataDir, resourcesDir, outDir, "s", cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TasksConverted)
	assert.Equal(t, 1, summary.TasksFailed)
	assert.Equal(t, 1, summary.TSVFiles)
}

func TestConvertFailsWhenNoTaskConverts(t *testing.T) {
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	resourcesDir := filepath.Join(base, "resources")
	require.NoError(t, mkdirs(dataDir, resourcesDir))

	demographicsFixture(t, dataDir)
	variablesFixture(t, dataDir, [][]string{{"Name", "S"}, {"BIDSVersion", "1.8.0"}, {"DatasetType", "raw"}})
	sessionFixture(t, dataDir, "session1.xlsx",
		[]string{"id", "ses", "ADS-1"}, [][]any{{"42", 1, 2}})

	broken := excelize.NewFile()
	require.NoError(t, broken.SetCellValue("Sheet1", "A1", "itemname"))
	require.NoError(t, broken.SaveAs(filepath.Join(resourcesDir, "BROKEN.xlsx")))
	require.NoError(t, broken.Close())

	cfg := DefaultConfig()
	cfg.SkipValidation = true
	_, err := Convert(context.Background(), dataDir, resourcesDir, filepath.Join(base, "bids"), "s", cfg)
	assert.Error(t, err)
}

func mkdirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}
