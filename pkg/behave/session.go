package behave

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/mrlab-graz/behave-go/pkg/behave/sheet"
)

// ExtractResult reports what one (session file, task) pair produced.
// A pair with no matching columns is a skip, not an error.
type ExtractResult struct {
	SessionFile  string
	Task         string
	Skipped      bool
	SkipReason   string
	FilesWritten int
	Warnings     int
	// NaNCounts maps each relevant column to its blank-cell count.
	NaNCounts map[string]int
}

// ExtractTask projects one wide per-subject session spreadsheet onto
// one task's declared item set and writes one TSV per subject/session
// under outDir. taskItems must already be normalized item names.
//
// Missing id/ses columns are a StructureError for this file only; an
// empty column intersection yields a skip result.
func ExtractTask(sessionPath, taskName string, taskItems []string, outDir string, cfg Config) (*ExtractResult, error) {
	res := &ExtractResult{SessionFile: sessionPath, Task: taskName}

	f, err := excelize.OpenFile(sessionPath)
	if err != nil {
		return nil, NewDataError(sessionPath, "", "", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewStructureError(sessionPath, "", "session file has no sheets")
	}
	tbl, err := sheet.Load(f, sessionPath, sheets[0], func(h string) string {
		return NormalizeItemName(strings.TrimSpace(h))
	})
	if err != nil {
		return nil, NewDataError(sessionPath, sheets[0], "", err)
	}

	idCol, sesCol, err := identifierColumns(tbl, sessionPath)
	if err != nil {
		return nil, err
	}

	matched := matchTaskColumns(tbl.Columns, taskName, idCol, sesCol)
	relevant, missing, extra := reconcile(matched, taskItems)

	if len(extra) > 0 {
		log.Debug("columns matched task but are not declared items",
			"file", sessionPath, "task", taskName, "columns", extra)
	}
	if len(relevant) == 0 {
		res.Skipped = true
		res.SkipReason = "no declared item matched any column"
		log.Info("no relevant data for task, skipping file",
			"file", sessionPath, "task", taskName)
		return res, nil
	}

	res.NaNCounts = countBlankCells(tbl, relevant)
	for _, col := range relevant {
		if n := res.NaNCounts[col]; n > 0 {
			log.Info("column holds missing values",
				"file", sessionPath, "task", taskName, "column", col, "count", n)
		}
	}

	for i := 0; i < tbl.NumRows(); i++ {
		row := tbl.Row(i)
		subject := NormalizeSubjectID(row.Get(idCol))
		session := NormalizeSessionID(row.Get(sesCol))

		if len(missing) > 0 {
			log.Warn("declared task items absent from session columns",
				"file", sessionPath, "task", taskName, "subject", subject, "items", missing)
			res.Warnings++
		}

		if err := writeResponseRow(row, relevant, subject, session, taskName, outDir, cfg); err != nil {
			return nil, err
		}
		res.FilesWritten++
	}
	return res, nil
}

// identifierColumns locates the columns that normalize to id and ses,
// case-insensitively. Both are mandatory.
func identifierColumns(tbl *sheet.Table, path string) (string, string, error) {
	var idCol, sesCol string
	for _, col := range tbl.Columns {
		switch strings.ToLower(col) {
		case "id":
			if idCol == "" {
				idCol = col
			}
		case "ses":
			if sesCol == "" {
				sesCol = col
			}
		}
	}
	var missing []string
	if idCol == "" {
		missing = append(missing, "id")
	}
	if sesCol == "" {
		missing = append(missing, "ses")
	}
	if len(missing) > 0 {
		return "", "", NewStructureError(path, "",
			"session file is missing required columns: "+strings.Join(missing, ", "))
	}
	return idCol, sesCol, nil
}

// matchTaskColumns selects columns belonging to the task. A column
// matches when its uppercased name starts with the uppercased task
// name and the remainder does not continue with a letter, so task "AD"
// claims AD1 but not ADS1.
func matchTaskColumns(columns []string, taskName, idCol, sesCol string) []string {
	task := strings.ToUpper(taskName)
	var matched []string
	for _, col := range columns {
		if col == idCol || col == sesCol {
			continue
		}
		upper := strings.ToUpper(col)
		if !strings.HasPrefix(upper, task) {
			continue
		}
		rest := upper[len(task):]
		if rest == "" || !unicode.IsLetter(rune(rest[0])) {
			matched = append(matched, col)
		}
	}
	return matched
}

// reconcile intersects the matched columns with the declared item set,
// reporting declared items with no column and columns with no
// declaration.
func reconcile(matched, taskItems []string) (relevant, missing, extra []string) {
	itemSet := make(map[string]bool, len(taskItems))
	for _, item := range taskItems {
		itemSet[item] = true
	}
	matchedSet := make(map[string]bool, len(matched))
	for _, col := range matched {
		matchedSet[col] = true
		if itemSet[col] {
			relevant = append(relevant, col)
		} else {
			extra = append(extra, col)
		}
	}
	for _, item := range taskItems {
		if !matchedSet[item] {
			missing = append(missing, item)
		}
	}
	return relevant, missing, extra
}

// countBlankCells tallies blank cells per relevant column. Columns
// without blanks have no entry.
func countBlankCells(tbl *sheet.Table, relevant []string) map[string]int {
	counts := make(map[string]int, len(relevant))
	for _, col := range relevant {
		for i := 0; i < tbl.NumRows(); i++ {
			if _, state := tbl.Row(i).Lookup(col); state != sheet.Present {
				counts[col]++
			}
		}
	}
	return counts
}

// writeResponseRow writes one subject/session response as a single-row
// TSV at the BIDS path
// <sub>/ses-<ses>/beh/<sub>_ses-<ses>_task-<task>_beh.tsv.
// Identifier columns are not part of the payload.
func writeResponseRow(row sheet.Row, relevant []string, subject, session, taskName, outDir string, cfg Config) error {
	dir := filepath.Join(outDir, subject, "ses-"+session, "beh")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_ses-%s_task-%s_beh.tsv", subject, session, strings.ToLower(taskName))
	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	w.Comma = '\t'
	if err := w.Write(relevant); err != nil {
		return err
	}
	record := make([]string, len(relevant))
	for i, col := range relevant {
		record[i] = renderResponse(row.Get(col), cfg)
	}
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// renderResponse converts whole-valued floats to integers and
// sanitizes free text. Blank cells become the missing-value token.
func renderResponse(raw string, cfg Config) string {
	if raw == "" {
		return cfg.MissingValueToken
	}
	if f, ok := sheet.ParseFloat(raw); ok {
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return raw
	}
	return SanitizeText(raw)
}
