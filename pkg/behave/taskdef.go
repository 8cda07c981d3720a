package behave

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/mrlab-graz/behave-go/pkg/behave/models"
	"github.com/mrlab-graz/behave-go/pkg/behave/sheet"
)

// Column names of the task definition item sheet. Lookups are
// case-insensitive.
const (
	colItemName         = "itemname"
	colItemDescription  = "itemdescription"
	colLikertScale      = "likert_scale"
	colLevels           = "levels"
	colLevelDescription = "leveldescription"
	colKeyName          = "key name"
	colDescriptionMeta  = "description"
)

const noDescription = "No description available"

// TaskDefinition is one parsed task spreadsheet: the sidecar document
// plus the normalized item list the session extractor matches against.
type TaskDefinition struct {
	Name     string
	Sidecar  *models.Document
	Items    []string
	Warnings int
}

// LoadTaskDefinition parses a three-sheet task spreadsheet. Sheet 1
// holds the items, sheet 2 the task metadata, sheet 3 the auxiliary
// (non-ordinal) metadata. Fewer than cfg.MinTaskSheets sheets is a
// StructureError.
func LoadTaskDefinition(path string, cfg Config) (*TaskDefinition, error) {
	name, err := TaskNameFromFile(path)
	if err != nil {
		return nil, NewStructureError(path, "", err.Error())
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewDataError(path, "", "", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) < cfg.MinTaskSheets {
		return nil, NewStructureError(path, "",
			fmt.Sprintf("task definition needs at least %d sheets, found %d", cfg.MinTaskSheets, len(sheets)))
	}

	def := &TaskDefinition{Name: name, Sidecar: models.NewDocument()}

	items, err := sheet.Load(f, path, sheets[0], sheet.TrimHeader)
	if err != nil {
		return nil, NewDataError(path, sheets[0], "", err)
	}
	if !hasColumnFold(items, colItemName) {
		return nil, NewStructureError(path, sheets[0], "missing required column "+colItemName)
	}
	def.parseItems(items, cfg.Anonymize)

	for _, meta := range sheets[1:3] {
		tbl, err := sheet.Load(f, path, meta, sheet.LowerHeader)
		if err != nil {
			return nil, NewDataError(path, meta, "", err)
		}
		def.mergeMetadata(tbl)
	}

	return def, nil
}

// parseItems walks the item sheet. Row indices are 1-based for
// anonymized placeholders, counting data rows in source order.
func (d *TaskDefinition) parseItems(tbl *sheet.Table, anonymize bool) {
	nameCol := columnFold(tbl, colItemName)
	descCol := columnFold(tbl, colItemDescription)
	likertCol := columnFold(tbl, colLikertScale)

	rowNum := 0
	for i := 0; i < tbl.NumRows(); i++ {
		row := tbl.Row(i)
		rawName, state := row.Lookup(nameCol)
		if state != sheet.Present {
			continue
		}
		// A sheet exported without a real header offset repeats the
		// header token as the first data row.
		if strings.HasPrefix(strings.ToLower(rawName), colItemName) {
			continue
		}
		rowNum++

		entry := models.ItemEntry{Description: itemDescription(row, descCol, rowNum, anonymize)}

		levelCount := int64(0)
		if v, st := row.Lookup(likertCol); st == sheet.Present {
			if n, ok := sheet.ParseInt(v); ok {
				levelCount = n
			}
		}

		if levelCount > 0 {
			entry.Levels = parseLevels(tbl, row, levelCount)
		} else if unit, st := row.Lookup(columnFold(tbl, colLevelDescription)); st == sheet.Present {
			entry.Units = unit
		}

		key := SidecarKey(rawName)
		if d.Sidecar.Has(key) {
			log.Warn("duplicate sidecar key, keeping later item",
				"file", tbl.File, "task", d.Name, "item", rawName, "key", key)
			d.Warnings++
		}
		d.Sidecar.Set(key, entry)

		if !strings.Contains(strings.ToLower(rawName), "example") {
			d.Items = append(d.Items, NormalizeItemName(rawName))
		}
	}
}

func itemDescription(row sheet.Row, descCol string, rowNum int, anonymize bool) string {
	if anonymize {
		return fmt.Sprintf("Question %d", rowNum)
	}
	if v, st := row.Lookup(descCol); st == sheet.Present {
		return v
	}
	return noDescription
}

// parseLevels reads the paired levels/leveldescription columns. The
// unsuffixed names serve level 0; later levels use a ".i" suffix. A
// level is kept only when its value parses as an integer and its
// description is non-blank.
func parseLevels(tbl *sheet.Table, row sheet.Row, count int64) *models.Levels {
	levels := models.NewLevels()
	for i := int64(0); i < count; i++ {
		levelCol := colLevels
		descCol := colLevelDescription
		if i > 0 {
			levelCol = fmt.Sprintf("%s.%d", colLevels, i)
			descCol = fmt.Sprintf("%s.%d", colLevelDescription, i)
		}
		value, vState := row.Lookup(columnFold(tbl, levelCol))
		desc, dState := row.Lookup(columnFold(tbl, descCol))
		if vState != sheet.Present || dState != sheet.Present {
			continue
		}
		n, ok := sheet.ParseInt(value)
		if !ok {
			continue
		}
		levels.Set(strconv.FormatInt(n, 10), desc)
	}
	if levels.Len() == 0 {
		return nil
	}
	return levels
}

// mergeMetadata folds a key/value metadata sheet into the sidecar.
// Later sheets win on key collision; rows missing key or value are
// skipped.
func (d *TaskDefinition) mergeMetadata(tbl *sheet.Table) {
	for i := 0; i < tbl.NumRows(); i++ {
		row := tbl.Row(i)
		key, kState := row.Lookup(colKeyName)
		value, vState := row.Lookup(colDescriptionMeta)
		if kState != sheet.Present || vState != sheet.Present {
			continue
		}
		d.Sidecar.Set(key, value)
	}
}

// columnFold resolves a column name against the table's headers
// case-insensitively, returning the header's actual spelling.
func columnFold(tbl *sheet.Table, name string) string {
	for _, col := range tbl.Columns {
		if strings.EqualFold(col, name) {
			return col
		}
	}
	return name
}

func hasColumnFold(tbl *sheet.Table, name string) bool {
	for _, col := range tbl.Columns {
		if strings.EqualFold(col, name) {
			return true
		}
	}
	return false
}
