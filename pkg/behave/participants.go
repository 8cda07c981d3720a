package behave

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/mrlab-graz/behave-go/pkg/behave/models"
	"github.com/mrlab-graz/behave-go/pkg/behave/sheet"
)

// Variable dictionary column names (sheet loaded with lowercased
// headers).
const (
	colVariableName = "variablename"
	colDataType     = "datatype"
	colVarDesc      = "description"
	colVarLevels    = "levels"
)

const idVariable = "id"

// Output file names at the BIDS root.
const (
	ParticipantsTSV        = "participants.tsv"
	ParticipantsJSON       = "participants.json"
	DatasetDescriptionJSON = "dataset_description.json"
)

// ParticipantsResult reports what the demographics conversion
// produced.
type ParticipantsResult struct {
	Records  int
	Warnings int
}

// BuildParticipants converts the demographics sheet plus the variable
// dictionary into participants.tsv, participants.json and
// dataset_description.json under outDir. The dictionary's variable
// list is authoritative: demographics columns it does not name are
// dropped, and variables it names that the demographics lack are
// back-filled with the missing-value token.
func BuildParticipants(demoPath, varsPath, outDir, studyName string, cfg Config) (*ParticipantsResult, error) {
	res := &ParticipantsResult{}

	demoFile, err := excelize.OpenFile(demoPath)
	if err != nil {
		return nil, NewDataError(demoPath, "", "", err)
	}
	defer demoFile.Close()

	demoSheets := demoFile.GetSheetList()
	if len(demoSheets) == 0 {
		return nil, NewStructureError(demoPath, "", "demographics file has no sheets")
	}
	demo, err := sheet.Load(demoFile, demoPath, demoSheets[0], sheet.LowerHeader)
	if err != nil {
		return nil, NewDataError(demoPath, demoSheets[0], "", err)
	}

	varsFile, err := excelize.OpenFile(varsPath)
	if err != nil {
		return nil, NewDataError(varsPath, "", "", err)
	}
	defer varsFile.Close()

	vars, err := loadVariables(varsFile, varsPath)
	if err != nil {
		return nil, err
	}

	ids, columns := projectParticipants(demo, vars, cfg, res)

	if err := writeParticipantsTSV(filepath.Join(outDir, ParticipantsTSV), ids, vars, columns, cfg); err != nil {
		return nil, err
	}
	if err := WriteJSON(filepath.Join(outDir, ParticipantsJSON), participantsSidecar(vars)); err != nil {
		return nil, err
	}

	desc := loadDatasetDescription(varsFile, varsPath, studyName, cfg, res)
	if err := WriteJSON(filepath.Join(outDir, DatasetDescriptionJSON), desc); err != nil {
		return nil, err
	}

	res.Records = len(ids)
	return res, nil
}

// loadVariables reads sheet 1 of the dictionary into variable
// definitions. Variable names are lowercased; levels strings are
// parsed for categorical types.
func loadVariables(f *excelize.File, path string) ([]models.VariableDefinition, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewStructureError(path, "", "variable dictionary has no sheets")
	}
	tbl, err := sheet.Load(f, path, sheets[0], sheet.LowerHeader)
	if err != nil {
		return nil, NewDataError(path, sheets[0], "", err)
	}
	for _, required := range []string{colVariableName, colDataType} {
		if !tbl.HasColumn(required) {
			return nil, NewStructureError(path, sheets[0], "missing required column "+required)
		}
	}

	var vars []models.VariableDefinition
	for i := 0; i < tbl.NumRows(); i++ {
		row := tbl.Row(i)
		name, state := row.Lookup(colVariableName)
		if state != sheet.Present {
			continue
		}
		def := models.VariableDefinition{
			Name:        strings.ToLower(name),
			DataType:    models.ParseDataType(row.Get(colDataType)),
			Description: row.Get(colVarDesc),
		}
		if def.DataType.Categorical() {
			if levelsStr, st := row.Lookup(colVarLevels); st == sheet.Present {
				def.Levels = parseLevelsString(levelsStr)
			}
		}
		vars = append(vars, def)
	}
	return vars, nil
}

// parseLevelsString parses a ";"-delimited list of "key:value" pairs.
// Malformed segments are dropped.
func parseLevelsString(s string) *models.Levels {
	levels := models.NewLevels()
	for _, pair := range strings.Split(s, ";") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if key == "" || val == "" {
			continue
		}
		levels.Set(key, val)
	}
	if levels.Len() == 0 {
		return nil
	}
	return levels
}

// projectParticipants selects exactly the dictionary's variables from
// the demographics table, normalizes the identifier column and types
// each remaining column per its declared data type.
func projectParticipants(demo *sheet.Table, vars []models.VariableDefinition, cfg Config, res *ParticipantsResult) ([]string, map[string][]models.Value) {
	ids := make([]string, demo.NumRows())
	seen := make(map[string]bool)
	for i := range ids {
		id := NormalizeParticipantID(demo.Row(i).Get(idVariable))
		if seen[id] {
			log.Warn("duplicate participant id", "file", demo.File, "participant", id)
			res.Warnings++
		}
		seen[id] = true
		ids[i] = id
	}

	columns := make(map[string][]models.Value, len(vars))
	for _, def := range vars {
		if def.Name == idVariable {
			continue
		}
		if !demo.HasColumn(def.Name) {
			log.Warn("variable missing from demographics, filling with missing-value token",
				"file", demo.File, "variable", def.Name)
			res.Warnings++
			columns[def.Name] = make([]models.Value, demo.NumRows())
			continue
		}
		columns[def.Name] = typeColumn(demo, def, cfg)
	}
	return ids, columns
}

// typeColumn coerces one demographics column. Coercion failures become
// null cells, never errors; the configured numeric sentinel is nulled
// after typing.
func typeColumn(demo *sheet.Table, def models.VariableDefinition, cfg Config) []models.Value {
	raw := make([]string, demo.NumRows())
	for i := range raw {
		raw[i], _ = demo.Row(i).Lookup(def.Name)
	}

	values := make([]models.Value, len(raw))
	switch def.DataType {
	case models.TypeInteger:
		for i, s := range raw {
			if n, ok := sheet.ParseInt(s); ok {
				values[i] = models.IntValue(n)
			}
		}
	case models.TypeFloat:
		for i, s := range raw {
			if f, ok := sheet.ParseFloat(s); ok {
				values[i] = models.FloatValue(f)
			}
		}
	case models.TypeCatNum:
		if wholeNumbered(raw) {
			for i, s := range raw {
				if n, ok := sheet.ParseInt(s); ok {
					values[i] = models.IntValue(n)
				}
			}
		} else {
			stringColumn(raw, values)
		}
	default:
		stringColumn(raw, values)
	}

	sentinel := strconv.FormatInt(cfg.MissingValueCode, 10)
	for i := range values {
		if isSentinel(values[i], cfg.MissingValueCode, sentinel) {
			values[i] = models.Null
		}
	}
	return values
}

// wholeNumbered reports whether every non-blank cell parses as a whole
// number. Blank cells do not disqualify the column.
func wholeNumbered(raw []string) bool {
	any := false
	for _, s := range raw {
		if s == "" {
			continue
		}
		if _, ok := sheet.ParseInt(s); !ok {
			return false
		}
		any = true
	}
	return any
}

func stringColumn(raw []string, values []models.Value) {
	for i, s := range raw {
		if s != "" {
			values[i] = models.StringValue(s)
		}
	}
}

func isSentinel(v models.Value, code int64, codeStr string) bool {
	switch v.Kind {
	case models.KindInt:
		return v.Int == code
	case models.KindFloat:
		return v.Flt == float64(code)
	case models.KindString:
		return v.Str == codeStr
	default:
		return false
	}
}

// writeParticipantsTSV renders the participant registry with
// participant_id as the first column and null cells as the
// missing-value token.
func writeParticipantsTSV(path string, ids []string, vars []models.VariableDefinition, columns map[string][]models.Value, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	header := []string{"participant_id"}
	for _, def := range vars {
		if def.Name != idVariable {
			header = append(header, def.Name)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, id := range ids {
		record := []string{id}
		for _, def := range vars {
			if def.Name == idVariable {
				continue
			}
			record = append(record, renderCell(columns[def.Name][i], cfg))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func renderCell(v models.Value, cfg Config) string {
	if v.Kind == models.KindNull {
		return cfg.MissingValueToken
	}
	s := SanitizeText(v.TSV())
	switch strings.ToLower(s) {
	case "", "nan", "none", "null":
		return cfg.MissingValueToken
	}
	return s
}

// participantsSidecar builds participants.json: one entry per variable
// except the identifier, plus fixed participant_id metadata.
func participantsSidecar(vars []models.VariableDefinition) *models.Document {
	doc := models.NewDocument()
	for _, def := range vars {
		if def.Name == idVariable {
			continue
		}
		entry := models.NewDocument()
		entry.Set("Description", def.Description)
		if def.Levels != nil {
			entry.Set("Levels", def.Levels)
		}
		doc.Set(def.Name, entry)
	}
	idEntry := models.NewDocument()
	idEntry.Set("Description", "Unique participant identifier")
	idEntry.Set("LongName", "Participant ID")
	doc.Set("participant_id", idEntry)
	return doc
}
