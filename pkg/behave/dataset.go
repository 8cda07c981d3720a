package behave

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/mrlab-graz/behave-go/pkg/behave/models"
)

// loadDatasetDescription reads sheet 2 of the variable dictionary as a
// two-column key/value table (no header row) and applies the BIDS
// field rules. An unreadable or malformed sheet degrades to a minimal
// description with a warning rather than failing the run.
func loadDatasetDescription(f *excelize.File, path, studyName string, cfg Config, res *ParticipantsResult) *models.Document {
	sheets := f.GetSheetList()
	if len(sheets) < 2 {
		log.Warn("variable dictionary has no dataset description sheet, writing minimal description",
			"file", path)
		res.Warnings++
		return validateDatasetDescription(models.NewDocument(), studyName, cfg, res)
	}

	rows, err := f.GetRows(sheets[1])
	if err != nil {
		log.Warn("could not read dataset description sheet, writing minimal description",
			"file", path, "sheet", sheets[1], "error", err)
		res.Warnings++
		return validateDatasetDescription(models.NewDocument(), studyName, cfg, res)
	}

	doc := models.NewDocument()
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := strings.TrimSpace(row[0])
		value := strings.TrimSpace(row[1])
		if key == "" || value == "" {
			continue
		}
		setDatasetField(doc, key, value)
	}
	if doc.Len() == 0 {
		log.Warn("dataset description sheet holds no key/value rows, writing minimal description",
			"file", path, "sheet", sheets[1])
		res.Warnings++
	}
	return validateDatasetDescription(doc, studyName, cfg, res)
}

// setDatasetField stores one dataset description entry, canonicalizing
// the array-valued BIDS fields and the common License misspelling.
func setDatasetField(doc *models.Document, key, value string) {
	switch strings.ToLower(key) {
	case "authors":
		doc.Set("Authors", splitArrayField(value))
	case "referencesandlinks", "referencesandlink":
		doc.Set("ReferencesAndLinks", splitArrayField(value))
	case "funding", "fundingsources":
		doc.Set("Funding", splitArrayField(value))
	case "license", "licence":
		doc.Set("License", value)
	default:
		doc.Set(key, value)
	}
}

// splitArrayField splits on semicolons when any are present, otherwise
// on commas, dropping empty segments.
func splitArrayField(s string) []string {
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	var items []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if items == nil {
		items = []string{}
	}
	return items
}

// validateDatasetDescription enforces the mandatory BIDS fields: a
// Name, a strict-semver BIDSVersion and a DatasetType of raw or
// derivative. Invalid values are replaced with defaults, with a
// warning each.
func validateDatasetDescription(doc *models.Document, studyName string, cfg Config, res *ParticipantsResult) *models.Document {
	if name, ok := doc.Get("Name"); !ok || name == "" {
		fallback := studyName
		if fallback == "" {
			fallback = "Unnamed Dataset"
		}
		log.Warn("dataset description missing Name, using default", "name", fallback)
		res.Warnings++
		doc.Set("Name", fallback)
	}

	if v, ok := doc.Get("BIDSVersion"); !ok || !validSemver(v) {
		log.Warn("dataset description has no valid BIDSVersion, using default",
			"version", cfg.BIDSVersion)
		res.Warnings++
		doc.Set("BIDSVersion", cfg.BIDSVersion)
	}

	datasetType, _ := doc.Get("DatasetType")
	if s, _ := datasetType.(string); s != "raw" && s != "derivative" {
		log.Warn("dataset description has no valid DatasetType, using raw")
		res.Warnings++
		doc.Set("DatasetType", "raw")
	}
	return doc
}

func validSemver(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := semver.StrictNewVersion(s)
	return err == nil
}
