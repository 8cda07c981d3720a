package sheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixture(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", " Name "))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Score"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "alice"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 10))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "bob"))
	// B3 left blank on purpose

	tmp := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(tmp))
	require.NoError(t, f.Close())

	opened, err := excelize.OpenFile(tmp)
	require.NoError(t, err)
	t.Cleanup(func() { opened.Close() })
	return opened
}

func TestLoadTrimsHeaders(t *testing.T) {
	f := fixture(t)
	tbl, err := Load(f, "fixture.xlsx", "Sheet1", TrimHeader)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Score"}, tbl.Columns)
	assert.Equal(t, 2, tbl.NumRows())
	assert.True(t, tbl.HasColumn("Name"))
	assert.False(t, tbl.HasColumn("name"))
}

func TestLoadLowercasesHeaders(t *testing.T) {
	f := fixture(t)
	tbl, err := Load(f, "fixture.xlsx", "Sheet1", LowerHeader)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score"}, tbl.Columns)
}

func TestRowLookupStates(t *testing.T) {
	f := fixture(t)
	tbl, err := Load(f, "fixture.xlsx", "Sheet1", LowerHeader)
	require.NoError(t, err)

	v, state := tbl.Row(0).Lookup("score")
	assert.Equal(t, Present, state)
	assert.Equal(t, "10", v)

	// Column exists, cell blank (trailing cell omitted by excelize).
	_, state = tbl.Row(1).Lookup("score")
	assert.Equal(t, Blank, state)

	// Column does not exist at all.
	_, state = tbl.Row(0).Lookup("age")
	assert.Equal(t, ColumnAbsent, state)
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"3", 3, true},
		{" 3 ", 3, true},
		{"3.0", 3, true},
		{"-999", -999, true},
		{"3.5", 0, false},
		{"three", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseInt(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		if ok {
			assert.Equal(t, tt.want, got, "input %q", tt.input)
		}
	}
}

func TestParseFloat(t *testing.T) {
	got, ok := ParseFloat("2.5")
	assert.True(t, ok)
	assert.Equal(t, 2.5, got)

	_, ok = ParseFloat("n/a")
	assert.False(t, ok)
}
