package behave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeItemName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ads-01", "ADS01"},
		{"ADS_2", "ADS2"},
		{"Ads 3", "ADS3"},
		{"phq1", "PHQ1"},
		{"trial_type", "trial_type"},
		{"id", "id"},
		{"ses", "ses"},
		{"123", "123"},
		{"", ""},
		{"PHQ9-1", "PHQ9-1"}, // digit inside the prefix, no trailing digit group at a letter boundary
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeItemName(tt.input), "input %q", tt.input)
	}
}

func TestSidecarKey(t *testing.T) {
	assert.Equal(t, "ADS01", SidecarKey("ADS-01"))
	assert.Equal(t, "trialtype", SidecarKey("trial_type"))
	assert.Equal(t, "PHQ91", SidecarKey("PHQ9-1"))
	assert.Equal(t, "plain", SidecarKey("plain"))
}

func TestNormalizeParticipantID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"42", "sub-042"},
		{"7", "sub-007"},
		{"123", "sub-123"},
		{"1234", "sub-1234"},
		{"sub-9", "sub-9"},
		{"", "sub-unknown"},
		{"   ", "sub-unknown"},
		{"patient-a", "sub-unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeParticipantID(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeSubjectID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"42", "sub-042"},
		{"sub-042", "sub-042"},
		{"sub-sub-042", "sub-042"},
		{"sub----9", "sub-9"},
		{"pilot3", "sub-pilot3"},
		{"", "sub-unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeSubjectID(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeSessionID(t *testing.T) {
	assert.Equal(t, "01", NormalizeSessionID("1"))
	assert.Equal(t, "02", NormalizeSessionID("2"))
	assert.Equal(t, "12", NormalizeSessionID("12"))
	assert.Equal(t, "01", NormalizeSessionID(""))
	assert.Equal(t, "baseline", NormalizeSessionID("baseline"))
}

func TestTaskNameFromFile(t *testing.T) {
	name, err := TaskNameFromFile("/data/resources/PHQ9.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "PHQ9", name)

	name, err = TaskNameFromFile("ads-k (v2).xlsx")
	require.NoError(t, err)
	assert.Equal(t, "adskv2", name)

	_, err = TaskNameFromFile("---.xlsx")
	assert.Error(t, err)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "one two three", SanitizeText("one\ntwo,\tthree"))
	assert.Equal(t, "spaced out", SanitizeText("  spaced   out \r\n"))
	assert.Equal(t, "", SanitizeText(",,,"))
}
