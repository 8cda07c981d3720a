package behave

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	itemSuffixRe     = regexp.MustCompile(`^([A-Za-z]+)[\s\-_]?([0-9]+)$`)
	sidecarKeyRe     = regexp.MustCompile(`[-_]`)
	digitsRe         = regexp.MustCompile(`^[0-9]+$`)
	subPrefixRe      = regexp.MustCompile(`^sub-+`)
	taskNameCleanRe  = regexp.MustCompile(`[^a-zA-Z0-9]`)
	textSanitizeRe   = regexp.MustCompile(`[\n\r,\t]`)
	whitespaceRunsRe = regexp.MustCompile(`\s+`)
)

// NormalizeItemName canonicalizes an item or column label. Labels of
// the form <letters><optional separator><digits> (ads-01, ADS_1, Ads 3)
// become <UPPERCASE-LETTERS><DIGITS> with no separator. Anything else
// is returned unchanged: labels without a trailing digit group are
// assumed to already be stable keys.
func NormalizeItemName(label string) string {
	if m := itemSuffixRe.FindStringSubmatch(label); m != nil {
		return strings.ToUpper(m[1]) + m[2]
	}
	return label
}

// SidecarKey derives the sidecar key for an item name by stripping
// hyphens and underscores. Narrower than NormalizeItemName on purpose:
// case and digit placement are preserved.
func SidecarKey(name string) string {
	return sidecarKeyRe.ReplaceAllString(name, "")
}

// NormalizeParticipantID maps a demographics id cell to BIDS sub-<token>
// form. A value already prefixed with "sub-" passes through; an
// all-digit value is zero-padded to three digits and prefixed; anything
// else becomes "sub-unknown".
func NormalizeParticipantID(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return "sub-unknown"
	case strings.HasPrefix(raw, "sub-"):
		return raw
	case digitsRe.MatchString(raw):
		return "sub-" + zeroPad(raw, 3)
	default:
		return "sub-unknown"
	}
}

// NormalizeSubjectID maps a session-file subject cell to sub-<token>
// form. Repeated "sub-" prefixes collapse to one; unprefixed digit
// values are zero-padded to three digits; any other unprefixed value
// just gains the prefix.
func NormalizeSubjectID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "sub-unknown"
	}
	raw = subPrefixRe.ReplaceAllString(raw, "sub-")
	if strings.HasPrefix(raw, "sub-") {
		return raw
	}
	if digitsRe.MatchString(raw) {
		return "sub-" + zeroPad(raw, 3)
	}
	return "sub-" + raw
}

// NormalizeSessionID zero-pads numeric session ids to two digits. A
// blank session defaults to "01"; non-numeric ids pass through.
func NormalizeSessionID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "01"
	}
	if digitsRe.MatchString(raw) {
		return zeroPad(raw, 2)
	}
	return raw
}

// TaskNameFromFile derives a task name from a task definition file
// path: the file stem with every non-alphanumeric character removed.
func TaskNameFromFile(path string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := taskNameCleanRe.ReplaceAllString(stem, "")
	if name == "" {
		return "", fmt.Errorf("task name %q is empty after normalization", stem)
	}
	return name, nil
}

// SanitizeText collapses newlines, carriage returns, commas and tabs
// into single spaces so free-text answers cannot break TSV rows.
func SanitizeText(s string) string {
	s = textSanitizeRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespaceRunsRe.ReplaceAllString(s, " "))
}

func zeroPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}
