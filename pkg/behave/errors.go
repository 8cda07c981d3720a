package behave

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates an input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// StructureError indicates an input file cannot be processed at all:
// wrong sheet count, or a mandatory column is missing. It is fatal for
// the file or task being processed, never for the whole run.
type StructureError struct {
	File   string
	Sheet  string
	Reason string
}

func (e *StructureError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("invalid structure in %s (sheet %q): %s", e.File, e.Sheet, e.Reason)
	}
	return fmt.Sprintf("invalid structure in %s: %s", e.File, e.Reason)
}

// NewStructureError creates a StructureError for a file, optionally
// naming the offending sheet.
func NewStructureError(file, sheet, reason string) *StructureError {
	return &StructureError{File: file, Sheet: sheet, Reason: reason}
}

// DataError indicates a file or cell could not be read or parsed. Like
// StructureError it is fatal only for the file being processed.
type DataError struct {
	File  string
	Sheet string
	Cell  string
	Err   error
}

func (e *DataError) Error() string {
	switch {
	case e.Cell != "":
		return fmt.Sprintf("data error in %s (sheet %q, cell %s): %v", e.File, e.Sheet, e.Cell, e.Err)
	case e.Sheet != "":
		return fmt.Sprintf("data error in %s (sheet %q): %v", e.File, e.Sheet, e.Err)
	default:
		return fmt.Sprintf("data error in %s: %v", e.File, e.Err)
	}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a DataError wrapping the underlying read or
// parse failure.
func NewDataError(file, sheet, cell string, err error) *DataError {
	return &DataError{File: file, Sheet: sheet, Cell: cell, Err: err}
}
