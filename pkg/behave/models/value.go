package models

import "strconv"

// ValueKind discriminates the typed cell representations.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindString
)

// Value is one typed cell of the participant table. Null cells render
// as the BIDS "n/a" token in TSV output.
type Value struct {
	Kind ValueKind
	Int  int64
	Flt  float64
	Str  string
}

// Null is the "not available" cell.
var Null = Value{Kind: KindNull}

// IntValue creates an integer cell.
func IntValue(v int64) Value { return Value{Kind: KindInt, Int: v} }

// FloatValue creates a floating-point cell.
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Flt: v} }

// StringValue creates a string cell.
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }

// TSV renders the cell for tab-separated output.
func (v Value) TSV() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case KindString:
		return v.Str
	default:
		return "n/a"
	}
}
