package models

import "strings"

// DataType is the declared type of a participant variable.
type DataType string

const (
	TypeInteger   DataType = "integer"
	TypeFloat     DataType = "float"
	TypeCatNum    DataType = "cat_num"
	TypeCatString DataType = "cat_string"
	TypeString    DataType = "string"
)

// ParseDataType maps a dictionary cell to a DataType. Unknown values
// fall back to string typing.
func ParseDataType(s string) DataType {
	switch DataType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeInteger:
		return TypeInteger
	case TypeFloat:
		return TypeFloat
	case TypeCatNum:
		return TypeCatNum
	case TypeCatString:
		return TypeCatString
	default:
		return TypeString
	}
}

// Categorical reports whether the type may carry a Levels mapping.
func (t DataType) Categorical() bool {
	return t == TypeCatNum || t == TypeCatString
}

// VariableDefinition is one row of the participant variable
// dictionary. Name is lowercase and doubles as the demographics column
// selector and the participants.json key.
type VariableDefinition struct {
	Name        string
	DataType    DataType
	Description string
	Levels      *Levels
}
