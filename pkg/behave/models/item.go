package models

// Levels is an ordered mapping from a scale level value (stringified
// integer) to its description.
type Levels struct {
	doc *Document
}

// NewLevels creates an empty Levels mapping.
func NewLevels() *Levels {
	return &Levels{doc: NewDocument()}
}

// Set stores a level description under the stringified level value.
func (l *Levels) Set(value, description string) {
	l.doc.Set(value, description)
}

// Get returns the description for a level value.
func (l *Levels) Get(value string) (string, bool) {
	v, ok := l.doc.Get(value)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Len returns the number of levels.
func (l *Levels) Len() int {
	return l.doc.Len()
}

// Keys returns the level values in insertion order.
func (l *Levels) Keys() []string {
	return l.doc.Keys()
}

func (l *Levels) MarshalJSON() ([]byte, error) {
	return l.doc.MarshalJSON()
}

// ItemEntry is the sidecar entry for one survey item. An item carries
// either Levels (ordinal scale) or Units, never both.
type ItemEntry struct {
	Description string
	Levels      *Levels
	Units       string
}

func (e ItemEntry) MarshalJSON() ([]byte, error) {
	doc := NewDocument()
	doc.Set("Description", e.Description)
	if e.Levels != nil && e.Levels.Len() > 0 {
		doc.Set("Levels", e.Levels)
	} else if e.Units != "" {
		doc.Set("Units", e.Units)
	}
	return doc.MarshalJSON()
}
