package severity

import "sort"

// Table maps a detection category to the disaster level shown to the operator.
// It is built once at startup and never modified afterwards.
type Table struct {
	levels map[string]string
}

// New copies levels into a read-only Table.
func New(levels map[string]string) *Table {
	copied := make(map[string]string, len(levels))
	for category, text := range levels {
		copied[category] = text
	}
	return &Table{levels: copied}
}

// Default returns the fruit table the monitor ships with.
func Default() *Table {
	return New(map[string]string{
		"apple":  "nivel de desastre detectado: alto",
		"banana": "nivel de desastre detectado: medio",
		"orange": "nivel de desastre detectado: bajo",
	})
}

// SeverityFor returns the severity text for category. The second value is
// false when the category is not monitored and the detection must be dropped.
func (t *Table) SeverityFor(category string) (string, bool) {
	text, ok := t.levels[category]
	return text, ok
}

// Categories lists the monitored categories in alphabetical order.
func (t *Table) Categories() []string {
	categories := make([]string, 0, len(t.levels))
	for category := range t.levels {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Len returns the number of monitored categories.
func (t *Table) Len() int {
	return len(t.levels)
}
