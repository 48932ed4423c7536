package filters

import (
	"fmt"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// Chip is a removable badge describing one active constraint.
type Chip struct {
	Field Field
	Label string
}

// Chips lists the active constraints of s in field order.
func Chips(s Set) []Chip {
	var chips []Chip
	for _, p := range QueryParams(s) {
		field := Field(p.Key)
		chips = append(chips, Chip{Field: field, Label: label(field, s, p.Value)})
	}
	return chips
}

func label(field Field, s Set, value string) string {
	switch field {
	case FieldSDG:
		return catalog.SDGLabel(s.SDG)
	case FieldFundedBy:
		return "Funded by: " + value
	case FieldSearch:
		return fmt.Sprintf("Search: %q", value)
	}
	return value
}
