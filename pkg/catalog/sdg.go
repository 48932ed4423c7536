package catalog

import "fmt"

const (
	MinSDG = 1
	MaxSDG = 17
)

// SDG describes one UN Sustainable Development Goal.
type SDG struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

var SDGs = []SDG{
	{1, "No Poverty", "#E5243B"},
	{2, "Zero Hunger", "#DDA63A"},
	{3, "Good Health and Well-being", "#4C9F38"},
	{4, "Quality Education", "#C5192D"},
	{5, "Gender Equality", "#FF3A21"},
	{6, "Clean Water and Sanitation", "#26BDE2"},
	{7, "Affordable and Clean Energy", "#FCC30B"},
	{8, "Decent Work and Economic Growth", "#A21942"},
	{9, "Industry, Innovation and Infrastructure", "#FD6925"},
	{10, "Reduced Inequalities", "#DD1367"},
	{11, "Sustainable Cities and Communities", "#FD9D24"},
	{12, "Responsible Consumption and Production", "#BF8B2E"},
	{13, "Climate Action", "#3F7E44"},
	{14, "Life Below Water", "#0A97D9"},
	{15, "Life on Land", "#56C02B"},
	{16, "Peace, Justice and Strong Institutions", "#00689D"},
	{17, "Partnerships for the Goals", "#19486A"},
}

func ValidSDG(n int) bool {
	return n >= MinSDG && n <= MaxSDG
}

// LookupSDG returns the goal numbered n.
func LookupSDG(n int) (SDG, bool) {
	if !ValidSDG(n) {
		return SDG{}, false
	}
	return SDGs[n-1], true
}

// SDGLabel renders "SDG 5: Gender Equality", or "SDG n" for unknown numbers.
func SDGLabel(n int) string {
	if sdg, ok := LookupSDG(n); ok {
		return fmt.Sprintf("SDG %d: %s", sdg.Number, sdg.Name)
	}
	return fmt.Sprintf("SDG %d", n)
}
