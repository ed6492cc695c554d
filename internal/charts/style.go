package charts

import "github.com/andresuchdata/procurement-dashboard/internal/domain"

// Style carries the presentation parameters that differ between the plain
// and the IBCS variants of a chart.
type Style struct {
	Name         string `json:"name"`
	CurrentColor string `json:"current_color"`
	PriorColor   string `json:"prior_color"`
	// SpendUnit is appended to the measure name in spend subtitles.
	SpendUnit string `json:"spend_unit"`
	// ValueSuffix is shown after monetary indicator values.
	ValueSuffix string `json:"value_suffix"`
}

var (
	StandardStyle = Style{
		Name:         "standard",
		CurrentColor: "#0854A0",
		PriorColor:   "#848f94",
		SpendUnit:    " (in EUR)",
		ValueSuffix:  "€",
	}
	IBCSStyle = Style{
		Name:         "ibcs",
		CurrentColor: "#000000",
		PriorColor:   "#999999",
		SpendUnit:    " | EUR",
		ValueSuffix:  "€",
	}
)

// Subtitle names the measure on a chart.
func (s Style) Subtitle(m domain.Measure) string {
	if m == domain.MeasureSpend {
		return m.String() + s.SpendUnit
	}
	return m.String()
}

func (s Style) suffix(m domain.Measure) string {
	if m == domain.MeasureSpend {
		return s.ValueSuffix
	}
	return ""
}

// deviationCauseColors assigns the SAP qualitative palette to the known
// deviation causes.
var deviationCauseColors = map[string]string{
	"no deviation":                                           "#5899DA",
	"delivery deviation - too late":                          "#E8743B",
	"damaged goods (obvious defects)":                        "#19A979",
	"over-delivery":                                          "#ED4A7B",
	"under-delivery":                                         "#945ECF",
	"damaged goods and over-delivery":                        "#13A4B4",
	"damaged goods and under-delivery":                       "#BF399E",
	"over-delivery&delivery deviation - too late":            "#6C8893",
	"damaged goods & over-delivery & deliv. dev. - too late": "#EE6868",
	"under-delivery&delivery deviation - too late":           "#2F6497",
}

const neutralColor = "#848f94"

// CauseColor returns the palette colour of a deviation cause text.
func CauseColor(cause string) string {
	if c, ok := deviationCauseColors[cause]; ok {
		return c
	}
	return neutralColor
}
