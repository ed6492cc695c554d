package domain

// NoDataMessage is shown in place of a chart whose data filtered to nothing.
const NoDataMessage = "No matching data found"

// ChartData is the plotting-library-agnostic payload of one chart.
type ChartData struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Subtitle   string      `json:"subtitle,omitempty"`
	Measure    Measure     `json:"measure"`
	Empty      bool        `json:"empty"`
	Message    string      `json:"message,omitempty"`
	Indicators []Indicator `json:"indicators,omitempty"`
	Series     []Series    `json:"series,omitempty"`
	// Categories is the display order of the category axis, if any.
	Categories []string `json:"categories,omitempty"`
}

// Indicator is a single number, optionally compared with a reference.
type Indicator struct {
	Label     string   `json:"label"`
	Value     float64  `json:"value"`
	Text      string   `json:"text"`
	Suffix    string   `json:"suffix,omitempty"`
	Reference *float64 `json:"reference,omitempty"`
	// Delta is relative to Reference; nil when the reference is zero.
	Delta *float64 `json:"delta,omitempty"`
	// Percentage is a share of a whole; nil when the whole is zero.
	Percentage *float64 `json:"percentage,omitempty"`
}

// Series is one trace of a chart.
type Series struct {
	Name   string  `json:"name"`
	Panel  string  `json:"panel,omitempty"`
	Stack  string  `json:"stack,omitempty"`
	Color  string  `json:"color,omitempty"`
	Points []Point `json:"points"`
}

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// EmptyChart is the placeholder returned for charts without data.
func EmptyChart(id, title string) ChartData {
	return ChartData{
		ID:      id,
		Title:   title,
		Empty:   true,
		Message: NoDataMessage,
	}
}
