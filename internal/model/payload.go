package model

// VisualizeRequest represents a natural language visualization request
type VisualizeRequest struct {
	Query string `json:"query" binding:"required"`
	// StrictIntent rejects questions that do not ask for a chart
	StrictIntent bool `json:"strict_intent,omitempty"`
}

// PayloadItem is one ranked row of the response.
// Index equals the number drawn next to the element on the chart.
type PayloadItem struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Province string   `json:"province,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Area     *float64 `json:"area,omitempty"`
}

// VisualizationPayload is the successful result of a visualization query
type VisualizationPayload struct {
	Type           string        `json:"type"`
	Province       string        `json:"province"`
	IndustrialType TargetType    `json:"industrial_type"`
	Metric         Metric        `json:"metric"`
	ChartKind      ChartKind     `json:"chart_kind"`
	Items          []PayloadItem `json:"items"`
	Chart          string        `json:"chart"` // base64 PNG
	Text           string        `json:"text"`
	Intent         *FilterSpec   `json:"intent,omitempty"`
	Took           int64         `json:"took_ms"`
}

// Error kinds reported in ErrorPayload.Kind
const (
	ErrorKindExtraction       = "extraction"
	ErrorKindValidation       = "validation"
	ErrorKindNoData           = "no_data"
	ErrorKindInsufficientData = "insufficient_data"
	ErrorKindInternal         = "internal"
)

// ErrorPayload is returned instead of VisualizationPayload when the pipeline fails
type ErrorPayload struct {
	Type    string `json:"type"` // always "error"
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewErrorPayload builds an ErrorPayload
func NewErrorPayload(kind, message string) *ErrorPayload {
	return &ErrorPayload{Type: "error", Kind: kind, Message: message}
}

// ProvincesResponse lists the provinces known to the loaded dataset
type ProvincesResponse struct {
	Provinces []string `json:"provinces"`
	Records   int      `json:"records"`
}
