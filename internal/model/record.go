package model

// Industrial site categories as they appear in the dataset's "Loại" column
const (
	TypeLabelZone    = "Khu công nghiệp"
	TypeLabelCluster = "Cụm công nghiệp"
)

// Record represents one industrial zone or cluster row
type Record struct {
	Name     string `json:"name" db:"name"`
	Province string `json:"province" db:"province"`
	Type     string `json:"type" db:"type"`
	RawPrice string `json:"raw_price" db:"raw_price"`
	RawArea  string `json:"raw_area" db:"raw_area"`
}

// NormalizedRecord is a Record with its numeric fields parsed.
// Price and Area are nil when the raw text could not be parsed.
type NormalizedRecord struct {
	Record
	Price *float64 `json:"price,omitempty"`
	Area  *float64 `json:"area,omitempty"`
}

// Value returns the derived value for a concrete metric
func (r NormalizedRecord) Value(m Metric) *float64 {
	switch m {
	case MetricPrice:
		return r.Price
	case MetricArea:
		return r.Area
	default:
		return nil
	}
}

// HasValue reports whether the record can be plotted for the metric.
// For MetricDual at least one of price or area must be present.
func (r NormalizedRecord) HasValue(m Metric) bool {
	if m == MetricDual {
		return r.Price != nil || r.Area != nil
	}
	return r.Value(m) != nil
}

// RankedRecord is a NormalizedRecord with its 1-based position in a result set
type RankedRecord struct {
	NormalizedRecord
	Rank int `json:"rank"`
}
