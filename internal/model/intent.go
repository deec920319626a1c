package model

import (
	"fmt"
	"math"
	"strings"
)

// TargetType selects industrial zones or industrial clusters
type TargetType uint8

const (
	TargetZone TargetType = iota + 1
	TargetCluster
)

// FilterMode selects how search keywords are matched against records
type FilterMode uint8

const (
	ModeByProvince FilterMode = iota + 1
	ModeBySpecificNames
)

// Metric is the numeric dimension being filtered or plotted
type Metric uint8

const (
	MetricPrice Metric = iota + 1
	MetricArea
	MetricDual
)

// ChartKind is the requested visual form of the chart
type ChartKind uint8

const (
	ChartBar ChartKind = iota + 1
	ChartHorizontalBar
	ChartPie
	ChartLine
)

// Operator is a numeric comparison used by NumericFilterRule
type Operator uint8

const (
	OpGT Operator = iota + 1
	OpLT
	OpGTE
	OpLTE
	OpEQ
	OpBetween
)

var (
	targetNames = map[TargetType]string{TargetZone: "Zone", TargetCluster: "Cluster"}
	targetParse = map[string]TargetType{
		"zone": TargetZone, "khu công nghiệp": TargetZone, "kcn": TargetZone, "industrial zone": TargetZone,
		"cluster": TargetCluster, "cụm công nghiệp": TargetCluster, "ccn": TargetCluster, "industrial cluster": TargetCluster,
	}

	modeNames = map[FilterMode]string{ModeByProvince: "province", ModeBySpecificNames: "specific_names"}
	modeParse = map[string]FilterMode{
		"province": ModeByProvince, "by_province": ModeByProvince,
		"specific_names": ModeBySpecificNames, "specific_zones": ModeBySpecificNames, "names": ModeBySpecificNames,
	}

	metricNames = map[Metric]string{MetricPrice: "price", MetricArea: "area", MetricDual: "dual"}
	metricParse = map[string]Metric{"price": MetricPrice, "area": MetricArea, "dual": MetricDual}

	chartNames = map[ChartKind]string{ChartBar: "bar", ChartHorizontalBar: "horizontal_bar", ChartPie: "pie", ChartLine: "line"}
	chartParse = map[string]ChartKind{
		"bar": ChartBar, "column": ChartBar,
		"horizontal_bar": ChartHorizontalBar, "barh": ChartHorizontalBar, "hbar": ChartHorizontalBar,
		"pie": ChartPie,
		"line": ChartLine,
	}

	opNames = map[Operator]string{OpGT: "gt", OpLT: "lt", OpGTE: "gte", OpLTE: "lte", OpEQ: "eq", OpBetween: "between"}
	opParse = map[string]Operator{
		"gt": OpGT, ">": OpGT,
		"lt": OpLT, "<": OpLT,
		"gte": OpGTE, ">=": OpGTE,
		"lte": OpLTE, "<=": OpLTE,
		"eq": OpEQ, "=": OpEQ, "==": OpEQ,
		"between": OpBetween, "range": OpBetween,
	}
)

func parseEnum[T comparable](kind, s string, table map[string]T) (T, error) {
	if v, ok := table[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s: %q", kind, s)
}

func unmarshalEnum[T comparable](dst *T, kind string, text []byte, table map[string]T) error {
	v, err := parseEnum(kind, string(text), table)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// ParseTargetType accepts canonical names and the Vietnamese labels used in the dataset
func ParseTargetType(s string) (TargetType, error) { return parseEnum("target_type", s, targetParse) }

// ParseFilterMode parses a filter mode literal
func ParseFilterMode(s string) (FilterMode, error) { return parseEnum("filter_mode", s, modeParse) }

// ParseMetric parses a metric literal
func ParseMetric(s string) (Metric, error) { return parseEnum("metric", s, metricParse) }

// ParseChartKind parses a chart kind literal, including the legacy "barh"
func ParseChartKind(s string) (ChartKind, error) { return parseEnum("chart_kind", s, chartParse) }

// ParseOperator parses both word and symbolic operators
func ParseOperator(s string) (Operator, error) { return parseEnum("operator", s, opParse) }

func (t TargetType) String() string { return targetNames[t] }
func (m FilterMode) String() string { return modeNames[m] }
func (m Metric) String() string     { return metricNames[m] }
func (k ChartKind) String() string  { return chartNames[k] }
func (o Operator) String() string   { return opNames[o] }

func (t TargetType) Valid() bool { _, ok := targetNames[t]; return ok }
func (m FilterMode) Valid() bool { _, ok := modeNames[m]; return ok }
func (m Metric) Valid() bool     { _, ok := metricNames[m]; return ok }
func (k ChartKind) Valid() bool  { _, ok := chartNames[k]; return ok }
func (o Operator) Valid() bool   { _, ok := opNames[o]; return ok }

// Concrete reports whether the metric names a single numeric field
func (m Metric) Concrete() bool { return m == MetricPrice || m == MetricArea }

// Label returns the dataset's Vietnamese label for the target type
func (t TargetType) Label() string {
	if t == TargetCluster {
		return TypeLabelCluster
	}
	return TypeLabelZone
}

func (t TargetType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (m FilterMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m Metric) MarshalText() ([]byte, error)     { return []byte(m.String()), nil }
func (k ChartKind) MarshalText() ([]byte, error)  { return []byte(k.String()), nil }
func (o Operator) MarshalText() ([]byte, error)   { return []byte(o.String()), nil }

func (t *TargetType) UnmarshalText(b []byte) error {
	return unmarshalEnum(t, "target_type", b, targetParse)
}
func (m *FilterMode) UnmarshalText(b []byte) error { return unmarshalEnum(m, "filter_mode", b, modeParse) }
func (m *Metric) UnmarshalText(b []byte) error     { return unmarshalEnum(m, "metric", b, metricParse) }
func (k *ChartKind) UnmarshalText(b []byte) error  { return unmarshalEnum(k, "chart_kind", b, chartParse) }
func (o *Operator) UnmarshalText(b []byte) error   { return unmarshalEnum(o, "operator", b, opParse) }

// NumericFilterRule is one numeric condition on price or area.
// Value is used by the comparison operators, Min and Max by OpBetween.
type NumericFilterRule struct {
	Metric   Metric   `json:"metric"`
	Operator Operator `json:"operator"`
	Value    float64  `json:"value"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
}

// NewComparisonRule builds a single-value rule
func NewComparisonRule(m Metric, op Operator, value float64) (NumericFilterRule, error) {
	r := NumericFilterRule{Metric: m, Operator: op, Value: value}
	if op == OpBetween {
		return r, fmt.Errorf("operator between needs a range")
	}
	return r, r.Validate()
}

// NewRangeRule builds an inclusive range rule; reversed bounds are swapped
func NewRangeRule(m Metric, min, max float64) (NumericFilterRule, error) {
	if min > max {
		min, max = max, min
	}
	r := NumericFilterRule{Metric: m, Operator: OpBetween, Min: min, Max: max}
	return r, r.Validate()
}

// Validate rejects rules on Dual or with an unknown operator
func (r NumericFilterRule) Validate() error {
	if !r.Metric.Concrete() {
		return fmt.Errorf("numeric filter metric must be price or area, got %q", r.Metric.String())
	}
	if !r.Operator.Valid() {
		return fmt.Errorf("invalid numeric filter operator")
	}
	for _, v := range []float64{r.Value, r.Min, r.Max} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("numeric filter value must be finite")
		}
	}
	return nil
}

const eqTolerance = 1e-9

// Match reports whether v satisfies the rule
func (r NumericFilterRule) Match(v float64) bool {
	switch r.Operator {
	case OpGT:
		return v > r.Value
	case OpLT:
		return v < r.Value
	case OpGTE:
		return v >= r.Value
	case OpLTE:
		return v <= r.Value
	case OpEQ:
		return math.Abs(v-r.Value) <= eqTolerance
	case OpBetween:
		lo, hi := r.Min, r.Max
		if lo > hi {
			lo, hi = hi, lo
		}
		return v >= lo && v <= hi
	}
	return false
}

// FilterSpec is the validated, structured form of a user's query
type FilterSpec struct {
	TargetType          TargetType          `json:"target_type"`
	FilterMode          FilterMode          `json:"filter_mode"`
	SearchKeywords      []string            `json:"search_keywords"`
	VisualizationMetric Metric              `json:"visualization_metric"`
	ChartKind           ChartKind           `json:"chart_kind"`
	NumericFilters      []NumericFilterRule `json:"numeric_filters"`
}

// DefaultFilterSpec returns the spec used for every field extraction could not determine
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		TargetType:          TargetZone,
		FilterMode:          ModeBySpecificNames,
		SearchKeywords:      []string{},
		VisualizationMetric: MetricDual,
		ChartKind:           ChartBar,
		NumericFilters:      []NumericFilterRule{},
	}
}

// Validate checks every enumeration and rule of the spec
func (s FilterSpec) Validate() error {
	if !s.TargetType.Valid() {
		return fmt.Errorf("invalid target_type")
	}
	if !s.FilterMode.Valid() {
		return fmt.Errorf("invalid filter_mode")
	}
	if !s.VisualizationMetric.Valid() {
		return fmt.Errorf("invalid visualization_metric")
	}
	if !s.ChartKind.Valid() {
		return fmt.Errorf("invalid chart_kind")
	}
	for i, r := range s.NumericFilters {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("numeric_filters[%d]: %w", i, err)
		}
	}
	return nil
}
