package service

import (
	"context"
	"fmt"
	"strings"

	"iipviz/internal/model"
)

// AIClient is the interface for completion service providers
type AIClient interface {
	// ExtractFilterSpec turns a query into a filter response (non-streaming)
	ExtractFilterSpec(ctx context.Context, query string, gazetteer model.Gazetteer) (*AIFilterResponse, error)

	// ExtractFilterSpecStream does the same with streaming support.
	// The callback receives (thinkingContent, regularContent) for each chunk
	ExtractFilterSpecStream(ctx context.Context, query string, gazetteer model.Gazetteer, callback func(thinking, content string) error) (*AIFilterResponse, error)

	// IsEnabled returns whether the AI client is configured and ready
	IsEnabled() bool

	// Model names the chat model, part of the extraction cache key
	Model() string
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g., DeepSeek)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}

// AIFilterResponse is the completion service's answer before validation.
// Fields are kept as raw strings so that unknown enumeration values are
// detected here rather than silently dropped by the JSON decoder.
type AIFilterResponse struct {
	TargetType          *string           `json:"target_type,omitempty"`
	FilterMode          *string           `json:"filter_mode,omitempty"`
	SearchKeywords      []string          `json:"search_keywords,omitempty"`
	VisualizationMetric *string           `json:"visualization_metric,omitempty"`
	ChartType           *string           `json:"chart_type,omitempty"`
	NumericFilters      []AINumericFilter `json:"numeric_filters,omitempty"`
}

// AINumericFilter is one numeric condition as returned by the completion service
type AINumericFilter struct {
	Metric   string   `json:"metric"`
	Operator string   `json:"operator"`
	Value    *float64 `json:"value"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
}

// ToFilterSpec validates the response. Missing fields take their default;
// any value outside the declared enumerations is an error.
func (r *AIFilterResponse) ToFilterSpec() (model.FilterSpec, error) {
	spec := model.DefaultFilterSpec()

	if v := optional(r.TargetType); v != "" {
		t, err := model.ParseTargetType(v)
		if err != nil {
			return spec, err
		}
		spec.TargetType = t
	}
	if v := optional(r.FilterMode); v != "" {
		m, err := model.ParseFilterMode(v)
		if err != nil {
			return spec, err
		}
		spec.FilterMode = m
	}
	if v := optional(r.VisualizationMetric); v != "" {
		m, err := model.ParseMetric(v)
		if err != nil {
			return spec, err
		}
		spec.VisualizationMetric = m
	}
	if v := optional(r.ChartType); v != "" {
		k, err := model.ParseChartKind(v)
		if err != nil {
			return spec, err
		}
		spec.ChartKind = k
	}

	seen := make(map[string]bool, len(r.SearchKeywords))
	for _, kw := range r.SearchKeywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[strings.ToLower(kw)] {
			continue
		}
		seen[strings.ToLower(kw)] = true
		spec.SearchKeywords = append(spec.SearchKeywords, kw)
	}

	for i, f := range r.NumericFilters {
		rule, err := f.toRule()
		if err != nil {
			return spec, fmt.Errorf("numeric_filters[%d]: %w", i, err)
		}
		spec.NumericFilters = append(spec.NumericFilters, rule)
	}

	return spec, spec.Validate()
}

func (f AINumericFilter) toRule() (model.NumericFilterRule, error) {
	metric, err := model.ParseMetric(f.Metric)
	if err != nil {
		return model.NumericFilterRule{}, err
	}
	op, err := model.ParseOperator(f.Operator)
	if err != nil {
		return model.NumericFilterRule{}, err
	}

	if op == model.OpBetween {
		if f.Min == nil || f.Max == nil {
			return model.NumericFilterRule{}, fmt.Errorf("between needs min and max")
		}
		return model.NewRangeRule(metric, *f.Min, *f.Max)
	}
	if f.Value == nil {
		return model.NumericFilterRule{}, fmt.Errorf("operator %s needs a value", op)
	}
	return model.NewComparisonRule(metric, op, *f.Value)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
