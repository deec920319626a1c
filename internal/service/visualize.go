package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"iipviz/internal/chart"
	"iipviz/internal/model"
	"iipviz/internal/repository"
)

// VisualizeService runs the query pipeline: extraction, filtering, ranking,
// chart rendering and payload composition
type VisualizeService struct {
	dataset    *repository.Dataset
	normalized []model.NormalizedRecord
	extractor  *IntentExtractor
	filter     *FilterEngine
	charts     *chart.Dispatcher
	logger     zerolog.Logger
}

// NewVisualizeService creates a new visualize service. The dataset's numeric
// fields are parsed once here.
func NewVisualizeService(
	dataset *repository.Dataset,
	extractor *IntentExtractor,
	filter *FilterEngine,
	charts *chart.Dispatcher,
	logger zerolog.Logger,
) *VisualizeService {
	return &VisualizeService{
		dataset:    dataset,
		normalized: Normalize(dataset.Records()),
		extractor:  extractor,
		filter:     filter,
		charts:     charts,
		logger:     logger.With().Str("component", "visualize").Logger(),
	}
}

// EventCallback is called for streaming pipeline events
type EventCallback func(event string, data any) error

// Visualize answers a query with a chart
func (s *VisualizeService) Visualize(ctx context.Context, req *model.VisualizeRequest) (*model.VisualizationPayload, error) {
	start := time.Now()
	if err := checkIntent(req); err != nil {
		return nil, err
	}

	ext, err := s.extractor.Extract(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, req.Query, ext, start, nil)
}

// VisualizeStream answers a query, reporting progress through callback
func (s *VisualizeService) VisualizeStream(ctx context.Context, req *model.VisualizeRequest, callback EventCallback) (*model.VisualizationPayload, error) {
	start := time.Now()
	if err := checkIntent(req); err != nil {
		return nil, err
	}

	if err := callback("parsing", map[string]any{
		"status": "Đang phân tích câu hỏi...",
	}); err != nil {
		return nil, err
	}

	ext, err := s.extractor.ExtractStream(ctx, req.Query, func(thinking, content string) error {
		if thinking != "" {
			return callback("thinking", map[string]any{"content": thinking})
		}
		if content != "" {
			return callback("content", map[string]any{"content": content})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := callback("intent", ext); err != nil {
		return nil, err
	}
	return s.run(ctx, req.Query, ext, start, callback)
}

// Provinces lists the provinces of the loaded dataset
func (s *VisualizeService) Provinces() *model.ProvincesResponse {
	return &model.ProvincesResponse{
		Provinces: s.dataset.Provinces(),
		Records:   s.dataset.Len(),
	}
}

func checkIntent(req *model.VisualizeRequest) error {
	if req.StrictIntent && !IsVisualizeIntent(req.Query) {
		return &ValidationError{Reason: msgNotVisualize}
	}
	return nil
}

func (s *VisualizeService) run(ctx context.Context, query string, ext *Extraction, start time.Time, callback EventCallback) (*model.VisualizationPayload, error) {
	emit := func(event string, data any) error {
		if callback == nil {
			return nil
		}
		return callback(event, data)
	}
	spec := ext.Spec

	if len(spec.SearchKeywords) == 0 && len(spec.NumericFilters) == 0 {
		return nil, &ValidationError{Reason: msgNoCriteria}
	}

	filtered := s.filter.Apply(s.normalized, spec)
	if err := emit("filtering", map[string]any{"matched": len(filtered)}); err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return nil, &DataError{TargetType: spec.TargetType}
	}

	// resolve first so that a dual pie is ranked by the metric it is drawn with
	metric, kind := chart.Resolve(spec.VisualizationMetric, spec.ChartKind)
	ranked := Rank(filtered, metric)
	if len(ranked) == 0 {
		return nil, &RenderError{Metric: metric, Err: chart.ErrInsufficientData}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	province := ProvinceLabel(spec, ranked)
	if err := emit("rendering", map[string]any{
		"metric":     metric,
		"chart_kind": kind,
		"items":      len(ranked),
	}); err != nil {
		return nil, err
	}

	art, err := s.charts.Render(chart.Request{
		Metric:     metric,
		Kind:       kind,
		TargetType: spec.TargetType,
		Province:   province,
		Records:    ranked,
	})
	if err != nil {
		if errors.Is(err, chart.ErrInsufficientData) {
			return nil, &RenderError{Metric: metric, Err: err}
		}
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	payload := Compose(spec, ranked, art, province)
	payload.Intent = &spec
	payload.Took = time.Since(start).Milliseconds()

	s.logger.Info().
		Str("query", query).
		Str("source", ext.Source).
		Str("metric", metric.String()).
		Str("chart_kind", kind.String()).
		Int("matched", len(filtered)).
		Int("ranked", len(ranked)).
		Int("drawn", art.Items).
		Int64("took_ms", payload.Took).
		Msg("Visualization rendered")
	return payload, nil
}
