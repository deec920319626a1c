package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"iipviz/internal/cache"
	"iipviz/internal/model"
	"iipviz/internal/utils"
)

// Extraction sources
const (
	SourceCompletion = "completion"
	SourceCache      = "cache"
	SourceHeuristic  = "heuristic"
)

// Extraction is a FilterSpec and where it came from
type Extraction struct {
	Spec   model.FilterSpec `json:"spec"`
	Source string           `json:"source"`
}

// ExtractorOptions bounds the completion call and keys the cache
type ExtractorOptions struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	// Fingerprint identifies the dataset the gazetteer was built from
	Fingerprint string
}

// IntentExtractor turns natural language queries into a FilterSpec.
// The completion service is asked first; the local heuristic answers
// whenever it is disabled, slow, or returns something invalid.
type IntentExtractor struct {
	ai        AIClient
	cache     cache.Client
	heuristic *Heuristic
	gazetteer model.Gazetteer
	opts      ExtractorOptions
	logger    zerolog.Logger
}

// NewIntentExtractor creates a new intent extractor. ai and c may be nil.
func NewIntentExtractor(ai AIClient, c cache.Client, heuristic *Heuristic, gazetteer model.Gazetteer, opts ExtractorOptions, logger zerolog.Logger) *IntentExtractor {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	return &IntentExtractor{
		ai:        ai,
		cache:     c,
		heuristic: heuristic,
		gazetteer: gazetteer,
		opts:      opts,
		logger:    logger.With().Str("component", "intent").Logger(),
	}
}

// Extract produces a FilterSpec for query
func (e *IntentExtractor) Extract(ctx context.Context, query string) (*Extraction, error) {
	return e.extract(ctx, query, func(ctx context.Context, q string) (*AIFilterResponse, error) {
		return e.ai.ExtractFilterSpec(ctx, q, e.gazetteer)
	})
}

// ExtractStream is Extract with the completion service's tokens forwarded to
// callback as they arrive. Tokens of a failed attempt may already have been
// delivered when the heuristic takes over.
func (e *IntentExtractor) ExtractStream(ctx context.Context, query string, callback func(thinking, content string) error) (*Extraction, error) {
	return e.extract(ctx, query, func(ctx context.Context, q string) (*AIFilterResponse, error) {
		return e.ai.ExtractFilterSpecStream(ctx, q, e.gazetteer, callback)
	})
}

type completionFunc func(ctx context.Context, query string) (*AIFilterResponse, error)

func (e *IntentExtractor) extract(ctx context.Context, query string, complete completionFunc) (*Extraction, error) {
	cleaned := strings.TrimSpace(utils.StripURLs(query))
	if cleaned == "" {
		return nil, &ExtractionError{Query: query, Err: errors.New("empty query")}
	}

	if e.ai == nil || !e.ai.IsEnabled() {
		return e.fallback(cleaned), nil
	}

	// tone marks stay in the key: "giá" and "Gia" are different questions
	key := cache.Key(e.ai.Model(), e.opts.Fingerprint, utils.Lower(cleaned))
	if spec, ok := e.cached(ctx, key); ok {
		return &Extraction{Spec: spec, Source: SourceCache}, nil
	}

	spec, err := e.complete(ctx, cleaned, complete)
	if err != nil {
		// the caller went away; nothing is waiting for a fallback
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Warn().Err(err).Str("query", cleaned).Msg("⚠️  Completion extraction failed, using heuristic")
		return e.fallback(cleaned), nil
	}

	e.store(ctx, key, spec)
	return &Extraction{Spec: spec, Source: SourceCompletion}, nil
}

func (e *IntentExtractor) complete(ctx context.Context, query string, complete completionFunc) (model.FilterSpec, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := complete(callCtx, query)
	if err != nil {
		return model.FilterSpec{}, err
	}
	if resp == nil {
		return model.FilterSpec{}, errors.New("empty completion response")
	}

	spec, err := resp.ToFilterSpec()
	if err != nil {
		return model.FilterSpec{}, fmt.Errorf("invalid completion response: %w", err)
	}

	e.logger.Debug().
		Dur("took", time.Since(start)).
		Str("target_type", spec.TargetType.String()).
		Str("filter_mode", spec.FilterMode.String()).
		Strs("keywords", spec.SearchKeywords).
		Msg("✅ Completion extraction succeeded")
	return spec, nil
}

func (e *IntentExtractor) fallback(query string) *Extraction {
	spec := e.heuristic.Extract(query)
	e.logger.Debug().
		Str("filter_mode", spec.FilterMode.String()).
		Strs("keywords", spec.SearchKeywords).
		Int("numeric_filters", len(spec.NumericFilters)).
		Msg("Heuristic extraction")
	return &Extraction{Spec: spec, Source: SourceHeuristic}
}

func (e *IntentExtractor) cached(ctx context.Context, key string) (model.FilterSpec, bool) {
	if e.cache == nil {
		return model.FilterSpec{}, false
	}
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			e.logger.Warn().Err(err).Msg("Extraction cache read failed")
		}
		return model.FilterSpec{}, false
	}

	var spec model.FilterSpec
	if err := json.Unmarshal(data, &spec); err != nil || spec.Validate() != nil {
		e.logger.Warn().Str("key", key).Msg("Discarding unreadable cache entry")
		_ = e.cache.Delete(ctx, key)
		return model.FilterSpec{}, false
	}
	return spec, true
}

func (e *IntentExtractor) store(ctx context.Context, key string, spec model.FilterSpec) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(spec)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, key, data, e.opts.CacheTTL); err != nil {
		e.logger.Warn().Err(err).Msg("Extraction cache write failed")
	}
}
