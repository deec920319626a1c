package service

import (
	"strings"

	"iipviz/internal/config"
	"iipviz/internal/model"
	"iipviz/internal/utils"
)

// Normalize parses the numeric fields of every record
func Normalize(records []model.Record) []model.NormalizedRecord {
	out := make([]model.NormalizedRecord, len(records))
	for i, r := range records {
		out[i] = model.NormalizedRecord{
			Record: r,
			Price:  utils.ParsePrice(r.RawPrice),
			Area:   utils.ParseArea(r.RawArea),
		}
	}
	return out
}

// FilterEngine applies a FilterSpec to normalized records
type FilterEngine struct {
	zoneAliases    []string
	clusterAliases []string
}

// NewFilterEngine creates a filter engine using the lexicon's type aliases
func NewFilterEngine(lex *config.Lexicon) *FilterEngine {
	if lex == nil {
		lex = config.DefaultLexicon()
	}
	return &FilterEngine{
		zoneAliases:    foldAll(lex.ZoneAliases),
		clusterAliases: foldAll(lex.ClusterAliases),
	}
}

// TypeOf classifies a raw "Loại" value. Cluster aliases are checked first so
// that a value naming both never counts as a zone.
func (f *FilterEngine) TypeOf(rawType string) (model.TargetType, bool) {
	folded := utils.Fold(rawType)
	for _, alias := range f.clusterAliases {
		if utils.ContainsToken(folded, alias) {
			return model.TargetCluster, true
		}
	}
	for _, alias := range f.zoneAliases {
		if utils.ContainsToken(folded, alias) {
			return model.TargetZone, true
		}
	}
	return 0, false
}

// Apply keeps the records that pass the type mask, the identity filter and
// every numeric rule, in their original order. An empty result is valid.
func (f *FilterEngine) Apply(records []model.NormalizedRecord, spec model.FilterSpec) []model.NormalizedRecord {
	keywords := make([]keywordMatcher, 0, len(spec.SearchKeywords))
	for _, kw := range spec.SearchKeywords {
		if folded := utils.Fold(kw); folded != "" {
			keywords = append(keywords, keywordMatcher{folded: folded, bounded: utils.HasNumberedSuffix(folded)})
		}
	}

	out := make([]model.NormalizedRecord, 0)
	for _, r := range records {
		if t, ok := f.TypeOf(r.Type); !ok || t != spec.TargetType {
			continue
		}
		if !matchIdentity(r.Record, spec.FilterMode, keywords) {
			continue
		}
		if !matchNumeric(r, spec.NumericFilters) {
			continue
		}
		out = append(out, r)
	}
	return out
}

type keywordMatcher struct {
	folded string
	// bounded keywords end in a number and must not match a longer number
	bounded bool
}

func (k keywordMatcher) matchName(foldedName string) bool {
	if k.bounded {
		return utils.ContainsEndBounded(foldedName, k.folded)
	}
	return strings.Contains(foldedName, k.folded)
}

// matchIdentity passes every record when there are no keywords
func matchIdentity(r model.Record, mode model.FilterMode, keywords []keywordMatcher) bool {
	if len(keywords) == 0 {
		return true
	}

	switch mode {
	case model.ModeByProvince:
		province := utils.Fold(r.Province)
		for _, k := range keywords {
			if province == k.folded {
				return true
			}
		}
	case model.ModeBySpecificNames:
		name := utils.Fold(r.Name)
		for _, k := range keywords {
			if k.matchName(name) {
				return true
			}
		}
	}
	return false
}

// matchNumeric requires every rule to hold; a missing value fails the rule
func matchNumeric(r model.NormalizedRecord, rules []model.NumericFilterRule) bool {
	for _, rule := range rules {
		v := r.Value(rule.Metric)
		if v == nil || !rule.Match(*v) {
			return false
		}
	}
	return true
}
