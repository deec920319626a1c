package service

import (
	"sort"

	"iipviz/internal/model"
)

// Rank orders the records that can be plotted for metric and numbers them
// from 1. Records are sorted by value descending; for MetricDual by price
// and then area. Missing values sort last and ties keep the input order,
// so the same input always yields the same ranks.
func Rank(records []model.NormalizedRecord, metric model.Metric) []model.RankedRecord {
	ranked := make([]model.RankedRecord, 0, len(records))
	for _, r := range records {
		if r.HasValue(metric) {
			ranked = append(ranked, model.RankedRecord{NormalizedRecord: r})
		}
	}

	keys := sortKeys(metric)
	sort.SliceStable(ranked, func(i, j int) bool {
		for _, m := range keys {
			if c := compareDesc(ranked[i].Value(m), ranked[j].Value(m)); c != 0 {
				return c < 0
			}
		}
		return false
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func sortKeys(metric model.Metric) []model.Metric {
	if metric == model.MetricDual {
		return []model.Metric{model.MetricPrice, model.MetricArea}
	}
	return []model.Metric{metric}
}

// compareDesc returns -1 when a sorts before b: larger values first, nil last
func compareDesc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}
