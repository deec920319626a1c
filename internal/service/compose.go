package service

import (
	"fmt"
	"strings"

	"iipviz/internal/chart"
	"iipviz/internal/model"
	"iipviz/internal/utils"
)

var chartKindWords = map[model.ChartKind]string{
	model.ChartBar:           "cột",
	model.ChartHorizontalBar: "cột ngang",
	model.ChartPie:           "tròn",
	model.ChartLine:          "đường",
}

// Compose assembles the payload. Metric and chart kind are the ones the
// artifact was actually drawn with.
func Compose(spec model.FilterSpec, ranked []model.RankedRecord, art *chart.Artifact, province string) *model.VisualizationPayload {
	items := make([]model.PayloadItem, len(ranked))
	for i, r := range ranked {
		items[i] = model.PayloadItem{
			Index:    r.Rank,
			Name:     r.Name,
			Province: r.Province,
			Price:    r.Price,
			Area:     r.Area,
		}
	}

	return &model.VisualizationPayload{
		Type:           art.Metric.String(),
		Province:       province,
		IndustrialType: spec.TargetType,
		Metric:         art.Metric,
		ChartKind:      art.Kind,
		Items:          items,
		Chart:          art.Base64(),
		Text:           SummaryText(art.Metric, art.Kind, province),
	}
}

// ProvinceLabel names where the charted records are. A province query uses
// its keywords; otherwise the records' own provinces are listed when there
// are only a few of them.
func ProvinceLabel(spec model.FilterSpec, ranked []model.RankedRecord) string {
	if spec.FilterMode == model.ModeByProvince && len(spec.SearchKeywords) > 0 {
		return strings.Join(spec.SearchKeywords, ", ")
	}

	var provinces []string
	seen := make(map[string]bool)
	for _, r := range ranked {
		key := utils.Fold(r.Province)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		provinces = append(provinces, strings.TrimSpace(r.Province))
	}
	if len(provinces) == 0 || len(provinces) > 3 {
		return chart.DefaultProvinceLabel
	}
	return strings.Join(provinces, ", ")
}

// SummaryText is the one-sentence description sent with the chart
func SummaryText(metric model.Metric, kind model.ChartKind, province string) string {
	if province == "" {
		province = chart.DefaultProvinceLabel
	}
	if metric == model.MetricDual {
		return fmt.Sprintf("Đã vẽ biểu đồ tổng quan (Giá & Diện tích) tại %s.", province)
	}

	what := "giá thuê"
	if metric == model.MetricArea {
		what = "diện tích"
	}
	return fmt.Sprintf("Đã vẽ biểu đồ %s về %s tại %s.", chartKindWords[kind], what, province)
}
