package chart

import (
	"fmt"
	"strings"
	"time"

	"iipviz/internal/model"
	"iipviz/internal/utils"
)

// maxLabelRunes keeps axis labels readable with fifteen bars
const maxLabelRunes = 28

// DefaultProvinceLabel names the place when a query is not about provinces
const DefaultProvinceLabel = "Khu vực tìm kiếm"

// ItemLabel is the text drawn for a ranked record: "<rank>. <short name>"
func ItemLabel(r model.RankedRecord) string {
	return fmt.Sprintf("%d. %s", r.Rank, utils.Truncate(utils.CleanLabel(r.Name), maxLabelRunes))
}

// Title builds the two-line chart title
func Title(metric model.Metric, target model.TargetType, province string) string {
	if strings.TrimSpace(province) == "" {
		province = DefaultProvinceLabel
	}
	typ := strings.ToUpper(target.Label())
	where := "TẠI " + strings.ToUpper(province)

	switch metric {
	case model.MetricPrice:
		return "GIÁ THUÊ ĐẤT " + typ + "\n" + where
	case model.MetricArea:
		return "DIỆN TÍCH " + typ + "\n" + where
	default:
		return "TỔNG QUAN GIÁ & DIỆN TÍCH " + typ + "\n" + where
	}
}

// Footer credits the chart and stamps its creation time
func Footer(t time.Time) string {
	return fmt.Sprintf("Biểu đồ được tạo bởi ChatIIP.com vào lúc %s ngày %s. Dữ liệu từ IIPMAP.com",
		t.Format("15:04"), t.Format("02/01/2006"))
}

// AxisLabel names the value axis of a metric
func AxisLabel(metric model.Metric) string {
	if metric == model.MetricArea {
		return "Diện tích (ha)"
	}
	return "Giá thuê (USD/m²)"
}

// FormatValue prints prices with one decimal and areas as whole hectares
func FormatValue(metric model.Metric, v float64) string {
	if metric == model.MetricArea {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
