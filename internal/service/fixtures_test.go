package service

import (
	"iipviz/internal/model"
)

func testRecords() []model.Record {
	return []model.Record{
		{Name: "Khu công nghiệp VSIP I", Province: "Bình Dương", Type: "Khu công nghiệp", RawPrice: "100 USD/m²/năm", RawArea: "500 ha"},
		{Name: "Khu công nghiệp VSIP II - Bình Dương", Province: "Bình Dương", Type: "Khu công nghiệp", RawPrice: "120", RawArea: "345 ha"},
		{Name: "Khu công nghiệp VSIP III", Province: "Bình Dương", Type: "KCN", RawPrice: "Liên hệ", RawArea: "1000 ha"},
		{Name: "Khu công nghiệp Amata", Province: "Đồng Nai", Type: "Khu công nghiệp", RawPrice: "85-95 USD", RawArea: "700 ha"},
		{Name: "Cụm công nghiệp Tân Mỹ", Province: "Bình Dương", Type: "Cụm công nghiệp", RawPrice: "50", RawArea: "40 ha"},
		{Name: "KCN Đồng An", Province: "Bình Dương", Type: "Khu công nghiệp", RawPrice: "", RawArea: "140 ha"},
		{Name: "Cụm công nghiệp Đức Hòa", Province: "Long An", Type: "Cụm công nghiệp", RawPrice: "", RawArea: ""},
		{Name: "Khu công nghiệp Nam Đông Hà", Province: "Gia Lai", Type: "Khu công nghiệp", RawPrice: "40", RawArea: "120 ha"},
	}
}

func testGazetteer() model.Gazetteer {
	var g model.Gazetteer
	seen := make(map[string]bool)
	for _, r := range testRecords() {
		if !seen[r.Province] {
			seen[r.Province] = true
			g.Provinces = append(g.Provinces, r.Province)
		}
		g.Names = append(g.Names, r.Name)
	}
	return g
}

func f64(v float64) *float64 { return &v }
