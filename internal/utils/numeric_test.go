package utils

import (
	"math"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{name: "Range with full unit", input: "85-95 USD/m²/năm", want: float64Ptr(90)},
		{name: "Range with ascii unit", input: "60 - 70 usd/m2/năm", want: float64Ptr(65)},
		{name: "En dash range", input: "100–120 USD", want: float64Ptr(110)},
		{name: "Single value", input: "120 USD", want: float64Ptr(120)},
		{name: "Decimal value", input: "45.5 USD/m2", want: float64Ptr(45.5)},
		{name: "Dollar sign", input: "$75", want: float64Ptr(75)},
		{name: "Bare number", input: " 80 ", want: float64Ptr(80)},
		{name: "Text", input: "abc", want: nil},
		{name: "Contact", input: "Liên hệ", want: nil},
		{name: "Empty", input: "", want: nil},
		{name: "Half range", input: "85- USD", want: nil},
		{name: "Three parts", input: "1-2-3", want: nil},
		{name: "NaN literal", input: "NaN", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFloatPtr(t, ParsePrice(tt.input), tt.want)
		})
	}
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{name: "Decimal hectares", input: "77.48 ha", want: float64Ptr(77.48)},
		{name: "Whole hectares", input: "250 ha", want: float64Ptr(250)},
		{name: "Dot is never a thousands separator", input: "1.250 ha", want: float64Ptr(1.25)},
		{name: "Hecta unit", input: "120.5 hecta", want: float64Ptr(120.5)},
		{name: "Upper case unit", input: "300 HA", want: float64Ptr(300)},
		{name: "Decimal comma", input: "77,48 ha", want: float64Ptr(77.48)},
		{name: "No unit", input: "120.5", want: float64Ptr(120.5)},
		{name: "Empty", input: "", want: nil},
		{name: "Two separators", input: "1.250,5 ha", want: nil},
		{name: "Text", input: "đang cập nhật", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFloatPtr(t, ParseArea(tt.input), tt.want)
		})
	}
}

func TestParseQueryNumber(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{input: "1,000", want: 1000, wantOK: true},
		{input: "77.5", want: 77.5, wantOK: true},
		{input: "1,250.75", want: 1250.75, wantOK: true},
		{input: "abc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseQueryNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseQueryNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseQueryNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func assertFloatPtr(t *testing.T, got, want *float64) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Errorf("got %v, want nil", *got)
		}
		return
	}
	if got == nil {
		t.Fatalf("got nil, want %v", *want)
	}
	if math.Abs(*got-*want) > 1e-9 {
		t.Errorf("got %v, want %v", *got, *want)
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
