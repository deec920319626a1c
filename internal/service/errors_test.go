package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"iipviz/internal/chart"
	"iipviz/internal/model"
)

func TestToErrorPayload(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
		wantMsg  string
		wantOK   bool
	}{
		{
			name:     "Extraction",
			err:      &ExtractionError{Query: " ", Err: errors.New("empty query")},
			wantKind: model.ErrorKindExtraction,
			wantMsg:  msgEmptyQuery,
			wantOK:   true,
		},
		{
			name:     "Validation",
			err:      &ValidationError{Reason: msgNoCriteria},
			wantKind: model.ErrorKindValidation,
			wantMsg:  msgNoCriteria,
			wantOK:   true,
		},
		{
			name:     "No zones",
			err:      &DataError{TargetType: model.TargetZone},
			wantKind: model.ErrorKindNoData,
			wantMsg:  "Không tìm thấy khu công nghiệp nào phù hợp.",
			wantOK:   true,
		},
		{
			name:     "Wrapped no clusters",
			err:      fmt.Errorf("pipeline: %w", &DataError{TargetType: model.TargetCluster}),
			wantKind: model.ErrorKindNoData,
			wantMsg:  "Không tìm thấy cụm công nghiệp nào phù hợp.",
			wantOK:   true,
		},
		{
			name:     "Missing prices",
			err:      &RenderError{Metric: model.MetricPrice, Err: chart.ErrInsufficientData},
			wantKind: model.ErrorKindInsufficientData,
			wantMsg:  "Thiếu dữ liệu về Giá để vẽ.",
			wantOK:   true,
		},
		{
			name:     "Missing areas",
			err:      &RenderError{Metric: model.MetricArea},
			wantKind: model.ErrorKindInsufficientData,
			wantMsg:  "Thiếu dữ liệu về Diện tích để vẽ.",
			wantOK:   true,
		},
		{
			name:     "Missing both",
			err:      &RenderError{Metric: model.MetricDual},
			wantKind: model.ErrorKindInsufficientData,
			wantMsg:  "Không có đủ dữ liệu giá hoặc diện tích để vẽ biểu đồ tổng quan.",
			wantOK:   true,
		},
		{
			name:     "Internal",
			err:      errors.New("disk on fire"),
			wantKind: model.ErrorKindInternal,
			wantMsg:  msgInternalFailed,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := ToErrorPayload(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, "error", payload.Type)
			assert.Equal(t, tt.wantKind, payload.Kind)
			assert.Equal(t, tt.wantMsg, payload.Message)
		})
	}
}

func TestRenderError_Unwrap(t *testing.T) {
	err := &RenderError{Metric: model.MetricArea, Err: chart.ErrInsufficientData}
	assert.ErrorIs(t, err, chart.ErrInsufficientData)
}
