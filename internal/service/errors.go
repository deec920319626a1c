package service

import (
	"errors"
	"fmt"
	"strings"

	"iipviz/internal/model"
)

// ExtractionError is returned when no FilterSpec can be produced for a query
type ExtractionError struct {
	Query string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("intent extraction failed: %v", e.Err)
	}
	return "intent extraction failed"
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError is returned when a query cannot be answered as asked
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// DataError is returned when the filters leave no record
type DataError struct {
	TargetType model.TargetType
}

func (e *DataError) Error() string {
	return fmt.Sprintf("Không tìm thấy %s nào phù hợp.", strings.ToLower(e.TargetType.Label()))
}

// RenderError is returned when the filtered records have nothing to plot
type RenderError struct {
	Metric model.Metric
	Err    error
}

func (e *RenderError) Error() string {
	switch e.Metric {
	case model.MetricPrice:
		return "Thiếu dữ liệu về Giá để vẽ."
	case model.MetricArea:
		return "Thiếu dữ liệu về Diện tích để vẽ."
	default:
		return "Không có đủ dữ liệu giá hoặc diện tích để vẽ biểu đồ tổng quan."
	}
}

func (e *RenderError) Unwrap() error { return e.Err }

// Validation messages
const (
	msgNoCriteria     = "Vui lòng nêu tỉnh/thành phố, tên khu công nghiệp hoặc điều kiện về giá, diện tích."
	msgNotVisualize   = "Câu hỏi không yêu cầu vẽ biểu đồ."
	msgEmptyQuery     = "Câu hỏi trống."
	msgInternalFailed = "Đã xảy ra lỗi khi xử lý yêu cầu."
)

// ToErrorPayload converts a pipeline error into the error payload.
// The second result is false for errors outside the pipeline taxonomy.
func ToErrorPayload(err error) (*model.ErrorPayload, bool) {
	var (
		extractionErr *ExtractionError
		validationErr *ValidationError
		dataErr       *DataError
		renderErr     *RenderError
	)
	switch {
	case errors.As(err, &extractionErr):
		return model.NewErrorPayload(model.ErrorKindExtraction, msgEmptyQuery), true
	case errors.As(err, &validationErr):
		return model.NewErrorPayload(model.ErrorKindValidation, validationErr.Error()), true
	case errors.As(err, &dataErr):
		return model.NewErrorPayload(model.ErrorKindNoData, dataErr.Error()), true
	case errors.As(err, &renderErr):
		return model.NewErrorPayload(model.ErrorKindInsufficientData, renderErr.Error()), true
	default:
		return model.NewErrorPayload(model.ErrorKindInternal, msgInternalFailed), false
	}
}
