package utils

import (
	"testing"
)

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"target_type": "Zone", "chart_type": "bar"}`,
			want: map[string]interface{}{
				"target_type": "Zone",
				"chart_type":  "bar",
			},
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"visualization_metric": "price", "search_keywords": ["VSIP"]}` + "\n```",
			want: map[string]interface{}{
				"visualization_metric": "price",
				"search_keywords":      []interface{}{"VSIP"},
			},
		},
		{
			name:  "Reasoning block before JSON",
			input: "<think>The user asks about {prices} in Bình Dương</think>\n{\"filter_mode\": \"province\"}",
			want: map[string]interface{}{
				"filter_mode": "province",
			},
		},
		{
			name:  "JSON with surrounding text",
			input: `Kết quả: {"filter_mode": "specific_names", "count": 5} xong.`,
			want: map[string]interface{}{
				"filter_mode": "specific_names",
				"count":       float64(5),
			},
		},
		{
			name:  "JSON with trailing comma",
			input: `{"chart_type": "pie", "value": 40,}`,
			want: map[string]interface{}{
				"chart_type": "pie",
				"value":      float64(40),
			},
		},
		{
			name:  "JSON with unquoted keys",
			input: `{metric: "area", value: 100}`,
			want: map[string]interface{}{
				"metric": "area",
				"value":  float64(100),
			},
		},
		{
			name:  "JSON with single quotes",
			input: `{'metric': 'area', 'operator': 'gt'}`,
			want: map[string]interface{}{
				"metric":   "area",
				"operator": "gt",
			},
		},
		{
			name:    "Empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "Only a reasoning block",
			input:   "<think>no answer</think>",
			wantErr: true,
		},
		{
			name:    "Invalid JSON",
			input:   "not json at all",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseAIJSON(tt.input, &got)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAIJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Errorf("ParseAIJSON() got = %v, want %v", got, tt.want)
				}
				for k, v := range tt.want {
					if _, isSlice := v.([]interface{}); isSlice {
						continue
					}
					if got[k] != v {
						t.Errorf("ParseAIJSON()[%q] = %v, want %v", k, got[k], v)
					}
				}
			}
		})
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "JSON code block with json tag",
			input: "```json\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "JSON code block without tag",
			input: "```\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "No code block",
			input: `{"test": true}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractFromMarkdown(tt.input)
			if got != tt.want {
				t.Errorf("extractFromMarkdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBalancedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Simple object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "Nested objects",
			input: `{"a": {"b": 2}} trailing`,
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "Object with string containing braces",
			input: `{"text": "Hello {world}"}`,
			want:  `{"text": "Hello {world}"}`,
		},
		{
			name:  "Unbalanced",
			input: `{"a": {"b": 2}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalancedBraces(tt.input, '{', '}')
			if got != tt.want {
				t.Errorf("extractBalancedBraces() = %v, want %v", got, tt.want)
			}
		})
	}
}
