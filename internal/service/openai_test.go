package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iipviz/internal/config"
	"iipviz/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAIClient(&config.OpenAIConfig{
		APIKey:        "test-key",
		APIBase:       srv.URL,
		ChatModel:     "test-model",
		ChatMaxTokens: 256,
		Timeout:       5,
		Enabled:       true,
	}, zerolog.Nop())
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"model":   "test-model",
		"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"}},
		"usage":   map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func TestOpenAIClient_ExtractFilterSpec(t *testing.T) {
	var captured ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody(`{"target_type":"Zone","filter_mode":"province","search_keywords":["Bắc Ninh"],"visualization_metric":"price","chart_type":"bar","numeric_filters":[]}`))
	})

	resp, err := client.ExtractFilterSpec(context.Background(), "Vẽ giá KCN Bắc Ninh", model.Gazetteer{Provinces: []string{"Bắc Ninh", "Hà Nam"}})
	require.NoError(t, err)

	spec, err := resp.ToFilterSpec()
	require.NoError(t, err)
	assert.Equal(t, model.ModeByProvince, spec.FilterMode)
	assert.Equal(t, []string{"Bắc Ninh"}, spec.SearchKeywords)

	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, 256, captured.MaxTokens)
	assert.False(t, captured.Stream)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_schema", captured.ResponseFormat.Type)
	require.NotNil(t, captured.ResponseFormat.JSONSchema)
	assert.True(t, captured.ResponseFormat.JSONSchema.Strict)
	assert.True(t, json.Valid(captured.ResponseFormat.JSONSchema.Schema))
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[0].Content, "Known provinces: Bắc Ninh, Hà Nam")
	assert.Equal(t, "Vẽ giá KCN Bắc Ninh", captured.Messages[1].Content)
}

func TestOpenAIClient_ExtractFilterSpec_Fenced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody("<think>price question</think>\n```json\n{\"visualization_metric\": \"area\",}\n```"))
	})

	resp, err := client.ExtractFilterSpec(context.Background(), "diện tích", model.Gazetteer{})
	require.NoError(t, err)
	require.NotNil(t, resp.VisualizationMetric)
	assert.Equal(t, "area", *resp.VisualizationMetric)
}

func TestOpenAIClient_Errors(t *testing.T) {
	t.Run("Status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		})
		_, err := client.ExtractFilterSpec(context.Background(), "q", model.Gazetteer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("No choices", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices":[]}`)
		})
		_, err := client.ExtractFilterSpec(context.Background(), "q", model.Gazetteer{})
		assert.Error(t, err)
	})

	t.Run("Not JSON", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, completionBody("I cannot help with that."))
		})
		_, err := client.ExtractFilterSpec(context.Background(), "q", model.Gazetteer{})
		assert.Error(t, err)
	})

	t.Run("Disabled", func(t *testing.T) {
		client := NewOpenAIClient(&config.OpenAIConfig{APIBase: "http://127.0.0.1:1"}, zerolog.Nop())
		assert.False(t, client.IsEnabled())
		_, err := client.ExtractFilterSpec(context.Background(), "q", model.Gazetteer{})
		assert.ErrorIs(t, err, errDisabled)
	})
}

func TestOpenAIClient_ExtractFilterSpecStream(t *testing.T) {
	parts := []string{`{"target_type":"Cluster",`, `"chart_type":"pie",`, `"search_keywords":["Long An"]}`}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		for _, p := range parts {
			chunk, _ := json.Marshal(map[string]any{"choices": []map[string]any{{"delta": map[string]string{"content": p}}}})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var streamed []string
	resp, err := client.ExtractFilterSpecStream(context.Background(), "cụm ở Long An", model.Gazetteer{}, func(thinking, content string) error {
		assert.Empty(t, thinking)
		streamed = append(streamed, content)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, parts, streamed)

	spec, err := resp.ToFilterSpec()
	require.NoError(t, err)
	assert.Equal(t, model.TargetCluster, spec.TargetType)
	assert.Equal(t, model.ChartPie, spec.ChartKind)
	assert.Equal(t, []string{"Long An"}, spec.SearchKeywords)
}

func TestOpenAIClient_StreamCallbackError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"{\"}}]}\n\n")
	})

	_, err := client.ExtractFilterSpecStream(context.Background(), "q", model.Gazetteer{}, func(thinking, content string) error {
		return fmt.Errorf("client gone")
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "client gone"))
}
