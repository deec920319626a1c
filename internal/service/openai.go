package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"iipviz/internal/config"
	"iipviz/internal/model"
	"iipviz/internal/utils"
)

// OpenAIClient handles OpenAI-compatible API interactions
type OpenAIClient struct {
	config      *config.OpenAIConfig
	httpClient  *http.Client
	chunkParser StreamChunkParser // Provider-specific chunk parser
	logger      zerolog.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client with auto-detection of provider
func NewOpenAIClient(cfg *config.OpenAIConfig, logger zerolog.Logger) *OpenAIClient {
	parser, provider := parserFor(cfg.APIBase)
	logger.Info().Str("provider", provider).Str("api_base", cfg.APIBase).Msg("🔧 Completion provider detected")

	return &OpenAIClient{
		config:      cfg,
		chunkParser: parser,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// Model returns the configured chat model
func (c *OpenAIClient) Model() string {
	return c.config.ChatModel
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	TopP           float64         `json:"top_p,omitempty"` // For DeepSeek/NVIDIA API
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`     // For streaming responses
	ExtraBody      map[string]any  `json:"extra_body,omitempty"` // For DeepSeek: {"chat_template_kwargs": {"thinking":True}}
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type       string            `json:"type"` // "json_schema", "json_object" or "text"
	JSONSchema *JSONSchemaFormat `json:"json_schema,omitempty"`
}

// JSONSchemaFormat carries the schema the answer must conform to
type JSONSchemaFormat struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// StreamCallback is called for each chunk in streaming mode
type StreamCallback func(chunk *StreamChunk) error

// errDisabled is returned by every call when no API key is configured
var errDisabled = errors.New("OpenAI API is not enabled (missing API key)")

// applyDefaults fills the request from configuration where the caller left it empty
func (c *OpenAIClient) applyDefaults(req *ChatCompletionRequest) {
	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 && c.config.ChatTemperature > 0 {
		req.Temperature = c.config.ChatTemperature
	}
	if req.TopP == 0 && c.config.ChatTopP > 0 {
		req.TopP = c.config.ChatTopP
	}
	if req.MaxTokens == 0 && c.config.ChatMaxTokens > 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}

	if req.ExtraBody == nil && c.config.ChatExtraBody != "" {
		var extraBody map[string]any
		if err := json.Unmarshal([]byte(c.config.ChatExtraBody), &extraBody); err == nil {
			req.ExtraBody = extraBody
		} else {
			c.logger.Warn().Err(err).Msg("Failed to parse OPENAI_CHAT_EXTRA_BODY")
		}
	}
}

func (c *OpenAIClient) newRequest(ctx context.Context, req ChatCompletionRequest) (*http.Request, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
	return httpReq, nil
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.config.Enabled {
		return nil, errDisabled
	}
	c.applyDefaults(&req)
	req.Stream = false

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// ChatCompletionStream performs a streaming chat completion request
func (c *OpenAIClient) ChatCompletionStream(ctx context.Context, req ChatCompletionRequest, callback StreamCallback) error {
	if !c.config.Enabled {
		return errDisabled
	}
	c.applyDefaults(&req)
	req.Stream = true

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncateBody(body))
	}

	// Process streaming response
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read stream: %w", err)
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Parse SSE format: "data: {...}"
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		data := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))

		if bytes.Equal(data, []byte("[DONE]")) {
			break
		}

		chunk, err := c.chunkParser.ParseChunk(data)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse stream chunk")
			continue
		}

		if err := callback(chunk); err != nil {
			return fmt.Errorf("callback error: %w", err)
		}
	}

	return nil
}

// filterSpecSchema is the strict response schema for ExtractFilterSpec.
// Strict mode requires every property to be listed as required; optional
// numbers are expressed as nullable.
var filterSpecSchema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["target_type", "filter_mode", "search_keywords", "visualization_metric", "chart_type", "numeric_filters"],
  "properties": {
    "target_type": {"type": "string", "enum": ["Zone", "Cluster"]},
    "filter_mode": {"type": "string", "enum": ["province", "specific_names"]},
    "search_keywords": {"type": "array", "items": {"type": "string"}},
    "visualization_metric": {"type": "string", "enum": ["price", "area", "dual"]},
    "chart_type": {"type": "string", "enum": ["bar", "horizontal_bar", "pie", "line"]},
    "numeric_filters": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["metric", "operator", "value", "min", "max"],
        "properties": {
          "metric": {"type": "string", "enum": ["price", "area"]},
          "operator": {"type": "string", "enum": ["gt", "lt", "gte", "lte", "eq", "between"]},
          "value": {"type": ["number", "null"]},
          "min": {"type": ["number", "null"]},
          "max": {"type": ["number", "null"]}
        }
      }
    }
  }
}`)

const extractionPrompt = `You convert questions about Vietnamese industrial real estate into chart filters.
The dataset lists industrial zones (Khu công nghiệp, KCN) and industrial clusters (Cụm công nghiệp, CCN)
with their province, land rental price (USD/m²/term) and total area (hectares).

Fill every field:
- target_type: "Cluster" when the user asks about cụm công nghiệp / CCN, otherwise "Zone".
- filter_mode: "province" when the user names provinces only, "specific_names" when the user names
  specific zones or clusters, or names nothing at all.
- search_keywords: province names exactly as listed below when filter_mode is "province";
  zone or cluster names without the "Khu công nghiệp"/"KCN" prefix when "specific_names"
  (keep numbering such as "VSIP II"). Empty when nothing is named.
- visualization_metric: "price" for giá/giá thuê/price, "area" for diện tích/quy mô/area,
  "dual" when both or neither are mentioned.
- chart_type: "pie" for biểu đồ tròn, "line" for biểu đồ đường, "horizontal_bar" for cột ngang,
  otherwise "bar".
- numeric_filters: one entry per numeric condition. Prices are in USD, areas in hectares.
  Use "between" with min and max for ranges ("từ 50 đến 100"), otherwise value.
  Set unused numbers to null.

Known provinces: %s

Examples:
Question: "Vẽ biểu đồ giá thuê đất các KCN ở Bắc Ninh"
Answer: {"target_type":"Zone","filter_mode":"province","search_keywords":["Bắc Ninh"],"visualization_metric":"price","chart_type":"bar","numeric_filters":[]}

Question: "So sánh diện tích VSIP II và Amata bằng biểu đồ tròn"
Answer: {"target_type":"Zone","filter_mode":"specific_names","search_keywords":["VSIP II","Amata"],"visualization_metric":"area","chart_type":"pie","numeric_filters":[]}

Question: "Cụm công nghiệp ở Bình Dương có diện tích trên 50 ha"
Answer: {"target_type":"Cluster","filter_mode":"province","search_keywords":["Bình Dương"],"visualization_metric":"area","chart_type":"bar","numeric_filters":[{"metric":"area","operator":"gt","value":50,"min":null,"max":null}]}

Respond ONLY with the JSON object.`

// buildExtractionRequest builds the completion request for a query
func (c *OpenAIClient) buildExtractionRequest(query string, gazetteer model.Gazetteer) ChatCompletionRequest {
	provinces := "(unknown)"
	if len(gazetteer.Provinces) > 0 {
		provinces = strings.Join(gazetteer.Provinces, ", ")
	}

	return ChatCompletionRequest{
		Model: c.config.ChatModel,
		Messages: []ChatMessage{
			{Role: "system", Content: fmt.Sprintf(extractionPrompt, provinces)},
			{Role: "user", Content: query},
		},
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchemaFormat{
				Name:   "filter_spec",
				Schema: filterSpecSchema,
				Strict: true,
			},
		},
	}
}

// ExtractFilterSpec asks the completion service for the filter of a query
func (c *OpenAIClient) ExtractFilterSpec(ctx context.Context, query string, gazetteer model.Gazetteer) (*AIFilterResponse, error) {
	if !c.config.Enabled {
		return nil, errDisabled
	}

	resp, err := c.ChatCompletion(ctx, c.buildExtractionRequest(query, gazetteer))
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from completion service")
	}

	// Use robust JSON parser to handle various AI output formats
	var result AIFilterResponse
	content := resp.Choices[0].Message.Content
	if err := utils.ParseAIJSON(content, &result); err != nil {
		c.logger.Debug().Str("content", content).Msg("Failed to parse AI response")
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	c.logger.Debug().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("✅ Filter extracted by completion service")

	return &result, nil
}

// ExtractFilterSpecStream extracts the filter while forwarding streamed tokens
func (c *OpenAIClient) ExtractFilterSpecStream(ctx context.Context, query string, gazetteer model.Gazetteer, callback func(thinking, content string) error) (*AIFilterResponse, error) {
	if !c.config.Enabled {
		return nil, errDisabled
	}

	// Accumulate the response
	var fullContent strings.Builder
	chunkCount := 0

	err := c.ChatCompletionStream(ctx, c.buildExtractionRequest(query, gazetteer), func(chunk *StreamChunk) error {
		chunkCount++

		// Handle thinking content (provider-specific, e.g., DeepSeek)
		if chunk.ThinkingContent != "" {
			if err := callback(chunk.ThinkingContent, ""); err != nil {
				return err
			}
		}

		if chunk.Content != "" {
			fullContent.WriteString(chunk.Content)
			if err := callback("", chunk.Content); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("streaming error: %w", err)
	}

	c.logger.Debug().Int("chunks", chunkCount).Int("content_len", fullContent.Len()).Msg("🎉 Streaming completed")

	var result AIFilterResponse
	if err := utils.ParseAIJSON(fullContent.String(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return &result, nil
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
