package service

import (
	"encoding/json"
	"strings"
)

// StreamChunkParser is the interface for provider-specific chunk parsing
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}

// OpenAIStreamChunkParser parses standard OpenAI-format streaming chunks
type OpenAIStreamChunkParser struct{}

// ParseChunk converts a standard OpenAI chunk to a generic StreamChunk
func (p *OpenAIStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var rawChunk struct {
		Choices []struct {
			Delta struct {
				Role    string `json:"role,omitempty"`
				Content string `json:"content,omitempty"`
			} `json:"delta"`
			FinishReason string `json:"finish_reason,omitempty"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(data, &rawChunk); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{}
	if len(rawChunk.Choices) > 0 {
		delta := rawChunk.Choices[0].Delta
		chunk.Role = delta.Role
		chunk.Content = delta.Content
		chunk.Done = rawChunk.Choices[0].FinishReason != ""
	}
	return chunk, nil
}

// ReasoningStreamChunkParser parses chunks from providers that stream the
// model's reasoning next to the answer (NVIDIA NIM, DeepSeek, OpenRouter)
type ReasoningStreamChunkParser struct{}

// ParseChunk converts a reasoning-capable chunk to a generic StreamChunk
func (p *ReasoningStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var rawChunk struct {
		Choices []struct {
			Delta struct {
				Role             string  `json:"role,omitempty"`
				Content          string  `json:"content,omitempty"`
				ReasoningContent *string `json:"reasoning_content,omitempty"` // NVIDIA, DeepSeek
				Reasoning        *string `json:"reasoning,omitempty"`         // OpenRouter
			} `json:"delta"`
			FinishReason string `json:"finish_reason,omitempty"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(data, &rawChunk); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{}
	if len(rawChunk.Choices) > 0 {
		delta := rawChunk.Choices[0].Delta
		chunk.Role = delta.Role
		chunk.Content = delta.Content
		switch {
		case delta.ReasoningContent != nil:
			chunk.ThinkingContent = *delta.ReasoningContent
		case delta.Reasoning != nil:
			chunk.ThinkingContent = *delta.Reasoning
		}
		chunk.Done = rawChunk.Choices[0].FinishReason != ""
	}
	return chunk, nil
}

// IsOpenAIProvider checks if the base URL is the official OpenAI API
func IsOpenAIProvider(baseURL string) bool {
	return strings.Contains(baseURL, "api.openai.com")
}

// IsReasoningProvider checks if the base URL streams reasoning tokens
func IsReasoningProvider(baseURL string) bool {
	for _, host := range []string{"integrate.api.nvidia.com", "api.deepseek.com", "openrouter.ai"} {
		if strings.Contains(baseURL, host) {
			return true
		}
	}
	return false
}

// parserFor selects the chunk parser for a base URL; unknown providers get the OpenAI format
func parserFor(baseURL string) (StreamChunkParser, string) {
	switch {
	case IsReasoningProvider(baseURL):
		return &ReasoningStreamChunkParser{}, "reasoning"
	case IsOpenAIProvider(baseURL):
		return &OpenAIStreamChunkParser{}, "openai"
	default:
		return &OpenAIStreamChunkParser{}, "openai-compatible"
	}
}
