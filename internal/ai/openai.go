package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
// (Groq, OpenRouter).
type OpenAIProvider struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
	Headers map[string]string
	Params  SamplingParams
	Client  *http.Client
}

type SamplingParams struct {
	MaxTokens        int     `json:"max_tokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	TopP             float64 `json:"top_p,omitempty"`
	FrequencyPenalty float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64 `json:"presence_penalty,omitempty"`
}

// CompanionParams favours varied, short replies.
var CompanionParams = SamplingParams{
	MaxTokens:        400,
	Temperature:      0.9,
	TopP:             0.9,
	FrequencyPenalty: 0.3,
	PresencePenalty:  0.2,
}

type openAIChatReq struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	SamplingParams
}

type openAIChatResp struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewGroqProvider(baseURL, apiKey, model string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	return &OpenAIProvider{
		Name:    "groq",
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Params:  CompanionParams,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func NewOpenRouterProvider(baseURL, apiKey, model, siteURL, appName string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	h := map[string]string{}
	if siteURL != "" {
		h["HTTP-Referer"] = siteURL
	}
	if appName != "" {
		h["X-Title"] = appName
	}
	return &OpenAIProvider{
		Name:    "openrouter",
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Headers: h,
		Params:  CompanionParams,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if p.Client == nil {
		return "", fmt.Errorf("%s: http client is nil", p.Name)
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return "", fmt.Errorf("%s: api key is required", p.Name)
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		return "", fmt.Errorf("%s: model is required", p.Name)
	}

	b, err := json.Marshal(openAIChatReq{
		Model:          model,
		Messages:       messages,
		SamplingParams: p.Params,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("%s: %s", p.Name, msg)
	}

	var decoded openAIChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%s: empty response", p.Name)
	}
	return decoded.Choices[0].Message.Content, nil
}
