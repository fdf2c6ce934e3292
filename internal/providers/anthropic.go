package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultAnthropicURL   = "https://api.anthropic.com"
	anthropicMessagesPath = "/v1/messages"
	anthropicAPIVersion   = "2023-06-01"
)

// Anthropic implements the Generator interface for the Anthropic Messages
// API.
type Anthropic struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnthropic creates a new Anthropic provider. ANTHROPIC_API_KEY is
// required; ANTHROPIC_BASE_URL overrides the API host for proxies and
// local test servers.
func NewAnthropic(model string) (*Anthropic, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}

	baseURL := os.Getenv("ANTHROPIC_BASE_URL")
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, anthropicMessagesPath)

	return &Anthropic{
		apiKey:   key,
		model:    model,
		endpoint: baseURL + anthropicMessagesPath,
		client:   &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	payload, err := json.Marshal(a.buildMessage(req))
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	var resp GenerateResponse
	err = retryWithBackoff(ctx, 3, func() error {
		result, err := a.post(ctx, payload)
		if err != nil {
			return err
		}
		content := result.text()
		if content == "" {
			return fmt.Errorf("empty text content in API response")
		}
		resp = GenerateResponse{
			Content:    content,
			TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
		}
		return nil
	})

	return resp, err
}

func (a *Anthropic) buildMessage(req GenerateRequest) messageRequest {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	m := messageRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    req.SystemInstruction,
		Messages: []chatMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
	if req.Temperature > 0 {
		m.Temperature = &req.Temperature
	}
	return m
}

func (a *Anthropic) post(ctx context.Context, payload []byte) (*messageResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode == 429 {
		return nil, &rateLimitError{}
	}
	if httpResp.StatusCode == 401 || httpResp.StatusCode == 403 {
		return nil, &authError{message: string(respBody)}
	}
	if httpResp.StatusCode >= 500 {
		return nil, &serverError{statusCode: httpResp.StatusCode, body: string(respBody)}
	}
	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var result messageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &result, nil
}

type messageRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// text concatenates the text blocks of the response, skipping any other
// block types the API may emit.
func (m *messageResponse) text() string {
	var b strings.Builder
	for _, block := range m.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
