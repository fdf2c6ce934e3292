package providers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-pro"

// Gemini implements the Generator interface on the official SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a new Gemini provider.
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	model := g.client.GenerativeModel(g.model)
	// Temperature 0 keeps repeated calls as stable as the model allows.
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemInstruction)},
		}
	}

	var resp GenerateResponse
	err := retryWithBackoff(ctx, 3, func() error {
		result, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
		if err != nil {
			return classifyGoogleError(err)
		}
		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return fmt.Errorf("no content in response")
		}

		var content string
		for _, part := range result.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
		if content == "" {
			return fmt.Errorf("empty text content in response")
		}

		resp = GenerateResponse{Content: content}
		if result.UsageMetadata != nil {
			resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
		}
		return nil
	})

	return resp, err
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func classifyGoogleError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return &rateLimitError{retryable: true}
		case 401, 403:
			return &authError{message: apiErr.Message}
		}
	}
	return fmt.Errorf("gemini request: %w", err)
}
