package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/prompt"
)

// OpenAIOptions configures the single-shot OpenAI Images provider.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// OpenAI generates a poster with one synchronous call to the OpenAI Images
// endpoint. DALL-E 3 has no image conditioning, so the uploaded photos only
// steer the request through the prompt text.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

const openAIPromptLimit = 4000

// NewOpenAI constructs the provider. A nil HTTPClient gets a default with a
// generous timeout since generation calls are slow.
func NewOpenAI(opts OpenAIOptions) *OpenAI {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &OpenAI{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
	}
}

type openAIImageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Style   string `json:"style"`
}

type openAIImageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenAI) Generate(ctx context.Context, tpl prompt.Template, images [][]byte, seed *int) ([]byte, error) {
	if o.apiKey == "" {
		return nil, errors.New("openai: API key is missing")
	}

	fullPrompt := tpl.UserPrompt + "\n\nStyle: " + tpl.SystemPrompt
	if runes := []rune(fullPrompt); len(runes) > openAIPromptLimit {
		fullPrompt = string(runes[:openAIPromptLimit])
	}

	body, err := json.Marshal(openAIImageRequest{
		Model:   "dall-e-3",
		Prompt:  fullPrompt,
		N:       1,
		Size:    "1024x1792",
		Quality: "hd",
		Style:   "vivid",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	var out openAIImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("openai: http %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error.Message != "" {
			return nil, fmt.Errorf("openai: %s", out.Error.Message)
		}
		return nil, fmt.Errorf("openai: http %d", resp.StatusCode)
	}
	if len(out.Data) == 0 || strings.TrimSpace(out.Data[0].URL) == "" {
		return nil, errors.New("openai: no image URL returned")
	}

	data, err := fetchImage(ctx, o.httpClient, out.Data[0].URL)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return data, nil
}

var _ Generator = (*OpenAI)(nil)
