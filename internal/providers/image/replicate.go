package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/prompt"
)

// ReplicateOptions configures the poll-based Replicate provider.
type ReplicateOptions struct {
	APIToken   string
	BaseURL    string
	Model      string
	HTTPClient *http.Client

	// PollInterval and MaxAttempts bound the status-check loop. Defaults:
	// 5 seconds and 60 attempts, a 5-minute ceiling.
	PollInterval time.Duration
	MaxAttempts  int
}

// Replicate submits a prediction, then polls its status at a fixed interval
// until the remote side reports a terminal state or the attempt ceiling is
// exhausted.
type Replicate struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	model        string
	pollInterval time.Duration
	maxAttempts  int
}

func NewReplicate(opts ReplicateOptions) *Replicate {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.replicate.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "stability-ai/sdxl:latest"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 60
	}
	return &Replicate{
		httpClient:   client,
		baseURL:      base,
		token:        strings.TrimSpace(opts.APIToken),
		model:        model,
		pollInterval: interval,
		maxAttempts:  attempts,
	}
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Output json.RawMessage `json:"output"`
	Detail string          `json:"detail"`
}

// firstOutput handles both output shapes Replicate models use: an array of
// URLs or a single URL string.
func (p *replicatePrediction) firstOutput() string {
	if len(p.Output) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(p.Output, &list); err == nil {
		if len(list) > 0 {
			return list[0]
		}
		return ""
	}
	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		return single
	}
	return ""
}

func (r *Replicate) Generate(ctx context.Context, tpl prompt.Template, images [][]byte, seed *int) ([]byte, error) {
	if r.token == "" {
		return nil, errors.New("replicate: API token is missing")
	}

	input := map[string]any{
		"prompt":          tpl.UserPrompt,
		"negative_prompt": tpl.NegativePrompt,
		"width":           1024,
		"height":          1792,
		"num_outputs":     1,
	}
	if len(images) > 0 && len(images[0]) > 0 {
		input["image"] = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(images[0])
		// Keep the result recognizably close to the reference photo.
		input["prompt_strength"] = 0.8
	}
	if seed != nil {
		input["seed"] = *seed
	}

	pred, err := r.createPrediction(ctx, input)
	if err != nil {
		return nil, err
	}

	attempts := 0
	for pred.Status == "starting" || pred.Status == "processing" {
		if attempts >= r.maxAttempts {
			return nil, errors.New("replicate: generation timeout")
		}
		select {
		case <-time.After(r.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		pred, err = r.getPrediction(ctx, pred.ID)
		if err != nil {
			return nil, err
		}
		attempts++
	}

	if pred.Status == "failed" {
		if pred.Error != "" {
			return nil, fmt.Errorf("replicate: %s", pred.Error)
		}
		return nil, errors.New("replicate: generation failed")
	}

	outputURL := pred.firstOutput()
	if outputURL == "" {
		return nil, errors.New("replicate: no output image")
	}

	data, err := fetchImage(ctx, r.httpClient, outputURL)
	if err != nil {
		return nil, fmt.Errorf("replicate: %w", err)
	}
	return data, nil
}

func (r *Replicate) createPrediction(ctx context.Context, input map[string]any) (*replicatePrediction, error) {
	body, err := json.Marshal(map[string]any{
		"version": r.model,
		"input":   input,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+r.token)

	return r.doPrediction(req)
}

func (r *Replicate) getPrediction(ctx context.Context, id string) (*replicatePrediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/predictions/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+r.token)

	return r.doPrediction(req)
}

func (r *Replicate) doPrediction(req *http.Request) (*replicatePrediction, error) {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: %w", err)
	}
	defer resp.Body.Close()

	var pred replicatePrediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("replicate: http %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("replicate: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if pred.Detail != "" {
			return nil, fmt.Errorf("replicate: %s", pred.Detail)
		}
		return nil, fmt.Errorf("replicate: http %d", resp.StatusCode)
	}
	return &pred, nil
}

var _ Generator = (*Replicate)(nil)
