package image

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/prompt"
)

// Generator is the contract implemented by all image generation providers.
//
// Every failure mode (network error, remote-reported failure, missing
// output, timeout) is normalized into the returned error; implementations
// never panic and never retry on their own.
type Generator interface {
	Generate(ctx context.Context, tpl prompt.Template, images [][]byte, seed *int) ([]byte, error)
}

// fetchImage downloads the bytes of a generated image from a provider URL.
func fetchImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("download image: http %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
