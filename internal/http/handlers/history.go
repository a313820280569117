package handlers

import (
	"net/http"
	"time"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/domain"
)

type historyItem struct {
	ID           string                 `json:"id"`
	Status       string                 `json:"status"`
	OutputURL    string                 `json:"outputUrl,omitempty"`
	ThumbnailURL string                 `json:"thumbnailUrl,omitempty"`
	Options      domain.GenerateOptions `json:"options"`
	CreatedAt    string                 `json:"createdAt"`
}

// History returns all known jobs, newest first.
func (a *App) History(w http.ResponseWriter, r *http.Request) {
	gens := a.Service.History()
	items := make([]historyItem, len(gens))
	for i, gen := range gens {
		items[i] = historyItem{
			ID:           gen.ID,
			Status:       string(gen.Status),
			OutputURL:    gen.OutputURL,
			ThumbnailURL: gen.ThumbnailURL,
			Options:      gen.Options,
			CreatedAt:    gen.CreatedAt.Format(time.RFC3339),
		}
	}
	a.json(w, http.StatusOK, items)
}
