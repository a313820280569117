package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/generation"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Service      *generation.Service
	Logger       zerolog.Logger
	MaxFileBytes int64
	StartedAt    time.Time
}

func NewApp(service *generation.Service, logger zerolog.Logger, maxFileBytes int64) *App {
	return &App{
		Service:      service,
		Logger:       logger,
		MaxFileBytes: maxFileBytes,
		StartedAt:    time.Now(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func (a *App) error(w http.ResponseWriter, code int, kind, msg string) {
	a.json(w, code, errorResponse{Error: kind, Message: msg, StatusCode: code})
}
