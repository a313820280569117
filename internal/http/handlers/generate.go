package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/domain"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/imaging"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/validate"
)

// generateResponse is the snapshot returned on creation and on status polls.
// ThumbnailURL is deliberately absent; it only appears in history items.
type generateResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	OutputURL string `json:"outputUrl,omitempty"`
	CreatedAt string `json:"createdAt"`
	Error     string `json:"error,omitempty"`
}

func toResponse(gen domain.Generation) generateResponse {
	return generateResponse{
		ID:        gen.ID,
		Status:    string(gen.Status),
		OutputURL: gen.OutputURL,
		CreatedAt: gen.CreatedAt.Format(time.RFC3339),
		Error:     gen.Error,
	}
}

// Generate accepts a multipart body with 1-2 image files under "images" and
// a JSON-encoded "options" field, validates it, normalizes the uploads and
// creates a job. The response carries the job's pending snapshot.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, (a.MaxFileBytes+1024)*int64(validate.MaxFiles))
	if err := r.ParseMultipartForm(a.MaxFileBytes); err != nil {
		a.error(w, http.StatusBadRequest, "ValidationError", "invalid multipart body")
		return
	}

	var opts domain.GenerateOptions
	if err := json.Unmarshal([]byte(r.FormValue("options")), &opts); err != nil {
		a.error(w, http.StatusBadRequest, "ValidationError", "Invalid options format")
		return
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}

	if err := validate.Request(opts.Nickname, len(files)); err != nil {
		a.error(w, http.StatusBadRequest, "ValidationError", validationMessage(err))
		return
	}

	images := make([][]byte, 0, len(files))
	for _, fh := range files {
		data, err := a.readUpload(fh)
		if err != nil {
			a.error(w, http.StatusBadRequest, "ValidationError", err.Error())
			return
		}
		processed, err := imaging.Preprocess(data)
		if err != nil {
			a.error(w, http.StatusBadRequest, "ValidationError", "unreadable image file")
			return
		}
		images = append(images, processed)
	}

	a.Logger.Info().Int("files", len(files)).Interface("options", opts).Msg("processing generation request")

	gen := a.Service.Create(images, opts)
	a.json(w, http.StatusOK, toResponse(gen))
}

// GenerationStatus returns the current snapshot of one job.
func (a *App) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gen, ok := a.Service.Get(id)
	if !ok {
		a.error(w, http.StatusNotFound, "NotFound", "Generation not found")
		return
	}
	a.json(w, http.StatusOK, toResponse(gen))
}

func (a *App) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > a.MaxFileBytes {
		return nil, errors.New("file too large")
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !imaging.AllowedContentType(ct) {
		return nil, errors.New("invalid file type, only JPG and PNG are allowed")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("unreadable image file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, a.MaxFileBytes+1))
	if err != nil {
		return nil, errors.New("unreadable image file")
	}
	if int64(len(data)) > a.MaxFileBytes {
		return nil, errors.New("file too large")
	}
	return data, nil
}

// validationMessage strips the sentinel prefix so clients see only the
// human-readable part.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidRequest.Error()+": ")
}
