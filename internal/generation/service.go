package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/domain"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/imaging"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/prompt"
	imageprov "github.com/iboss21/Rapper-Toon-Sheet/internal/providers/image"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/storage"
)

// Service tracks generation jobs and drives each one's async pipeline.
// Creation returns immediately; the pipeline goroutine is the sole mutator
// of its own record and absorbs every failure into the record's terminal
// state. There are no retries and no cancellation once a job has started.
type Service struct {
	store     Store
	generator imageprov.Generator
	artifacts storage.Store
	logger    zerolog.Logger
}

func NewService(store Store, generator imageprov.Generator, artifacts storage.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		generator: generator,
		artifacts: artifacts,
		logger:    logger,
	}
}

// Create inserts a pending record, launches the pipeline and returns the
// record's immediate snapshot. The caller is responsible for validating the
// request beforehand.
func (s *Service) Create(images [][]byte, opts domain.GenerateOptions) domain.Generation {
	gen := domain.Generation{
		ID:        uuid.NewString(),
		Status:    domain.StatusPending,
		Options:   opts,
		CreatedAt: time.Now().UTC(),
	}
	s.store.Insert(gen)

	go s.process(gen.ID, images, opts)

	return gen
}

// Get returns the current snapshot of a job.
func (s *Service) Get(id string) (domain.Generation, bool) {
	return s.store.Get(id)
}

// History returns all known jobs, newest first.
func (s *Service) History() []domain.Generation {
	return s.store.List()
}

func (s *Service) process(id string, images [][]byte, opts domain.GenerateOptions) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(id, fmt.Errorf("panic: %v", r))
		}
	}()

	// The pipeline outlives the originating request and has no cancellation
	// primitive; the provider's own attempt ceiling bounds it.
	ctx := context.Background()

	s.store.Update(id, func(gen *domain.Generation) {
		gen.Status = domain.StatusProcessing
	})
	s.logger.Info().Str("id", id).Msg("starting generation")

	nickname := prompt.SanitizeNickname(opts.Nickname)
	if !prompt.ValidNickname(nickname) {
		nickname = prompt.DefaultNickname
	}
	tpl := prompt.Build(opts, nickname)

	data, err := s.generator.Generate(ctx, tpl, images, opts.Seed)
	if err != nil {
		s.fail(id, err)
		return
	}
	if len(data) == 0 {
		s.fail(id, errors.New("no image generated"))
		return
	}

	outputName := id + ".png"
	if err := s.artifacts.Save(ctx, outputName, data); err != nil {
		s.fail(id, err)
		return
	}

	thumb, err := imaging.Thumbnail(data)
	if err != nil {
		s.fail(id, err)
		return
	}
	thumbName := id + "_thumb.jpg"
	if err := s.artifacts.Save(ctx, thumbName, thumb); err != nil {
		s.fail(id, err)
		return
	}

	outputURL := s.artifacts.URL(outputName)
	thumbURL := s.artifacts.URL(thumbName)
	s.store.Update(id, func(gen *domain.Generation) {
		gen.OutputURL = outputURL
		gen.ThumbnailURL = thumbURL
		gen.Status = domain.StatusCompleted
	})
	s.logger.Info().Str("id", id).Str("output_url", outputURL).Msg("generation completed")
}

func (s *Service) fail(id string, err error) {
	s.store.Update(id, func(gen *domain.Generation) {
		gen.Status = domain.StatusFailed
		gen.Error = err.Error()
	})
	s.logger.Error().Err(err).Str("id", id).Msg("generation failed")
}
