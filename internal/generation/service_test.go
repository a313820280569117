package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/domain"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/prompt"
)

type stubGenerator struct {
	mu       sync.Mutex
	data     []byte
	err      error
	panicMsg string
	lastTpl  prompt.Template
}

func (g *stubGenerator) Generate(ctx context.Context, tpl prompt.Template, images [][]byte, seed *int) ([]byte, error) {
	g.mu.Lock()
	g.lastTpl = tpl
	g.mu.Unlock()
	if g.panicMsg != "" {
		panic(g.panicMsg)
	}
	return g.data, g.err
}

func (g *stubGenerator) template() prompt.Template {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastTpl
}

type stubArtifacts struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newStubArtifacts() *stubArtifacts {
	return &stubArtifacts{files: make(map[string][]byte)}
}

func (s *stubArtifacts) Save(ctx context.Context, name string, data []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
	return nil
}

func (s *stubArtifacts) URL(name string) string { return "/outputs/" + name }

func (s *stubArtifacts) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

func (s *stubArtifacts) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[name]
	return ok
}

func posterPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 640, 640))
	for x := 0; x < 640; x++ {
		for y := 0; y < 640; y++ {
			img.Set(x, y, color.RGBA{R: 40, G: 40, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func waitTerminal(t *testing.T, svc *Service, id string) domain.Generation {
	t.Helper()
	require.Eventually(t, func() bool {
		gen, ok := svc.Get(id)
		return ok && gen.Status.Terminal()
	}, 2*time.Second, 2*time.Millisecond, "job %s never reached a terminal status", id)
	gen, _ := svc.Get(id)
	return gen
}

func testOptions() domain.GenerateOptions {
	return domain.GenerateOptions{
		StylePreset: "anime_ish",
		Layout:      "single_poster",
		Background:  "transparent",
		Nickname:    "ACE",
	}
}

func TestCreateReturnsPendingSnapshot(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubGenerator{data: posterPNG(t)}, newStubArtifacts(), zerolog.Nop())

	gen := svc.Create([][]byte{[]byte("img")}, testOptions())

	assert.Equal(t, domain.StatusPending, gen.Status)
	assert.NotEmpty(t, gen.ID)
	assert.False(t, gen.CreatedAt.IsZero())
	assert.Empty(t, gen.OutputURL)
	assert.Empty(t, gen.Error)
}

func TestCreateIssuesUniqueIDs(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubGenerator{data: posterPNG(t)}, newStubArtifacts(), zerolog.Nop())

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		gen := svc.Create([][]byte{[]byte("img")}, testOptions())
		require.False(t, seen[gen.ID], "duplicate id %s", gen.ID)
		seen[gen.ID] = true
	}
}

func TestPipelineCompletes(t *testing.T) {
	artifacts := newStubArtifacts()
	generator := &stubGenerator{data: posterPNG(t)}
	svc := NewService(NewMemoryStore(), generator, artifacts, zerolog.Nop())

	created := svc.Create([][]byte{[]byte("img")}, testOptions())
	gen := waitTerminal(t, svc, created.ID)

	require.Equal(t, domain.StatusCompleted, gen.Status)
	assert.Equal(t, "/outputs/"+gen.ID+".png", gen.OutputURL)
	assert.Equal(t, "/outputs/"+gen.ID+"_thumb.jpg", gen.ThumbnailURL)
	assert.Empty(t, gen.Error)
	assert.True(t, artifacts.has(gen.ID+".png"))
	assert.True(t, artifacts.has(gen.ID+"_thumb.jpg"))

	assert.Contains(t, generator.template().UserPrompt, "ACE")
}

func TestPipelineFailsOnProviderError(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubGenerator{err: errors.New("replicate: generation timeout")}, newStubArtifacts(), zerolog.Nop())

	created := svc.Create([][]byte{[]byte("img")}, testOptions())
	gen := waitTerminal(t, svc, created.ID)

	require.Equal(t, domain.StatusFailed, gen.Status)
	assert.Contains(t, gen.Error, "timeout")
	assert.Empty(t, gen.OutputURL)
	assert.Empty(t, gen.ThumbnailURL)
}

func TestPipelineFailsOnEmptyOutput(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubGenerator{data: nil}, newStubArtifacts(), zerolog.Nop())

	created := svc.Create([][]byte{[]byte("img")}, testOptions())
	gen := waitTerminal(t, svc, created.ID)

	require.Equal(t, domain.StatusFailed, gen.Status)
	assert.Equal(t, "no image generated", gen.Error)
}

func TestPipelineFailsOnStorageError(t *testing.T) {
	artifacts := newStubArtifacts()
	artifacts.saveErr = errors.New("storage: disk full")
	svc := NewService(NewMemoryStore(), &stubGenerator{data: posterPNG(t)}, artifacts, zerolog.Nop())

	created := svc.Create([][]byte{[]byte("img")}, testOptions())
	gen := waitTerminal(t, svc, created.ID)

	require.Equal(t, domain.StatusFailed, gen.Status)
	assert.Contains(t, gen.Error, "disk full")
}

func TestPipelineFailsOnUndecodableOutput(t *testing.T) {
	// Thumbnail derivation needs a decodable image.
	svc := NewService(NewMemoryStore(), &stubGenerator{data: []byte("not an image")}, newStubArtifacts(), zerolog.Nop())

	created := svc.Create([][]byte{[]byte("img")}, testOptions())
	gen := waitTerminal(t, svc, created.ID)

	require.Equal(t, domain.StatusFailed, gen.Status)
	assert.NotEmpty(t, gen.Error)
}

func TestPipelineRecoversFromPanic(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubGenerator{panicMsg: "boom"}, newStubArtifacts(), zerolog.Nop())

	created := svc.Create([][]byte{[]byte("img")}, testOptions())
	gen := waitTerminal(t, svc, created.ID)

	require.Equal(t, domain.StatusFailed, gen.Status)
	assert.Contains(t, gen.Error, "panic")
	assert.Contains(t, gen.Error, "boom")
}

func TestPipelineSubstitutesDisallowedNickname(t *testing.T) {
	generator := &stubGenerator{data: posterPNG(t)}
	svc := NewService(NewMemoryStore(), generator, newStubArtifacts(), zerolog.Nop())

	opts := testOptions()
	opts.Nickname = "kill squad"
	created := svc.Create([][]byte{[]byte("img")}, opts)
	gen := waitTerminal(t, svc, created.ID)

	require.Equal(t, domain.StatusCompleted, gen.Status)
	tpl := generator.template()
	assert.NotContains(t, tpl.UserPrompt, "kill squad")
	assert.Contains(t, tpl.UserPrompt, fmt.Sprintf("NICKNAME: %q", prompt.DefaultNickname))
}

func TestGetUnknownID(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubGenerator{}, newStubArtifacts(), zerolog.Nop())
	_, ok := svc.Get("missing")
	assert.False(t, ok)
}

func TestHistoryNewestFirst(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubGenerator{data: posterPNG(t)}, newStubArtifacts(), zerolog.Nop())

	var ids []string
	for i := 0; i < 3; i++ {
		gen := svc.Create([][]byte{[]byte("img")}, testOptions())
		ids = append(ids, gen.ID)
		time.Sleep(2 * time.Millisecond)
	}

	history := svc.History()
	require.Len(t, history, 3)
	assert.Equal(t, ids[2], history[0].ID)
	assert.Equal(t, ids[1], history[1].ID)
	assert.Equal(t, ids[0], history[2].ID)
}

func TestStatusObservationsNeverRegress(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubGenerator{data: posterPNG(t)}, newStubArtifacts(), zerolog.Nop())

	created := svc.Create([][]byte{[]byte("img")}, testOptions())

	rank := map[domain.Status]int{
		domain.StatusPending:    0,
		domain.StatusProcessing: 1,
		domain.StatusCompleted:  2,
		domain.StatusFailed:     2,
	}

	last := -1
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		gen, ok := svc.Get(created.ID)
		require.True(t, ok)
		cur := rank[gen.Status]
		require.GreaterOrEqual(t, cur, last, "status regressed to %s", gen.Status)
		last = cur
		if gen.Status.Terminal() {
			// URL fields must be consistent with the terminal status.
			if gen.Status == domain.StatusCompleted {
				require.NotEmpty(t, gen.OutputURL)
				require.NotEmpty(t, gen.ThumbnailURL)
				require.Empty(t, gen.Error)
			}
			return
		}
		// Mid-flight observations must never carry output URLs.
		require.Empty(t, gen.OutputURL)
		require.Empty(t, gen.ThumbnailURL)
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("job never reached a terminal status")
}
