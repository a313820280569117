package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/domain"
)

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	store.Insert(domain.Generation{ID: "a", Status: domain.StatusPending, CreatedAt: time.Now()})

	got, ok := store.Get("a")
	require.True(t, ok)

	// Mutating the returned value must not leak into the store.
	got.Status = domain.StatusFailed
	again, _ := store.Get("a")
	assert.Equal(t, domain.StatusPending, again.Status)
}

func TestMemoryStoreUpdateIgnoresTerminalRecords(t *testing.T) {
	store := NewMemoryStore()
	store.Insert(domain.Generation{ID: "a", Status: domain.StatusPending})

	store.Update("a", func(gen *domain.Generation) {
		gen.Status = domain.StatusFailed
		gen.Error = "boom"
	})

	store.Update("a", func(gen *domain.Generation) {
		gen.Status = domain.StatusCompleted
		gen.OutputURL = "/should/not/happen"
	})

	got, _ := store.Get("a")
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
	assert.Empty(t, got.OutputURL)
}

func TestMemoryStoreUpdateUnknownIDIsNoop(t *testing.T) {
	store := NewMemoryStore()
	store.Update("ghost", func(gen *domain.Generation) {
		t.Fatalf("update fn must not run for unknown id")
	})
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	store.Insert(domain.Generation{ID: "old", CreatedAt: base})
	store.Insert(domain.Generation{ID: "mid", CreatedAt: base.Add(time.Second)})
	store.Insert(domain.Generation{ID: "new", CreatedAt: base.Add(2 * time.Second)})

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)
}

func TestMemoryStoreListTiesKeepInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	store.Insert(domain.Generation{ID: "first", CreatedAt: ts})
	store.Insert(domain.Generation{ID: "second", CreatedAt: ts})

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].ID)
	assert.Equal(t, "second", list[1].ID)
}
