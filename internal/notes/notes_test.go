package notes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCategoryByName(t *testing.T) {
	assert.Equal(t, "mood", CategoryByName("mood").Name)
	assert.Equal(t, Categories[0], CategoryByName("unknown"))
}

func TestNew(t *testing.T) {
	now := time.Now()
	n := New("alice", "hello", "todo", now)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "alice", n.Owner)
	assert.Equal(t, CategoryByName("todo").Color, n.Color)
	assert.True(t, n.CreatedAt.Equal(now))
	assert.NotEqual(t, n.ID, New("alice", "hello", "todo", now).ID)
}

func TestNewKeepsUnknownCategory(t *testing.T) {
	n := New("alice", "hello", "dreams", time.Now())
	assert.Equal(t, "dreams", n.Category)
	assert.Equal(t, Categories[0].Color, n.Color)

	blank := New("alice", "hello", "", time.Now())
	assert.Equal(t, Categories[0].Name, blank.Category)
}

func TestNormalize(t *testing.T) {
	n := Note{ID: "abc"}.Normalize()
	assert.Equal(t, Categories[0].Name, n.Category)
	assert.Equal(t, PastelFor("abc"), n.Color)
	assert.Contains(t, Pastels, n.Color)

	kept := Note{ID: "x", Category: "mood", Color: "red"}.Normalize()
	assert.Equal(t, "red", kept.Color)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(
		Note{ID: "b", Owner: "u", CreatedAt: t0.Add(time.Second)},
		Note{ID: "a", Owner: "u", CreatedAt: t0},
		Note{ID: "z", Owner: "other", CreatedAt: t0},
	)

	list, err := m.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)

	require.NoError(t, m.Update(ctx, "u", "a", "edited"))
	assert.ErrorIs(t, m.Update(ctx, "other", "a", "x"), ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "u", "missing"), ErrNotFound)
	require.NoError(t, m.Delete(ctx, "u", "b"))
	assert.Equal(t, 2, m.Len())
}

type flakyStore struct {
	*Memory
	mu    sync.Mutex
	fail  bool
	calls []OpKind
}

func (f *flakyStore) record(k OpKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, k)
	if f.fail {
		return errors.New("backend unavailable")
	}
	return nil
}

func (f *flakyStore) Create(ctx context.Context, n Note) error {
	if err := f.record(OpCreate); err != nil {
		return err
	}
	return f.Memory.Create(ctx, n)
}

func (f *flakyStore) Update(ctx context.Context, owner, id, text string) error {
	if err := f.record(OpUpdate); err != nil {
		return err
	}
	return f.Memory.Update(ctx, owner, id, text)
}

func (f *flakyStore) Delete(ctx context.Context, owner, id string) error {
	if err := f.record(OpDelete); err != nil {
		return err
	}
	return f.Memory.Delete(ctx, owner, id)
}

func TestSyncerAppliesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &flakyStore{Memory: NewMemory()}
	s := NewSyncer(store, nil)

	n := New("u", "first", "mood", time.Now())
	s.Create(n)
	s.Update("u", n.ID, "second")
	s.Delete("u", n.ID)
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, []OpKind{OpCreate, OpUpdate, OpDelete}, store.calls)
	assert.Equal(t, int64(3), s.Applied())
	assert.Zero(t, s.Failures())
	assert.Zero(t, store.Len())
}

func TestSyncerLogsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zap.WarnLevel)
	store := &flakyStore{Memory: NewMemory(), fail: true}
	s := NewSyncer(store, zap.New(core))

	s.Create(New("u", "lost", "todo", time.Now()))
	s.Delete("u", "gone")
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, int64(2), s.Failures())
	entries := logs.FilterMessage("store write failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "create", entries[0].ContextMap()["op"])
	assert.Equal(t, "gone", entries[1].ContextMap()["note_id"])
}

func TestSyncerAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &flakyStore{Memory: NewMemory()}
	s := NewSyncer(store, nil)
	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()))

	s.Delete("u", "x")
	assert.Empty(t, store.calls)
}
