package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func Test_Get_Missing(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.Get(context.Background(), "never/indexed.pdf")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func Test_Put_Get(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := Record{
		Path:       "docs/ISO9001.pdf",
		Crc:        12345,
		IndexedAt:  time.Now().UTC(),
		ChunkCount: 7,
	}
	require.NoError(t, s.Put(ctx, want))

	got, err := s.Get(ctx, want.Path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Path, got.Path)
	assert.Equal(t, want.Crc, got.Crc)
	assert.Equal(t, want.ChunkCount, got.ChunkCount)
	assert.True(t, got.IndexedAt.Equal(want.IndexedAt))
}

func Test_Put_Replaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := Record{Path: "f1.txt", Crc: 1, IndexedAt: time.Now().UTC(), ChunkCount: 2}
	require.NoError(t, s.Put(ctx, rec))

	rec.Crc = 2
	rec.ChunkCount = 5
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, "f1.txt")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint32(2), got.Crc)
	assert.Equal(t, 5, got.ChunkCount)
}

func Test_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Record{Path: "f1.txt", Crc: 1, IndexedAt: time.Now().UTC()}))
	require.NoError(t, s.Delete(ctx, "f1.txt"))
	require.NoError(t, s.Delete(ctx, "f1.txt"), "deleting a missing record is not an error")

	got, err := s.Get(ctx, "f1.txt")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_All(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.Put(ctx, Record{Path: "b.txt", Crc: 2, IndexedAt: now}))
	require.NoError(t, s.Put(ctx, Record{Path: "a.txt", Crc: 1, IndexedAt: now}))

	recs, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a.txt", recs[0].Path)
	assert.Equal(t, "b.txt", recs[1].Path)
}
