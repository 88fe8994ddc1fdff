package blockRepo

import (
	"context"
	"testing"
	"time"

	"agenda/database/repository"
	"agenda/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func put(t *testing.T, repo BlockRepository, professionalID, date, slot string) {
	t.Helper()
	b := models.NewBlock(professionalID, date, slot)
	require.NoError(t, repo.Put(context.Background(), &b))
}

func TestMemoryBlockRepo_PutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBlockRepo()

	put(t, repo, "ana", "2025-06-02", "09:00")
	put(t, repo, "ana", "2025-06-02", "09:00")

	blocks, err := repo.ListByDate(ctx, "ana", "2025-06-02")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "2025-06-02_09:00", blocks[0].ID)
}

func TestMemoryBlockRepo_DeleteByDate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBlockRepo()

	for _, slot := range []string{"09:00", "09:45", models.AllDay} {
		put(t, repo, "ana", "2025-06-02", slot)
	}
	put(t, repo, "ana", "2025-06-03", "10:30")
	put(t, repo, "beto", "2025-06-02", "09:00")

	n, err := repo.DeleteByDate(ctx, "ana", "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	left, err := repo.ListRange(ctx, "ana", repository.Month("2025-06"))
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "2025-06-03", left[0].Date)

	other, err := repo.ListByDate(ctx, "beto", "2025-06-02")
	require.NoError(t, err)
	assert.Len(t, other, 1, "other professionals are untouched")
}

func TestMemoryBlockRepo_DeleteMissingIsNoop(t *testing.T) {
	repo := NewMemoryBlockRepo()
	assert.NoError(t, repo.Delete(context.Background(), "ana", "2025-06-02_09:00"))
}

func TestMemoryBlockRepo_ListSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBlockRepo()
	put(t, repo, "ana", "2025-06-02", models.AllDay)
	put(t, repo, "ana", "2025-06-02", "10:30")
	put(t, repo, "ana", "2025-06-01", "21:45")

	blocks, err := repo.ListRange(ctx, "ana", repository.Month("2025-06"))
	require.NoError(t, err)
	var ids []string
	for _, b := range blocks {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"2025-06-01_21:45", "2025-06-02_10:30", "2025-06-02_all"}, ids)
}

func TestMemoryBlockRepo_Watch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBlockRepo()

	got := make(chan []models.Block, 10)
	sub, err := repo.Watch(ctx, "ana", repository.Day("2025-06-02"), func(blocks []models.Block, err error) {
		assert.NoError(t, err)
		got <- blocks
	})
	require.NoError(t, err)
	defer sub.Close()

	assert.Empty(t, <-got)
	put(t, repo, "ana", "2025-06-02", "09:00")

	select {
	case blocks := <-got:
		require.Len(t, blocks, 1)
		assert.Equal(t, "09:00", blocks[0].Time)
	case <-time.After(time.Second):
		t.Fatal("no update after Put")
	}
}
