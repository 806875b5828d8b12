package badger

import (
	"context"
	"testing"

	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.CatalogRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAddPassages(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns content IDs", func(t *testing.T) {
		repo := newTestRepo(t)
		p := &core.Passage{Content: "Intro to programming", Source: "CS101.pdf", Page: 3, Vector: []float32{1, 0}}

		added, err := repo.AddPassages(ctx, p)
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.Equal(t, core.PassageID("CS101.pdf", 3, "Intro to programming"), added[0].Id)

		got, err := repo.GetPassage(ctx, added[0].Id)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("re-adding is idempotent", func(t *testing.T) {
		repo := newTestRepo(t)
		for i := 0; i < 3; i++ {
			_, err := repo.AddPassages(ctx, &core.Passage{Content: "same", Source: "a.txt", Vector: []float32{1, 0}})
			require.NoError(t, err)
		}

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("rejects invalid passages", func(t *testing.T) {
		repo := newTestRepo(t)

		_, err := repo.AddPassages(ctx, &core.Passage{Content: "", Vector: []float32{1}})
		assert.ErrorIs(t, err, core.ErrInvalidPassage)

		_, err = repo.AddPassages(ctx, &core.Passage{Content: "x"})
		assert.ErrorIs(t, err, core.ErrMissingVector)
	})

	t.Run("rejects dimension mismatch", func(t *testing.T) {
		repo := newTestRepo(t)
		_, err := repo.AddPassages(ctx, &core.Passage{Content: "a", Vector: []float32{1, 0}})
		require.NoError(t, err)

		_, err = repo.AddPassages(ctx, &core.Passage{Content: "b", Vector: []float32{1, 0, 0}})
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})
}

func TestGetPassage_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetPassage(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindSimilar(t *testing.T) {
	ctx := context.Background()

	t.Run("empty catalog", func(t *testing.T) {
		repo := newTestRepo(t)

		results, err := repo.FindSimilar(ctx, []float32{0.1, 0.2, 0.3}, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("orders by cosine similarity", func(t *testing.T) {
		repo := newTestRepo(t)
		_, err := repo.AddPassages(ctx,
			&core.Passage{Content: "far", Source: "a.txt", Vector: []float32{0, 1}},
			&core.Passage{Content: "near", Source: "b.txt", Vector: []float32{2, 0.1}},
			&core.Passage{Content: "middle", Source: "c.txt", Vector: []float32{1, 1}},
		)
		require.NoError(t, err)

		results, err := repo.FindSimilar(ctx, []float32{1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "near", results[0].Passage.Content)
		assert.Equal(t, "middle", results[1].Passage.Content)
		assert.Greater(t, results[0].Score, results[1].Score)
		assert.NotEmpty(t, results[0].Passage.Vector, "vectors are returned for re-ranking")
	})

	t.Run("invalid limit", func(t *testing.T) {
		repo := newTestRepo(t)

		_, err := repo.FindSimilar(ctx, []float32{1}, 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		repo := newTestRepo(t)
		_, err := repo.AddPassages(ctx, &core.Passage{Content: "a", Vector: []float32{1, 0}})
		require.NoError(t, err)

		_, err = repo.FindSimilar(ctx, []float32{1, 0, 0}, 4)
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})
}

func TestDeleteSource(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.AddPassages(ctx,
		&core.Passage{Content: "one", Source: "CS101.pdf", Page: 1, Vector: []float32{1, 0}},
		&core.Passage{Content: "two", Source: "CS101.pdf", Page: 2, Vector: []float32{1, 0}},
		&core.Passage{Content: "three", Source: "CS101.pdf.bak", Page: 1, Vector: []float32{1, 0}},
	)
	require.NoError(t, err)

	removed, err := repo.DeleteSource(ctx, "CS101.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	removed, err = repo.DeleteSource(ctx, "missing.pdf")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNewRepository_Persists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := NewRepository(dir)
	require.NoError(t, err)
	_, err = repo.AddPassages(ctx, &core.Passage{Content: "persisted", Source: "a.md", Vector: []float32{1}})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(dir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
