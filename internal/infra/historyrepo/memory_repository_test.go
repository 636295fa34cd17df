package historyrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/healthcalc/internal/domain/history"
)

func TestMemoryRepositoryNewestFirst(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Insert(ctx, history.Record{ID: id, SessionID: "s1", Calculator: "bmi"}))
	}
	require.NoError(t, repo.Insert(ctx, history.Record{ID: "x", SessionID: "s2", Calculator: "whr"}))

	got, err := repo.ListBySession(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "c", got[0].ID)
	require.Equal(t, "b", got[1].ID)

	empty, err := repo.ListBySession(ctx, "missing", 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMemoryRepositoryBoundsSessions(t *testing.T) {
	repo := NewMemoryRepository(2)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Insert(ctx, history.Record{ID: id, SessionID: "s1", Calculator: "bmi"}))
	}

	got, err := repo.ListBySession(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "c", got[0].ID)
	require.Equal(t, "b", got[1].ID)
}
