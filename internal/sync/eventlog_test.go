package syncx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/understanding-check/internal/db"
	syncx "github.com/mind-engage/understanding-check/internal/sync"
)

func TestEventRepoAppendSince(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	defer dbh.Close()

	repo := syncx.NewEventRepo(dbh)
	for i, typ := range []string{syncx.TypeValidationFailed, syncx.TypeValidationFailed, syncx.TypeCheckCompleted} {
		e, err := syncx.NewEvent(typ, "sess-1", map[string]int{"n": i})
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, e))
	}

	all, err := repo.Since(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "local", all[0].SiteID)
	assert.Equal(t, `{"n":0}`, all[0].DataJSON)
	assert.Equal(t, syncx.TypeCheckCompleted, all[2].Type)

	rest, err := repo.Since(ctx, all[0].Seq, 1)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, all[1].Seq, rest[0].Seq)
}
