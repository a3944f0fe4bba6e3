package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellapacxx/bingo-sessions/metrics"
	"github.com/bellapacxx/bingo-sessions/testutil"
)

func TestCreatePlayer(t *testing.T) {
	ctx := context.Background()
	svc := NewPlayerService(testutil.NewDB(t), metrics.New())

	p, err := svc.Create(ctx, "  Ana Souza  ")
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Ana Souza", p.Name)
	assert.Equal(t, 0, p.Score)
	assert.True(t, p.Active)

	_, err = svc.Create(ctx, "ANA SOUZA")
	require.Error(t, err)
	assert.True(t, IsGameError(err))

	for _, bad := range []string{"", "   "} {
		_, err = svc.Create(ctx, bad)
		assert.True(t, IsGameError(err), "name %q", bad)
	}
}

func TestCreateReactivatesInactivePlayer(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewPlayerService(db, nil)

	p, err := svc.Create(ctx, "Bruno")
	require.NoError(t, err)
	require.NoError(t, db.Model(p).Update("score", 9).Error)
	require.NoError(t, svc.Deactivate(ctx, p.ID))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	again, err := svc.Create(ctx, "bruno")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.True(t, again.Active)
	assert.Equal(t, 9, again.Score)
	assert.Equal(t, "Bruno", again.Name)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewPlayerService(testutil.NewDB(t), nil)

	p, err := svc.Create(ctx, "Carla")
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, p.ID))
	require.NoError(t, svc.Deactivate(ctx, p.ID))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	err = svc.Deactivate(ctx, 999)
	assert.True(t, IsGameError(err))
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	svc := NewPlayerService(testutil.NewDB(t), nil)

	a, err := svc.Create(ctx, "Davi")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Elisa")
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, a.ID, "davi  ")
	require.NoError(t, err, "changing only the case of your own name is allowed")
	assert.Equal(t, "davi", renamed.Name)

	_, err = svc.Rename(ctx, a.ID, "ELISA")
	assert.True(t, IsGameError(err))

	_, err = svc.Rename(ctx, 999, "Fabio")
	assert.True(t, IsGameError(err))

	_, err = svc.Rename(ctx, a.ID, "")
	assert.True(t, IsGameError(err))
}

func TestRankingOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewPlayerService(db, nil)

	seeded := testutil.SeedPlayers(t, db, 3, 12, 6, 12, 0)
	require.NoError(t, svc.Deactivate(ctx, seeded[1].ID))

	ranking, err := svc.Ranking(ctx)
	require.NoError(t, err)
	require.Len(t, ranking, 5)
	for i := 1; i < len(ranking); i++ {
		assert.GreaterOrEqual(t, ranking[i-1].Score, ranking[i].Score)
	}
	// ties keep registration order
	assert.Equal(t, seeded[1].ID, ranking[0].ID)
	assert.Equal(t, seeded[3].ID, ranking[1].ID)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 4)
	assert.Equal(t, seeded[3].ID, active[0].ID)
	for _, p := range active {
		assert.True(t, p.Active)
	}
}

func TestScoreEventsUnknownPlayer(t *testing.T) {
	svc := NewPlayerService(testutil.NewDB(t), nil)

	_, err := svc.ScoreEvents(context.Background(), 42)
	assert.True(t, IsGameError(err))
}
