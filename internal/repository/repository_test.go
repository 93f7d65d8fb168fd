package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wavelength/matchops/internal/db"
	"github.com/wavelength/matchops/internal/matching"
	"github.com/wavelength/matchops/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

func strPtr(s string) *string { return &s }

func TestUpsertActionLastWriteWins(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewActionRepository(dbase)

	err := repo.UpsertAction(ctx, &db.MatchAction{
		ActorID: "user-a", TargetID: "user-b", ActionDay: "2025-06-01", Kind: strPtr("liked"),
	})
	require.NoError(t, err)

	// overwrite the same (actor, target, day) with a pass
	err = repo.UpsertAction(ctx, &db.MatchAction{
		ActorID: "user-a", TargetID: "user-b", ActionDay: "2025-06-01", Kind: strPtr("passed"),
	})
	require.NoError(t, err)

	var rows []db.MatchAction
	require.NoError(t, dbase.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "passed", *rows[0].Kind)
}

func TestFetchActionLogSkipsUndecided(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewActionRepository(dbase)

	require.NoError(t, repo.UpsertAction(ctx, &db.MatchAction{
		ActorID: "user-a", TargetID: "user-b", ActionDay: "2025-06-01", Kind: strPtr("liked"),
	}))
	// card shown, never decided
	require.NoError(t, repo.UpsertAction(ctx, &db.MatchAction{
		ActorID: "user-b", TargetID: "user-a", ActionDay: "2025-06-01", Viewed: true,
	}))

	actions, err := repo.FetchActionLog(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, matching.ActionLiked, actions[0].Kind)
	assert.Equal(t, matching.Day("2025-06-01"), actions[0].Day)
}

func TestCountByDay(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewActionRepository(dbase)

	require.NoError(t, repo.UpsertAction(ctx, &db.MatchAction{
		ActorID: "user-a", TargetID: "user-b", ActionDay: "2025-06-01", Kind: strPtr("liked"),
	}))
	require.NoError(t, repo.UpsertAction(ctx, &db.MatchAction{
		ActorID: "user-b", TargetID: "user-a", ActionDay: "2025-06-01", Kind: strPtr("passed"),
	}))
	require.NoError(t, repo.UpsertAction(ctx, &db.MatchAction{
		ActorID: "user-a", TargetID: "user-c", ActionDay: "2025-06-02", Kind: strPtr("liked"),
	}))

	counts, err := repo.CountByDay(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "2025-06-01", counts[0].Day)
	assert.Equal(t, int64(2), counts[0].Actions)
	assert.Equal(t, int64(1), counts[0].Likes)
	assert.Equal(t, "2025-06-02", counts[1].Day)
}

func TestUserListFiltersAndPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	score := 7
	users := []db.UserMetadata{
		{UserID: "user-a", Gender: "female", Attractiveness: &score},
		{UserID: "user-b", Gender: "male"},
		{UserID: "user-c", Gender: "female"},
		{UserID: "user-d", Gender: "female"},
	}
	require.NoError(t, dbase.Create(&users).Error)

	// gender filter
	females, _, err := repo.List(ctx, "female", repository.RatingAny, nil, 10)
	require.NoError(t, err)
	assert.Len(t, females, 3)

	// unrated filter
	unrated, _, err := repo.List(ctx, "female", repository.RatingNotRated, nil, 10)
	require.NoError(t, err)
	assert.Len(t, unrated, 2)

	// pagination walks the whole set without repeats
	seen := make(map[string]bool)
	var token *string
	for {
		page, next, err := repo.List(ctx, "", repository.RatingAny, token, 2)
		require.NoError(t, err)
		for _, u := range page {
			assert.False(t, seen[u.UserID], "user %s returned twice", u.UserID)
			seen[u.UserID] = true
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Len(t, seen, 4)
}

func TestSetAttractivenessAndRemoval(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	require.NoError(t, dbase.Create(&db.UserMetadata{UserID: "user-a", Gender: "female"}).Error)

	require.NoError(t, repo.SetAttractiveness(ctx, "user-a", 8))
	user, err := repo.GetByID(ctx, "user-a")
	require.NoError(t, err)
	require.NotNil(t, user.Attractiveness)
	assert.Equal(t, 8, *user.Attractiveness)

	require.NoError(t, repo.SetRemovalFlag(ctx, "user-a", true))
	removed, err := repo.ListRemoved(ctx)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "user-a", removed[0].UserID)

	// unknown user surfaces not-found
	err = repo.SetAttractiveness(ctx, "ghost", 5)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestExistingIDs(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	require.NoError(t, dbase.Create(&db.UserMetadata{UserID: "user-a"}).Error)

	existing, err := repo.ExistingIDs(ctx, []string{"user-a", "user-gone"})
	require.NoError(t, err)
	assert.True(t, existing["user-a"])
	assert.False(t, existing["user-gone"])
}

func TestProfileTransitions(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	require.NoError(t, dbase.Create(&db.Profile{
		ProfileID: "profile-1", MaleUserID: "user-b", FemaleUserID: "user-a",
		Status: db.ProfileStatusPending,
	}).Error)

	pending, approved, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
	assert.Equal(t, int64(0), approved)

	require.NoError(t, repo.SetStatus(ctx, "profile-1", db.ProfileStatusApproved))
	status, err := repo.GetStatus(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, db.ProfileStatusApproved, status)

	approvedList, err := repo.ListByStatus(ctx, db.ProfileStatusApproved)
	require.NoError(t, err)
	assert.Len(t, approvedList, 1)
}
