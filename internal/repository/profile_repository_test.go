package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/yaadmatch/yaadmatch/internal/db"
	"github.com/yaadmatch/yaadmatch/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&db.User{}, &db.Profile{}, &db.Favourite{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func seedUser(t *testing.T, gdb *gorm.DB, id uint64, username string) {
	t.Helper()
	require.NoError(t, gdb.Create(&db.User{
		ID:           id,
		Username:     username,
		Name:         "User " + username,
		Email:        username + "@test.com",
		PasswordHash: "x",
	}).Error)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestCreateCappedEnforcesLimit(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewProfileRepository(gdb)
	seedUser(t, gdb, 1, "alice")

	for i := 0; i < db.MaxProfilesPerUser; i++ {
		err := repo.CreateCapped(ctx, &db.Profile{UserID: 1, Description: "p", Sex: "Female"})
		assert.NoError(t, err)
	}

	err := repo.CreateCapped(ctx, &db.Profile{UserID: 1, Description: "one too many", Sex: "Female"})
	assert.ErrorIs(t, err, repository.ErrProfileLimit)

	var count int64
	gdb.Model(&db.Profile{}).Where("user_id = ?", 1).Count(&count)
	assert.Equal(t, int64(db.MaxProfilesPerUser), count)
}

func TestUpdateAppliesPartialPatch(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewProfileRepository(gdb)
	seedUser(t, gdb, 1, "alice")

	profile := &db.Profile{
		UserID:      1,
		Description: "original",
		Parish:      "Kingston",
		Sex:         "Female",
		BirthYear:   intPtr(1990),
		FavCuisine:  "Italian",
	}
	require.NoError(t, repo.CreateCapped(ctx, profile))

	updated, err := repo.Update(ctx, profile.ID, 1, repository.ProfilePatch{
		Description: strPtr("new description"),
		Height:      floatPtr(1.70),
	})
	require.NoError(t, err)

	// patched fields changed, everything else untouched
	assert.Equal(t, "new description", updated.Description)
	require.NotNil(t, updated.Height)
	assert.InDelta(t, 1.70, *updated.Height, 0.001)
	assert.Equal(t, "Kingston", updated.Parish)
	assert.Equal(t, "Italian", updated.FavCuisine)
	require.NotNil(t, updated.BirthYear)
	assert.Equal(t, 1990, *updated.BirthYear)
}

func TestUpdateMissingProfile(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewProfileRepository(gdb)

	_, err := repo.Update(ctx, 42, 1, repository.ProfilePatch{Description: strPtr("x")})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateRejectsForeignProfile(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewProfileRepository(gdb)
	seedUser(t, gdb, 1, "alice")
	seedUser(t, gdb, 2, "bob")

	profile := &db.Profile{UserID: 1, Description: "mine", Sex: "Female"}
	require.NoError(t, repo.CreateCapped(ctx, profile))

	_, err := repo.Update(ctx, profile.ID, 2, repository.ProfilePatch{Description: strPtr("hijacked")})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Description)
}

func TestGetOwnedRejectsForeignProfile(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewProfileRepository(gdb)
	seedUser(t, gdb, 1, "alice")
	seedUser(t, gdb, 2, "bob")

	profile := &db.Profile{UserID: 1, Description: "p", Sex: "Female"}
	require.NoError(t, repo.CreateCapped(ctx, profile))

	_, err := repo.GetOwned(ctx, profile.ID, 1)
	assert.NoError(t, err)

	_, err = repo.GetOwned(ctx, profile.ID, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSearchFilters(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewProfileRepository(gdb)

	seedUser(t, gdb, 1, "requester")
	seedUser(t, gdb, 2, "marcus")
	seedUser(t, gdb, 3, "sandra")

	now := time.Now().UTC().Truncate(time.Millisecond)
	profiles := []db.Profile{
		{UserID: 1, Description: "mine", Sex: "Male", CreatedAt: now},
		{UserID: 2, Description: "b1", Sex: "male", Race: "Black", BirthYear: intPtr(1990), CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: 2, Description: "b2", Sex: "Male", Race: "Mixed", BirthYear: intPtr(1985), CreatedAt: now.Add(-1 * time.Hour)},
		{UserID: 3, Description: "c1", Sex: "Female", Race: "Black", BirthYear: intPtr(1990), CreatedAt: now},
	}
	require.NoError(t, gdb.Create(&profiles).Error)

	// case-insensitive sex filter, requester's own profile excluded
	rows, err := repo.Search(ctx, 1, repository.SearchFilter{Sex: "MALE"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// newest first
	assert.Equal(t, "b2", rows[0].Description)
	assert.Equal(t, "b1", rows[1].Description)
	assert.Equal(t, "marcus", rows[0].Username)

	// conjunctive filters
	rows, err = repo.Search(ctx, 1, repository.SearchFilter{Sex: "male", BirthYear: intPtr(1990)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b1", rows[0].Description)

	// username substring, case-insensitive
	rows, err = repo.Search(ctx, 1, repository.SearchFilter{Name: "AND"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sandra", rows[0].Username)

	// no filters: everything but the requester's own
	rows, err = repo.Search(ctx, 1, repository.SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestListWithOwnersExcept(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewProfileRepository(gdb)

	seedUser(t, gdb, 1, "alice")
	seedUser(t, gdb, 2, "bob")

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, gdb.Create(&[]db.Profile{
		{UserID: 1, Description: "mine", Sex: "Female", CreatedAt: now.Add(-time.Hour)},
		{UserID: 2, Description: "old", Sex: "Male", CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: 2, Description: "new", Sex: "Male", CreatedAt: now},
	}).Error)

	rows, err := repo.ListWithOwnersExcept(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "new", rows[0].Description)
	assert.Equal(t, "old", rows[1].Description)
	assert.Equal(t, "bob", rows[0].Username)
}
