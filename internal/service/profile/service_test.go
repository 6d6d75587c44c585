package profile_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yaadmatch/yaadmatch/internal/app"
	"github.com/yaadmatch/yaadmatch/internal/config"
	"github.com/yaadmatch/yaadmatch/internal/db"
	svcErr "github.com/yaadmatch/yaadmatch/internal/errors"
	"github.com/yaadmatch/yaadmatch/internal/repository"
	"github.com/yaadmatch/yaadmatch/internal/service/profile"
)

func strPtr(v string) *string     { return &v }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func setupService(t *testing.T) (*profile.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.Profile{}, &db.Favourite{}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(config.New(), dbase, nil, logger)
	return profile.NewService(appCtx), dbase
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

func TestCreateProfileCap(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedUser(t, gdb, 1, "alice")

	in := profile.CreateInput{Description: "hello", Sex: "Female"}
	for i := 0; i < db.MaxProfilesPerUser; i++ {
		_, err := svc.CreateProfile(ctx, 1, in)
		require.NoError(t, err)
	}

	_, err := svc.CreateProfile(ctx, 1, in)
	require.Error(t, err)

	apiErr := svcErr.Map(err)
	assert.Equal(t, 400, apiErr.Status)
	assert.Contains(t, apiErr.Message, "up to 3 profiles")
}

func TestCreateProfileSetsOwnerFromIdentity(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedUser(t, gdb, 7, "gloria")

	created, err := svc.CreateProfile(ctx, 7, profile.CreateInput{
		Description: "sunset walks",
		Sex:         "Female",
		BirthYear:   intPtr(1992),
		Height:      floatPtr(1.65),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), created.UserID)
	assert.NotZero(t, created.ID)
}

func TestGetProfileJoinsOwner(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedUser(t, gdb, 1, "alice")

	created, err := svc.CreateProfile(ctx, 1, profile.CreateInput{Description: "p", Sex: "Female"})
	require.NoError(t, err)

	row, err := svc.GetProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", row.Username)
	assert.Equal(t, "p", row.Description)

	_, err = svc.GetProfile(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, 404, svcErr.Map(err).Status)
}

func TestUpdateProfilePartial(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedUser(t, gdb, 1, "alice")

	created, err := svc.CreateProfile(ctx, 1, profile.CreateInput{
		Description: "before",
		Sex:         "Female",
		Parish:      "Portland",
		FavCuisine:  "Jamaican",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, 1, created.ID, repository.ProfilePatch{
		Description: strPtr("after"),
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Description)
	assert.Equal(t, "Portland", updated.Parish)
	assert.Equal(t, "Jamaican", updated.FavCuisine)

	_, err = svc.UpdateProfile(ctx, 1, 999, repository.ProfilePatch{Description: strPtr("x")})
	require.Error(t, err)
	assert.Equal(t, 404, svcErr.Map(err).Status)

	// someone else's identity cannot touch the profile
	_, err = svc.UpdateProfile(ctx, 2, created.ID, repository.ProfilePatch{Description: strPtr("x")})
	require.Error(t, err)
	assert.Equal(t, 404, svcErr.Map(err).Status)
}

func TestProfilesOfUser(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedUser(t, gdb, 1, "alice")
	seedUser(t, gdb, 2, "bob")

	_, err := svc.CreateProfile(ctx, 1, profile.CreateInput{Description: "p1", Sex: "Female"})
	require.NoError(t, err)
	_, err = svc.CreateProfile(ctx, 1, profile.CreateInput{Description: "p2", Sex: "Female"})
	require.NoError(t, err)

	profiles, err := svc.ProfilesOfUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	// a user without profiles is a 404 on this endpoint
	_, err = svc.ProfilesOfUser(ctx, 2)
	require.Error(t, err)
	assert.Equal(t, 404, svcErr.Map(err).Status)
}

func TestListOthersExcludesRequester(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)
	seedUser(t, gdb, 1, "alice")
	seedUser(t, gdb, 2, "bob")

	_, err := svc.CreateProfile(ctx, 1, profile.CreateInput{Description: "mine", Sex: "Female"})
	require.NoError(t, err)
	_, err = svc.CreateProfile(ctx, 2, profile.CreateInput{Description: "theirs", Sex: "Male"})
	require.NoError(t, err)

	rows, err := svc.ListOthers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "theirs", rows[0].Description)
	assert.Equal(t, "bob", rows[0].Username)
}
