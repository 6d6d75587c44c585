package repository

import (
	"context"

	"github.com/yaadmatch/yaadmatch/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavouriteRepository provides data access methods for the Favourite edge set.
type FavouriteRepository struct {
	db *gorm.DB
}

// NewFavouriteRepository creates a new repository bound to the given DB connection.
func NewFavouriteRepository(database *gorm.DB) *FavouriteRepository {
	return &FavouriteRepository{db: database}
}

// Add records a directed favourite edge truster -> target.
//
// The insert goes through ON CONFLICT DO NOTHING against the composite PK,
// so concurrent duplicate requests collapse into one row. Returns created =
// false when the edge already existed.
//
// Self-edges are a caller concern; the service layer rejects them before the
// write ever happens.
func (r *FavouriteRepository) Add(ctx context.Context, truster, target uint64) (created bool, err error) {
	fav := db.Favourite{UserID: truster, FavUserID: target}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListFavourites returns the users that the given user has favourited.
func (r *FavouriteRepository) ListFavourites(ctx context.Context, userID uint64) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Joins("JOIN favourites ON favourites.fav_user_id = users.id").
		Where("favourites.user_id = ?", userID).
		Find(&users).Error
	return users, err
}

// TopFavouritedRow is a user annotated with their favourite in-degree.
type TopFavouritedRow struct {
	ID             uint64 `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Photo          string `json:"photo"`
	FavouriteCount int64  `json:"favourite_count"`
}

// TopFavourited returns up to n users ranked by descending incoming-edge
// count. The count is computed from the edge set at query time, so it always
// reflects the current graph exactly.
func (r *FavouriteRepository) TopFavourited(ctx context.Context, n int) ([]TopFavouritedRow, error) {
	var rows []TopFavouritedRow
	err := r.db.WithContext(ctx).
		Table("favourites").
		Select("users.id, users.username, users.email, users.photo, COUNT(favourites.fav_user_id) AS favourite_count").
		Joins("JOIN users ON users.id = favourites.fav_user_id").
		Group("users.id, users.username, users.email, users.photo").
		Order("favourite_count DESC").
		Limit(n).
		Scan(&rows).Error
	return rows, err
}
