package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yaadmatch/yaadmatch/internal/db"
	"gorm.io/gorm"
)

// ErrProfileLimit is returned when a user already owns the maximum number of
// profiles and tries to create another.
var ErrProfileLimit = errors.New("profile limit reached")

// ProfileRepository provides data access methods for the Profile model.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// ProfileWithOwner is a profile row joined with public fields of its owner.
type ProfileWithOwner struct {
	db.Profile `gorm:"embedded"`
	Username   string    `json:"username"`
	Photo      string    `json:"photo"`
	DateJoined time.Time `json:"date_joined"`
}

// ProfilePatch is the allow-listed partial update payload. Only non-nil
// fields are written; everything else on the profile is left untouched.
type ProfilePatch struct {
	Description      *string  `json:"description"`
	Parish           *string  `json:"parish"`
	Biography        *string  `json:"biography"`
	Sex              *string  `json:"sex"`
	Race             *string  `json:"race"`
	BirthYear        *int     `json:"birth_year"`
	Height           *float64 `json:"height"`
	FavCuisine       *string  `json:"fav_cuisine"`
	FavColour        *string  `json:"fav_colour"`
	FavSchoolSubject *string  `json:"fav_school_subject"`
	Political        *bool    `json:"political"`
	Religious        *bool    `json:"religious"`
	FamilyOriented   *bool    `json:"family_oriented"`
}

// Apply merges the patch into an existing profile.
func (p ProfilePatch) Apply(profile *db.Profile) {
	if p.Description != nil {
		profile.Description = *p.Description
	}
	if p.Parish != nil {
		profile.Parish = *p.Parish
	}
	if p.Biography != nil {
		profile.Biography = *p.Biography
	}
	if p.Sex != nil {
		profile.Sex = *p.Sex
	}
	if p.Race != nil {
		profile.Race = *p.Race
	}
	if p.BirthYear != nil {
		profile.BirthYear = p.BirthYear
	}
	if p.Height != nil {
		profile.Height = p.Height
	}
	if p.FavCuisine != nil {
		profile.FavCuisine = *p.FavCuisine
	}
	if p.FavColour != nil {
		profile.FavColour = *p.FavColour
	}
	if p.FavSchoolSubject != nil {
		profile.FavSchoolSubject = *p.FavSchoolSubject
	}
	if p.Political != nil {
		profile.Political = *p.Political
	}
	if p.Religious != nil {
		profile.Religious = *p.Religious
	}
	if p.FamilyOriented != nil {
		profile.FamilyOriented = *p.FamilyOriented
	}
}

// CreateCapped inserts a profile after rechecking the per-user cap inside a
// transaction, so two concurrent creates cannot push a user past the limit.
//
// Returns ErrProfileLimit when the owner already has db.MaxProfilesPerUser
// profiles.
func (r *ProfileRepository) CreateCapped(ctx context.Context, profile *db.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Profile{}).
			Where("user_id = ?", profile.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= db.MaxProfilesPerUser {
			return ErrProfileLimit
		}
		return tx.Create(profile).Error
	})
}

// GetByID fetches a profile by primary key.
func (r *ProfileRepository) GetByID(ctx context.Context, id uint64) (*db.Profile, error) {
	var profile db.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetOwned fetches a profile only if it belongs to ownerID.
// A profile that exists but is owned by someone else behaves like a missing one.
func (r *ProfileRepository) GetOwned(ctx context.Context, id, ownerID uint64) (*db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetWithOwner fetches a profile joined with its owner's public fields.
func (r *ProfileRepository) GetWithOwner(ctx context.Context, id uint64) (*ProfileWithOwner, error) {
	var row ProfileWithOwner
	err := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Select("profiles.*, users.username, users.photo, users.date_joined").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("profiles.id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListWithOwnersExcept returns everyone else's profiles (owner-joined),
// newest profile first.
func (r *ProfileRepository) ListWithOwnersExcept(ctx context.Context, userID uint64) ([]ProfileWithOwner, error) {
	var rows []ProfileWithOwner
	err := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Select("profiles.*, users.username, users.photo, users.date_joined").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("profiles.user_id <> ?", userID).
		Order("profiles.created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListByOwner returns all profiles belonging to one user.
func (r *ProfileRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]db.Profile, error) {
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Find(&profiles).Error
	return profiles, err
}

// ListCandidates returns every profile that could be matched against the
// reference: different profile id and different owner. Natural scan order.
func (r *ProfileRepository) ListCandidates(ctx context.Context, excludeProfileID, excludeUserID uint64) ([]db.Profile, error) {
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Where("id <> ? AND user_id <> ?", excludeProfileID, excludeUserID).
		Find(&profiles).Error
	return profiles, err
}

// SearchFilter holds the optional, conjunctive search predicates.
type SearchFilter struct {
	Name      string // case-insensitive substring on owner username
	BirthYear *int   // exact
	Sex       string // case-insensitive exact
	Race      string // case-insensitive exact
}

// Search filters other users' profiles by the given predicates,
// newest profile first. The requester's own profiles are always excluded.
func (r *ProfileRepository) Search(ctx context.Context, requesterID uint64, filter SearchFilter) ([]ProfileWithOwner, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Select("profiles.*, users.username, users.photo, users.date_joined").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("profiles.user_id <> ?", requesterID)

	if filter.Name != "" {
		query = query.Where("LOWER(users.username) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.BirthYear != nil {
		query = query.Where("profiles.birth_year = ?", *filter.BirthYear)
	}
	if filter.Sex != "" {
		query = query.Where("LOWER(profiles.sex) = ?", strings.ToLower(filter.Sex))
	}
	if filter.Race != "" {
		query = query.Where("LOWER(profiles.race) = ?", strings.ToLower(filter.Race))
	}

	var rows []ProfileWithOwner
	err := query.Order("profiles.created_at DESC").Find(&rows).Error
	return rows, err
}

// Update applies a partial patch to a profile owned by ownerID inside a
// transaction and returns the updated row. A profile owned by someone else
// behaves like a missing one.
func (r *ProfileRepository) Update(ctx context.Context, id, ownerID uint64, patch ProfilePatch) (*db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&profile).Error; err != nil {
			return err
		}
		patch.Apply(&profile)
		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
