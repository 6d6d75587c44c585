package profile

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yaadmatch/yaadmatch/internal/app"
	"github.com/yaadmatch/yaadmatch/internal/auth"
	"github.com/yaadmatch/yaadmatch/internal/db"
	svcErr "github.com/yaadmatch/yaadmatch/internal/errors"
	"github.com/yaadmatch/yaadmatch/internal/repository"
)

// Service implements profile CRUD, listing and search endpoints.
type Service struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
}

// NewService creates a new profile service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		profiles: repository.NewProfileRepository(appCtx.DB),
	}
}

// CreateInput is the profile creation payload. The owner always comes from
// the authenticated identity, never from the payload.
type CreateInput struct {
	Description      string   `json:"description" binding:"required,max=255"`
	Parish           string   `json:"parish" binding:"max=80"`
	Biography        string   `json:"biography" binding:"max=255"`
	Sex              string   `json:"sex" binding:"required,max=20"`
	Race             string   `json:"race" binding:"max=50"`
	BirthYear        *int     `json:"birth_year" binding:"omitempty,gte=1900,lte=2100"`
	Height           *float64 `json:"height" binding:"omitempty,gt=0,lt=3"`
	FavCuisine       string   `json:"fav_cuisine" binding:"max=80"`
	FavColour        string   `json:"fav_colour" binding:"max=80"`
	FavSchoolSubject string   `json:"fav_school_subject" binding:"max=80"`
	Political        bool     `json:"political"`
	Religious        bool     `json:"religious"`
	FamilyOriented   bool     `json:"family_oriented"`
}

// CreateProfile stores a new profile for userID, subject to the per-user cap.
func (s *Service) CreateProfile(ctx context.Context, userID uint64, in CreateInput) (*db.Profile, error) {
	profile := &db.Profile{
		UserID:           userID,
		Description:      in.Description,
		Parish:           in.Parish,
		Biography:        in.Biography,
		Sex:              in.Sex,
		Race:             in.Race,
		BirthYear:        in.BirthYear,
		Height:           in.Height,
		FavCuisine:       in.FavCuisine,
		FavColour:        in.FavColour,
		FavSchoolSubject: in.FavSchoolSubject,
		Political:        in.Political,
		Religious:        in.Religious,
		FamilyOriented:   in.FamilyOriented,
	}

	if err := s.profiles.CreateCapped(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrProfileLimit) {
			return nil, svcErr.InvalidArgument("You can only create up to 3 profiles.")
		}
		return nil, err
	}
	return profile, nil
}

// GetProfile returns a profile with its owner's public fields.
func (s *Service) GetProfile(ctx context.Context, id uint64) (*repository.ProfileWithOwner, error) {
	row, err := s.profiles.GetWithOwner(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("Profile not found.")
		}
		return nil, err
	}
	return row, nil
}

// UpdateProfile applies a partial patch to a profile owned by userID.
func (s *Service) UpdateProfile(ctx context.Context, userID, id uint64, patch repository.ProfilePatch) (*db.Profile, error) {
	profile, err := s.profiles.Update(ctx, id, userID, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("Profile not found.")
		}
		return nil, err
	}
	return profile, nil
}

// ListOthers returns everyone else's profiles, newest first.
func (s *Service) ListOthers(ctx context.Context, userID uint64) ([]repository.ProfileWithOwner, error) {
	return s.profiles.ListWithOwnersExcept(ctx, userID)
}

// Search filters other users' profiles by the conjunctive predicates.
func (s *Service) Search(ctx context.Context, userID uint64, filter repository.SearchFilter) ([]repository.ProfileWithOwner, error) {
	return s.profiles.Search(ctx, userID, filter)
}

// ProfilesOfUser lists the profiles owned by a given user.
// An empty result is a NotFound, matching the public API contract.
func (s *Service) ProfilesOfUser(ctx context.Context, userID uint64) ([]db.Profile, error) {
	profiles, err := s.profiles.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, svcErr.NotFound("No profiles found for this user.")
	}
	return profiles, nil
}

// --- HTTP handlers ---

func (s *Service) handleList(c *gin.Context) {
	rows, err := s.ListOthers(c.Request.Context(), auth.UserID(c))
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, rows)
}

func (s *Service) handleCreate(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		svcErr.Abort(c, svcErr.Validation(err))
		return
	}

	profile, err := s.CreateProfile(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	s.appCtx.Logger.Info("profile created", "profile_id", profile.ID, "user_id", profile.UserID)
	c.JSON(201, gin.H{
		"message": "Profile created successfully",
		"profile": profile,
	})
}

func (s *Service) handleGet(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		svcErr.Abort(c, svcErr.InvalidArgument("profile id must be a valid integer"))
		return
	}

	row, err := s.GetProfile(c.Request.Context(), id)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, row)
}

func (s *Service) handleUpdate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		svcErr.Abort(c, svcErr.InvalidArgument("profile id must be a valid integer"))
		return
	}

	var patch repository.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		svcErr.Abort(c, svcErr.Validation(err))
		return
	}

	profile, err := s.UpdateProfile(c.Request.Context(), auth.UserID(c), id, patch)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	c.JSON(200, gin.H{
		"message": "Profile updated",
		"profile": profile,
	})
}

func (s *Service) handleSearch(c *gin.Context) {
	filter := repository.SearchFilter{
		Name: c.Query("name"),
		Sex:  c.Query("sex"),
		Race: c.Query("race"),
	}
	if byStr := c.Query("birth_year"); byStr != "" {
		year, err := strconv.Atoi(byStr)
		if err != nil {
			svcErr.Abort(c, svcErr.InvalidArgument("birth_year must be a valid integer"))
			return
		}
		filter.BirthYear = &year
	}

	rows, err := s.Search(c.Request.Context(), auth.UserID(c), filter)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, rows)
}

func (s *Service) handleProfilesOfUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		svcErr.Abort(c, svcErr.InvalidArgument("user id must be a valid integer"))
		return
	}

	profiles, err := s.ProfilesOfUser(c.Request.Context(), id)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, profiles)
}
