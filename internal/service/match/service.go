package match

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yaadmatch/yaadmatch/internal/app"
	"github.com/yaadmatch/yaadmatch/internal/auth"
	"github.com/yaadmatch/yaadmatch/internal/db"
	svcErr "github.com/yaadmatch/yaadmatch/internal/errors"
	"github.com/yaadmatch/yaadmatch/internal/repository"
)

// Matching rules. A candidate survives when all three filters pass:
// birth years within maxBirthYearGap, height gap (in whole inches) inside the
// [minHeightGapInches, maxHeightGapInches] band, and at least minSharedTraits
// of the six comparable traits equal. Candidates missing birth year or height
// on either side are excluded outright rather than treated as non-matches.
const (
	maxBirthYearGap    = 5
	minHeightGapInches = 3
	maxHeightGapInches = 10
	metersToInches     = 39.37
	minSharedTraits    = 3
)

// Service implements the match engine endpoint.
type Service struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
	users    *repository.UserRepository
}

// NewService creates a new match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		profiles: repository.NewProfileRepository(appCtx.DB),
		users:    repository.NewUserRepository(appCtx.DB),
	}
}

// Match is a surviving candidate profile annotated with the owner's display
// name and the trait fields that matched the reference profile exactly.
type Match struct {
	db.Profile
	Name          string   `json:"name"`
	MatchedFields []string `json:"matched_fields"`
}

// Matches runs the engine for one of the caller's own profiles.
//
// Behavior:
//   - profileID must belong to userID, otherwise NotFound.
//   - scans every other user's profile; filters are applied in order and a
//     candidate missing a required comparison field is skipped.
//   - read-only; deterministic for a fixed profile set; natural scan order.
func (s *Service) Matches(ctx context.Context, userID, profileID uint64) ([]Match, error) {
	ref, err := s.profiles.GetOwned(ctx, profileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("Profile not found")
		}
		return nil, err
	}

	candidates, err := s.profiles.ListCandidates(ctx, profileID, userID)
	if err != nil {
		return nil, err
	}

	matches := []Match{}
	owners := map[uint64]string{}
	for _, cand := range candidates {
		fields, ok := compare(ref, &cand)
		if !ok {
			continue
		}

		name, seen := owners[cand.UserID]
		if !seen {
			owner, err := s.users.GetByID(ctx, cand.UserID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, err
				}
			} else {
				name = owner.Name
			}
			owners[cand.UserID] = name
		}

		matches = append(matches, Match{
			Profile:       cand,
			Name:          name,
			MatchedFields: fields,
		})
	}

	return matches, nil
}

// compare applies the three filters in order and, on success, returns the
// names of the trait fields that matched exactly.
func compare(ref, cand *db.Profile) ([]string, bool) {
	if ref.BirthYear == nil || cand.BirthYear == nil {
		return nil, false
	}
	yearGap := *ref.BirthYear - *cand.BirthYear
	if yearGap < 0 {
		yearGap = -yearGap
	}
	if yearGap > maxBirthYearGap {
		return nil, false
	}

	if ref.Height == nil || cand.Height == nil {
		return nil, false
	}
	// truncated whole-inch gap, band bounds inclusive
	heightGapInches := int(math.Abs(*ref.Height-*cand.Height) * metersToInches)
	if heightGapInches < minHeightGapInches || heightGapInches > maxHeightGapInches {
		return nil, false
	}

	var fields []string
	if ref.FavCuisine == cand.FavCuisine {
		fields = append(fields, "fav_cuisine")
	}
	if ref.FavColour == cand.FavColour {
		fields = append(fields, "fav_colour")
	}
	if ref.FavSchoolSubject == cand.FavSchoolSubject {
		fields = append(fields, "fav_school_subject")
	}
	if ref.Political == cand.Political {
		fields = append(fields, "political")
	}
	if ref.Religious == cand.Religious {
		fields = append(fields, "religious")
	}
	if ref.FamilyOriented == cand.FamilyOriented {
		fields = append(fields, "family_oriented")
	}

	if len(fields) < minSharedTraits {
		return nil, false
	}
	return fields, true
}

// --- HTTP handlers ---

func (s *Service) handleMatches(c *gin.Context) {
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		svcErr.Abort(c, svcErr.InvalidArgument("profile id must be a valid integer"))
		return
	}

	matches, err := s.Matches(c.Request.Context(), auth.UserID(c), profileID)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	s.appCtx.Logger.Debug("match scan finished", "profile_id", profileID, "matches", len(matches))
	c.JSON(200, matches)
}
