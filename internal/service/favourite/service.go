package favourite

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yaadmatch/yaadmatch/internal/app"
	"github.com/yaadmatch/yaadmatch/internal/auth"
	"github.com/yaadmatch/yaadmatch/internal/db"
	svcErr "github.com/yaadmatch/yaadmatch/internal/errors"
	"github.com/yaadmatch/yaadmatch/internal/repository"
)

// Service implements the favourite graph endpoints.
type Service struct {
	appCtx     *app.AppContext
	favourites *repository.FavouriteRepository
}

// NewService creates a new favourite service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		favourites: repository.NewFavouriteRepository(appCtx.DB),
	}
}

// AddFavourite records truster -> target. Self-favouriting is rejected;
// favouriting the same user twice is idempotent and reports created = false.
func (s *Service) AddFavourite(ctx context.Context, truster, target uint64) (created bool, err error) {
	if truster == target {
		return false, svcErr.InvalidArgument("You can't favourite yourself.")
	}
	return s.favourites.Add(ctx, truster, target)
}

// ListFavourites returns the users that userID has favourited.
func (s *Service) ListFavourites(ctx context.Context, userID uint64) ([]db.User, error) {
	return s.favourites.ListFavourites(ctx, userID)
}

// TopFavourited returns up to n users by descending favourite in-degree.
func (s *Service) TopFavourited(ctx context.Context, n int) ([]repository.TopFavouritedRow, error) {
	return s.favourites.TopFavourited(ctx, n)
}

// --- HTTP handlers ---

func (s *Service) handleAddFavourite(c *gin.Context) {
	target, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		svcErr.Abort(c, svcErr.InvalidArgument("user id must be a valid integer"))
		return
	}

	truster := auth.UserID(c)
	created, err := s.AddFavourite(c.Request.Context(), truster, target)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	if !created {
		c.JSON(200, gin.H{"message": "User is already in favourites."})
		return
	}

	s.appCtx.Logger.Info("favourite added", "truster", truster, "target", target)
	c.JSON(201, gin.H{"message": "User added to favourites"})
}

func (s *Service) handleListFavourites(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		svcErr.Abort(c, svcErr.InvalidArgument("user id must be a valid integer"))
		return
	}

	users, err := s.ListFavourites(c.Request.Context(), userID)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"photo":    u.Photo,
		})
	}
	c.JSON(200, out)
}

func (s *Service) handleTopFavourited(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 0 {
		svcErr.Abort(c, svcErr.InvalidArgument("n must be a non-negative integer"))
		return
	}

	rows, err := s.TopFavourited(c.Request.Context(), n)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, rows)
}
