package account

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yaadmatch/yaadmatch/internal/app"
	"github.com/yaadmatch/yaadmatch/internal/auth"
	"github.com/yaadmatch/yaadmatch/internal/db"
	svcErr "github.com/yaadmatch/yaadmatch/internal/errors"
	"github.com/yaadmatch/yaadmatch/internal/repository"
	"github.com/yaadmatch/yaadmatch/internal/utils/filenames"
)

// Service implements account endpoints: registration, login/logout and
// public user lookups. It contains the business logic on top of repository
// and cache layers.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	tokens *auth.TokenManager
}

// NewService creates a new account service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		tokens: auth.NewTokenManager(appCtx.Config),
	}
}

// RegisterInput is the validated registration payload. The photo file is
// handled separately by the HTTP layer.
type RegisterInput struct {
	Username string `form:"username" binding:"required,min=3,max=80"`
	Password string `form:"password" binding:"required,min=8"`
	Name     string `form:"name" binding:"required,max=80"`
	Email    string `form:"email" binding:"required,email"`
}

// RegisterUser hashes the password and stores a new account.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput, photoFilename string) (*db.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, svcErr.Internal("failed to hash password")
	}

	user := &db.User{
		Username:     in.Username,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Photo:        photoFilename,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials and issues a bearer token.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*db.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", svcErr.Unauthorized("Invalid username or password")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", svcErr.Unauthorized("Invalid username or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", svcErr.Internal("failed to issue token")
	}
	return user, token, nil
}

// RevokeToken blacklists a bearer token until its natural expiry.
func (s *Service) RevokeToken(ctx context.Context, token string, expiry time.Time) error {
	return s.appCtx.RedisCache.RevokeToken(ctx, token, time.Until(expiry))
}

// GetUser returns the public view of a user.
func (s *Service) GetUser(ctx context.Context, id uint64) (*db.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// --- HTTP handlers ---

// checkCSRF validates the anti-forgery token carried by form-based endpoints
// (register, login). Token-authenticated API routes don't need it.
func (s *Service) checkCSRF(c *gin.Context) bool {
	ok, err := s.appCtx.RedisCache.CheckCSRFToken(c.Request.Context(), c.PostForm("csrf_token"))
	if err != nil {
		svcErr.Abort(c, svcErr.Internal("failed to check csrf token"))
		return false
	}
	if !ok {
		svcErr.Abort(c, svcErr.InvalidArgument("missing or invalid csrf token"))
		return false
	}
	return true
}

func (s *Service) handleCSRFToken(c *gin.Context) {
	token, err := s.appCtx.RedisCache.IssueCSRFToken(c.Request.Context())
	if err != nil {
		svcErr.Abort(c, svcErr.Internal("failed to issue csrf token"))
		return
	}
	c.JSON(200, gin.H{"csrf_token": token})
}

func (s *Service) handleRegister(c *gin.Context) {
	if !s.checkCSRF(c) {
		return
	}

	var in RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		svcErr.Abort(c, svcErr.Validation(err))
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		svcErr.Abort(c, &svcErr.Error{
			Status:  400,
			Message: "request failed due to validation errors",
			Fields:  map[string]string{"photo": "a photo file is required"},
		})
		return
	}

	stored := filenames.ForUpload(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(s.appCtx.Config.Upload.Dir, stored)); err != nil {
		s.appCtx.Logger.Error("failed to store uploaded photo", "err", err)
		svcErr.Abort(c, svcErr.Internal("failed to store uploaded photo"))
		return
	}

	user, err := s.RegisterUser(c.Request.Context(), in, stored)
	if err != nil {
		s.appCtx.Logger.Error("user registration failed", "username", in.Username, "err", err)
		svcErr.Abort(c, err)
		return
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	c.JSON(201, gin.H{
		"message": "User registered successfully",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"name":     user.Name,
			"email":    user.Email,
			"photo":    user.Photo,
		},
	})
}

// LoginInput is the validated login form.
type LoginInput struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (s *Service) handleLogin(c *gin.Context) {
	if !s.checkCSRF(c) {
		return
	}

	var in LoginInput
	if err := c.ShouldBind(&in); err != nil {
		svcErr.Abort(c, svcErr.Validation(err))
		return
	}

	user, token, err := s.Authenticate(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	s.appCtx.Logger.Info("user logged in", "user_id", user.ID)
	c.JSON(200, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

func (s *Service) handleLogout(c *gin.Context) {
	token, expiry := auth.BearerToken(c)
	if err := s.RevokeToken(c.Request.Context(), token, expiry); err != nil {
		svcErr.Abort(c, svcErr.Internal("failed to revoke token"))
		return
	}

	userID := auth.UserID(c)
	s.appCtx.Logger.Info("user logged out", "user_id", userID)
	c.JSON(200, gin.H{"message": fmt.Sprintf("Logout successful for User %d", userID)})
}

func (s *Service) handleGetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		svcErr.Abort(c, svcErr.InvalidArgument("user id must be a valid integer"))
		return
	}

	user, err := s.GetUser(c.Request.Context(), id)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, user)
}
