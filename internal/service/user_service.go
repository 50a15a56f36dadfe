package service

import (
	"context"
	"strings"
	"time"

	"adminhub/internal/middleware"
	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an admin session token stays valid.
const DefaultTokenTTL = 12 * time.Hour

type UserService struct {
	userRepo  repository.UserRepository
	audit     *ActivityLogService
	feed      EventPublisher
	jwtSecret string
	tokenTTL  time.Duration
}

// LoginResult is returned to the dashboard after a successful sign-in.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func NewUserService(userRepo repository.UserRepository, audit *ActivityLogService, feed EventPublisher, jwtSecret string) *UserService {
	return &UserService{
		userRepo:  userRepo,
		audit:     audit,
		feed:      feed,
		jwtSecret: jwtSecret,
		tokenTTL:  DefaultTokenTTL,
	}
}

// Login checks an admin's credentials and issues a bearer token.
// Unknown emails and wrong passwords produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	invalid := models.NewUnauthorizedError("Invalid credentials")
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, invalid
	}
	if !user.IsAdmin {
		return nil, models.NewForbiddenError("Admin access required")
	}
	if user.IsBlocked {
		return nil, models.NewForbiddenError("Account is blocked")
	}

	token, claims, err := middleware.IssueToken(s.jwtSecret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter, page repository.Page) ([]models.User, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.userRepo.List(ctx, filter, page)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAdmins(ctx)
}

// Block stops a user from using the app. Admins cannot block themselves or
// other admins; demote first.
func (s *UserService) Block(ctx context.Context, actor Actor, targetID uint, reason string) (*models.User, error) {
	if targetID == actor.ID {
		return nil, models.NewValidationError("You cannot block yourself")
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > 1000 {
		return nil, models.NewValidationError("reason must not exceed 1000 characters")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return nil, models.NewForbiddenError("Admins cannot be blocked")
	}
	if err := s.userRepo.SetBlocked(ctx, targetID, true, reason, actor.ID); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, models.ActionUserBlock, "user", targetID, map[string]any{"reason": reason})
	publish(ctx, s.feed, notifications.EventUserBlocked, targetID, actor.ID, map[string]any{"reason": reason})
	return s.userRepo.GetByID(ctx, targetID)
}

func (s *UserService) Unblock(ctx context.Context, actor Actor, targetID uint) (*models.User, error) {
	if err := s.userRepo.SetBlocked(ctx, targetID, false, "", actor.ID); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, models.ActionUserUnblock, "user", targetID, nil)
	return s.userRepo.GetByID(ctx, targetID)
}

// SetAdmin grants or revokes admin rights.
func (s *UserService) SetAdmin(ctx context.Context, actor Actor, targetID uint, isAdmin bool) (*models.User, error) {
	if !isAdmin && targetID == actor.ID && actor.ID != 0 {
		return nil, models.NewValidationError("You cannot demote yourself")
	}
	if err := s.userRepo.SetAdmin(ctx, targetID, isAdmin); err != nil {
		return nil, err
	}

	action := models.ActionUserPromote
	if !isAdmin {
		action = models.ActionUserDemote
	}
	s.audit.Record(ctx, actor, action, "user", targetID, nil)
	return s.userRepo.GetByID(ctx, targetID)
}
