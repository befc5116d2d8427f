package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/lazypos/admin-api/internal"
	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
	"github.com/lazypos/admin-api/internal/core/events"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	GetByUserName(ctx context.Context, userName string) (*userDatamodel.User, error)
	ActiveRoleIDs(ctx context.Context, userID int64) ([]int64, error)
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
}

type Service struct {
	userRepo   UserRepository
	tokens     *JWTTokenGenerator
	eventBus   *events.EventBus
	bcryptCost int
	logger     *slog.Logger
}

func NewService(userRepo UserRepository, tokens *JWTTokenGenerator, eventBus *events.EventBus, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:   userRepo,
		tokens:     tokens,
		eventBus:   eventBus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) buildPrincipal(ctx context.Context, user *userDatamodel.User) (*internal.Principal, error) {
	roleIDs, err := s.userRepo.ActiveRoleIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &internal.Principal{
		UserID:      user.ID,
		IsAdmin:     user.IsAdmin,
		AccountType: internal.AccountType(user.AccountType),
		RoleIDs:     roleIDs,
	}, nil
}

func (s *Service) issueTokens(ctx context.Context, user *userDatamodel.User) (AuthTokens, error) {
	principal, err := s.buildPrincipal(ctx, user)
	if err != nil {
		return AuthTokens{}, err
	}

	accessToken, err := s.tokens.GenerateAccessToken(principal)
	if err != nil {
		return AuthTokens{}, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Authenticate validates credentials and returns a token pair. Lookup
// failures and bad passwords produce the same error so user names cannot
// be probed.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO, remoteIP string) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	user, err := s.userRepo.GetByUserName(ctx, dto.UserName)
	if err != nil {
		s.logger.Error("failed to look up user", "error", err)
		return AuthTokens{}, err
	}
	if user == nil || user.Status == -1 {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		return AuthTokens{}, internal.ErrUserLocked
	}
	if user.Status == 0 {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return AuthTokens{}, err
	}

	if s.eventBus != nil {
		_ = s.eventBus.Publish(ctx, events.NewUserLoggedInEvent(user.ID, user.UserName, remoteIP))
	}

	return tokens, nil
}

// RefreshTokens redeems a refresh token, re-reading the user so revoked or
// locked accounts cannot mint new access tokens.
func (s *Service) RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	userID, err := s.tokens.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return AuthTokens{}, err
	}
	if user == nil || user.Status != 1 {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		return AuthTokens{}, internal.ErrUserLocked
	}

	return s.issueTokens(ctx, user)
}

// VerifyAccessToken exposes token verification for the HTTP middleware.
func (s *Service) VerifyAccessToken(token string) (*internal.Principal, error) {
	return s.tokens.VerifyAccessToken(token)
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
