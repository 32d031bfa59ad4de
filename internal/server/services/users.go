// Package services contains server-side business logic: signing users in,
// their preferences, and the event catalogue.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/logging"
	"github.com/dmitrijs2005/sparkbytes/internal/server/auth"
	"github.com/dmitrijs2005/sparkbytes/internal/server/config"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/repomanager"
)

// UserService handles login, session tokens and preference updates.
type UserService struct {
	repomanager                 repomanager.RepositoryManager
	log                         logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	now                         func() time.Time

	dummyOnce sync.Once
	dummy     []byte
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		repomanager:                 m,
		log:                         log.With("service", "users"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		now:                         time.Now,
	}
}

// Login checks the password and returns a signed access token. Unknown
// users and wrong passwords both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, userName string, password []byte) (string, error) {
	user, err := s.repomanager.Users().GetByID(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Spend the same bcrypt time as for a real account.
			auth.CheckPassword(s.dummyHash(), password)
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		s.log.Info(ctx, "wrong password", "user_id", userName)
		return "", common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.UserID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// Authenticate resolves a session token to its user. Every failure matches
// common.ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: Not authenticated", common.ErrUnauthorized)
	}
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: Could not validate credentials", common.ErrUnauthorized)
	}

	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: User not found", common.ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", userID, err)
	}
	return u, nil
}

// UpdatePreferences replaces the dietary flags of userID. Callers may only
// change their own record.
func (s *UserService) UpdatePreferences(ctx context.Context, callerID, userID string, prefs models.Preferences) (*models.User, error) {
	if callerID != userID {
		return nil, fmt.Errorf("%w: cannot change preferences of another user", common.ErrForbidden)
	}
	u, err := s.repomanager.Users().UpdatePreferences(ctx, userID, prefs)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", userID, err)
	}
	return u, nil
}

// EnsureUser creates the account if it does not exist yet. An existing
// account keeps its password.
func (s *UserService) EnsureUser(ctx context.Context, userName string, password []byte) error {
	if userName == "" {
		return fmt.Errorf("%w: empty user name", common.ErrValidation)
	}
	if len(password) == 0 {
		return fmt.Errorf("%w: empty password", common.ErrValidation)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.repomanager.Users().Create(ctx, &models.User{
		UserID:       userName,
		PasswordHash: hash,
		CreatedAt:    s.now().Unix(),
	})
	if errors.Is(err, common.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create user %q: %w", userName, err)
	}
	s.log.Info(ctx, "user created", "user_id", userName)
	return nil
}

func (s *UserService) dummyHash() []byte {
	s.dummyOnce.Do(func() {
		pw, _ := common.MakeRandHexString(16)
		s.dummy, _ = auth.HashPassword([]byte(pw))
	})
	return s.dummy
}
