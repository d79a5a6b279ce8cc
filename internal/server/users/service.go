package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/token"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	repo             Repository
	refreshTokenRepo refreshtokens.Repository
	tokens           *token.Manager
	refreshTokenTTL  time.Duration
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, tokens *token.Manager, cfg *config.Config) *Service {
	return &Service{
		repo:             repo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
	}
}

func (s *Service) Register(ctx context.Context, email, name, role, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return user, nil
}

func (s *Service) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

// Login verifies the credentials and issues a token pair: a signed access
// token plus an opaque stored refresh token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrUnauthorized
		}
		return nil, nil, common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, nil, common.ErrUnauthorized
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, common.ErrInternal
	}

	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is deleted and a
// fresh pair is issued. Expired and unknown tokens both come back as
// common.ErrRefreshTokenExpired.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	rt, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, common.ErrInternal
	}

	if time.Now().After(rt.ExpiresAt) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repo.GetUserByID(ctx, rt.UserID)
	if err != nil {
		return nil, common.ErrInternal
	}

	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return nil, common.ErrInternal
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, common.ErrInternal
	}

	return pair, nil
}

// Logout revokes every refresh token issued to the user.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.refreshTokenRepo.DeleteByUser(ctx, userID)
}

// VerifyAccessToken exposes token verification to the transport layer.
func (s *Service) VerifyAccessToken(accessToken string) (*token.Claims, error) {
	return s.tokens.Verify(accessToken)
}

func (s *Service) issuePair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokenRepo.Create(ctx, user.ID, refreshToken, s.refreshTokenTTL); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
