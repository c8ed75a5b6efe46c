package service

import (
	"context"
	"errors"

	"github.com/samber/oops"

	"github.com/loopers/commerce-api/internal/domain/entity"
	"github.com/loopers/commerce-api/internal/domain/repository"
)

// UserAuthService authenticates login id / raw password pairs.
type UserAuthService struct {
	users     repository.UserRepository
	encoder   PasswordEncoder
	dummyHash string
}

// AuthOption configures a UserAuthService.
type AuthOption func(*UserAuthService)

// WithDummyHash makes Authenticate run the encoder against hash when the
// login id is unknown, so both failure paths cost one hash comparison.
// hash must be a well-formed output of the same encoder.
func WithDummyHash(hash string) AuthOption {
	return func(s *UserAuthService) { s.dummyHash = hash }
}

// NewUserAuthService creates a UserAuthService.
func NewUserAuthService(users repository.UserRepository, encoder PasswordEncoder, opts ...AuthOption) (*UserAuthService, error) {
	if users == nil {
		return nil, oops.Code("USER_AUTH_SERVICE_INVALID").Errorf("user repository is required")
	}
	if encoder == nil {
		return nil, oops.Code("USER_AUTH_SERVICE_INVALID").Errorf("password encoder is required")
	}
	s := &UserAuthService{users: users, encoder: encoder}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authenticate returns the user owning loginID when rawPassword matches.
// Unknown login ids and wrong passwords fail with the same
// entity.ErrAuthenticationFailed so callers cannot tell them apart.
func (s *UserAuthService) Authenticate(ctx context.Context, loginID, rawPassword string) (*entity.User, error) {
	u, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			if s.dummyHash != "" {
				_ = s.encoder.Matches(rawPassword, s.dummyHash)
			}
			return nil, entity.ErrAuthenticationFailed
		}
		return nil, oops.Code("USER_AUTH_FAILED").
			With("operation", "find user by login id").
			Wrap(err)
	}

	if !s.encoder.Matches(rawPassword, u.Password().Value()) {
		return nil, entity.ErrAuthenticationFailed
	}
	return u, nil
}
