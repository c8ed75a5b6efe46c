package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/loopers/commerce-api/internal/domain/entity"
	"github.com/loopers/commerce-api/internal/domain/repository"
)

// UserService orchestrates registration and password change.
// Each operation runs inside one transaction of the configured Transactor.
type UserService struct {
	users         repository.UserRepository
	tx            repository.Transactor
	encoder       PasswordEncoder
	exposeLoginID bool
	logger        *logrus.Logger
}

// Option configures a UserService.
type Option func(*UserService)

// WithLoginIDInDuplicateError controls whether DuplicateLoginId messages
// include the offending login id. It is included by default.
func WithLoginIDInDuplicateError(expose bool) Option {
	return func(s *UserService) { s.exposeLoginID = expose }
}

// WithLogger sets the logger used for operation traces.
func WithLogger(l *logrus.Logger) Option {
	return func(s *UserService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, tx repository.Transactor, encoder PasswordEncoder, opts ...Option) (*UserService, error) {
	if users == nil {
		return nil, oops.Code("USER_SERVICE_INVALID").Errorf("user repository is required")
	}
	if tx == nil {
		return nil, oops.Code("USER_SERVICE_INVALID").Errorf("transactor is required")
	}
	if encoder == nil {
		return nil, oops.Code("USER_SERVICE_INVALID").Errorf("password encoder is required")
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &UserService{
		users:         users,
		tx:            tx,
		encoder:       encoder,
		exposeLoginID: true,
		logger:        discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates and persists a new user.
//
// Steps, in one transaction: login id uniqueness, password policy, encoding,
// aggregate validation, save. Domain failures are returned unchanged.
func (s *UserService) Register(ctx context.Context, loginID, rawPassword, name string, birthDate time.Time, email string) (*entity.User, error) {
	var saved *entity.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.users.ExistsByLoginID(ctx, loginID)
		if err != nil {
			return oops.Code("USER_REGISTER_FAILED").
				With("operation", "check login id").
				With("login_id", loginID).
				Wrap(err)
		}
		if exists {
			return entity.DuplicateLoginID(loginID, s.exposeLoginID)
		}

		if err := entity.ValidatePassword(rawPassword, birthDate); err != nil {
			return err
		}

		encoded, err := s.encoder.Encode(rawPassword)
		if err != nil {
			return oops.Code("USER_REGISTER_FAILED").
				With("operation", "encode password").
				Wrap(err)
		}

		u, err := entity.NewUser(loginID, encoded, name, birthDate, email)
		if err != nil {
			return err
		}

		saved, err = s.users.Save(ctx, u)
		if err != nil {
			// the store's unique constraint is the real guard against racing registrations
			if errors.Is(err, entity.ErrDuplicateLoginID) {
				return entity.DuplicateLoginID(loginID, s.exposeLoginID)
			}
			return oops.Code("USER_REGISTER_FAILED").
				With("operation", "save user").
				With("login_id", loginID).
				Wrap(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": saved.ID(), "login_id": saved.LoginID()}).Debug("user registered")
	return saved, nil
}

// ChangePassword resolves the user by id and changes its password.
// An unknown id fails with entity.ErrAuthenticationFailed.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.lockUser(ctx, userID)
		if err != nil {
			return err
		}
		return s.changePassword(ctx, u, currentPassword, newPassword)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("user_id", userID).Debug("password changed")
	return nil
}

// ChangeUserPassword changes the password of an already resolved user.
// The current password is checked against the stored row, not against u,
// so a stale instance cannot overwrite a newer password. On failure u keeps
// its previous password.
func (s *UserService) ChangeUserPassword(ctx context.Context, u *entity.User, currentPassword, newPassword string) error {
	if u == nil {
		return entity.ErrAuthenticationFailed
	}
	var changed *entity.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.lockUser(ctx, u.ID())
		if err != nil {
			return err
		}
		if err := s.changePassword(ctx, locked, currentPassword, newPassword); err != nil {
			return err
		}
		changed = locked
		return nil
	})
	if err != nil {
		return err
	}
	u.ChangePassword(changed.Password().Value())
	u.MarkPersisted(changed.ID(), changed.CreatedAt(), changed.UpdatedAt())
	s.logger.WithField("user_id", u.ID()).Debug("password changed")
	return nil
}

// lockUser loads the user row and holds it until the transaction ends.
func (s *UserService) lockUser(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, entity.ErrAuthenticationFailed
		}
		return nil, oops.Code("USER_CHANGE_PASSWORD_FAILED").
			With("operation", "lock user").
			With("user_id", userID).
			Wrap(err)
	}
	return u, nil
}

func (s *UserService) changePassword(ctx context.Context, u *entity.User, currentPassword, newPassword string) error {
	stored := u.Password().Value()
	if !s.encoder.Matches(currentPassword, stored) {
		return entity.ErrInvalidCurrentPassword
	}
	if s.encoder.Matches(newPassword, stored) {
		return entity.ErrSamePassword
	}
	if err := entity.ValidatePassword(newPassword, u.BirthDate()); err != nil {
		return err
	}

	encoded, err := s.encoder.Encode(newPassword)
	if err != nil {
		return oops.Code("USER_CHANGE_PASSWORD_FAILED").
			With("operation", "encode password").
			Wrap(err)
	}

	u.ChangePassword(encoded)
	if _, err := s.users.Save(ctx, u); err != nil {
		u.ChangePassword(stored)
		return oops.Code("USER_CHANGE_PASSWORD_FAILED").
			With("operation", "save user").
			With("user_id", u.ID()).
			Wrap(err)
	}
	return nil
}
