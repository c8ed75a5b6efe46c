package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loopers/commerce-api/internal/domain/entity"
	"github.com/loopers/commerce-api/internal/domain/service"
	"github.com/loopers/commerce-api/internal/infrastructure/memory"
)

var birth = time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *memory.UserRepository
	encoder *plainEncoder
	users   *service.UserService
	auth    *service.UserAuthService
}

func newFixture(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	repo := memory.NewUserRepository()
	encoder := &plainEncoder{}
	users, err := service.NewUserService(repo, memory.NewTransactor(repo), encoder, opts...)
	require.NoError(t, err)
	auth, err := service.NewUserAuthService(repo, encoder)
	require.NoError(t, err)
	return &fixture{repo: repo, encoder: encoder, users: users, auth: auth}
}

func (f *fixture) register(t *testing.T) *entity.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), "testuser1", "Test1234!", "홍길동", birth, "test@example.com")
	require.NoError(t, err)
	return u
}

func TestNewUserServiceRequiresDependencies(t *testing.T) {
	repo := memory.NewUserRepository()
	tx := memory.NewTransactor(repo)

	_, err := service.NewUserService(nil, tx, &plainEncoder{})
	assert.Error(t, err)
	_, err = service.NewUserService(repo, nil, &plainEncoder{})
	assert.Error(t, err)
	_, err = service.NewUserService(repo, tx, nil)
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	t.Run("persists a new user with an encoded password", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t)

		assert.NotZero(t, u.ID())
		assert.Equal(t, "testuser1", u.LoginID())
		assert.Equal(t, "enc:Test1234!", u.Password().Value())
		assert.NotEqual(t, "Test1234!", u.Password().Value())

		stored, err := f.repo.FindByLoginID(context.Background(), "testuser1")
		require.NoError(t, err)
		assert.Equal(t, u.ID(), stored.ID())
		assert.Equal(t, "홍길동", stored.Name())
		assert.Equal(t, birth, stored.BirthDate())
		assert.Equal(t, "test@example.com", stored.Email())
	})

	t.Run("rejects a taken login id", func(t *testing.T) {
		f := newFixture(t)
		f.register(t)

		_, err := f.users.Register(context.Background(), "testuser1", "Other123!", "김철수", birth, "other@example.com")
		require.ErrorIs(t, err, entity.ErrDuplicateLoginID)
		assert.Contains(t, err.Error(), "testuser1")
	})

	t.Run("duplicate message can omit the login id", func(t *testing.T) {
		f := newFixture(t, service.WithLoginIDInDuplicateError(false))
		f.register(t)

		_, err := f.users.Register(context.Background(), "testuser1", "Other123!", "김철수", birth, "other@example.com")
		require.ErrorIs(t, err, entity.ErrDuplicateLoginID)
		assert.NotContains(t, err.Error(), "testuser1")
	})

	t.Run("duplicate check runs before password policy", func(t *testing.T) {
		f := newFixture(t)
		f.register(t)

		_, err := f.users.Register(context.Background(), "testuser1", "short", "김철수", birth, "other@example.com")
		assert.ErrorIs(t, err, entity.ErrDuplicateLoginID)
	})

	t.Run("password policy runs before user validation", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.users.Register(context.Background(), "testuser1", "short", "홍길동", birth, "not-an-email")
		assert.ErrorIs(t, err, entity.ErrInvalidPasswordLength)
	})

	t.Run("password must not contain birth date", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.users.Register(context.Background(), "testuser1", "Ab19900115!", "홍길동", birth, "test@example.com")
		assert.ErrorIs(t, err, entity.ErrPasswordContainsBirthDate)
	})

	t.Run("invalid fields leave nothing stored", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.users.Register(context.Background(), "testuser1", "Test1234!", "홍길동", birth, "invalid")
		require.ErrorIs(t, err, entity.ErrInvalidEmailFormat)

		ok, err := f.repo.ExistsByLoginID(context.Background(), "testuser1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("encoder failure is an infrastructure error", func(t *testing.T) {
		f := newFixture(t)
		f.encoder.failOn = "Test1234!"

		_, err := f.users.Register(context.Background(), "testuser1", "Test1234!", "홍길동", birth, "test@example.com")
		require.Error(t, err)
		var domainErr *entity.Error
		assert.False(t, errors.As(err, &domainErr))
		oopsErr, ok := oops.AsOops(err)
		require.True(t, ok)
		assert.Equal(t, "USER_REGISTER_FAILED", oopsErr.Code())
	})

	t.Run("unique violation at save surfaces as duplicate", func(t *testing.T) {
		repo := &mockUserRepository{}
		repo.On("ExistsByLoginID", mock.Anything, "testuser1").Return(false, nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil, entity.DuplicateLoginID("testuser1", false))

		users, err := service.NewUserService(repo, passthroughTransactor{}, &plainEncoder{})
		require.NoError(t, err)

		_, err = users.Register(context.Background(), "testuser1", "Test1234!", "홍길동", birth, "test@example.com")
		require.ErrorIs(t, err, entity.ErrDuplicateLoginID)
		assert.Contains(t, err.Error(), "testuser1")
		repo.AssertExpectations(t)
	})

	t.Run("lookup failure is wrapped", func(t *testing.T) {
		repo := &mockUserRepository{}
		repo.On("ExistsByLoginID", mock.Anything, "testuser1").Return(false, errors.New("connection reset"))

		users, err := service.NewUserService(repo, passthroughTransactor{}, &plainEncoder{})
		require.NoError(t, err)

		_, err = users.Register(context.Background(), "testuser1", "Test1234!", "홍길동", birth, "test@example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the stored hash", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t)

		require.NoError(t, f.users.ChangePassword(ctx, u.ID(), "Test1234!", "NewPass12!"))

		_, err := f.auth.Authenticate(ctx, "testuser1", "Test1234!")
		assert.ErrorIs(t, err, entity.ErrAuthenticationFailed)
		got, err := f.auth.Authenticate(ctx, "testuser1", "NewPass12!")
		require.NoError(t, err)
		assert.Equal(t, u.ID(), got.ID())
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t)

		err := f.users.ChangePassword(ctx, u.ID(), "Wrong1234!", "NewPass12!")
		assert.ErrorIs(t, err, entity.ErrInvalidCurrentPassword)
	})

	t.Run("current password is checked before sameness", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t)

		err := f.users.ChangePassword(ctx, u.ID(), "Wrong1234!", "Test1234!")
		assert.ErrorIs(t, err, entity.ErrInvalidCurrentPassword)
	})

	t.Run("new password equal to current", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t)

		err := f.users.ChangePassword(ctx, u.ID(), "Test1234!", "Test1234!")
		assert.ErrorIs(t, err, entity.ErrSamePassword)
	})

	t.Run("new password violates policy", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t)

		assert.ErrorIs(t, f.users.ChangePassword(ctx, u.ID(), "Test1234!", "short"), entity.ErrInvalidPasswordLength)
		assert.ErrorIs(t, f.users.ChangePassword(ctx, u.ID(), "Test1234!", "비밀번호1234!"), entity.ErrInvalidPasswordFormat)
		assert.ErrorIs(t, f.users.ChangePassword(ctx, u.ID(), "Test1234!", "Pw19900115!"), entity.ErrPasswordContainsBirthDate)

		_, err := f.auth.Authenticate(ctx, "testuser1", "Test1234!")
		assert.NoError(t, err)
	})

	t.Run("unknown user id", func(t *testing.T) {
		f := newFixture(t)

		err := f.users.ChangePassword(ctx, 404, "Test1234!", "NewPass12!")
		assert.ErrorIs(t, err, entity.ErrAuthenticationFailed)
	})
}

func TestChangeUserPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the given instance", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t)

		require.NoError(t, f.users.ChangeUserPassword(ctx, u, "Test1234!", "NewPass12!"))
		assert.Equal(t, "enc:NewPass12!", u.Password().Value())
	})

	t.Run("nil user", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.users.ChangeUserPassword(ctx, nil, "Test1234!", "NewPass12!"), entity.ErrAuthenticationFailed)
	})

	t.Run("save failure keeps the previous hash", func(t *testing.T) {
		u, err := entity.RestoreUser(7, "testuser1", "enc:Test1234!", "홍길동", birth, "test@example.com", time.Now(), time.Now())
		require.NoError(t, err)

		stored, err := entity.RestoreUser(7, "testuser1", "enc:Test1234!", "홍길동", birth, "test@example.com", time.Now(), time.Now())
		require.NoError(t, err)

		repo := &mockUserRepository{}
		repo.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(stored, nil)
		repo.On("Save", mock.Anything, stored).Return(nil, errors.New("disk full"))

		users, err := service.NewUserService(repo, passthroughTransactor{}, &plainEncoder{})
		require.NoError(t, err)

		err = users.ChangeUserPassword(ctx, u, "Test1234!", "NewPass12!")
		require.Error(t, err)
		oopsErr, ok := oops.AsOops(err)
		require.True(t, ok)
		assert.Equal(t, "USER_CHANGE_PASSWORD_FAILED", oopsErr.Code())
		assert.Equal(t, "enc:Test1234!", u.Password().Value())
		repo.AssertExpectations(t)
	})

	t.Run("stale instance is checked against the stored password", func(t *testing.T) {
		f := newFixture(t)
		stale := f.register(t)
		stale, err := f.repo.FindByID(ctx, stale.ID())
		require.NoError(t, err)

		require.NoError(t, f.users.ChangePassword(ctx, stale.ID(), "Test1234!", "Rotated12!"))

		err = f.users.ChangeUserPassword(ctx, stale, "Test1234!", "Attacker1!")
		assert.ErrorIs(t, err, entity.ErrInvalidCurrentPassword)
		assert.Equal(t, "enc:Test1234!", stale.Password().Value())

		_, err = f.auth.Authenticate(ctx, "testuser1", "Rotated12!")
		assert.NoError(t, err)
	})

	t.Run("unsaved user", func(t *testing.T) {
		f := newFixture(t)
		u, err := entity.NewUser("testuser1", "enc:Test1234!", "홍길동", birth, "test@example.com")
		require.NoError(t, err)

		assert.ErrorIs(t, f.users.ChangeUserPassword(ctx, u, "Test1234!", "NewPass12!"), entity.ErrAuthenticationFailed)
		exists, err := f.repo.ExistsByLoginID(ctx, "testuser1")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestChangePasswordLockFailure(t *testing.T) {
	repo := &mockUserRepository{}
	repo.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(nil, errors.New("lock timeout"))

	users, err := service.NewUserService(repo, passthroughTransactor{}, &plainEncoder{})
	require.NoError(t, err)

	err = users.ChangePassword(context.Background(), 7, "Test1234!", "NewPass12!")
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "USER_CHANGE_PASSWORD_FAILED", oopsErr.Code())
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
