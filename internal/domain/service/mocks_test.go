package service_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/loopers/commerce-api/internal/domain/entity"
)

// plainEncoder is a reversible stand-in for bcrypt.
type plainEncoder struct {
	matches atomic.Int32
	failOn  string
}

func (e *plainEncoder) Encode(raw string) (string, error) {
	if e.failOn != "" && raw == e.failOn {
		return "", errors.New("encoder unavailable")
	}
	return "enc:" + raw, nil
}

func (e *plainEncoder) Matches(raw, encoded string) bool {
	e.matches.Add(1)
	return strings.HasPrefix(encoded, "enc:") && encoded[len("enc:"):] == raw
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) FindByLoginID(ctx context.Context, loginID string) (*entity.User, error) {
	args := m.Called(ctx, loginID)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	args := m.Called(ctx, loginID)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	args := m.Called(ctx, u)
	saved, _ := args.Get(0).(*entity.User)
	return saved, args.Error(1)
}

// passthroughTransactor runs fn without any isolation.
type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
