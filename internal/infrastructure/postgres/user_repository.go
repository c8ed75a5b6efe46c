package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/loopers/commerce-api/internal/domain/entity"
	"github.com/loopers/commerce-api/internal/domain/repository"
)

const userColumns = `id, login_id, password_hash, name, birth_date, email, created_at, updated_at`

// UserRepository implements repository.UserRepository on the users table.
// Login id uniqueness is enforced by the users_login_id_key constraint.
type UserRepository struct {
	db DB
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, oops.Code("USER_REPO_QUERY_FAILED").
			With("operation", "find user by id").
			With("user_id", id).
			Wrap(err)
	}
	return u, nil
}

// FindByIDForUpdate takes a row lock with SELECT ... FOR UPDATE. Outside a
// transaction the lock is released as soon as the statement ends.
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.User, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, oops.Code("USER_REPO_QUERY_FAILED").
			With("operation", "lock user by id").
			With("user_id", id).
			Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) FindByLoginID(ctx context.Context, loginID string) (*entity.User, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE login_id = $1`, loginID)
	u, err := scanUser(row)
	if err != nil {
		return nil, oops.Code("USER_REPO_QUERY_FAILED").
			With("operation", "find user by login id").
			With("login_id", loginID).
			Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE login_id = $1)`, loginID).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_REPO_QUERY_FAILED").
			With("operation", "check login id").
			With("login_id", loginID).
			Wrap(err)
	}
	return exists, nil
}

// Save inserts a new user or updates an existing one and copies the
// store-assigned id and timestamps back onto u.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	if u.IsNew() {
		return r.insert(ctx, u)
	}
	return r.update(ctx, u)
}

func (r *UserRepository) insert(ctx context.Context, u *entity.User) (*entity.User, error) {
	var (
		id                   int64
		createdAt, updatedAt time.Time
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO users (login_id, password_hash, name, birth_date, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, u.LoginID(), u.Password().Value(), u.Name(), u.BirthDate(), u.Email()).
		Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.DuplicateLoginID(u.LoginID(), false)
		}
		return nil, oops.Code("USER_REPO_INSERT_FAILED").
			With("login_id", u.LoginID()).
			Wrap(err)
	}
	u.MarkPersisted(id, createdAt, updatedAt)
	return u, nil
}

func (r *UserRepository) update(ctx context.Context, u *entity.User) (*entity.User, error) {
	var createdAt, updatedAt time.Time
	err := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE users
		SET login_id = $1, password_hash = $2, name = $3, birth_date = $4, email = $5, updated_at = now()
		WHERE id = $6
		RETURNING created_at, updated_at
	`, u.LoginID(), u.Password().Value(), u.Name(), u.BirthDate(), u.Email(), u.ID()).
		Scan(&createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.DuplicateLoginID(u.LoginID(), false)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			err = repository.ErrUserNotFound
		}
		return nil, oops.Code("USER_REPO_UPDATE_FAILED").
			With("user_id", u.ID()).
			Wrap(err)
	}
	u.MarkPersisted(u.ID(), createdAt, updatedAt)
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		id                                 int64
		loginID, passwordHash, name, email string
		birthDate, createdAt, updatedAt    time.Time
	)
	if err := row.Scan(&id, &loginID, &passwordHash, &name, &birthDate, &email, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return entity.RestoreUser(id, loginID, passwordHash, name, birthDate, email, createdAt, updatedAt)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
