// Package memory holds process-local implementations of the domain
// repository ports, used for STORAGE=memory and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/loopers/commerce-api/internal/domain/entity"
	"github.com/loopers/commerce-api/internal/domain/repository"
)

type userRecord struct {
	id        int64
	loginID   string
	password  string
	name      string
	birthDate time.Time
	email     string
	createdAt time.Time
	updatedAt time.Time
}

// UserRepository is a mutex guarded map implementation of
// repository.UserRepository. Login id uniqueness is enforced on Save.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[int64]userRecord
	byLogin map[string]int64
	nextID  int64
	now     func() time.Time
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[int64]userRecord),
		byLogin: make(map[string]int64),
		now:     time.Now,
	}
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	rec, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return rec.toEntity()
}

// FindByIDForUpdate is FindByID; Transactor already runs transactions one
// at a time.
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.User, error) {
	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByLoginID(_ context.Context, loginID string) (*entity.User, error) {
	r.mu.RLock()
	id, ok := r.byLogin[loginID]
	rec := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return rec.toEntity()
}

func (r *UserRepository) ExistsByLoginID(_ context.Context, loginID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byLogin[loginID]
	return ok, nil
}

// Save inserts u when it has no id yet, otherwise replaces the stored row.
// The returned user is the argument with identity and timestamps filled in.
func (r *UserRepository) Save(_ context.Context, u *entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now().UTC()
	if u.IsNew() {
		if _, taken := r.byLogin[u.LoginID()]; taken {
			return nil, entity.DuplicateLoginID(u.LoginID(), false)
		}
		r.nextID++
		u.MarkPersisted(r.nextID, ts, ts)
		r.byLogin[u.LoginID()] = u.ID()
		r.byID[u.ID()] = recordOf(u)
		return u, nil
	}

	prev, ok := r.byID[u.ID()]
	if !ok {
		return nil, oops.Code("USER_REPO_SAVE_FAILED").
			With("user_id", u.ID()).
			Wrap(repository.ErrUserNotFound)
	}
	if prev.loginID != u.LoginID() {
		if _, taken := r.byLogin[u.LoginID()]; taken {
			return nil, entity.DuplicateLoginID(u.LoginID(), false)
		}
		delete(r.byLogin, prev.loginID)
		r.byLogin[u.LoginID()] = u.ID()
	}
	u.MarkPersisted(u.ID(), prev.createdAt, ts)
	r.byID[u.ID()] = recordOf(u)
	return u, nil
}

func (r *UserRepository) snapshot() (map[int64]userRecord, int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make(map[int64]userRecord, len(r.byID))
	for id, rec := range r.byID {
		cp[id] = rec
	}
	return cp, r.nextID
}

func (r *UserRepository) restore(byID map[int64]userRecord, nextID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = byID
	r.byLogin = make(map[string]int64, len(byID))
	for id, rec := range byID {
		r.byLogin[rec.loginID] = id
	}
	r.nextID = nextID
}

func recordOf(u *entity.User) userRecord {
	return userRecord{
		id:        u.ID(),
		loginID:   u.LoginID(),
		password:  u.Password().Value(),
		name:      u.Name(),
		birthDate: u.BirthDate(),
		email:     u.Email(),
		createdAt: u.CreatedAt(),
		updatedAt: u.UpdatedAt(),
	}
}

func (rec userRecord) toEntity() (*entity.User, error) {
	u, err := entity.RestoreUser(rec.id, rec.loginID, rec.password, rec.name, rec.birthDate, rec.email, rec.createdAt, rec.updatedAt)
	if err != nil {
		return nil, oops.Code("USER_REPO_SCAN_FAILED").
			With("user_id", rec.id).
			Wrap(err)
	}
	return u, nil
}
