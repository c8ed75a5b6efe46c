package application

import (
	"context"
	"errors"
	"expvar"
	"io"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/loopers/commerce-api/internal/domain/entity"
	"github.com/loopers/commerce-api/internal/domain/repository"
	"github.com/loopers/commerce-api/internal/domain/service"
	"github.com/loopers/commerce-api/pkg/helpers"
	"github.com/loopers/commerce-api/pkg/mailer"
	mailtpl "github.com/loopers/commerce-api/pkg/mailer/templates"
)

var metrics = expvar.NewMap("users")

// RegisterInput carries the fields of a sign-up request.
type RegisterInput struct {
	LoginID   string
	Password  string
	Name      string
	BirthDate time.Time
	Email     string
}

// RequestMeta describes the client that issued a request.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// UserInfo is the externally visible view of a user. Name is masked.
type UserInfo struct {
	LoginID   string
	Name      string
	BirthDate time.Time
	Email     string
}

func toUserInfo(u *entity.User) *UserInfo {
	return &UserInfo{
		LoginID:   u.LoginID(),
		Name:      MaskName(u.Name()),
		BirthDate: u.BirthDate(),
		Email:     u.Email(),
	}
}

// DirectoryEntry is the searchable projection of a user.
type DirectoryEntry struct {
	UserID     int64
	LoginID    string
	MaskedName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserIndexer maintains the user directory projection.
type UserIndexer interface {
	IndexUser(ctx context.Context, e DirectoryEntry) error
}

// EmailQueue hands email jobs to the delivery worker.
type EmailQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

// UserFacade exposes the user use cases to the transport layer and runs
// their post-commit side effects. Side effect failures are logged only.
type UserFacade struct {
	users   *service.UserService
	repo    repository.UserRepository
	indexer UserIndexer
	emails  EmailQueue
	brand   mailtpl.Brand
	logger  *logrus.Logger
	timeout time.Duration
}

type FacadeOption func(*UserFacade)

func WithIndexer(i UserIndexer) FacadeOption { return func(f *UserFacade) { f.indexer = i } }

func WithEmailQueue(q EmailQueue, brand mailtpl.Brand) FacadeOption {
	return func(f *UserFacade) {
		f.emails = q
		f.brand = brand
	}
}

func WithFacadeLogger(l *logrus.Logger) FacadeOption {
	return func(f *UserFacade) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithSideEffectTimeout bounds each post-commit side effect. Default 3s.
func WithSideEffectTimeout(d time.Duration) FacadeOption {
	return func(f *UserFacade) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func NewUserFacade(users *service.UserService, repo repository.UserRepository, opts ...FacadeOption) (*UserFacade, error) {
	if users == nil || repo == nil {
		return nil, oops.Code("USER_FACADE_INVALID").Errorf("user service and repository are required")
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	f := &UserFacade{users: users, repo: repo, logger: discard, timeout: 3 * time.Second}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *UserFacade) Register(ctx context.Context, in RegisterInput) (*UserInfo, error) {
	u, err := f.users.Register(ctx, in.LoginID, in.Password, in.Name, in.BirthDate, in.Email)
	if err != nil {
		return nil, err
	}
	metrics.Add("registered", 1)
	f.logger.WithFields(logrus.Fields{"user_id": u.ID(), "login_id": u.LoginID()}).Info("user registered")

	f.index(ctx, u)
	f.enqueue(ctx, mailer.EmailJob{
		To:       u.Email(),
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(f.brand, u.Name(), u.LoginID(), u.Email(), mailtpl.WithTime(u.CreatedAt())),
	})
	return toUserInfo(u), nil
}

// GetMyInfo returns the info of an authenticated user. A user that no
// longer exists fails authentication.
func (f *UserFacade) GetMyInfo(ctx context.Context, userID int64) (*UserInfo, error) {
	u, err := f.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, entity.ErrAuthenticationFailed
		}
		return nil, err
	}
	return toUserInfo(u), nil
}

func (f *UserFacade) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string, meta RequestMeta) error {
	if err := f.users.ChangePassword(ctx, userID, currentPassword, newPassword); err != nil {
		return err
	}
	metrics.Add("password_changed", 1)
	f.logger.WithField("user_id", userID).Info("password changed")

	u, err := f.repo.FindByID(ctx, userID)
	if err != nil {
		helpers.LogError(f.logger, "reload user after password change", err, logrus.Fields{"user_id": userID})
		return nil
	}
	f.index(ctx, u)
	f.enqueue(ctx, mailer.EmailJob{
		To:       u.Email(),
		Template: mailtpl.PasswordChanged,
		Data: mailtpl.NewPasswordChangedData(f.brand, u.Name(), u.LoginID(), u.Email(),
			mailtpl.WithTime(u.UpdatedAt()),
			mailtpl.WithIP(meta.IP),
			mailtpl.WithUserAgent(meta.UserAgent),
		),
	})
	return nil
}

func (f *UserFacade) index(ctx context.Context, u *entity.User) {
	if f.indexer == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()
	err := f.indexer.IndexUser(c, DirectoryEntry{
		UserID:     u.ID(),
		LoginID:    u.LoginID(),
		MaskedName: MaskName(u.Name()),
		CreatedAt:  u.CreatedAt(),
		UpdatedAt:  u.UpdatedAt(),
	})
	if err != nil {
		metrics.Add("side_effect_failures", 1)
		f.logger.WithError(err).WithField("user_id", u.ID()).Warn("user directory index failed")
	}
}

func (f *UserFacade) enqueue(ctx context.Context, job mailer.EmailJob) {
	if f.emails == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()
	if err := f.emails.PublishJSON(c, job); err != nil {
		metrics.Add("side_effect_failures", 1)
		f.logger.WithError(err).WithField("template", job.Template).Warn("email enqueue failed")
	}
}
