package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/loopers/commerce-api/internal/interface/http"
	"github.com/loopers/commerce-api/internal/interface/middleware"
)

// RateLimits are per-minute request budgets. Zero disables a limit.
type RateLimits struct {
	RegisterPerIP int
	AuthPerIP     int
	AuthPerUser   int
}

// UserModule wires the user HTTP handlers.
// Public: POST /api/v1/users
// Credential headers: GET /api/v1/users/me, PATCH /api/v1/users/me/password
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    middleware.Authenticator
	Redis   *redis.Client
	Limits  RateLimits
	Logger  *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, auth middleware.Authenticator, rdb *redis.Client, limits RateLimits, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, Auth: auth, Redis: rdb, Limits: limits, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/v1/users")

	registerLimiter := middleware.RateLimit(m.Redis, m.Limits.RegisterPerIP, time.Minute, middleware.KeyByIPAndPath(), nil, m.Logger)
	users.POST("", registerLimiter, m.Handler.Register)

	// the per-IP budget runs before authentication so guessing is throttled too
	me := users.Group("/me")
	me.Use(
		middleware.RateLimit(m.Redis, m.Limits.AuthPerIP, time.Minute, middleware.KeyByIP(), nil, m.Logger),
		middleware.Auth(m.Auth, m.Logger),
		middleware.RateLimit(m.Redis, m.Limits.AuthPerUser, time.Minute, middleware.KeyByUserID(), nil, m.Logger),
	)
	{
		me.GET("", m.Handler.GetMe)
		me.PATCH("/password", m.Handler.ChangePassword)
	}
}
