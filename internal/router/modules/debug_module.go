package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/loopers/commerce-api/internal/interface/middleware"
)

// DebugModule serves expvar metrics at /api/debug/vars. Private network
// clients bypass the per-IP limit.
type DebugModule struct {
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewDebugModule(rdb *redis.Client, logger *logrus.Logger) *DebugModule {
	return &DebugModule{Redis: rdb, Logger: logger}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP(), m.Logger)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
