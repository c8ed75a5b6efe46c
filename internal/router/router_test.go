package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopers/commerce-api/config"
	"github.com/loopers/commerce-api/internal/container"
	"github.com/loopers/commerce-api/internal/interface/middleware"
	"github.com/loopers/commerce-api/pkg/validation"
)

const registerBody = `{"login_id":"testuser1","password":"Test1234!","name":"홍길동","birth_date":"1995-03-15","email":"test@example.com"}`

func setup(t *testing.T, cfg *config.Config, rdb *redis.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger, _ := test.NewNullLogger()
	container.Reset()
	t.Cleanup(container.Reset)
	container.SetConfig(cfg)
	container.SetLogger(logger)
	if rdb != nil {
		container.SetRedis(rdb)
	}

	r := gin.New()
	reg := NewRegistry(r)
	reg.Use(middleware.RequestIDMiddleware())
	require.NoError(t, InitModules(reg))
	reg.RegisterAll()
	return r
}

func baseConfig() *config.Config {
	return &config.Config{
		Storage:                "memory",
		BcryptCost:             4,
		AuthEqualizeTiming:     true,
		ExposeDuplicateLoginID: true,
	}
}

func serve(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInitModulesWiresUserRoutes(t *testing.T) {
	r := setup(t, baseConfig(), nil)

	w := serve(r, http.MethodPost, "/api/v1/users", registerBody, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	creds := map[string]string{middleware.HeaderLoginID: "testuser1", middleware.HeaderLoginPw: "Test1234!"}
	w = serve(r, http.MethodGet, "/api/v1/users/me", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"홍길*"`)

	creds[middleware.HeaderLoginPw] = "Wrong1234!"
	w = serve(r, http.MethodGet, "/api/v1/users/me", "", creds)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/users", registerBody, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDebugModuleToggle(t *testing.T) {
	cfg := baseConfig()
	r := setup(t, cfg, nil)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/debug/vars", "", nil).Code)

	cfg = baseConfig()
	cfg.DebugMetricsEnabled = true
	r = setup(t, cfg, nil)
	w := serve(r, http.MethodGet, "/api/debug/vars", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users"`)
}

func TestRegisterRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := baseConfig()
	cfg.RateLimitRegisterPerMin = 1
	r := setup(t, cfg, rdb)

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/api/v1/users", registerBody, nil).Code)
	w := serve(r, http.MethodPost, "/api/v1/users", registerBody, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "COMMON_003")
}

type pingModule struct{ path string }

func (m pingModule) Register(rg *gin.RouterGroup) {
	rg.GET(m.path, func(c *gin.Context) { c.String(http.StatusOK, c.GetString("trace")) })
}

func TestRegistryAppliesSharedMiddlewareToEveryModule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry(r)
	reg.Use(func(c *gin.Context) { c.Set("trace", "shared") })
	reg.Add(pingModule{path: "/a"})
	reg.Add(pingModule{path: "/b"})
	reg.RegisterAll()

	for _, path := range []string{"/api/a", "/api/b"} {
		w := serve(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "shared", w.Body.String())
	}
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/a", "", nil).Code)
}

func TestBuildUserDepsWithMemoryStorage(t *testing.T) {
	setup(t, baseConfig(), nil)

	deps, err := buildUserDeps()
	require.NoError(t, err)
	assert.NotNil(t, deps.Auth)
	assert.NotNil(t, deps.Handler)
}
