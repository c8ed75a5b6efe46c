package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loopers/commerce-api/internal/domain/entity"
	"github.com/loopers/commerce-api/pkg/helpers"
	"github.com/loopers/commerce-api/pkg/response"
)

// Credential headers.
const (
	HeaderLoginID  = "X-Loopers-LoginId"
	HeaderLoginPw  = "X-Loopers-LoginPw"
	ContextUserID  = "userID"
	ContextLoginID = "loginID"
)

// Authenticator verifies a login id / raw password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, loginID, rawPassword string) (*entity.User, error)
}

// Auth authenticates every request from the credential headers and sets
// userID (int64) and loginID in the Gin context on success.
func Auth(auth Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		loginID := c.GetHeader(HeaderLoginID)
		password := c.GetHeader(HeaderLoginPw)
		if loginID == "" || password == "" {
			abortUnauthorized(c)
			return
		}

		u, err := auth.Authenticate(c.Request.Context(), loginID, password)
		if err != nil {
			if errors.Is(err, entity.ErrAuthenticationFailed) {
				abortUnauthorized(c)
				return
			}
			helpers.LogError(logger, "authentication lookup failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
			response.Error[any](c, http.StatusInternalServerError, "COMMON_001", "internal server error", nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, u.ID())
		c.Set(ContextLoginID, u.LoginID())
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	e := entity.ErrAuthenticationFailed
	response.Error[any](c, http.StatusUnauthorized, e.Code, e.Message, nil)
	c.Abort()
}
