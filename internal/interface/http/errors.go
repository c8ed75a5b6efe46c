package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loopers/commerce-api/internal/domain/entity"
	"github.com/loopers/commerce-api/pkg/helpers"
	"github.com/loopers/commerce-api/pkg/response"
	"github.com/loopers/commerce-api/pkg/validation"
)

// Transport level error codes.
const (
	CodeInternal     = "COMMON_001"
	CodeInvalidInput = "COMMON_002"
)

func statusFor(class entity.ErrorClass) int {
	switch class {
	case entity.ClassBadInput:
		return http.StatusBadRequest
	case entity.ClassConflict:
		return http.StatusConflict
	case entity.ClassUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the envelope for err. Domain errors keep their code
// and message; anything else is logged and reported as an internal error.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var de *entity.Error
	if errors.As(err, &de) {
		status := statusFor(de.Class)
		if status != http.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"code":       de.Code,
				"path":       c.FullPath(),
			}).Info("request rejected")
			response.Error[any](c, status, de.Code, de.Message, nil)
			return
		}
	}
	helpers.LogError(logger, "request failed", err, logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
	})
	response.Error[any](c, http.StatusInternalServerError, CodeInternal, "internal server error", nil)
}

func respondBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, CodeInvalidInput, "invalid payload", validation.ToDetails(err))
}
