package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loopers/commerce-api/internal/application"
	"github.com/loopers/commerce-api/internal/interface/middleware"
	"github.com/loopers/commerce-api/pkg/response"
	"github.com/loopers/commerce-api/pkg/validation"
)

type UserHandler struct {
	Facade *application.UserFacade
	Logger *logrus.Logger
}

func NewUserHandler(facade *application.UserFacade, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Facade: facade, Logger: logger}
}

type registerRequest struct {
	LoginID   string `json:"login_id" binding:"required,min=4,max=20"`
	Password  string `json:"password" binding:"required,pwd"`
	Name      string `json:"name" binding:"required,max=50"`
	BirthDate string `json:"birth_date" binding:"required,datefmt"`
	Email     string `json:"email" binding:"required,max=255,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

type userResponse struct {
	LoginID   string `json:"login_id"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Email     string `json:"email"`
}

func toUserResponse(info *application.UserInfo) userResponse {
	return userResponse{
		LoginID:   info.LoginID,
		Name:      info.Name,
		BirthDate: info.BirthDate.Format(validation.DateLayout),
		Email:     info.Email,
	}
}

// Register handles POST /api/v1/users.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	birthDate, err := time.Parse(validation.DateLayout, req.BirthDate)
	if err != nil {
		respondBindError(c, err)
		return
	}

	info, err := h.Facade.Register(c.Request.Context(), application.RegisterInput{
		LoginID:   req.LoginID,
		Password:  req.Password,
		Name:      req.Name,
		BirthDate: birthDate,
		Email:     req.Email,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(info), "user registered", nil)
}

// GetMe handles GET /api/v1/users/me.
func (h *UserHandler) GetMe(c *gin.Context) {
	info, err := h.Facade.GetMyInfo(c.Request.Context(), c.GetInt64(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(info), "ok", nil)
}

// ChangePassword handles PATCH /api/v1/users/me/password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	meta := application.RequestMeta{IP: c.GetString("real_ip"), UserAgent: c.Request.UserAgent()}
	if meta.IP == "" {
		meta.IP = c.RemoteIP()
	}
	err := h.Facade.ChangePassword(c.Request.Context(), c.GetInt64(middleware.ContextUserID), req.CurrentPassword, req.NewPassword, meta)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed", nil)
}
