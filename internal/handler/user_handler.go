package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "userauth/internal/errors"
	"userauth/internal/middleware"
	"userauth/internal/service"
)

// UserHandler serves profile reads.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CurrentUser godoc
// @Summary Get the logged in user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/current-user [get]
func (h *UserHandler) CurrentUser(c echo.Context) error {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		return apperrors.ErrUnauthorizedRequest
	}
	user, err := h.svc.GetCurrentUser(c.Request().Context(), s.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Current user fetched successfully")
}
