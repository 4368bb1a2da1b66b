package handler

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "userauth/internal/errors"
	"userauth/internal/middleware"
	"userauth/internal/model"
	"userauth/internal/service"
)

const refreshTokenCookie = "refreshToken"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a user login request. Either username or email
// identifies the account.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required_without=Email"`
	Email    string `json:"email" form:"email" validate:"required_without=Username"`
	Password string `json:"password" form:"password"`
}

// RefreshRequest carries the refresh token for clients without cookies.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param fullName formData string true "Full name"
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} APIResponse{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if form, err := c.MultipartForm(); err == nil {
		in = service.RegisterInput{
			FullName: firstValue(form, "fullName"),
			Username: firstValue(form, "username"),
			Email:    firstValue(form, "email"),
			Password: firstValue(form, "password"),
		}
		if fh, ok := firstFile(form, "avatar"); ok {
			in.Avatar = fh
		}
		if fh, ok := firstFile(form, "coverImage"); ok {
			in.CoverImage = fh
		}
	} else {
		// Not multipart: text fields may still arrive urlencoded, files cannot.
		in = service.RegisterInput{
			FullName: c.FormValue("fullName"),
			Username: c.FormValue("username"),
			Email:    c.FormValue("email"),
			Password: c.FormValue("password"),
		}
	}

	user, err := h.authService.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, user, "User registered successfully")
}

// Login godoc
// @Summary Login with username or email
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} APIResponse{data=LoginResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidRequestBody.Wrap(err)
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.ErrLoginIdentifierRequired
	}

	result, err := h.authService.Login(c.Request().Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	setAuthCookies(c, result.TokenPair)
	return respond(c, http.StatusOK, LoginResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "User logged in successfully")
}

// Logout godoc
// @Summary Logout the current session
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		return apperrors.ErrUnauthorizedRequest
	}

	if err := h.authService.Logout(c.Request().Context(), s.UserID, s.TokenID, s.ExpiresAt); err != nil {
		return err
	}

	clearAuthCookies(c)
	return respond(c, http.StatusOK, echo.Map{}, "User logged out")
}

// Refresh godoc
// @Summary Rotate the token pair
// @Description Reads the refresh token from the refreshToken cookie, falling back to the request body.
// @Tags users
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token"
// @Success 200 {object} APIResponse{data=service.TokenPair}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/refresh-token [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := ""
	if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		// An unreadable body carries no token.
		var req RefreshRequest
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.authService.RefreshTokens(c.Request().Context(), token)
	if err != nil {
		return err
	}

	setAuthCookies(c, *pair)
	return respond(c, http.StatusOK, pair, "Access token refreshed")
}

func firstValue(form *multipart.Form, field string) string {
	if vs := form.Value[field]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// firstFile returns the first file attached under field.
func firstFile(form *multipart.Form, field string) (*multipart.FileHeader, bool) {
	files := form.File[field]
	if len(files) == 0 || files[0] == nil {
		return nil, false
	}
	return files[0], true
}

func setAuthCookies(c echo.Context, pair service.TokenPair) {
	c.SetCookie(authCookie(middleware.AccessTokenCookie, pair.AccessToken))
	c.SetCookie(authCookie(refreshTokenCookie, pair.RefreshToken))
}

func clearAuthCookies(c echo.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		cookie := authCookie(name, "")
		cookie.Expires = time.Unix(0, 0)
		cookie.MaxAge = -1
		c.SetCookie(cookie)
	}
}

func authCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	}
}
