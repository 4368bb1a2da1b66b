package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"userauth/internal/auth"
	"userauth/internal/config"
	"userauth/internal/handler"
	"userauth/internal/middleware"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) {
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(zap.L()))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.BodyLimit))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	users := e.Group("/api/v1/users")

	// Public routes
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh-token", authHandler.Refresh)

	// Secured routes (require a live access token)
	secured := users.Group("",
		middleware.JWT(jwtService.AccessSecret()),
		middleware.RequireSession(tokenStore),
	)
	secured.POST("/logout", authHandler.Logout)
	secured.GET("/current-user", userHandler.CurrentUser)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
