package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "userauth/internal/errors"
)

// APIResponse is the envelope of every successful response.
type APIResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// HTTPErrorHandler renders every error returned by a handler or middleware
// as an errors.ErrorResponse. Causes of 5xx errors are logged, never sent.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.String("code", apiErr.Code),
			zap.Error(err),
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(apiErr.StatusCode)
	} else {
		writeErr = c.JSON(apiErr.StatusCode, apiErr.ToErrorResponse())
	}
	if writeErr != nil {
		zap.L().Warn("write error response", zap.Error(writeErr))
	}
}

func toAPIError(err error) *apperrors.APIError {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return apperrors.NewAPIError(he.Code, httpErrorCode(he.Code), msg)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		valErr := apperrors.NewAPIError(http.StatusBadRequest, "VALIDATION_ERROR", "validation failed")
		for _, fe := range verrs {
			valErr.Errors = append(valErr.Errors, fe.Field()+" failed on "+fe.Tag())
		}
		return valErr
	}

	return apperrors.MapErrorToHTTP(err)
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "HTTP_ERROR"
	}
}
