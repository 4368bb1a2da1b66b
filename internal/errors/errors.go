package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingFields is returned when a required registration field is blank.
	ErrMissingFields = NewAPIError(http.StatusBadRequest, "VALIDATION_ERROR", "All fields are required")
	// ErrInvalidRequestBody is returned when the request body cannot be decoded.
	ErrInvalidRequestBody = NewAPIError(http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	// ErrAvatarRequired is returned when registration carries no avatar file.
	ErrAvatarRequired = NewAPIError(http.StatusBadRequest, "AVATAR_REQUIRED", "Avatar file is required")
	// ErrLoginIdentifierRequired is returned when login has neither username nor email.
	ErrLoginIdentifierRequired = NewAPIError(http.StatusBadRequest, "IDENTIFIER_REQUIRED", "username or email is required")
	// ErrUserAlreadyExists is returned when username or email is taken.
	ErrUserAlreadyExists = NewAPIError(http.StatusConflict, "USER_ALREADY_EXISTS", "User with email or username already exists")
	// ErrUserNotFound is returned when a login identifier does not resolve.
	ErrUserNotFound = NewAPIError(http.StatusNotFound, "USER_NOT_FOUND", "User does not exist")
	// ErrInvalidCredentials is returned on password mismatch.
	ErrInvalidCredentials = NewAPIError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid user credentials")
	// ErrUnauthorizedRequest is returned when no usable credential was presented.
	ErrUnauthorizedRequest = NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized request")
	// ErrInvalidRefreshToken is returned when a refresh token fails verification.
	ErrInvalidRefreshToken = NewAPIError(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid refresh token")
	// ErrRefreshTokenReused is returned when a refresh token is not the stored one.
	ErrRefreshTokenReused = NewAPIError(http.StatusUnauthorized, "REFRESH_TOKEN_REUSED", "Refresh token is expired or used")
	// ErrAvatarUpload is returned when the avatar could not be stored.
	ErrAvatarUpload = NewAPIError(http.StatusInternalServerError, "AVATAR_UPLOAD_FAILED", "Failed to upload avatar")
	// ErrRegistrationFailed is returned when the created user cannot be read back.
	ErrRegistrationFailed = NewAPIError(http.StatusInternalServerError, "REGISTRATION_FAILED", "Something went wrong while registering the user")
	// ErrTokenGeneration is returned when a token pair cannot be issued or saved.
	ErrTokenGeneration = NewAPIError(http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Something went wrong while generating refresh and access token")
	// ErrInternal is the catch-all for unexpected failures.
	ErrInternal = NewAPIError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// APIError is an error that knows how it should be rendered over HTTP.
// Two APIErrors are considered equal by errors.Is when their codes match.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Errors     []string
	Err        error
}

// NewAPIError creates a new API error.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an APIError with the same code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithReason returns a copy of e whose client-facing message is reason.
func (e *APIError) WithReason(reason string) *APIError {
	cp := *e
	if reason != "" {
		cp.Message = reason
	}
	return &cp
}

// Wrap returns a copy of e carrying cause. The cause is kept for logs and
// never rendered.
func (e *APIError) Wrap(cause error) *APIError {
	cp := *e
	cp.Err = cause
	return &cp
}

// ToErrorResponse converts an APIError to ErrorResponse.
func (e *APIError) ToErrorResponse() ErrorResponse {
	errs := e.Errors
	if errs == nil {
		errs = []string{}
	}
	return ErrorResponse{
		StatusCode: e.StatusCode,
		Code:       e.Code,
		Message:    e.Message,
		Success:    false,
		Errors:     errs,
	}
}

// MapErrorToHTTP maps any error to an APIError. Errors that are not
// APIErrors become a generic 500 wrapping the original.
func MapErrorToHTTP(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal.Wrap(err)
}
