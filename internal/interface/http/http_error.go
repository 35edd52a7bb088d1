package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/carbonlens/pkg/errors"
)

// HTTPError is what the error middleware renders as {"error":{"code","message"}}.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// statusByCode maps domain error codes to response statuses. Collaborator
// outages are 503 when a retry may help and 502 when the upstream answered badly.
var statusByCode = map[string]int{
	apperrors.CodeInvalidInput:       http.StatusBadRequest,
	apperrors.CodeNotFound:           http.StatusNotFound,
	apperrors.CodeUserNotFound:       http.StatusNotFound,
	apperrors.CodeUnauthorized:       http.StatusUnauthorized,
	apperrors.CodeInvalidCredentials: http.StatusUnauthorized,
	apperrors.CodeInvalidToken:       http.StatusUnauthorized,
	apperrors.CodeEmailExists:        http.StatusConflict,
	apperrors.CodeLeaderboard:        http.StatusServiceUnavailable,
	apperrors.CodePersistence:        http.StatusServiceUnavailable,
	apperrors.CodeCollaboratorFailed: http.StatusServiceUnavailable,
	apperrors.CodeLLM:                http.StatusBadGateway,
	apperrors.CodeRecommendation:     http.StatusBadGateway,
	apperrors.CodeAuth:               http.StatusInternalServerError,
}

// fromDomainError converts a service error. Unknown codes become a 500 under
// fallbackCode. Server-side failures only expose the AppError message, never the cause.
func fromDomainError(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err)
	status, known := statusByCode[code]
	if !known {
		status, code = http.StatusInternalServerError, fallbackCode
	}
	message := apperrors.MessageOf(err)
	if status < http.StatusInternalServerError && err != nil {
		message = err.Error()
	}
	return NewHTTPError(status, code, message, err)
}

func badRequest(err error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromDomainError(err, "internal_error")
}

func abortWithError(c *gin.Context, err *HTTPError) {
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
