package errors

import "errors"

// Codes shared by the domain services and the HTTP layer.
const (
	CodeInvalidInput       = "invalid_input"
	CodeLLM                = "llm_error"
	CodeLeaderboard        = "leaderboard_error"
	CodeNotFound           = "not_found"
	CodePersistence        = "persistence_unavailable"
	CodeArchive            = "archive_unavailable"
	CodeRecommendation     = "recommendation_unavailable"
	CodeCollaboratorFailed = "collaborator_unavailable"

	// Account and token failures.
	CodeAuth               = "auth_error"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidToken       = "invalid_token"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailExists        = "email_exists"
	CodeUserNotFound       = "user_not_found"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost AppError in the chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// MessageOf returns the AppError message without the wrapped cause.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
