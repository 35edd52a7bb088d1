package auth

import (
	"errors"

	apperrors "github.com/yanqian/carbonlens/pkg/errors"
)

// ErrEmailExists is returned by repositories when the email is already taken.
var ErrEmailExists = errors.New("email already exists")

func invalidInput(message string, err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, message, err)
}

func invalidToken(message string, err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidToken, message, err)
}

func storeFailure(message string, err error) error {
	return apperrors.Wrap(apperrors.CodeAuth, message, err)
}

// Login never says which half of the credentials was wrong.
func badCredentials() error {
	return apperrors.Wrap(apperrors.CodeInvalidCredentials, "invalid email or password", nil)
}

func emailTaken(err error) error {
	return apperrors.Wrap(apperrors.CodeEmailExists, "email already registered", err)
}

func userMissing() error {
	return apperrors.Wrap(apperrors.CodeUserNotFound, "user not found", nil)
}
