package auth

import (
	"context"

	"groupify/internal/models"
)

// Authenticator abstracts over authentication methods so the service
// layer does not care whether credentials are passwords or something
// else later (OAuth, passkeys).
type Authenticator interface {
	// Register creates a new user account with the given email and
	// credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks whether the credential meets the
	// implementation's requirements.
	ValidateCredential(credential string) error
}
