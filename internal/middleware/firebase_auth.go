package middleware

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserStore resolves and creates the local accounts linked to Firebase UIDs
type UserStore interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

var _ UserStore = (repositories.UserRepository)(nil)

// newUserFromToken builds the local account of a first-time Firebase user.
// The username is derived from the UID so it is unique.
func newUserFromToken(token *auth.Token) *models.User {
	uid := token.UID
	user := &models.User{
		Username:    "u" + uid,
		FirebaseUID: &uid,
		ShowWatched: true,
	}
	if email, ok := token.Claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		user.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		user.AvatarURL = picture
	}
	return user
}

// resolveFirebaseUser returns the account linked to the token, creating it on
// first sight. A concurrent first request that wins the insert is reused.
func resolveFirebaseUser(ctx context.Context, users UserStore, token *auth.Token) (*models.User, error) {
	user, err := users.GetUserByFirebaseUID(ctx, token.UID)
	if !errors.Is(err, repositories.ErrNotFound) {
		return user, err
	}

	user = newUserFromToken(token)
	err = users.CreateUser(ctx, user)
	if errors.Is(err, repositories.ErrAlreadyExists) {
		return users.GetUserByFirebaseUID(ctx, token.UID)
	}
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Str("firebase_uid", token.UID).Msg("created account for firebase user")
	return user, nil
}

// FirebaseAuthMiddleware creates an Echo middleware to verify Firebase ID tokens
// and map them onto local user ids. Verified users without an account get one.
func FirebaseAuthMiddleware(verifier TokenVerifier, users UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			user, err := resolveFirebaseUser(ctx, users, token)
			if err != nil {
				logging.Ctx(ctx).Error().Err(err).Str("firebase_uid", token.UID).Msg("resolving firebase user failed")
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve user")
			}

			c.Set("firebaseUID", token.UID)
			c.Set("firebaseToken", token)
			c.Set(UserIDKey, user.ID)
			return next(c)
		}
	}
}
