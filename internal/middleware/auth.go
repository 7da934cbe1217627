package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/blog-api/internal/models"
	"github.com/thereayou/blog-api/internal/services"
	"github.com/thereayou/blog-api/pkg/auth"
)

const (
	IdentityKey = "identity"
	TokenKey    = "token"
)

const (
	MsgMissingToken = "Authentication token is not available, please login"
	MsgTokenExpired = "Token expired, please login again"
	MsgTokenInvalid = "Invalid token, please try again with a new token"
	MsgUnknownUser  = "User does not exist, invalid token"
)

// Identity is the authenticated caller. Handlers only read it.
type Identity struct {
	UserID uint
}

type TokenVerifier interface {
	UserID(token string) (uint, error)
}

type IdentityResolver interface {
	Identity(ctx context.Context, userID uint) (*models.User, error)
}

// AuthMiddleware resolves the api-token header to an Identity.
// Every failure is a 400 carrying {"error": message}.
func AuthMiddleware(tokens TokenVerifier, users IdentityResolver, revoker auth.Revoker, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			abort(c, http.StatusBadRequest, MsgMissingToken)
			return
		}

		userID, err := tokens.UserID(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abort(c, http.StatusBadRequest, MsgTokenExpired)
			} else {
				abort(c, http.StatusBadRequest, MsgTokenInvalid)
			}
			return
		}

		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), token)
			if err != nil {
				logger.WithError(err).Warn("token revocation lookup failed")
			}
			if err != nil || revoked {
				abort(c, http.StatusBadRequest, MsgTokenInvalid)
				return
			}
		}

		user, err := users.Identity(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUnknownIdentity) {
				abort(c, http.StatusBadRequest, MsgUnknownUser)
				return
			}
			logger.WithError(err).WithField("user_id", userID).Error("identity lookup failed")
			abort(c, http.StatusInternalServerError, "could not resolve identity")
			return
		}

		c.Set(IdentityKey, Identity{UserID: user.ID})
		c.Set(TokenKey, token)
		c.Next()
	}
}

// CurrentIdentity returns the caller set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
