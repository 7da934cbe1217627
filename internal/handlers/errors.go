package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/blog-api/internal/database"
	"github.com/thereayou/blog-api/internal/middleware"
	"github.com/thereayou/blog-api/internal/services"
	"github.com/thereayou/blog-api/pkg/auth"
)

// HTTPError is a failure with a fixed status and client-facing message.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

var (
	errNotFound          = &HTTPError{http.StatusNotFound, "Item does not exist"}
	errUserNotFound      = &HTTPError{http.StatusNotFound, "User not found"}
	errCannotUpdate      = &HTTPError{http.StatusBadRequest, "You can not update this item."}
	errCannotChangeOwner = &HTTPError{http.StatusBadRequest, "You can not change author."}
	errCannotDelete      = &HTTPError{http.StatusBadRequest, "You can not delete this item."}
)

var serviceErrors = map[error]string{
	services.ErrEmailTaken:         "User with this email already exist, please use another email.",
	services.ErrUsernameTaken:      "User with this username already exist, please use another username.",
	services.ErrDuplicateUser:      "User with this email or username already exist.",
	services.ErrMissingLoginFields: "You need provide username or email and password to sign in.",
	services.ErrEmailNotFound:      "User with this email is not found.",
	services.ErrUsernameNotFound:   "User with this username is not found.",
	services.ErrInvalidCredentials: "Invalid credentials",
}

// respondError writes err as {"error": ...}. Unknown errors are logged and become a 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Fields})
		return
	}

	if errors.Is(err, auth.ErrPasswordTooLong) {
		c.JSON(http.StatusBadRequest, gin.H{"error": NewFieldError("password", "Longer than maximum length 72.").Fields})
		return
	}

	var herr *HTTPError
	if errors.As(err, &herr) {
		c.JSON(herr.Status, gin.H{"error": herr.Message})
		return
	}

	for target, msg := range serviceErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
	}

	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errNotFound.Message})
		return
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString(middleware.RequestIDKey),
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
