package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/blog-api/internal/database"
	"github.com/thereayou/blog-api/internal/middleware"
	"github.com/thereayou/blog-api/internal/models"
	"github.com/thereayou/blog-api/pkg/pagination"
)

type UserHandler struct {
	db         *database.Database
	users      *database.Table[models.User]
	logger     *logrus.Logger
	maxPerPage int
}

func NewUserHandler(db *database.Database, logger *logrus.Logger, maxPerPage int) *UserHandler {
	return &UserHandler{
		db:         db,
		users:      database.NewTable[models.User](db),
		logger:     logger,
		maxPerPage: maxPerPage,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	p := pagination.FromQuery(c.Request.URL.Query(), h.maxPerPage)
	users, total, err := h.users.Page(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pagination.New(users, total, p, pagination.RequestURL(c.Request)))
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)
	h.respondUser(c, caller.UserID)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, h.logger, errUserNotFound)
		return
	}
	h.respondUser(c, id)
}

func (h *UserHandler) respondUser(c *gin.Context, id uint) {
	user, err := h.db.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			err = errUserNotFound
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
