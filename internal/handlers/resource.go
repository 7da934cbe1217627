package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/blog-api/internal/database"
	"github.com/thereayou/blog-api/internal/middleware"
	"github.com/thereayou/blog-api/internal/models"
	ws "github.com/thereayou/blog-api/internal/websocket"
	"github.com/thereayou/blog-api/pkg/pagination"
)

// Publisher receives an event after every successful mutation.
type Publisher interface {
	Publish(event ws.Event)
}

// Schema is everything Resource needs to know about one record type.
// M is the model, C the create body and P the partial-update body.
type Schema[M models.Record, C any, P any] struct {
	// Name is the resource name and the feed topic of its events.
	Name string

	// Build constructs a new record owned by author.
	Build func(req *C, author uint) *M

	// Apply copies the supplied fields of a patch onto m.
	Apply func(m *M, req *P)

	// Check runs after Build or Apply, before saving. Optional.
	Check func(ctx context.Context, m *M) error

	// Topics lists extra feed topics for m. Optional.
	Topics func(m *M) []string
}

// Resource serves list/create and get/patch/delete for one record type.
type Resource[M models.Record, C any, P any] struct {
	table      *database.Table[M]
	schema     Schema[M, C, P]
	feed       Publisher
	logger     *logrus.Logger
	maxPerPage int
}

func NewResource[M models.Record, C any, P any](
	table *database.Table[M],
	schema Schema[M, C, P],
	feed Publisher,
	logger *logrus.Logger,
	maxPerPage int,
) *Resource[M, C, P] {
	return &Resource[M, C, P]{
		table:      table,
		schema:     schema,
		feed:       feed,
		logger:     logger,
		maxPerPage: maxPerPage,
	}
}

// Register mounts the five operations on group. requireAuth guards the mutating ones.
func (r *Resource[M, C, P]) Register(group *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	group.GET("/", r.List)
	group.POST("/", requireAuth, r.Create)
	group.GET("/:id", r.Get)
	group.PATCH("/:id", requireAuth, r.Patch)
	group.DELETE("/:id", requireAuth, r.Delete)
}

func (r *Resource[M, C, P]) List(c *gin.Context) {
	r.list(c)
}

// ListBy lists the records matched by scope, keyed on an id path parameter.
func (r *Resource[M, C, P]) ListBy(param string, scope func(id uint) database.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, param)
		if !ok {
			respondError(c, r.logger, errNotFound)
			return
		}
		r.list(c, scope(id))
	}
}

func (r *Resource[M, C, P]) list(c *gin.Context, scopes ...database.Scope) {
	p := pagination.FromQuery(c.Request.URL.Query(), r.maxPerPage)
	items, total, err := r.table.Page(c.Request.Context(), p, scopes...)
	if err != nil {
		respondError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusOK, pagination.New(items, total, p, pagination.RequestURL(c.Request)))
}

// Create persists a record whose author is always the caller.
func (r *Resource[M, C, P]) Create(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	var req C
	if err := bindJSON(c, &req); err != nil {
		respondError(c, r.logger, err)
		return
	}

	m := r.schema.Build(&req, caller.UserID)
	if err := r.check(c.Request.Context(), m); err != nil {
		respondError(c, r.logger, err)
		return
	}
	if err := r.table.Create(c.Request.Context(), m); err != nil {
		respondError(c, r.logger, err)
		return
	}

	r.publish(ws.TypeCreated, m, m)
	c.JSON(http.StatusCreated, m)
}

func (r *Resource[M, C, P]) Get(c *gin.Context) {
	m, ok := r.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, m)
}

// Patch applies a partial update. Only the author may patch, and the author never changes.
func (r *Resource[M, C, P]) Patch(c *gin.Context) {
	m, ok := r.load(c)
	if !ok {
		return
	}
	caller, _ := middleware.CurrentIdentity(c)
	if (*m).OwnerID() != caller.UserID {
		respondError(c, r.logger, errCannotUpdate)
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, r.logger, NewFieldError(schemaField, "Invalid input type."))
		return
	}
	if changesAuthor(raw, (*m).OwnerID()) {
		respondError(c, r.logger, errCannotChangeOwner)
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var req P
	if err := bindJSON(c, &req); err != nil {
		respondError(c, r.logger, err)
		return
	}

	r.schema.Apply(m, &req)
	if err := r.check(c.Request.Context(), m); err != nil {
		respondError(c, r.logger, err)
		return
	}
	if err := r.table.Save(c.Request.Context(), m); err != nil {
		respondError(c, r.logger, err)
		return
	}

	r.publish(ws.TypeUpdated, m, m)
	c.JSON(http.StatusOK, m)
}

func (r *Resource[M, C, P]) Delete(c *gin.Context) {
	m, ok := r.load(c)
	if !ok {
		return
	}
	caller, _ := middleware.CurrentIdentity(c)
	if (*m).OwnerID() != caller.UserID {
		respondError(c, r.logger, errCannotDelete)
		return
	}

	if err := r.table.Delete(c.Request.Context(), m); err != nil {
		respondError(c, r.logger, err)
		return
	}

	r.publish(ws.TypeDeleted, m, nil)
	c.Status(http.StatusNoContent)
}

// load fetches the record named by the id path parameter, writing a 404 if there is none.
func (r *Resource[M, C, P]) load(c *gin.Context) (*M, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, r.logger, errNotFound)
		return nil, false
	}
	m, err := r.table.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, r.logger, err)
		return nil, false
	}
	return m, true
}

func (r *Resource[M, C, P]) check(ctx context.Context, m *M) error {
	if r.schema.Check == nil {
		return nil
	}
	return r.schema.Check(ctx, m)
}

func (r *Resource[M, C, P]) publish(typ ws.MessageType, m *M, data any) {
	if r.feed == nil {
		return
	}
	topics := []string{r.schema.Name}
	if r.schema.Topics != nil {
		topics = append(topics, r.schema.Topics(m)...)
	}
	for _, topic := range topics {
		r.feed.Publish(ws.Event{
			Type:     typ,
			Topic:    topic,
			Resource: r.schema.Name,
			ID:       (*m).RecordID(),
			Data:     data,
		})
	}
}

// changesAuthor reports whether the raw body sets author_id to anything but owner.
// Bodies that are not JSON objects are left to bindJSON.
func changesAuthor(raw []byte, owner uint) bool {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return false
	}
	v, ok := body["author_id"]
	if !ok {
		return false
	}
	var id uint
	return json.Unmarshal(v, &id) != nil || id != owner
}

func pathID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
