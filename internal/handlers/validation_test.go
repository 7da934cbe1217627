package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/thereayou/blog-api/internal/handlers/dto"
)

func bindBody(body string, obj any) error {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return bindJSON(c, obj)
}

func TestBindJSON(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		var req dto.CreateCommentRequest
		assert.NoError(t, bindBody(`{"content":"c","post_id":3}`, &req))
		assert.Equal(t, uint(3), req.PostID)
	})

	t.Run("Required fields use json names", func(t *testing.T) {
		var req dto.CreateCommentRequest
		err := bindBody(`{}`, &req)
		verr, ok := err.(*ValidationError)
		assert.True(t, ok)
		assert.Equal(t, map[string][]string{
			"content": {"Missing data for required field."},
			"post_id": {"Missing data for required field."},
		}, verr.Fields)
	})

	t.Run("Type mismatch", func(t *testing.T) {
		var req dto.CreateCommentRequest
		err := bindBody(`{"content":"c","post_id":"one"}`, &req)
		assert.Equal(t, map[string][]string{"post_id": {"Not a valid integer."}}, err.(*ValidationError).Fields)
	})

	t.Run("Not an object", func(t *testing.T) {
		var req dto.CreatePostRequest
		for _, body := range []string{``, `{`, `[1]`} {
			err := bindBody(body, &req)
			assert.Equal(t, map[string][]string{"_schema": {"Invalid input type."}}, err.(*ValidationError).Fields, body)
		}
	})

	t.Run("Patch rejects empty strings only when present", func(t *testing.T) {
		var req dto.PatchPostRequest
		assert.NoError(t, bindBody(`{"content":"new"}`, &req))
		assert.Nil(t, req.Title)

		err := bindBody(`{"title":""}`, &dto.PatchPostRequest{})
		assert.Equal(t, map[string][]string{"title": {"Shorter than minimum length 1."}}, err.(*ValidationError).Fields)
	})

	t.Run("Email", func(t *testing.T) {
		err := bindBody(`{"username":"u","email":"nope","password":"p"}`, &dto.RegisterRequest{})
		assert.Equal(t, map[string][]string{"email": {"Not a valid email address."}}, err.(*ValidationError).Fields)
	})
}

func TestValidationErrorMessage(t *testing.T) {
	e := NewFieldError("title", "bad")
	e.Add("content", "bad")
	assert.Equal(t, "validation failed: content, title", e.Error())
}
