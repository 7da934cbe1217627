package handlers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/thereayou/blog-api/internal/database"
	"github.com/thereayou/blog-api/internal/handlers/dto"
	"github.com/thereayou/blog-api/internal/models"
	ws "github.com/thereayou/blog-api/internal/websocket"
)

type (
	PostResource    = Resource[models.Post, dto.CreatePostRequest, dto.PatchPostRequest]
	CommentResource = Resource[models.Comment, dto.CreateCommentRequest, dto.PatchCommentRequest]
)

func PostSchema() Schema[models.Post, dto.CreatePostRequest, dto.PatchPostRequest] {
	return Schema[models.Post, dto.CreatePostRequest, dto.PatchPostRequest]{
		Name: ws.TopicPosts,
		Build: func(req *dto.CreatePostRequest, author uint) *models.Post {
			return &models.Post{Title: req.Title, Content: req.Content, AuthorID: author}
		},
		Apply: func(p *models.Post, req *dto.PatchPostRequest) {
			if req.Title != nil {
				p.Title = *req.Title
			}
			if req.Content != nil {
				p.Content = *req.Content
			}
		},
	}
}

// CommentSchema needs the post table to reject comments on missing posts.
func CommentSchema(posts *database.Table[models.Post]) Schema[models.Comment, dto.CreateCommentRequest, dto.PatchCommentRequest] {
	return Schema[models.Comment, dto.CreateCommentRequest, dto.PatchCommentRequest]{
		Name: ws.TopicComments,
		Build: func(req *dto.CreateCommentRequest, author uint) *models.Comment {
			return &models.Comment{Content: req.Content, PostID: req.PostID, AuthorID: author}
		},
		Apply: func(cm *models.Comment, req *dto.PatchCommentRequest) {
			if req.Content != nil {
				cm.Content = *req.Content
			}
			if req.PostID != nil {
				cm.PostID = *req.PostID
			}
		},
		Check: func(ctx context.Context, cm *models.Comment) error {
			ok, err := posts.Exists(ctx, cm.PostID)
			if err != nil {
				return fmt.Errorf("check post: %w", err)
			}
			if !ok {
				return NewFieldError("post_id", "Post does not exist.")
			}
			return nil
		},
		Topics: func(cm *models.Comment) []string {
			return []string{ws.PostTopic(cm.PostID)}
		},
	}
}

func NewPostResource(db *database.Database, feed Publisher, logger *logrus.Logger, maxPerPage int) *PostResource {
	return NewResource(database.NewTable[models.Post](db), PostSchema(), feed, logger, maxPerPage)
}

func NewCommentResource(db *database.Database, feed Publisher, logger *logrus.Logger, maxPerPage int) *CommentResource {
	posts := database.NewTable[models.Post](db)
	return NewResource(database.NewTable[models.Comment](db), CommentSchema(posts), feed, logger, maxPerPage)
}
