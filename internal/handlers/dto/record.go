package dto

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,max=250"`
	Content string `json:"content" binding:"required"`
}

// author_id in a patch body is checked by Resource.Patch before binding.
type PatchPostRequest struct {
	Title   *string `json:"title" binding:"omitnil,min=1,max=250"`
	Content *string `json:"content" binding:"omitnil,min=1"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
	PostID  uint   `json:"post_id" binding:"required"`
}

type PatchCommentRequest struct {
	Content *string `json:"content" binding:"omitnil,min=1"`
	PostID  *uint   `json:"post_id" binding:"omitnil,min=1"`
}
