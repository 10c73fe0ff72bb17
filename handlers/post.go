package handlers

import (
	"net/http"

	"friendzone/response"
	"friendzone/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// actor is the optional body of like and delete requests.
type actor struct {
	UserID string `json:"userId" form:"userId"`
}

func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.posts.Feed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// UserFeed handles GET /posts/:id/posts where id is the author.
func (h *PostHandler) UserFeed(c *gin.Context) {
	posts, err := h.posts.UserFeed(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Create(c *gin.Context) {
	var in services.CreatePostInput
	if err := bindBody(c, &in); err != nil {
		bindError(c, err)
		return
	}
	image, err := formImage(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}

	feed, err := h.posts.Create(c.Request.Context(), callerID(c), in, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, feed)
}

func (h *PostHandler) Like(c *gin.Context) {
	var in actor
	if err := bindBody(c, &in); err != nil {
		bindError(c, err)
		return
	}

	post, err := h.posts.ToggleLike(c.Request.Context(), callerID(c), c.Param("id"), in.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	var in services.UpdatePostInput
	if err := bindBody(c, &in); err != nil {
		bindError(c, err)
		return
	}
	image, err := formImage(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}

	post, err := h.posts.Update(c.Request.Context(), callerID(c), c.Param("id"), in, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete responds with the refreshed global feed.
func (h *PostHandler) Delete(c *gin.Context) {
	var in actor
	if err := bindBody(c, &in); err != nil {
		bindError(c, err)
		return
	}

	feed, err := h.posts.Delete(c.Request.Context(), callerID(c), c.Param("id"), in.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	var in services.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	post, err := h.posts.AddComment(c.Request.Context(), callerID(c), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) UpdateComment(c *gin.Context) {
	var in services.UpdateCommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	post, err := h.posts.UpdateComment(c.Request.Context(), callerID(c), c.Param("id"), c.Param("commentId"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	var in actor
	if err := bindBody(c, &in); err != nil {
		bindError(c, err)
		return
	}

	post, err := h.posts.DeleteComment(c.Request.Context(), callerID(c), c.Param("id"), c.Param("commentId"), in.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
