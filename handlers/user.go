package handlers

import (
	"net/http"

	"friendzone/response"
	"friendzone/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetFriends(c *gin.Context) {
	friends, err := h.users.GetFriends(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

// ToggleFriend handles PATCH /users/:id/:friendId.
func (h *UserHandler) ToggleFriend(c *gin.Context) {
	friends, err := h.users.ToggleFriend(c.Request.Context(), callerID(c), c.Param("id"), c.Param("friendId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), c.Query("searchTerm"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(users) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No user with that name."})
		return
	}
	c.JSON(http.StatusOK, users)
}
