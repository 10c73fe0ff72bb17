package handlers

import (
	"net/http"

	"friendzone/response"
	"friendzone/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register accepts multipart (with an optional "picture" file) or JSON.
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}
	picture, err := formImage(c, "picture")
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), in, picture)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
