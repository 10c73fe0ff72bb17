package handlers

import (
	"net/http"

	"friendzone/apperr"
	"friendzone/models"
	"friendzone/notify"
	"friendzone/repository"
	"friendzone/response"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PushHandler struct {
	subs      repository.PushSubscriptionRepository
	publicKey string
}

// NewPushHandler returns a PushHandler. An empty publicKey means web push
// is disabled.
func NewPushHandler(subs repository.PushSubscriptionRepository, publicKey string) *PushHandler {
	return &PushHandler{subs: subs, publicKey: publicKey}
}

func (h *PushHandler) VapidPublicKey(c *gin.Context) {
	if h.publicKey == "" {
		response.Error(c, apperr.Unavailable("Web push is not configured", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.publicKey})
}

func (h *PushHandler) Subscribe(c *gin.Context) {
	if h.publicKey == "" {
		response.Error(c, apperr.Unavailable("Web push is not configured", nil))
		return
	}

	var req struct {
		Endpoint string          `json:"endpoint" binding:"required,url"`
		Keys     models.PushKeys `json:"keys" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	userID, err := primitive.ObjectIDFromHex(callerID(c))
	if err != nil {
		response.Error(c, apperr.Auth("Invalid token"))
		return
	}

	if err := notify.Subscribe(c.Request.Context(), h.subs, userID, req.Endpoint, req.Keys); err != nil {
		response.Error(c, apperr.Internal("Failed to save subscription", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Push subscription saved successfully",
		"userId":  userID.Hex(),
	})
}
