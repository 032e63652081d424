package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

const dashboardChatContext = "User is chatting on the dashboard."

// Responder is satisfied by chat.Relay.
type Responder interface {
	Respond(ctx context.Context, userText, chatContext string) string
}

type ChatHandler struct {
	relay Responder
}

func NewChatHandler(relay Responder) *ChatHandler {
	return &ChatHandler{relay: relay}
}

type ChatRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) Chat(ctx *gin.Context) {
	var req ChatRequest

	if err := shouldBindJSON(ctx, &req); err != nil || req.Message == "" {
		RespondPageError(ctx, http.StatusBadRequest, "message_required", "Message is required")
		return
	}

	reply := h.relay.Respond(ctx.Request.Context(), req.Message, dashboardChatContext)

	ctx.JSON(http.StatusOK, gin.H{"response": reply})
}
