package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-mindgarden/db"
	"go-mindgarden/dialogue"
	"go-mindgarden/logger"
	"go-mindgarden/metrics"
	"go-mindgarden/types"
)

type ChatResponse struct {
	ConversationID string         `json:"conversationId"`
	UserTurn       types.ChatTurn `json:"userTurn"`
	BotTurn        types.ChatTurn `json:"botTurn"`
}

// ChatHandler answers one chat message. Without a conversationId a new
// conversation is opened and its greeting goes into the transcript first.
func ChatHandler(c *gin.Context, sessions *dialogue.Sessions, store db.Store) {
	var request struct {
		ConversationID string `json:"conversationId"`
		Message        string `json:"message"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(request.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	ctx := c.Request.Context()
	var transcript []types.ChatTurn

	conversationID := strings.TrimSpace(request.ConversationID)
	if conversationID == "" {
		opening, err := sessions.Start(ctx)
		if err != nil {
			logger.Error("Failed to start conversation", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start conversation"})
			return
		}
		conversationID = opening.ConversationID
		transcript = append(transcript, opening)
	}

	reply, err := sessions.Turn(ctx, conversationID, request.Message)
	if err != nil {
		logger.Error("Failed to answer chat message", logger.ConversationID(conversationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer message"})
		return
	}
	transcript = append(transcript, reply.User, reply.Bot)
	observeTurn(reply)

	if err := store.AppendChatTurns(ctx, transcript...); err != nil {
		metrics.StoreErrors.WithLabelValues("append_chat_turns").Inc()
		logger.Error("Failed to save chat turns", logger.ConversationID(conversationID), zap.Error(err))
	}

	c.JSON(http.StatusOK, ChatResponse{
		ConversationID: conversationID,
		UserTurn:       reply.User,
		BotTurn:        reply.Bot,
	})
}

func observeTurn(reply dialogue.Reply) {
	metrics.ChatTurnsTotal.WithLabelValues(reply.Bot.Intent).Inc()

	switch reply.Bot.Intent {
	case dialogue.IntentTips:
		metrics.TipOffersTotal.WithLabelValues("accepted").Inc()
	case dialogue.IntentDecline:
		metrics.TipOffersTotal.WithLabelValues("declined").Inc()
	case dialogue.IntentFallback:
		if reply.OfferedTips() {
			metrics.TipOffersTotal.WithLabelValues("offered").Inc()
		}
	}
}

func TranscriptHandler(c *gin.Context, store db.Store) {
	conversationID := c.Param("conversationId")

	turns, err := store.ListChatTurns(c.Request.Context(), conversationID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	if err != nil {
		logger.Error("Failed to list chat turns", logger.ConversationID(conversationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversationId": conversationID,
		"turns":          turns,
	})
}

// EndConversationHandler drops the dialogue state and the stored transcript.
func EndConversationHandler(c *gin.Context, sessions *dialogue.Sessions, store db.Store) {
	ctx := c.Request.Context()
	conversationID := c.Param("conversationId")

	if err := sessions.End(ctx, conversationID); err != nil {
		logger.Error("Failed to drop conversation state", logger.ConversationID(conversationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end conversation"})
		return
	}

	err := store.DeleteConversation(ctx, conversationID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	if err != nil {
		logger.Error("Failed to delete conversation", logger.ConversationID(conversationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end conversation"})
		return
	}

	c.Status(http.StatusNoContent)
}
