package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/relayhub/errors"
	"github.com/techagentng/relayhub/models"
	"github.com/techagentng/relayhub/server/response"
)

// respondErr maps a service failure onto the response envelope.
func respondErr(c *gin.Context, err error) {
	var e *errs.Error
	if errs.As(err, &e) {
		response.JSON(c, "", e.Status, nil, e)
		return
	}
	response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
}

func (s *Server) handleInitiateConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			respondErr(c, err)
			return
		}

		var req models.InitiateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid request body"))
			return
		}

		conv, err := s.ConversationService.Initiate(user.ID, req.ParticipantID)
		if err != nil {
			respondErr(c, err)
			return
		}
		response.JSON(c, "conversation ready", http.StatusOK, conv, nil)
	}
}

func (s *Server) handleListConversations() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			respondErr(c, err)
			return
		}

		conversations, err := s.ConversationService.ListMine(user.ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		response.JSON(c, "conversations retrieved", http.StatusOK, conversations, nil)
	}
}

func (s *Server) handleDeleteConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			respondErr(c, err)
			return
		}

		conversationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid conversation id"))
			return
		}

		if err := s.ConversationService.Delete(user, conversationID); err != nil {
			respondErr(c, err)
			return
		}
		response.JSON(c, "conversation deleted", http.StatusOK, nil, nil)
	}
}
