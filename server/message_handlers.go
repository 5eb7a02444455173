package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/relayhub/errors"
	"github.com/techagentng/relayhub/models"
	"github.com/techagentng/relayhub/server/response"
)

func (s *Server) handleSendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			respondErr(c, err)
			return
		}

		var req models.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid request body"))
			return
		}

		message, err := s.MessageService.Send(user, &req)
		if err != nil {
			respondErr(c, err)
			return
		}
		response.JSON(c, "message sent", http.StatusCreated, message, nil)
	}
}

func (s *Server) handleEditMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			respondErr(c, err)
			return
		}

		messageID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid message id"))
			return
		}

		var req models.EditMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid request body"))
			return
		}

		message, err := s.MessageService.Edit(user.ID, messageID, req.Content)
		if err != nil {
			respondErr(c, err)
			return
		}
		response.JSON(c, "message updated", http.StatusOK, message, nil)
	}
}

func (s *Server) handleDeleteMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			respondErr(c, err)
			return
		}

		messageID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid message id"))
			return
		}

		if err := s.MessageService.Delete(user.ID, messageID); err != nil {
			respondErr(c, err)
			return
		}
		response.JSON(c, "message deleted", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleListConversationMessages() gin.HandlerFunc {
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

		messages, err := s.MessageService.ListByConversation(user.ID, conversationID)
		if err != nil {
			respondErr(c, err)
			return
		}
		response.JSON(c, "messages retrieved", http.StatusOK, messages, nil)
	}
}

func (s *Server) handleMarkMessageRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			respondErr(c, err)
			return
		}

		messageID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid message id"))
			return
		}

		if err := s.MessageService.MarkRead(user.ID, messageID); err != nil {
			respondErr(c, err)
			return
		}
		response.JSON(c, "message marked read", http.StatusOK, nil, nil)
	}
}

// handlePublicIntake is the unauthenticated submission endpoint. Rate
// limited at the router.
func (s *Server) handlePublicIntake() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.IntakeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError("invalid request body"))
			return
		}
		if err := models.ValidateIntake(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.ValidationError(err.Error()))
			return
		}

		result, err := s.MessageService.SubmitIntake(&req)
		if err != nil {
			respondErr(c, err)
			return
		}
		response.JSON(c, "submission received", http.StatusCreated, result, nil)
	}
}
