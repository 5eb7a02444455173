package services

import (
	"log"

	"github.com/google/uuid"
	"github.com/techagentng/relayhub/config"
	"github.com/techagentng/relayhub/db"
	errs "github.com/techagentng/relayhub/errors"
	"github.com/techagentng/relayhub/models"
)

type ConversationService interface {
	Initiate(userID, participantID uuid.UUID) (*models.Conversation, error)
	ListMine(userID uuid.UUID) ([]models.ConversationResponse, error)
	Delete(requester *models.User, conversationID uuid.UUID) error
}

type conversationService struct {
	conversationRepo db.ConversationRepository
	userRepo         db.UserRepository
	Config           *config.Config
}

func NewConversationService(conversationRepo db.ConversationRepository, userRepo db.UserRepository, conf *config.Config) ConversationService {
	return &conversationService{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		Config:           conf,
	}
}

// Initiate resolves the conversation between the caller and
// participantID, creating it on first contact. Racing initiations from
// both directions converge on one conversation.
func (s *conversationService) Initiate(userID, participantID uuid.UUID) (*models.Conversation, error) {
	if participantID == uuid.Nil {
		return nil, errs.ValidationError("participant id is required")
	}
	if userID == participantID {
		return nil, errs.ValidationError("cannot start a conversation with yourself")
	}

	if _, err := s.userRepo.FindUserByID(participantID); err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return nil, errs.NotFound("participant not found")
		}
		return nil, errs.ErrUnavailable
	}

	var conv *models.Conversation
	err := withRetry(func() error {
		var err error
		conv, err = s.conversationRepo.GetOrCreate(userID, participantID)
		return err
	})
	if err != nil {
		log.Printf("conversation service: get-or-create failed: %v", err)
		return nil, errs.ErrUnavailable
	}
	return conv, nil
}

// ListMine returns the caller's conversations newest-activity first,
// enriched with participant display fields.
func (s *conversationService) ListMine(userID uuid.UUID) ([]models.ConversationResponse, error) {
	var conversations []models.Conversation
	err := withRetry(func() error {
		var err error
		conversations, err = s.conversationRepo.ListForUser(userID)
		return err
	})
	if err != nil {
		log.Printf("conversation service: list failed: %v", err)
		return nil, errs.ErrUnavailable
	}

	responses := make([]models.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		responses = append(responses, s.enrich(&conversations[i]))
	}
	return responses, nil
}

// Delete cascades to every message in the conversation. Operator only.
func (s *conversationService) Delete(requester *models.User, conversationID uuid.UUID) error {
	if requester.Role != models.RoleOperator {
		return errs.Forbidden("only operators may delete conversations")
	}

	err := s.conversationRepo.Delete(conversationID)
	if err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return errs.NotFound("conversation not found")
		}
		log.Printf("conversation service: delete failed: %v", err)
		return errs.ErrUnavailable
	}
	return nil
}

func (s *conversationService) enrich(conv *models.Conversation) models.ConversationResponse {
	resp := models.ConversationResponse{
		ID:            conv.ID,
		LastMessageID: conv.LastMessageID,
		CreatedAt:     conv.CreatedAt,
		UpdatedAt:     conv.UpdatedAt,
	}
	for _, id := range []uuid.UUID{conv.ParticipantOneID, conv.ParticipantTwoID} {
		user, err := s.userRepo.FindUserByID(id)
		if err != nil {
			resp.Participants = append(resp.Participants, models.UserResponse{ID: id})
			continue
		}
		resp.Participants = append(resp.Participants, user.Response())
	}
	return resp
}
