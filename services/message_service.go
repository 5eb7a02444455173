package services

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techagentng/relayhub/config"
	"github.com/techagentng/relayhub/db"
	errs "github.com/techagentng/relayhub/errors"
	"github.com/techagentng/relayhub/models"
)

type MessageService interface {
	Send(sender *models.User, req *models.SendMessageRequest) (*models.MessageResponse, error)
	Edit(requesterID, messageID uuid.UUID, content string) (*models.MessageResponse, error)
	Delete(requesterID, messageID uuid.UUID) error
	ListByConversation(requesterID, conversationID uuid.UUID) ([]models.Message, error)
	MarkRead(requesterID, messageID uuid.UUID) error
	SubmitIntake(req *models.IntakeRequest) (*models.IntakeResponse, error)
}

type messageService struct {
	messageRepo      db.MessageRepository
	conversationRepo db.ConversationRepository
	userRepo         db.UserRepository
	dispatcher       *Dispatcher
	Config           *config.Config
}

func NewMessageService(messageRepo db.MessageRepository, conversationRepo db.ConversationRepository, userRepo db.UserRepository, dispatcher *Dispatcher, conf *config.Config) MessageService {
	return &messageService{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		dispatcher:       dispatcher,
		Config:           conf,
	}
}

// canMutate is the single ownership predicate for message mutation.
// Only the original sender may edit or delete.
func canMutate(message *models.Message, requesterID uuid.UUID) bool {
	return message.SenderID == requesterID
}

// Send persists a message and hands it to the dispatcher. When the
// request carries no conversation id the conversation is resolved
// lazily from the sender/receiver pair.
func (s *messageService) Send(sender *models.User, req *models.SendMessageRequest) (*models.MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errs.ValidationError("message content cannot be empty")
	}
	if req.ReceiverID == uuid.Nil {
		return nil, errs.ValidationError("receiver id is required")
	}
	if req.ReceiverID == sender.ID {
		return nil, errs.ValidationError("cannot message yourself")
	}

	receiver, err := s.userRepo.FindUserByID(req.ReceiverID)
	if err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return nil, errs.NotFound("receiver not found")
		}
		return nil, errs.ErrUnavailable
	}

	conv, err := s.resolveConversation(sender.ID, req.ReceiverID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		ReceiverID:     req.ReceiverID,
		Content:        content,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = withRetry(func() error {
		return s.messageRepo.Create(message)
	})
	if err != nil {
		log.Printf("message service: create failed: %v", err)
		return nil, errs.ErrUnavailable
	}

	enriched := &models.MessageResponse{
		Message:  *message,
		Sender:   sender.Response(),
		Receiver: receiver.Response(),
	}
	s.dispatcher.MessageCreated(enriched)
	return enriched, nil
}

// Edit replaces a message's content. Only the sender may edit; the
// store's conditional update backs the check under concurrency.
func (s *messageService) Edit(requesterID, messageID uuid.UUID, content string) (*models.MessageResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.ValidationError("message content cannot be empty")
	}

	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return nil, errs.NotFound("message not found")
		}
		return nil, errs.ErrUnavailable
	}
	if !canMutate(message, requesterID) {
		return nil, errs.Forbidden("only the sender may edit a message")
	}

	updated, err := s.messageRepo.UpdateContent(messageID, requesterID, content, time.Now())
	if err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			// Deleted between the ownership check and the update.
			return nil, errs.NotFound("message not found")
		}
		log.Printf("message service: edit failed: %v", err)
		return nil, errs.ErrUnavailable
	}

	enriched := s.enrich(updated)
	s.dispatcher.MessageUpdated(enriched)
	return enriched, nil
}

// Delete permanently removes a message. Same ownership rule as Edit.
func (s *messageService) Delete(requesterID, messageID uuid.UUID) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return errs.NotFound("message not found")
		}
		return errs.ErrUnavailable
	}
	if !canMutate(message, requesterID) {
		return errs.Forbidden("only the sender may delete a message")
	}

	if err := s.messageRepo.Delete(messageID, requesterID); err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return errs.NotFound("message not found")
		}
		log.Printf("message service: delete failed: %v", err)
		return errs.ErrUnavailable
	}

	s.dispatcher.MessageDeleted(message.ReceiverID, message.ConversationID, message.ID)
	return nil
}

// ListByConversation returns the conversation's messages oldest-first.
// Participants only.
func (s *messageService) ListByConversation(requesterID, conversationID uuid.UUID) ([]models.Message, error) {
	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return nil, errs.NotFound("conversation not found")
		}
		return nil, errs.ErrUnavailable
	}
	if !conv.HasParticipant(requesterID) {
		return nil, errs.Forbidden("not a participant of this conversation")
	}

	var messages []models.Message
	err = withRetry(func() error {
		var err error
		messages, err = s.messageRepo.ListByConversation(conversationID)
		return err
	})
	if err != nil {
		log.Printf("message service: list failed: %v", err)
		return nil, errs.ErrUnavailable
	}
	return messages, nil
}

// MarkRead flags a message as read. Idempotent; receiver only.
func (s *messageService) MarkRead(requesterID, messageID uuid.UUID) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return errs.NotFound("message not found")
		}
		return errs.ErrUnavailable
	}
	if message.ReceiverID != requesterID {
		return errs.Forbidden("only the receiver may mark a message read")
	}
	if message.IsRead {
		return nil
	}
	if err := s.messageRepo.MarkRead(messageID); err != nil {
		log.Printf("message service: mark read failed: %v", err)
		return errs.ErrUnavailable
	}
	return nil
}

// SubmitIntake handles the unauthenticated public flow: a visitor
// leaves contact info and a message for an ambassador. A guest sender
// is provisioned (or reused) keyed by contact email, and the message
// is flagged as a system submission.
func (s *messageService) SubmitIntake(req *models.IntakeRequest) (*models.IntakeResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errs.ValidationError("message content cannot be empty")
	}

	ambassador, err := s.userRepo.FindUserByID(req.AmbassadorID)
	if err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return nil, errs.NotFound("ambassador not found")
		}
		return nil, errs.ErrUnavailable
	}

	guest, err := s.userRepo.FindOrCreateGuest(&models.User{
		Fullname:  req.Fullname,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Telephone: req.Telephone,
	})
	if err != nil {
		log.Printf("message service: guest provisioning failed: %v", err)
		return nil, errs.ErrUnavailable
	}
	if guest.ID == ambassador.ID {
		return nil, errs.ValidationError("ambassador cannot submit to themselves")
	}

	conv, err := s.resolveConversation(guest.ID, ambassador.ID, uuid.Nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	message := &models.Message{
		ID:                 uuid.New(),
		ConversationID:     conv.ID,
		SenderID:           guest.ID,
		ReceiverID:         ambassador.ID,
		Content:            content,
		IsSystemSubmission: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err = withRetry(func() error {
		return s.messageRepo.Create(message)
	})
	if err != nil {
		log.Printf("message service: intake create failed: %v", err)
		return nil, errs.ErrUnavailable
	}

	s.dispatcher.MessageCreated(&models.MessageResponse{
		Message:  *message,
		Sender:   guest.Response(),
		Receiver: ambassador.Response(),
	})
	return &models.IntakeResponse{
		ConversationID: conv.ID,
		MessageID:      message.ID,
	}, nil
}

// resolveConversation validates an explicit conversation id against
// the sender/receiver pair, or finds-or-creates the pair's
// conversation when none was given.
func (s *messageService) resolveConversation(senderID, receiverID, conversationID uuid.UUID) (*models.Conversation, error) {
	if conversationID == uuid.Nil {
		var conv *models.Conversation
		err := withRetry(func() error {
			var err error
			conv, err = s.conversationRepo.GetOrCreate(senderID, receiverID)
			return err
		})
		if err != nil {
			log.Printf("message service: conversation get-or-create failed: %v", err)
			return nil, errs.ErrUnavailable
		}
		return conv, nil
	}

	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		if errs.Is(err, db.ErrRecordNotFound) {
			return nil, errs.NotFound("conversation not found")
		}
		return nil, errs.ErrUnavailable
	}
	if !conv.HasParticipant(senderID) || !conv.HasParticipant(receiverID) {
		return nil, errs.ValidationError("sender and receiver must be the conversation participants")
	}
	return conv, nil
}

func (s *messageService) enrich(message *models.Message) *models.MessageResponse {
	resp := &models.MessageResponse{Message: *message}
	if sender, err := s.userRepo.FindUserByID(message.SenderID); err == nil {
		resp.Sender = sender.Response()
	} else {
		resp.Sender = models.UserResponse{ID: message.SenderID}
	}
	if receiver, err := s.userRepo.FindUserByID(message.ReceiverID); err == nil {
		resp.Receiver = receiver.Response()
	} else {
		resp.Receiver = models.UserResponse{ID: message.ReceiverID}
	}
	return resp
}
