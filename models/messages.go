package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single entry in a two-party conversation. Sender and
// receiver are always the two participants of the owning conversation.
// Deletes are hard deletes; a removed message leaves no tombstone.
type Message struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID     uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID           uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	ReceiverID         uuid.UUID `gorm:"type:uuid;not null" json:"receiver_id"`
	Content            string    `gorm:"not null" json:"content"`
	IsRead             bool      `gorm:"default:false" json:"is_read"`
	IsSystemSubmission bool      `gorm:"default:false" json:"is_system_submission"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// MessageResponse is a message enriched with sender/receiver display
// fields, as returned by the API and pushed over the live channel.
type MessageResponse struct {
	Message
	Sender   UserResponse `json:"sender"`
	Receiver UserResponse `json:"receiver"`
}

// SendMessageRequest creates a message. ConversationID may be omitted;
// the conversation is then resolved lazily from the sender/receiver
// pair, creating it on first contact.
type SendMessageRequest struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	ReceiverID     uuid.UUID `json:"receiver_id" binding:"required"`
	Content        string    `json:"content" binding:"required"`
}

// EditMessageRequest replaces a message's content. Only the original
// sender may edit.
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// IntakeRequest is the unauthenticated public submission payload. The
// ambassador id names the responder the submission is routed to.
type IntakeRequest struct {
	AmbassadorID uuid.UUID `json:"ambassador_id" binding:"required"`
	Fullname     string    `json:"fullname"`
	Email        string    `json:"email" binding:"required,email"`
	Telephone    string    `json:"telephone"`
	Content      string    `json:"content" binding:"required"`
}

// IntakeResponse identifies the records created for a public submission.
type IntakeResponse struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	MessageID      uuid.UUID `json:"message_id"`
}
