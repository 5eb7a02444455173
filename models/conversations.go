package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation is the unique two-party thread between a pair of users.
// PairKey is the sorted concatenation of the two participant ids; the
// unique index on it is what makes GetOrCreate race-safe.
type Conversation struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantOneID uuid.UUID  `gorm:"type:uuid;not null" json:"participant_one_id"`
	ParticipantTwoID uuid.UUID  `gorm:"type:uuid;not null" json:"participant_two_id"`
	PairKey          string     `gorm:"uniqueIndex;not null" json:"-"`
	LastMessageID    *uuid.UUID `gorm:"type:uuid" json:"last_message_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ConversationPairKey normalizes an unordered participant pair to a
// stable key, so {A,B} and {B,A} resolve to the same conversation.
func ConversationPairKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if strings.Compare(x, y) > 0 {
		x, y = y, x
	}
	return x + ":" + y
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantOneID == userID || c.ParticipantTwoID == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.ParticipantOneID == userID {
		return c.ParticipantTwoID
	}
	return c.ParticipantOneID
}

// ConversationResponse is a conversation enriched with participant
// display fields for listing endpoints.
type ConversationResponse struct {
	ID            uuid.UUID      `json:"id"`
	Participants  []UserResponse `json:"participants"`
	LastMessageID *uuid.UUID     `json:"last_message_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// InitiateConversationRequest starts (or resolves) a conversation with
// another user.
type InitiateConversationRequest struct {
	ParticipantID uuid.UUID `json:"participant_id" binding:"required"`
}
