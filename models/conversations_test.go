package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConversationPairKey_UnorderedPair(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.Equal(t, ConversationPairKey(a, b), ConversationPairKey(b, a))
	assert.NotEqual(t, ConversationPairKey(a, b), ConversationPairKey(a, uuid.New()))
}

func TestConversationParticipants(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	conv := &Conversation{ParticipantOneID: a, ParticipantTwoID: b}

	assert.True(t, conv.HasParticipant(a))
	assert.True(t, conv.HasParticipant(b))
	assert.False(t, conv.HasParticipant(uuid.New()))

	assert.Equal(t, b, conv.OtherParticipant(a))
	assert.Equal(t, a, conv.OtherParticipant(b))
}

func TestValidateIntake(t *testing.T) {
	valid := &IntakeRequest{
		AmbassadorID: uuid.New(),
		Email:        "visitor@example.com",
		Content:      "hello",
	}
	assert.NoError(t, ValidateIntake(valid))

	badEmail := *valid
	badEmail.Email = "not-an-email"
	assert.Error(t, ValidateIntake(&badEmail))

	blank := *valid
	blank.Content = "   "
	assert.Error(t, ValidateIntake(&blank))
}
