package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/relayhub/models"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *models.Message) error
	FindByID(id uuid.UUID) (*models.Message, error)
	UpdateContent(messageID, senderID uuid.UUID, content string, at time.Time) (*models.Message, error)
	Delete(messageID, senderID uuid.UUID) error
	ListByConversation(conversationID uuid.UUID) ([]models.Message, error)
	MarkRead(messageID uuid.UUID) error
}

type messageRepo struct {
	DB *gorm.DB
}

func NewMessageRepo(db *GormDB) MessageRepository {
	return &messageRepo{db.DB}
}

// Create persists the message and bumps the owning conversation's
// last-message pointer in the same transaction, so a conversation can
// never point at a message that was not committed.
func (r *messageRepo) Create(message *models.Message) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return errors.Wrap(err, "could not create message")
		}
		err := tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_message_id": message.ID,
				"updated_at":      message.CreatedAt,
			}).Error
		if err != nil {
			return errors.Wrap(err, "could not update conversation last message")
		}
		return nil
	})
}

func (r *messageRepo) FindByID(id uuid.UUID) (*models.Message, error) {
	message := &models.Message{}
	if err := r.DB.Where("id = ?", id).First(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// UpdateContent edits a message. Ownership is enforced by the store:
// the conditional WHERE only matches rows the requester sent, so a
// concurrent requester can never slip an edit past the check.
func (r *messageRepo) UpdateContent(messageID, senderID uuid.UUID, content string, at time.Time) (*models.Message, error) {
	result := r.DB.Model(&models.Message{}).
		Where("id = ? AND sender_id = ?", messageID, senderID).
		Updates(map[string]interface{}{
			"content":    content,
			"updated_at": at,
		})
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "could not update message")
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(messageID)
}

// Delete removes a message permanently, with the same conditional
// ownership WHERE as UpdateContent.
func (r *messageRepo) Delete(messageID, senderID uuid.UUID) error {
	result := r.DB.Where("id = ? AND sender_id = ?", messageID, senderID).Delete(&models.Message{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "could not delete message")
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByConversation returns messages oldest-first. The id column
// breaks ties between equal timestamps so the order is stable.
func (r *messageRepo) ListByConversation(conversationID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.DB.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not list messages")
	}
	return messages, nil
}

// MarkRead is idempotent; marking an already-read message is a no-op.
func (r *messageRepo) MarkRead(messageID uuid.UUID) error {
	err := r.DB.Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("is_read", true).Error
	if err != nil {
		return errors.Wrap(err, "could not mark message read")
	}
	return nil
}
