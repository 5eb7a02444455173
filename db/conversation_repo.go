package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/relayhub/models"
	"gorm.io/gorm"
)

// ErrRecordNotFound is re-exported so callers outside the db package
// don't need a gorm import to classify lookups.
var ErrRecordNotFound = gorm.ErrRecordNotFound

type ConversationRepository interface {
	GetOrCreate(userA, userB uuid.UUID) (*models.Conversation, error)
	FindByID(id uuid.UUID) (*models.Conversation, error)
	Touch(conversationID, messageID uuid.UUID, at time.Time) error
	ListForUser(userID uuid.UUID) ([]models.Conversation, error)
	Delete(conversationID uuid.UUID) error
}

type conversationRepo struct {
	DB *gorm.DB
}

func NewConversationRepo(db *GormDB) ConversationRepository {
	return &conversationRepo{db.DB}
}

// GetOrCreate resolves the conversation for an unordered pair, creating
// it on first contact. The unique index on pair_key is the source of
// truth: two racing initiations both attempt the insert and the loser
// re-reads the winner's row.
func (r *conversationRepo) GetOrCreate(userA, userB uuid.UUID) (*models.Conversation, error) {
	pairKey := models.ConversationPairKey(userA, userB)

	conv := &models.Conversation{}
	err := r.DB.Where("pair_key = ?", pairKey).First(conv).Error
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "could not look up conversation")
	}

	conv = &models.Conversation{
		ID:               uuid.New(),
		ParticipantOneID: userA,
		ParticipantTwoID: userB,
		PairKey:          pairKey,
	}
	err = r.DB.Create(conv).Error
	if err == nil {
		return conv, nil
	}
	if isDuplicateKey(err) {
		existing := &models.Conversation{}
		if err := r.DB.Where("pair_key = ?", pairKey).First(existing).Error; err != nil {
			return nil, errors.Wrap(err, "could not re-read conversation after create race")
		}
		return existing, nil
	}
	return nil, errors.Wrap(err, "could not create conversation")
}

func (r *conversationRepo) FindByID(id uuid.UUID) (*models.Conversation, error) {
	conv := &models.Conversation{}
	if err := r.DB.Where("id = ?", id).First(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

// Touch records messageID as the latest activity on the conversation.
func (r *conversationRepo) Touch(conversationID, messageID uuid.UUID, at time.Time) error {
	err := r.DB.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"updated_at":      at,
		}).Error
	if err != nil {
		return errors.Wrap(err, "could not touch conversation")
	}
	return nil
}

func (r *conversationRepo) ListForUser(userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.DB.
		Where("participant_one_id = ? OR participant_two_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not list conversations")
	}
	return conversations, nil
}

// Delete removes the conversation and every message in it as one
// transaction.
func (r *conversationRepo) Delete(conversationID uuid.UUID) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", conversationID).Delete(&models.Conversation{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "could not delete conversation")
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
			return errors.Wrap(err, "could not delete conversation messages")
		}
		return nil
	})
}

// isDuplicateKey matches the postgres unique-violation the pair_key
// index raises when two initiations race.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "duplicate key")
}
