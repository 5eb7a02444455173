package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/techagentng/relayhub/models"
	"gorm.io/gorm"
)

var errSendFailed = errors.New("send failed")

// In-memory doubles for the db repositories and the delivery
// collaborators, mirroring the store contracts closely enough for
// service-level tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindUserByID(id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindUserByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindOrCreateGuest(user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			copied := *u
			return &copied, nil
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.IsGuest = true
	user.Role = models.RoleSender
	r.users[user.ID] = user
	copied := *user
	return &copied, nil
}

type fakeConversationRepo struct {
	mu        sync.Mutex
	byPairKey map[string]*models.Conversation
	byID      map[uuid.UUID]*models.Conversation
	deleted   []uuid.UUID
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		byPairKey: make(map[string]*models.Conversation),
		byID:      make(map[uuid.UUID]*models.Conversation),
	}
}

func (r *fakeConversationRepo) GetOrCreate(userA, userB uuid.UUID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pairKey := models.ConversationPairKey(userA, userB)
	if conv, ok := r.byPairKey[pairKey]; ok {
		copied := *conv
		return &copied, nil
	}
	now := time.Now()
	conv := &models.Conversation{
		ID:               uuid.New(),
		ParticipantOneID: userA,
		ParticipantTwoID: userB,
		PairKey:          pairKey,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.byPairKey[pairKey] = conv
	r.byID[conv.ID] = conv
	copied := *conv
	return &copied, nil
}

func (r *fakeConversationRepo) FindByID(id uuid.UUID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *conv
	return &copied, nil
}

func (r *fakeConversationRepo) Touch(conversationID, messageID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.byID[conversationID]; ok {
		conv.LastMessageID = &messageID
		conv.UpdatedAt = at
	}
	return nil
}

func (r *fakeConversationRepo) ListForUser(userID uuid.UUID) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Conversation
	for _, conv := range r.byID {
		if conv.HasParticipant(userID) {
			out = append(out, *conv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *fakeConversationRepo) Delete(conversationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.byID[conversationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byID, conversationID)
	delete(r.byPairKey, conv.PairKey)
	r.deleted = append(r.deleted, conversationID)
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*models.Message
	convRepo *fakeConversationRepo
}

func newFakeMessageRepo(convRepo *fakeConversationRepo) *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[uuid.UUID]*models.Message),
		convRepo: convRepo,
	}
}

func (r *fakeMessageRepo) Create(message *models.Message) error {
	r.mu.Lock()
	copied := *message
	r.messages[message.ID] = &copied
	r.mu.Unlock()
	if r.convRepo != nil {
		return r.convRepo.Touch(message.ConversationID, message.ID, message.CreatedAt)
	}
	return nil
}

func (r *fakeMessageRepo) FindByID(id uuid.UUID) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMessageRepo) UpdateContent(messageID, senderID uuid.UUID, content string, at time.Time) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok || m.SenderID != senderID {
		return nil, gorm.ErrRecordNotFound
	}
	m.Content = content
	m.UpdatedAt = at
	copied := *m
	return &copied, nil
}

func (r *fakeMessageRepo) Delete(messageID, senderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok || m.SenderID != senderID {
		return gorm.ErrRecordNotFound
	}
	delete(r.messages, messageID)
	return nil
}

func (r *fakeMessageRepo) ListByConversation(conversationID uuid.UUID) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(messageID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.messages[messageID]; ok {
		m.IsRead = true
	}
	return nil
}

type sentNotice struct {
	address string
	subject string
	body    string
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []sentNotice
	failures int
	done     chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 16)}
}

func (n *fakeNotifier) Send(address, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failures > 0 {
		n.failures--
		n.done <- struct{}{}
		return errSendFailed
	}
	n.sent = append(n.sent, sentNotice{address: address, subject: subject, body: body})
	n.done <- struct{}{}
	return nil
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type pushedEvent struct {
	event   string
	payload interface{}
}

type fakeHandle struct {
	mu     sync.Mutex
	pushed []pushedEvent
	err    error
	closed bool
}

func (h *fakeHandle) Push(event string, payload interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.pushed = append(h.pushed, pushedEvent{event: event, payload: payload})
	return nil
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHandle) pushCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pushed)
}

func (h *fakeHandle) lastEvent() (string, interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.pushed) == 0 {
		return "", nil
	}
	last := h.pushed[len(h.pushed)-1]
	return last.event, last.payload
}
