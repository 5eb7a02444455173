package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/relayhub/config"
	errs "github.com/techagentng/relayhub/errors"
	"github.com/techagentng/relayhub/models"
)

func newConversationServiceFixture(t *testing.T) (ConversationService, *fakeConversationRepo, *fakeUserRepo, *models.User, *models.User) {
	t.Helper()
	sender := &models.User{ID: uuid.New(), Fullname: "Ada", Email: "ada@example.com", Role: models.RoleSender}
	responder := &models.User{ID: uuid.New(), Fullname: "Ben", Email: "ben@example.com", Role: models.RoleResponder}
	users := newFakeUserRepo(sender, responder)
	convRepo := newFakeConversationRepo()
	svc := NewConversationService(convRepo, users, &config.Config{})
	return svc, convRepo, users, sender, responder
}

func TestInitiate_CreatesOnce(t *testing.T) {
	svc, _, _, sender, responder := newConversationServiceFixture(t)

	c1, err := svc.Initiate(sender.ID, responder.ID)
	require.NoError(t, err)
	c2, err := svc.Initiate(responder.ID, sender.ID)
	require.NoError(t, err)

	assert.Equal(t, c1.ID, c2.ID)
	assert.True(t, c1.HasParticipant(sender.ID))
	assert.True(t, c1.HasParticipant(responder.ID))
}

func TestInitiate_ConcurrentBothDirections(t *testing.T) {
	svc, convRepo, _, sender, responder := newConversationServiceFixture(t)

	const attempts = 20
	results := make([]uuid.UUID, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := sender.ID, responder.ID
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := svc.Initiate(a, b)
			if assert.NoError(t, err) {
				results[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < attempts; i++ {
		assert.Equal(t, results[0], results[i])
	}
	assert.Len(t, convRepo.byID, 1)
}

func TestInitiate_Validation(t *testing.T) {
	svc, _, _, sender, _ := newConversationServiceFixture(t)

	_, err := svc.Initiate(sender.ID, sender.ID)
	require.Error(t, err)
	assert.Equal(t, 400, errs.Status(err))

	_, err = svc.Initiate(sender.ID, uuid.Nil)
	require.Error(t, err)
	assert.Equal(t, 400, errs.Status(err))

	_, err = svc.Initiate(sender.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, 404, errs.Status(err))
}

func TestListMine_NewestActivityFirst(t *testing.T) {
	svc, convRepo, users, sender, responder := newConversationServiceFixture(t)

	other := &models.User{ID: uuid.New(), Fullname: "Cyn", Email: "cyn@example.com", Role: models.RoleResponder}
	users.users[other.ID] = other

	first, err := svc.Initiate(sender.ID, responder.ID)
	require.NoError(t, err)
	second, err := svc.Initiate(sender.ID, other.ID)
	require.NoError(t, err)

	// Touch the older conversation so it becomes the most recent.
	require.NoError(t, convRepo.Touch(first.ID, uuid.New(), time.Now().Add(time.Minute)))

	listed, err := svc.ListMine(sender.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)
	require.Len(t, listed[0].Participants, 2)
}

func TestDeleteConversation_OperatorOnly(t *testing.T) {
	svc, convRepo, users, sender, responder := newConversationServiceFixture(t)

	conv, err := svc.Initiate(sender.ID, responder.ID)
	require.NoError(t, err)

	err = svc.Delete(sender, conv.ID)
	require.Error(t, err)
	assert.Equal(t, 403, errs.Status(err))

	operator := &models.User{ID: uuid.New(), Fullname: "Op", Email: "op@example.com", Role: models.RoleOperator}
	users.users[operator.ID] = operator

	require.NoError(t, svc.Delete(operator, conv.ID))
	assert.Equal(t, []uuid.UUID{conv.ID}, convRepo.deleted)

	err = svc.Delete(operator, conv.ID)
	require.Error(t, err)
	assert.Equal(t, 404, errs.Status(err))
}
