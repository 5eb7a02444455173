package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/techagentng/relayhub/db"
	"github.com/techagentng/relayhub/models"
)

// Live-channel event names.
const (
	EventNewMessage     = "newMessage"
	EventMessageUpdated = "messageUpdated"
	EventMessageDeleted = "messageDeleted"
)

// Notifier is the offline-notification collaborator. Sends are
// best-effort; the dispatcher never propagates a failure to the
// request that triggered it.
type Notifier interface {
	Send(address, subject, body string) error
}

// MessageDeletedEvent is the payload pushed for a hard-deleted message.
type MessageDeletedEvent struct {
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
}

type offlineNotice struct {
	address string
	subject string
	body    string
}

// Dispatcher routes committed message events either to the receiver's
// live connection or to the offline notifier. Live pushes happen
// synchronously on the request path, which is what preserves
// per-receiver ordering; offline notices are handed to a background
// worker so a slow mail backend cannot add request latency.
type Dispatcher struct {
	presence *PresenceRegistry
	notifier Notifier
	users    db.UserRepository

	queue chan offlineNotice
	quit  chan struct{}
	wg    sync.WaitGroup
}

func NewDispatcher(presence *PresenceRegistry, notifier Notifier, users db.UserRepository, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		presence: presence,
		notifier: notifier,
		users:    users,
		queue:    make(chan offlineNotice, queueSize),
		quit:     make(chan struct{}),
	}
}

// Start launches the offline-notification worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.notifyLoop()
}

// Stop drains nothing; queued notices still in flight are dropped.
// Notification is an enhancement, not a delivery guarantee.
func (d *Dispatcher) Stop() {
	close(d.quit)
	d.wg.Wait()
}

// MessageCreated pushes the enriched message to the receiver's live
// connection, or falls back to an offline notice when the receiver is
// offline or the push cannot be completed in its bounded window.
func (d *Dispatcher) MessageCreated(message *models.MessageResponse) {
	handle, online := d.presence.Lookup(message.ReceiverID)
	if online {
		err := handle.Push(EventNewMessage, message)
		if err == nil {
			return
		}
		log.Printf("dispatcher: live push to %s failed, falling back to offline notify: %v", message.ReceiverID, err)
	}
	d.enqueueOffline(message)
}

// MessageUpdated is live-push only; no offline notice is sent for
// edits.
func (d *Dispatcher) MessageUpdated(message *models.MessageResponse) {
	handle, online := d.presence.Lookup(message.ReceiverID)
	if !online {
		return
	}
	if err := handle.Push(EventMessageUpdated, message); err != nil {
		log.Printf("dispatcher: messageUpdated push to %s failed: %v", message.ReceiverID, err)
	}
}

// MessageDeleted is live-push only, ids only; the record is already
// gone.
func (d *Dispatcher) MessageDeleted(receiverID, conversationID, messageID uuid.UUID) {
	handle, online := d.presence.Lookup(receiverID)
	if !online {
		return
	}
	event := MessageDeletedEvent{MessageID: messageID, ConversationID: conversationID}
	if err := handle.Push(EventMessageDeleted, event); err != nil {
		log.Printf("dispatcher: messageDeleted push to %s failed: %v", receiverID, err)
	}
}

func (d *Dispatcher) enqueueOffline(message *models.MessageResponse) {
	address := message.Receiver.Email
	if address == "" {
		receiver, err := d.users.FindUserByID(message.ReceiverID)
		if err != nil {
			log.Printf("dispatcher: could not resolve contact for %s: %v", message.ReceiverID, err)
			return
		}
		address = receiver.Email
	}

	notice := offlineNotice{
		address: address,
		subject: "New message from " + message.Sender.Fullname,
		body:    summarize(message.Content),
	}
	select {
	case d.queue <- notice:
	default:
		log.Printf("dispatcher: notification queue full, dropping notice for %s", message.ReceiverID)
	}
}

func (d *Dispatcher) notifyLoop() {
	defer d.wg.Done()
	for {
		select {
		case notice := <-d.queue:
			if err := d.notifier.Send(notice.address, notice.subject, notice.body); err != nil {
				log.Printf("dispatcher: notify %s failed, retrying once: %v", notice.address, err)
				time.Sleep(500 * time.Millisecond)
				if err := d.notifier.Send(notice.address, notice.subject, notice.body); err != nil {
					log.Printf("dispatcher: notify %s failed after retry, dropping: %v", notice.address, err)
				}
			}
		case <-d.quit:
			return
		}
	}
}

const summaryLimit = 140

func summarize(content string) string {
	runes := []rune(content)
	if len(runes) <= summaryLimit {
		return content
	}
	return string(runes[:summaryLimit]) + "..."
}
