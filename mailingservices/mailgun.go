package mailingservices

import (
	"context"
	"log"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/techagentng/relayhub/config"
)

// Mailgun is the offline-notification backend. It satisfies the
// dispatcher's Notifier interface; sends are best-effort.
type Mailgun struct {
	Client *mailgun.MailgunImpl
	From   string
}

func (m *Mailgun) Init(c *config.Config) {
	m.Client = mailgun.NewMailgun(c.MgDomain, c.MailgunApiKey)
	m.From = c.MgEmailFrom
	log.Println("Mailgun client initialized")
}

// Send delivers a plain-text notification to address.
func (m *Mailgun) Send(address, subject, body string) error {
	message := m.Client.NewMessage(m.From, subject, body, address)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _, err := m.Client.Send(ctx, message)
	return err
}
