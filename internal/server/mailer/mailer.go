// Package mailer delivers password reset messages. The server ships a
// logging mailer for development and an S3 drop mailer that writes each
// message as an object for a relay to pick up.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clinauth/internal/logging"
)

// Message is a plain-text e-mail.
type Message struct {
	ID      string
	To      string
	Subject string
	Body    string
}

// RFC822 renders m with minimal headers.
func (m Message) RFC822() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(m.Body)
	return []byte(b.String())
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "log_mailer")}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "mail", "id", msg.ID, "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

// ResetMessage builds the password reset e-mail for link.
func ResetMessage(id, to, link string) Message {
	return Message{
		ID:      id,
		To:      to,
		Subject: "Reset your password",
		Body:    "Someone asked to reset the password of your account.\n\nOpen this link to choose a new one:\n" + link + "\n\nIf it was not you, ignore this message.\n",
	}
}
