package mail

import (
	"sync"

	gomail "gopkg.in/gomail.v2"

	"github.com/openlegal/platform/internal/shared/config"
)

// Message is an outbound email
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers email messages
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail over SMTP
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a Sender from the mail configuration
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers the message, dialing per call
func (s *SMTPSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)
	return s.dialer.DialAndSend(m)
}

// Mock records sent messages for tests
type Mock struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

// NewMock creates an empty Mock sender
func NewMock() *Mock {
	return &Mock{}
}

// Send records the message, returning the configured error if any
func (m *Mock) Send(msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}
