// pkg/delivery/smtp.go

package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// DefaultTimeout bounds a single SMTP delivery attempt.
const DefaultTimeout = 30 * time.Second

// SMTPConfig holds SMTP configuration. Address doubles as the login and the
// sender; Credential is its password or app token.
type SMTPConfig struct {
	Host       string
	Port       int
	Address    string
	Credential string
	FromName   string
	TLS        string
	Timeout    time.Duration
}

// SMTPDispatcher delivers messages through an SMTP relay.
type SMTPDispatcher struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTPDispatcher validates cfg and returns a dispatcher for it.
func NewSMTPDispatcher(cfg SMTPConfig) (*SMTPDispatcher, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp: host is required")
	}
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, errors.New("smtp: sender address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &SMTPDispatcher{cfg: cfg, now: time.Now}, nil
}

// Send makes one delivery attempt bounded by the configured timeout.
func (d *SMTPDispatcher) Send(ctx context.Context, msg Message) (Ack, error) {
	m, id, err := d.compose(msg)
	if err != nil {
		return Ack{}, Wrap(msg.To, err)
	}

	client, err := mail.NewClient(d.cfg.Host, d.clientOptions()...)
	if err != nil {
		return Ack{}, Wrap(msg.To, fmt.Errorf("smtp client: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return Ack{}, Wrap(msg.To, err)
	}
	return Ack{Recipient: msg.To, MessageID: id, SentAt: d.now()}, nil
}

func (d *SMTPDispatcher) compose(msg Message) (*mail.Msg, string, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(d.cfg.FromName, d.cfg.Address); err != nil {
		return nil, "", fmt.Errorf("sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, "", fmt.Errorf("recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	m.SetDateWithValue(d.now())

	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), d.cfg.Host)
	m.SetGenHeader(mail.HeaderMessageID, id)

	if att := msg.Attachment; len(att.Data) > 0 {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		m.AttachReadSeeker(att.Filename, bytes.NewReader(att.Data), mail.WithFileContentType(mail.ContentType(contentType)))
	}
	return m, id, nil
}

func (d *SMTPDispatcher) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(d.cfg.Port),
		mail.WithTimeout(d.cfg.Timeout),
	}
	if d.cfg.Credential != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(d.cfg.Address),
			mail.WithPassword(d.cfg.Credential),
		)
	}
	switch strings.ToLower(strings.TrimSpace(d.cfg.TLS)) {
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	case "opportunistic":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	case "ssl":
		opts = append(opts, mail.WithSSL())
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	return opts
}
