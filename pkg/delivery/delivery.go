// pkg/delivery/delivery.go

package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"strings"
	"time"
)

// Attachment is a file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a single outbound delivery.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment Attachment
}

// Ack confirms the transport accepted a message.
type Ack struct {
	Recipient string    `json:"recipient"`
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

// Dispatcher sends messages. Implementations make exactly one attempt per
// call and report failures as *DeliveryError.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (Ack, error)
}

// DeliveryError reports a message that was not delivered. Auth is set when
// the transport rejected the configured credentials.
type DeliveryError struct {
	Recipient string
	Auth      bool
	Err       error
}

func (e *DeliveryError) Error() string {
	if e.Recipient == "" {
		return fmt.Sprintf("deliver: %v", e.Err)
	}
	kind := "transport failure"
	if e.Auth {
		kind = "authentication failure"
	}
	return fmt.Sprintf("deliver to %s: %s: %v", e.Recipient, kind, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// ErrAuth can be wrapped by transports and fakes to mark a credential
// rejection.
var ErrAuth = errors.New("authentication rejected")

// isAuthFailure recognises credential rejections: ErrAuth, SMTP replies 530,
// 534 and 535, or an AUTH exchange the client reports as failed.
func isAuthFailure(err error) bool {
	if errors.Is(err, ErrAuth) {
		return true
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			return true
		}
	}
	return strings.Contains(err.Error(), "SMTP AUTH failed")
}

// Wrap turns a transport error into a *DeliveryError for recipient.
func Wrap(recipient string, err error) error {
	if err == nil {
		return nil
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return err
	}
	return &DeliveryError{Recipient: recipient, Auth: isAuthFailure(err), Err: err}
}

// ErrNoRecipient marks an invoice that has no address to send to.
var ErrNoRecipient = errors.New("no recipient address")

// ErrNotConfigured is returned by Nop.
var ErrNotConfigured = errors.New("delivery is not configured")
