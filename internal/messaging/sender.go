// Package messaging delivers celebration messages to the group channel.
//
// Every backend implements Sender. Send must respect ctx for its deadline;
// the dispatcher wraps each call in MESSAGING_TIMEOUT.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// Sender delivers body to recipient and returns the provider's delivery id.
type Sender interface {
	Send(ctx context.Context, to, body string) (deliveryID string, err error)
}

// Supported MESSAGING_PROVIDER values.
const (
	ProviderTwilio = "twilio"
	ProviderSES    = "ses"
	ProviderAMQP   = "amqp"
	ProviderLog    = "log"
)

var (
	// ErrEmptyBody is returned when there is nothing to send.
	ErrEmptyBody = errors.New("messaging: empty message body")
	// ErrNoRecipient is returned when no destination was configured.
	ErrNoRecipient = errors.New("messaging: recipient is required")
)

// DeliveryError wraps a provider-side failure with the provider name.
type DeliveryError struct {
	Provider string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Provider, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func checkArgs(to, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. Used for
// dry runs and local development.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := checkArgs(to, body); err != nil {
		return "", err
	}
	id := "log-" + ulid.Make().String()
	log.Info().
		Str("delivery_id", id).
		Str("to", to).
		Int("chars", len(body)).
		Msg("message delivery (dry run)")
	return id, nil
}
