package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// CommandType is the kind of command delivered to a device
type CommandType string

const (
	CommandTypeURL CommandType = "url"
)

// Command is the payload pushed to a device
type Command struct {
	Type CommandType
	Data string
}

// ErrDispatcherDisabled is returned when no push credentials were configured
var ErrDispatcherDisabled = errors.New("push messaging is not configured")

// DispatchError reports a failed push send
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return "failed to dispatch command: " + e.Err.Error()
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Sender delivers a single push message. *messaging.Client implements it.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NewFirebaseSender creates an FCM client from a service account file.
// It returns a nil Sender when no credentials file is configured.
func NewFirebaseSender(ctx context.Context, credentialsFile string) (Sender, error) {
	if credentialsFile == "" {
		log.Warn("Firebase credentials not provided, device commands disabled")
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Info("Firebase FCM initialized")
	return client, nil
}

// Dispatcher pushes commands to devices. Each call makes exactly one send attempt.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher. A nil sender yields a disabled dispatcher.
func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{sender: sender, timeout: timeout}
}

// SendCommand sends cmd to the device identified by pushToken
func (d *Dispatcher) SendCommand(ctx context.Context, pushToken string, cmd Command) error {
	if d == nil || d.sender == nil {
		return &DispatchError{Err: ErrDispatcherDisabled}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	message := &messaging.Message{
		Token: pushToken,
		Data: map[string]string{
			"type": string(cmd.Type),
			"data": cmd.Data,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	id, err := d.sender.Send(ctx, message)
	if err != nil {
		return &DispatchError{Err: err}
	}

	log.WithField("message_id", id).Debug("FCM message sent")
	return nil
}
