package notification

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/messaging"

	"github.com/byoma-kusuma/sangha-management-backend/utils"
)

// Channel is a delivery mechanism for outbound notifications. The
// recipient format is channel-specific: email addresses for the mail
// channel, device tokens for FCM.
type Channel interface {
	Send(recipients []string, subject, body string) error
}

// FCMChannel sends push notifications through Firebase Cloud Messaging.
type FCMChannel struct {
	ctx context.Context
}

func NewFCMChannel() Channel {
	return &FCMChannel{ctx: context.Background()}
}

func (f *FCMChannel) Send(recipients []string, subject, body string) error {
	client := utils.GetFCMClient()
	if client == nil {
		return fmt.Errorf("FCM client not initialized")
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no FCM tokens provided")
	}
	if len(recipients) == 1 {
		return f.sendSingle(client, recipients[0], subject, body)
	}
	return f.sendMulticast(client, recipients, subject, body)
}

func (f *FCMChannel) sendSingle(client *messaging.Client, token, title, body string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}
	_, err := client.Send(f.ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}

func (f *FCMChannel) sendMulticast(client *messaging.Client, tokens []string, title, body string) error {
	// FCM caps multicast at 500 tokens per call.
	const batchSize = 500
	for start := 0; start < len(tokens); start += batchSize {
		end := start + batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		message := &messaging.MulticastMessage{
			Tokens: tokens[start:end],
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
		}
		resp, err := client.SendEachForMulticast(f.ctx, message)
		if err != nil {
			return fmt.Errorf("failed to send FCM multicast: %w", err)
		}
		if resp.FailureCount > 0 {
			log.Printf("⚠️  FCM multicast: %d of %d sends failed\n", resp.FailureCount, len(tokens[start:end]))
		}
	}
	return nil
}

// EmailChannel adapts the SMTP mailer to the Channel interface.
type EmailChannel struct {
	Mailer *utils.Mailer
}

func NewEmailChannel(m *utils.Mailer) Channel {
	return &EmailChannel{Mailer: m}
}

func (e *EmailChannel) Send(recipients []string, subject, body string) error {
	// SMTP being unconfigured is a no-op, same as the mailer itself.
	if e.Mailer == nil || !e.Mailer.Enabled() {
		return nil
	}
	for _, to := range recipients {
		if err := e.Mailer.Send(to, subject, body); err != nil {
			return err
		}
	}
	return nil
}
