package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// newSendGridClient is a seam for tests.
var newSendGridClient = func(apiKey string) sendGridClient {
	return sendgrid.NewSendClient(apiKey)
}

// SendGridDispatcher delivers mail through the SendGrid v3 API.
type SendGridDispatcher struct {
	client   sendGridClient
	fromAddr string
	fromName string
}

func NewSendGridDispatcher(apiKey, fromAddr, fromName string) (*SendGridDispatcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key is empty")
	}
	return &SendGridDispatcher{
		client:   newSendGridClient(apiKey),
		fromAddr: fromAddr,
		fromName: fromName,
	}, nil
}

func (d *SendGridDispatcher) Dispatch(ctx context.Context, msg Message) error {
	email := mail.NewSingleEmail(
		mail.NewEmail(d.fromName, d.fromAddr),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.Text,
		msg.HTML,
	)

	resp, err := d.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
