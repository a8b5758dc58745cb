// Package notify delivers the email sent to a proposal owner once their
// proposal is answered. Delivery is best effort: callers log failures and
// carry on.
package notify

import (
	"context"
	"errors"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Dispatcher delivers a message. Implementations must honor ctx cancellation.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// Multi sends msg through every dispatcher and joins their errors.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, msg Message) error {
	var errs []error
	for _, d := range m {
		if err := d.Dispatch(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
