package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig describes the relay used by SMTPDispatcher. An empty Username
// sends without SMTP AUTH. Port 465 selects implicit TLS, any other port
// upgrades with STARTTLS when the server offers it.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromAddr string
	FromName string
}

type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// newSMTPSender is a seam for tests.
var newSMTPSender = func(c SMTPConfig) (smtpSender, error) {
	opts := []mail.Option{mail.WithPort(c.Port)}
	if c.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if c.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.Username),
			mail.WithPassword(c.Password),
		)
	}
	return mail.NewClient(c.Host, opts...)
}

// SMTPDispatcher delivers mail through an SMTP relay. The multipart
// message is tried first; if the relay rejects it a plain-text copy is sent.
type SMTPDispatcher struct {
	sender   smtpSender
	fromAddr string
	fromName string
}

func NewSMTPDispatcher(c SMTPConfig) (*SMTPDispatcher, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("smtp host is empty")
	}
	if c.Port <= 0 {
		c.Port = 587
	}

	sender, err := newSMTPSender(c)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPDispatcher{sender: sender, fromAddr: c.FromAddr, fromName: c.FromName}, nil
}

func (d *SMTPDispatcher) Dispatch(ctx context.Context, msg Message) error {
	rich, err := d.newMsg(msg)
	if err != nil {
		return err
	}
	rich.SetBodyString(mail.TypeTextPlain, msg.Text)
	rich.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	richErr := d.sender.DialAndSendWithContext(ctx, rich)
	if richErr == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("smtp: %w", richErr)
	}

	plain, err := d.newMsg(msg)
	if err != nil {
		return err
	}
	plain.SetBodyString(mail.TypeTextPlain, msg.Text)

	if err := d.sender.DialAndSendWithContext(ctx, plain); err != nil {
		return fmt.Errorf("smtp: %w", errors.Join(richErr, err))
	}
	return nil
}

func (d *SMTPDispatcher) newMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(d.fromName, d.fromAddr); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	m.Subject(msg.Subject)
	return m, nil
}
