package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSMTP struct {
	errs []error
	sent []*mail.Msg
	got  SMTPConfig
}

func (f *fakeSMTP) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.sent = append(f.sent, messages...)
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func withFakeSMTP(t *testing.T, f *fakeSMTP) {
	t.Helper()
	orig := newSMTPSender
	newSMTPSender = func(c SMTPConfig) (smtpSender, error) {
		f.got = c
		return f, nil
	}
	t.Cleanup(func() { newSMTPSender = orig })
}

func smtpTestConfig() SMTPConfig {
	return SMTPConfig{Host: "smtp.example.com", FromAddr: "noreply@example.com", FromName: "Proposals"}
}

var smtpTestMessage = Message{To: "owner@example.com", Subject: "S", Text: "T", HTML: "<p>H</p>"}

func TestNewSMTPDispatcher(t *testing.T) {
	_, err := NewSMTPDispatcher(SMTPConfig{})
	assert.Error(t, err, "host is required")

	f := &fakeSMTP{}
	withFakeSMTP(t, f)
	_, err = NewSMTPDispatcher(smtpTestConfig())
	require.NoError(t, err)
	assert.Equal(t, 587, f.got.Port)
}

func TestNewSMTPDispatcher_RealClient(t *testing.T) {
	d, err := NewSMTPDispatcher(SMTPConfig{Host: "localhost", Port: 465, Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.NotNil(t, d.sender)
}

func TestSMTPDispatcher_SendsMultipart(t *testing.T) {
	f := &fakeSMTP{}
	withFakeSMTP(t, f)

	d, err := NewSMTPDispatcher(smtpTestConfig())
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(context.Background(), smtpTestMessage))

	require.Len(t, f.sent, 1)
	rcpt, err := f.sent[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"owner@example.com"}, rcpt)
	assert.Equal(t, []string{"S"}, f.sent[0].GetGenHeader(mail.HeaderSubject))
	assert.Len(t, f.sent[0].GetParts(), 2)
}

func TestSMTPDispatcher_FallsBackToPlainText(t *testing.T) {
	f := &fakeSMTP{errs: []error{errors.New("552 message rejected")}}
	withFakeSMTP(t, f)

	d, err := NewSMTPDispatcher(smtpTestConfig())
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(context.Background(), smtpTestMessage))

	require.Len(t, f.sent, 2)
	assert.Len(t, f.sent[1].GetParts(), 1)
}

func TestSMTPDispatcher_BothAttemptsFail(t *testing.T) {
	f := &fakeSMTP{errs: []error{errors.New("552 rejected"), errors.New("421 closing")}}
	withFakeSMTP(t, f)

	d, err := NewSMTPDispatcher(smtpTestConfig())
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), smtpTestMessage)
	assert.ErrorContains(t, err, "552 rejected")
	assert.ErrorContains(t, err, "421 closing")
}

func TestSMTPDispatcher_NoFallbackAfterCancel(t *testing.T) {
	f := &fakeSMTP{errs: []error{context.Canceled}}
	withFakeSMTP(t, f)

	d, err := NewSMTPDispatcher(smtpTestConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = d.Dispatch(ctx, smtpTestMessage)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.sent, 1)
}

func TestSMTPDispatcher_BadRecipient(t *testing.T) {
	f := &fakeSMTP{}
	withFakeSMTP(t, f)

	d, err := NewSMTPDispatcher(smtpTestConfig())
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), Message{To: "not an address"})
	assert.ErrorContains(t, err, "smtp to")
	assert.Empty(t, f.sent)
}
