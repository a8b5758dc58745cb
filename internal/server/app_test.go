package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/proposals/internal/logging"
	"github.com/dmitrijs2005/proposals/internal/server/config"
	"github.com/dmitrijs2005/proposals/internal/server/notify"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestBuildDispatcher(t *testing.T) {
	ctx := context.Background()

	c := testConfig()
	d, err := buildDispatcher(ctx, c, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &notify.LogDispatcher{}, d)

	c.MailProvider = "sendgrid"
	_, err = buildDispatcher(ctx, c, logging.Nop{})
	assert.Error(t, err, "sendgrid without api key")

	c.SendGridAPIKey = "SG.key"
	d, err = buildDispatcher(ctx, c, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &notify.SendGridDispatcher{}, d)

	c.MailProvider = "smtp"
	_, err = buildDispatcher(ctx, c, logging.Nop{})
	assert.Error(t, err, "smtp without host")

	c.SMTPHost = "localhost"
	d, err = buildDispatcher(ctx, c, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &notify.SMTPDispatcher{}, d)

	c.MailProvider = "pigeon"
	_, err = buildDispatcher(ctx, c, logging.Nop{})
	assert.Error(t, err)
}

func TestBuildDispatcher_WithS3Archive(t *testing.T) {
	c := testConfig()
	c.S3Bucket = "notifications"

	d, err := buildDispatcher(context.Background(), c, logging.Nop{})
	require.NoError(t, err)

	multi, ok := d.(notify.Multi)
	require.True(t, ok)
	assert.Len(t, multi, 2)
}

func TestNewApp_InMemory(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "memory", app.repomanager.Kind())
}

func TestNewApp_StorageError(t *testing.T) {
	orig := openStorage
	t.Cleanup(func() { openStorage = orig })
	openStorage = func(context.Context, string) (repomanager.RepositoryManager, error) {
		return nil, errors.New("connection refused")
	}

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewApp_BadKeyDerivation(t *testing.T) {
	c := testConfig()
	c.TokenKeyDerivation = "rot13"

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
