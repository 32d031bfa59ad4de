package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddr = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestNewApp_SeedsUserInMemory(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig())
	require.NoError(t, err)

	token, err := app.userService.Login(ctx, "student", []byte("student"))
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestNewApp_RejectsEmptySeedPassword(t *testing.T) {
	c := testConfig()
	c.SeedPassword = ""

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	app, err := NewApp(ctx, testConfig())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
