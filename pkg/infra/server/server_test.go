package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpopts "github.com/kart-io/datasphere/pkg/options/server/http"
)

type fakeServer struct {
	name     string
	startErr error
	events   *[]string
}

func (f *fakeServer) Name() string { return f.name }

func (f *fakeServer) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	*f.events = append(*f.events, "start "+f.name)
	return nil
}

func (f *fakeServer) Stop(context.Context) error {
	*f.events = append(*f.events, "stop "+f.name)
	return nil
}

func testHTTPOptions() *httpopts.Options {
	opts := httpopts.NewOptions()
	opts.ApplyOptions(httpopts.WithAddr("127.0.0.1:0"), httpopts.WithMode(gin.TestMode))
	return opts
}

func TestManager_StartStopOrder(t *testing.T) {
	var events []string
	m := NewManager(WithHTTPOptions(nil))
	m.AddServer(&fakeServer{name: "a", events: &events})
	m.AddServer(&fakeServer{name: "b", events: &events})

	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	assert.Error(t, m.Start(ctx), "second start must fail")
	require.NoError(t, m.Stop(ctx))
	require.NoError(t, m.Stop(ctx), "stop is idempotent")

	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, events)
}

func TestManager_StartFailureRollsBack(t *testing.T) {
	var events []string
	m := NewManager(WithHTTPOptions(nil))
	m.AddServer(&fakeServer{name: "a", events: &events})
	m.AddServer(&fakeServer{name: "b", events: &events, startErr: errors.New("bind failed")})

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
	assert.Equal(t, []string{"start a", "stop a"}, events)
}

func TestManager_HTTPServer(t *testing.T) {
	m := NewManager(WithHTTPOptions(testHTTPOptions()), WithShutdownTimeout(time.Second))
	require.NotNil(t, m.HTTPServer())
	m.HTTPServer().Engine().GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		addr := m.HTTPServer().Addr()
		if addr == "127.0.0.1:0" {
			return false
		}
		r, err := http.Get(fmt.Sprintf("http://%s/health", addr))
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 2*time.Second, 10*time.Millisecond)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("manager did not shut down")
	}
}

func TestOptions_Validate(t *testing.T) {
	opts := NewOptions()
	assert.Empty(t, opts.Validate())

	opts.ShutdownTimeout = 0
	opts.HTTP.Addr = ""
	assert.Len(t, opts.Validate(), 2)
}
