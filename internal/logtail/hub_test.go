package logtail

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tech-arch1tect/loggate/internal/logging"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func addClient(hub *Hub) *Client {
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)
	return client
}

func receive(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := startHub(t)

	a := addClient(hub)
	b := addClient(hub)

	hub.Broadcast([]byte("record"))

	assert.Equal(t, "record", string(receive(t, a.send)))
	assert.Equal(t, "record", string(receive(t, b.send)))
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := startHub(t)

	client := addClient(hub)
	hub.unregister <- client

	select {
	case _, open := <-client.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub() // not running

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			hub.Broadcast([]byte("record"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked with no hub running")
	}
}

func TestRegisterAfterStopReportsStopped(t *testing.T) {
	hub := NewHub() // never run
	hub.Stop()

	client := &Client{hub: hub, send: make(chan []byte, 1)}

	registered := make(chan bool, 1)
	go func() { registered <- hub.Register(client) }()

	select {
	case ok := <-registered:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Register blocked on a stopped hub")
	}
}

func TestUnregisterAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	client := addClient(hub)
	hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Unregister(client)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked on a stopped hub")
	}
}

func TestCoreWriteBroadcastsEncodedRecord(t *testing.T) {
	hub := startHub(t)
	client := addClient(hub)

	logger := zap.New(NewCore(hub, zapcore.DebugLevel))
	logger.Warn("disk almost full", zap.String("volume", "data"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(receive(t, client.send), &record))
	assert.Equal(t, "disk almost full", record["message"])
	assert.Equal(t, "WARNING", record["severity"])
	assert.Equal(t, "data", record["volume"])
}

func TestCoreWithCarriesFields(t *testing.T) {
	hub := startHub(t)
	client := addClient(hub)

	logger := zap.New(NewCore(hub, zapcore.DebugLevel)).With(zap.String("component", "tail"))
	logger.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(receive(t, client.send), &record))
	assert.Equal(t, "tail", record["component"])
}

func TestHandlerStreamsToWebSocketClient(t *testing.T) {
	hub := startHub(t)

	core, _ := observer.New(zap.DebugLevel)
	handler := NewHandler(hub, logging.NewWithZap(zap.New(core)))

	e := echo.New()
	e.GET("/__logtail", handler.HandleLogTail)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/__logtail"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte(`{"message":"hi"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	kind, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	assert.JSONEq(t, `{"message":"hi"}`, string(payload))
}
