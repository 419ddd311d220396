package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCounter int

func (c staticCounter) UnreadCount(context.Context) (int, error) { return int(c), nil }

func dialNotifier(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
}

func readUnread(t *testing.T, conn *websocket.Conn) UnreadMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg UnreadMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestNotifier_PushesCounts(t *testing.T) {
	n := NewNotifier(staticCounter(4), nil, NewMetrics(), logging.Discard())
	srv := httptest.NewServer(n)
	defer srv.Close()
	defer n.Close()

	conn, _, err := dialNotifier(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, UnreadMessage{Type: "unread", Count: 4}, readUnread(t, conn))
	require.Eventually(t, func() bool { return n.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	n.UnreadChanged(context.Background(), 7)
	assert.Equal(t, 7, readUnread(t, conn).Count)

	conn.Close()
	assert.Eventually(t, func() bool { return n.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestNotifier_Origin(t *testing.T) {
	n := NewNotifier(staticCounter(0), []string{"https://admin.example.com"}, nil, logging.Discard())
	srv := httptest.NewServer(n)
	defer srv.Close()
	defer n.Close()

	conn, _, err := dialNotifier(t, srv, "https://admin.example.com")
	require.NoError(t, err)
	conn.Close()

	conn, _, err = dialNotifier(t, srv, srv.URL)
	require.NoError(t, err)
	conn.Close()

	_, resp, err := dialNotifier(t, srv, "https://evil.example.com")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
