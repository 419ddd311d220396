package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// UnreadCounter supplies the count sent to a client when it connects.
type UnreadCounter interface {
	UnreadCount(ctx context.Context) (int, error)
}

// UnreadMessage is pushed to live clients.
type UnreadMessage struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Notifier pushes the unread message count to connected dashboard clients
// over websockets.
type Notifier struct {
	counter  UnreadCounter
	metrics  *Metrics
	logger   logging.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewNotifier accepts upgrades from the request's own host and from
// allowedOrigins. metrics may be nil.
func NewNotifier(counter UnreadCounter, allowedOrigins []string, metrics *Metrics, l logging.Logger) *Notifier {
	n := &Notifier{
		counter: counter,
		metrics: metrics,
		logger:  l.With("module", "notifier"),
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
	n.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, origin) {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
	return n
}

// ServeHTTP upgrades the connection, sends the current count and keeps the
// client registered until it disconnects.
func (n *Notifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.logger.Debug(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	lock := &sync.Mutex{}
	n.mu.Lock()
	n.clients[conn] = lock
	n.mu.Unlock()
	n.clientsChanged()

	if count, err := n.counter.UnreadCount(r.Context()); err == nil {
		n.send(conn, lock, count)
	} else {
		n.logger.Warn(r.Context(), "unread count unavailable", "error", err)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	n.drop(conn)
}

// UnreadChanged broadcasts count to every client.
func (n *Notifier) UnreadChanged(_ context.Context, count int) {
	n.mu.RLock()
	clients := make(map[*websocket.Conn]*sync.Mutex, len(n.clients))
	for c, l := range n.clients {
		clients[c] = l
	}
	n.mu.RUnlock()

	for c, l := range clients {
		n.send(c, l, count)
	}
}

func (n *Notifier) send(conn *websocket.Conn, lock *sync.Mutex, count int) {
	data, err := json.Marshal(UnreadMessage{Type: "unread", Count: count})
	if err != nil {
		return
	}

	lock.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.WriteMessage(websocket.TextMessage, data)
	lock.Unlock()

	if err != nil {
		n.drop(conn)
	}
}

func (n *Notifier) drop(conn *websocket.Conn) {
	n.mu.Lock()
	_, ok := n.clients[conn]
	delete(n.clients, conn)
	n.mu.Unlock()

	if ok {
		conn.Close()
		n.clientsChanged()
	}
}

// ClientCount returns the number of connected clients.
func (n *Notifier) ClientCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.clients)
}

// Close disconnects every client.
func (n *Notifier) Close() {
	n.mu.Lock()
	for c := range n.clients {
		c.Close()
		delete(n.clients, c)
	}
	n.mu.Unlock()
	n.clientsChanged()
}

func (n *Notifier) clientsChanged() {
	if n.metrics != nil {
		n.metrics.LiveClients(n.ClientCount())
	}
}
