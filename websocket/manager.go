package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Manager fans feed events out to every connected client.
type Manager struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	log        logrus.FieldLogger
}

type Client struct {
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	manager *Manager
}

// NewManager returns a Manager accepting upgrades from allowedOrigins. An
// empty list or "*" accepts any origin.
func NewManager(allowedOrigins []string, log logrus.FieldLogger) *Manager {
	m := &Manager{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
	m.upgrader = websocket.Upgrader{
		CheckOrigin:     originChecker(allowedOrigins),
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return m
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(set) == 0 || set[origin]
	}
}

// Start runs the hub until ctx is cancelled, then disconnects every client.
func (m *Manager) Start(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			for client := range m.clients {
				delete(m.clients, client)
				close(client.send)
			}
			m.mu.Unlock()
			return

		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			n := len(m.clients)
			m.mu.Unlock()
			m.log.WithFields(logrus.Fields{"userId": client.userID, "clients": n}).Debug("WebSocket client registered")

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
			}
			n := len(m.clients)
			m.mu.Unlock()
			m.log.WithFields(logrus.Fields{"userId": client.userID, "clients": n}).Debug("WebSocket client unregistered")

		case message := <-m.broadcast:
			m.mu.Lock()
			for client := range m.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer
					close(client.send)
					delete(m.clients, client)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Publish queues an event for every client. It never blocks; events are
// dropped when the hub is saturated.
func (m *Manager) Publish(eventType string, payload any) {
	msg, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		m.log.WithError(err).WithField("type", eventType).Error("Error marshaling WebSocket event")
		return
	}
	select {
	case m.broadcast <- msg:
	default:
		m.log.WithField("type", eventType).Warn("WebSocket broadcast queue full, dropping event")
	}
}

func (m *Manager) ConnectedClients() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// ServeWS upgrades an authenticated request and attaches the connection to
// the hub.
func (m *Manager) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &Client{
		conn:    conn,
		userID:  userID,
		send:    make(chan []byte, sendBuffer),
		manager: m,
	}
	select {
	case m.register <- client:
	case <-m.done:
		conn.Close()
		return
	}

	client.enqueue(Event{Type: "connected", Payload: map[string]any{
		"userId": userID,
		"time":   time.Now().Unix(),
	}})

	go client.writePump()
	go client.readPump()
}

func (c *Client) enqueue(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	defer func() {
		// send was closed by the hub
		_ = recover()
	}()
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.log.WithError(err).WithField("userId", c.userID).Debug("WebSocket read error")
			}
			return
		}

		var in struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &in); err != nil {
			continue
		}
		if in.Type == "ping" {
			c.enqueue(Event{Type: "pong", Payload: map[string]any{"time": time.Now().Unix()}})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
