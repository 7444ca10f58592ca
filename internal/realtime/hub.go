// Package realtime fans task and team events out to websocket clients
// subscribed to a team.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nikhil/teamtasks/internal/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Clients only listen; anything they send is read and discarded.
	maxMessageSize = 512

	sendBuffer = 256
)

const (
	EventTaskCreated       = "task.created"
	EventTaskAssigned      = "task.assigned"
	EventTaskStatusChanged = "task.status_changed"
	EventMemberRemoved     = "team.member_removed"
)

// Event is the JSON frame pushed to every subscriber of TeamID.
type Event struct {
	Type    string `json:"type"`
	TeamID  string `json:"team_id"`
	ActorID string `json:"actor_id"`
	// UserID is the user the event is about, when it is not the actor.
	UserID  string `json:"user_id,omitempty"`
	Payload any    `json:"payload,omitempty"`
	At      int64  `json:"at"`
}

// Publisher is what services depend on. Publishing never fails the caller.
type Publisher interface {
	Publish(ev Event)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// Hub keeps the websocket clients of every team.
type Hub struct {
	mu    sync.Mutex
	teams map[string]map[*Client]struct{}
	log   *logger.Logger
}

// Client is one websocket connection subscribed to a team.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	UserID string
	TeamID string
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		teams: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

// Attach subscribes conn to teamID and starts its pumps.
func (h *Hub) Attach(conn *websocket.Conn, teamID, userID string) *Client {
	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		UserID: userID,
		TeamID: teamID,
	}

	h.mu.Lock()
	if _, ok := h.teams[teamID]; !ok {
		h.teams[teamID] = make(map[*Client]struct{})
	}
	h.teams[teamID][c] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("Realtime client connected", "team_id", teamID, "user_id", userID)

	go c.writePump()
	go c.readPump()
	return c
}

// Publish sends ev to every client of ev.TeamID. Clients whose buffer is full
// are disconnected. After a member is removed their connections to that team
// are closed.
func (h *Hub) Publish(ev Event) {
	if ev.At == 0 {
		ev.At = time.Now().Unix()
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("Failed to encode realtime event", "type", ev.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.teams[ev.TeamID] {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("Dropping slow realtime client", "team_id", c.TeamID, "user_id", c.UserID)
			h.removeLocked(c)
		}
	}

	if ev.Type == EventMemberRemoved && ev.UserID != "" {
		for c := range h.teams[ev.TeamID] {
			if c.UserID == ev.UserID {
				h.removeLocked(c)
			}
		}
	}
}

// Connected returns how many clients are subscribed to teamID.
func (h *Hub) Connected(teamID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.teams[teamID])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.teams {
		for c := range clients {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes c.send exactly once; callers hold h.mu.
func (h *Hub) removeLocked(c *Client) {
	clients, ok := h.teams[c.TeamID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.teams, c.TeamID)
	}
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("Realtime connection closed unexpectedly", "user_id", c.UserID, "error", err)
			}
			return
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
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
