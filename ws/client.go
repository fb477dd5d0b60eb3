package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"taskflow_backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// AccessChecker answers whether a user may subscribe to a project's or
// a task's room. It is implemented by the project service so the hub
// stays free of persistence concerns.
type AccessChecker interface {
	CanAccessProject(userID, projectID string) bool
	CanAccessTask(userID, taskID string) (projectID string, ok bool)
}

// inboundMessage is what clients send to manage their subscriptions.
type inboundMessage struct {
	Event     string `json:"event"`
	ProjectID string `json:"projectId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
}

// Client is one websocket connection owned by an authenticated user.
type Client struct {
	ID     string
	UserID string

	hub    *Hub
	access AccessChecker
	conn   *websocket.Conn
	send   chan Event

	// rooms is the set of room keys this client holds. Guarded by the
	// hub mutex.
	rooms map[string]struct{}
}

func NewClient(hub *Hub, access AccessChecker, conn *websocket.Conn, userID string) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		hub:    hub,
		access: access,
		conn:   conn,
		send:   make(chan Event, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

// ReadPump consumes subscription messages until the connection dies,
// then unregisters the client. Runs in its own goroutine per client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws unexpected close", "client_id", c.ID, "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Debug("ws malformed message ignored", "client_id", c.ID, "error", err)
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage applies one subscription command. Join requests are
// authorized against project membership; an unauthorized join is
// ignored rather than answered, matching the fire-and-forget contract.
func (c *Client) handleMessage(msg inboundMessage) {
	switch msg.Event {
	case "join-project":
		if msg.ProjectID == "" || !c.access.CanAccessProject(c.UserID, msg.ProjectID) {
			logger.Debug("ws join-project denied", "user_id", c.UserID, "project_id", msg.ProjectID)
			return
		}
		c.hub.Join(c, RoomProject, msg.ProjectID)
	case "leave-project":
		if msg.ProjectID != "" {
			c.hub.Leave(c, RoomProject, msg.ProjectID)
		}
	case "join-task":
		if msg.TaskID == "" {
			return
		}
		if _, ok := c.access.CanAccessTask(c.UserID, msg.TaskID); !ok {
			logger.Debug("ws join-task denied", "user_id", c.UserID, "task_id", msg.TaskID)
			return
		}
		c.hub.Join(c, RoomTask, msg.TaskID)
	case "leave-task":
		if msg.TaskID != "" {
			c.hub.Leave(c, RoomTask, msg.TaskID)
		}
	default:
		logger.Debug("ws unknown event ignored", "client_id", c.ID, "event", msg.Event)
	}
}

// WritePump serializes queued events onto the wire and keeps the
// connection alive with pings. Runs in its own goroutine per client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
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
