package ws

import (
	"sync"

	"taskflow_backend/internal/logger"
)

// RoomKind namespaces room identifiers.
type RoomKind string

const (
	RoomProject RoomKind = "project"
	RoomTask    RoomKind = "task"
	RoomUser    RoomKind = "user"
)

func roomKey(kind RoomKind, id string) string {
	return string(kind) + ":" + id
}

// Event is the envelope pushed to clients.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Hub routes named events to every client in a target room. It is
// created once at startup and injected into collaborators; membership
// mutations and broadcasts are serialized by a single mutex.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// Register adds a connection and puts it in its user's private room, so
// notification events reach the user without an explicit join.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = struct{}{}
	h.joinLocked(client, RoomUser, client.UserID)
	logger.Debug("ws client registered", "client_id", client.ID, "user_id", client.UserID, "total", len(h.clients))
}

// Unregister drops the connection from every room it holds and closes
// its send channel. Other room members are not told.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for key := range client.rooms {
		h.leaveRoomLocked(client, key)
	}
	close(client.send)
	logger.Debug("ws client unregistered", "client_id", client.ID, "total", len(h.clients))
}

// Join adds the connection to room kind:id. Idempotent.
func (h *Hub) Join(client *Client, kind RoomKind, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	h.joinLocked(client, kind, id)
}

// Leave removes the connection from room kind:id; no-op if it was not
// a member.
func (h *Hub) Leave(client *Client, kind RoomKind, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := roomKey(kind, id)
	h.leaveRoomLocked(client, key)
	delete(client.rooms, key)
}

func (h *Hub) joinLocked(client *Client, kind RoomKind, id string) {
	key := roomKey(kind, id)
	room, ok := h.rooms[key]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[key] = room
	}
	room[client] = struct{}{}
	client.rooms[key] = struct{}{}
}

func (h *Hub) leaveRoomLocked(client *Client, key string) {
	room, ok := h.rooms[key]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, key)
	}
}

// Broadcast delivers the event to every member of room kind:id.
// Fire-and-forget: there is no acknowledgment and no retry. A member
// whose send buffer is full is dropped, as a stalled reader would
// otherwise block every subsequent broadcast to its rooms.
func (h *Hub) Broadcast(kind RoomKind, id, event string, payload any) {
	h.mu.RLock()
	room := h.rooms[roomKey(kind, id)]
	var slow []*Client
	for client := range room {
		select {
		case client.send <- Event{Name: event, Payload: payload}:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("ws client send buffer full, dropping", "client_id", client.ID, "user_id", client.UserID)
		h.Unregister(client)
		client.conn.Close()
	}
}

// EmitToUser, EmitToProject and EmitToTask satisfy the Broadcaster
// interface the services depend on.

func (h *Hub) EmitToUser(userID, event string, payload any) {
	h.Broadcast(RoomUser, userID, event, payload)
}

func (h *Hub) EmitToProject(projectID, event string, payload any) {
	h.Broadcast(RoomProject, projectID, event, payload)
}

func (h *Hub) EmitToTask(taskID, event string, payload any) {
	h.Broadcast(RoomTask, taskID, event, payload)
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of connections in room kind:id.
func (h *Hub) RoomSize(kind RoomKind, id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey(kind, id)])
}
