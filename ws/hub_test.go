package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID string) *Client {
	return NewClient(hub, nil, nil, userID)
}

func receivedEvents(c *Client) []Event {
	var events []Event
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestRegisterPutsClientInUserRoom(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "user-1")
	hub.Register(client)

	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 1, hub.RoomSize(RoomUser, "user-1"))

	hub.Broadcast(RoomUser, "user-1", "notification:new", map[string]string{"id": "n1"})

	events := receivedEvents(client)
	require.Len(t, events, 1)
	assert.Equal(t, "notification:new", events[0].Name)
}

func TestJoinThenBroadcastDelivers(t *testing.T) {
	hub := NewHub()
	member := newTestClient(hub, "user-1")
	outsider := newTestClient(hub, "user-2")
	hub.Register(member)
	hub.Register(outsider)

	hub.Join(member, RoomProject, "p1")
	hub.Broadcast(RoomProject, "p1", "task:created", map[string]string{"id": "t1"})

	require.Len(t, receivedEvents(member), 1)
	assert.Empty(t, receivedEvents(outsider))
}

func TestLeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "user-1")
	hub.Register(client)

	hub.Join(client, RoomTask, "t1")
	hub.Leave(client, RoomTask, "t1")
	hub.Broadcast(RoomTask, "t1", "comment:created", nil)

	assert.Empty(t, receivedEvents(client))
	assert.Equal(t, 0, hub.RoomSize(RoomTask, "t1"))
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "user-1")
	hub.Register(client)

	hub.Join(client, RoomProject, "p1")
	hub.Join(client, RoomProject, "p1")

	hub.Broadcast(RoomProject, "p1", "task:updated", nil)
	assert.Len(t, receivedEvents(client), 1)
}

func TestJoinUnregisteredClientIgnored(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "user-1")

	hub.Join(client, RoomProject, "p1")
	assert.Equal(t, 0, hub.RoomSize(RoomProject, "p1"))
}

func TestUnregisterRemovesFromAllRooms(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "user-1")
	hub.Register(client)
	hub.Join(client, RoomProject, "p1")
	hub.Join(client, RoomTask, "t1")

	hub.Unregister(client)

	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 0, hub.RoomSize(RoomUser, "user-1"))
	assert.Equal(t, 0, hub.RoomSize(RoomProject, "p1"))
	assert.Equal(t, 0, hub.RoomSize(RoomTask, "t1"))

	// The send channel is closed so the write pump terminates.
	_, open := <-client.send
	assert.False(t, open)

	// A second unregister is a no-op, not a double close.
	hub.Unregister(client)
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Broadcast(RoomProject, "ghost", "task:created", nil)
	assert.Equal(t, 0, hub.RoomSize(RoomProject, "ghost"))
}

func TestEmitHelpersTargetNamespacedRooms(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "user-1")
	hub.Register(client)
	hub.Join(client, RoomProject, "p1")
	hub.Join(client, RoomTask, "t1")

	hub.EmitToUser("user-1", "a", nil)
	hub.EmitToProject("p1", "b", nil)
	hub.EmitToTask("t1", "c", nil)

	events := receivedEvents(client)
	require.Len(t, events, 3)
	assert.Equal(t, "a", events[0].Name)
	assert.Equal(t, "b", events[1].Name)
	assert.Equal(t, "c", events[2].Name)
}
