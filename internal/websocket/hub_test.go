// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/quizdeck/quizdeck/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// waitFor polls a condition until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// startHub runs the hub loop for the duration of the test.
func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		errCh <- hub.RunWithContext(ctx)
	}()
	t.Cleanup(cancel)
	return hub, cancel, errCh
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub, _, _ := startHub(t)

	client := NewClient(hub, nil, "123456", RolePlayer, "alice")
	hub.Register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client never registered")

	if hub.RoomSize("123456") != 1 {
		t.Errorf("RoomSize = %d, want 1", hub.RoomSize("123456"))
	}

	hub.Unregister <- client
	waitFor(t, func() bool { return hub.ClientCount() == 0 }, "client never unregistered")

	if hub.RoomSize("123456") != 0 {
		t.Errorf("room should be empty after unregister, size %d", hub.RoomSize("123456"))
	}

	// The hub closes the send channel of a removed client.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected the send channel to be closed, got a message")
		}
	case <-time.After(time.Second):
		t.Error("send channel was not closed")
	}
}

func TestHub_BroadcastIsRoomScoped(t *testing.T) {
	hub, _, _ := startHub(t)

	inRoom := NewClient(hub, nil, "111111", RolePlayer, "alice")
	otherRoom := NewClient(hub, nil, "222222", RolePlayer, "bob")
	hub.Register <- inRoom
	hub.Register <- otherRoom
	waitFor(t, func() bool { return hub.ClientCount() == 2 }, "clients never registered")

	hub.Broadcast("111111", Message{Type: MessageTypeQuestion, Data: "q1"})

	select {
	case msg := <-inRoom.send:
		if msg.Type != MessageTypeQuestion {
			t.Errorf("unexpected message type %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("in-room client never received the broadcast")
	}

	select {
	case msg := <-otherRoom.send:
		t.Errorf("other-room client received %q", msg.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastReachesWholeRoom(t *testing.T) {
	hub, _, _ := startHub(t)

	host := NewClient(hub, nil, "123456", RoleHost, "")
	alice := NewClient(hub, nil, "123456", RolePlayer, "alice")
	hub.Register <- host
	hub.Register <- alice
	waitFor(t, func() bool { return hub.RoomSize("123456") == 2 }, "room never filled")

	hub.Broadcast("123456", Message{Type: MessageTypeGameEnd})

	for _, client := range []*Client{host, alice} {
		select {
		case msg := <-client.send:
			if msg.Type != MessageTypeGameEnd {
				t.Errorf("unexpected message type %q", msg.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d never received the broadcast", client.ID())
		}
	}
}

func TestHub_SendTargetsOneClient(t *testing.T) {
	hub, _, _ := startHub(t)

	client := NewClient(hub, nil, "123456", RolePlayer, "alice")
	hub.Register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client never registered")

	hub.Send(client, Message{Type: MessageTypeError, Data: "nope"})

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeError {
			t.Errorf("unexpected message type %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("client never received the message")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, cancel, errCh := startHub(t)

	client := NewClient(hub, nil, "123456", RolePlayer, "alice")
	hub.Register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client never registered")

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub never stopped")
	}

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected the send channel to be closed on shutdown")
		}
	default:
		// A closed channel is immediately readable; reaching here means
		// it was never closed.
		t.Error("send channel was not closed on shutdown")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients after shutdown, got %d", hub.ClientCount())
	}
}

func TestHub_SendAfterClientClosedDoesNotPanic(t *testing.T) {
	hub, _, _ := startHub(t)

	client := NewClient(hub, nil, "123456", RolePlayer, "alice")
	hub.Register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client never registered")

	hub.Unregister <- client
	waitFor(t, func() bool { return hub.ClientCount() == 0 }, "client never unregistered")

	// The read pump can race the hub and still try to reply after the
	// hub closed the client; the message must be dropped, not panic.
	hub.Send(client, Message{Type: MessageTypePong})
}

func TestHub_SendAfterSlowClientDroppedDoesNotPanic(t *testing.T) {
	hub, _, _ := startHub(t)

	client := NewClient(hub, nil, "123456", RolePlayer, "alice")
	hub.Register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client never registered")

	// Fill the client's queue so the next broadcast drops it.
	for i := 0; i < cap(client.send); i++ {
		client.send <- Message{Type: MessageTypeQuestion}
	}
	hub.Broadcast("123456", Message{Type: MessageTypeQuestion})
	waitFor(t, func() bool { return hub.ClientCount() == 0 }, "slow client never dropped")

	hub.Send(client, Message{Type: MessageTypePong})
}

// disconnectRecorder records disconnect callbacks from the hub.
type disconnectRecorder struct {
	disconnected chan *Client
}

func (d *disconnectRecorder) HandleMessage(*Client, Message) {}

func (d *disconnectRecorder) HandleDisconnect(c *Client) {
	d.disconnected <- c
}

func TestHub_NotifiesHandlerOnDisconnect(t *testing.T) {
	hub, _, _ := startHub(t)
	rec := &disconnectRecorder{disconnected: make(chan *Client, 1)}
	hub.SetHandler(rec)

	client := NewClient(hub, nil, "123456", RolePlayer, "alice")
	hub.Register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client never registered")

	hub.Unregister <- client

	select {
	case got := <-rec.disconnected:
		if got != client {
			t.Error("handler saw a different client")
		}
	case <-time.After(time.Second):
		t.Fatal("handler never notified of the disconnect")
	}
}

func TestClient_Accessors(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, "654321", RoleHost, "")

	if client.Room() != "654321" {
		t.Errorf("Room() = %q", client.Room())
	}
	if client.Role() != RoleHost {
		t.Errorf("Role() = %q", client.Role())
	}
	if client.Name() != "" {
		t.Errorf("Name() = %q", client.Name())
	}
	if client.ID() == 0 {
		t.Error("expected a non-zero client ID")
	}

	other := NewClient(hub, nil, "654321", RolePlayer, "bob")
	if other.ID() <= client.ID() {
		t.Error("expected IDs to increase monotonically")
	}
}
