// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package websocket is the realtime transport for live games. A single
// Hub owns every connection; clients join a room named by the game PIN
// and receive room-scoped broadcasts. Inbound client messages are
// handed to an InboundHandler, which the live package implements.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/metrics"
)

// Message types exchanged with clients.
const (
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeJoin         = "join"
	MessageTypeJoined       = "joined"
	MessageTypePlayerJoined = "player_joined"
	MessageTypeStartGame    = "start_game"
	MessageTypeNextQuestion = "next_question"
	MessageTypeQuestion     = "question"
	MessageTypeAnswer       = "answer"
	MessageTypeResults      = "results"
	MessageTypeGameEnd      = "game_end"
	MessageTypeError        = "error"
)

// Message is the wire format for all realtime traffic.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// InboundHandler receives messages read from client connections.
// HandleDisconnect fires after a client leaves its room.
type InboundHandler interface {
	HandleMessage(client *Client, msg Message)
	HandleDisconnect(client *Client)
}

// roomMessage targets a broadcast at one room.
type roomMessage struct {
	room string
	msg  Message
}

// Hub maintains the set of active clients and routes room broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	broadcast  chan roomMessage
	Register   chan *Client
	Unregister chan *Client

	handler InboundHandler
}

// NewHub creates an empty hub. The handler may be set later with
// SetHandler, before any client connects.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan roomMessage, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// SetHandler installs the inbound message handler.
func (h *Hub) SetHandler(handler InboundHandler) {
	h.handler = handler
}

// RunWithContext runs the hub event loop until the context is
// cancelled, then closes every client and returns ctx.Err().
//
// Channel selection is prioritized so client state is always settled
// before a broadcast is processed: shutdown first, then lifecycle
// events, then broadcasts.
func (h *Hub) RunWithContext(ctx context.Context) error {
	logging.Info().Msg("websocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case rm := <-h.broadcast:
			h.deliver(rm)
		}
	}
}

// Broadcast queues a message for every client in a room. Non-blocking;
// the message is dropped with a warning when the queue is full.
func (h *Hub) Broadcast(room string, msg Message) {
	select {
	case h.broadcast <- roomMessage{room: room, msg: msg}:
	default:
		logging.Warn().
			Str("room", room).
			Str("message_type", msg.Type).
			Msg("broadcast channel full, dropping message")
	}
}

// Send queues a message for one client. Non-blocking; messages to a
// client the hub has already closed are silently dropped. The read
// pump can call this after the hub dropped its client, so the closed
// check and the channel write must happen under the hub mutex.
func (h *Hub) Send(client *Client, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client.closed {
		return
	}
	select {
	case client.send <- msg:
	default:
		logging.Warn().
			Uint64("client_id", client.id).
			Str("message_type", msg.Type).
			Msg("client send queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// String names the hub in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	if client.room != "" {
		if h.rooms[client.room] == nil {
			h.rooms[client.room] = make(map[*Client]bool)
		}
		h.rooms[client.room][client] = true
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketClients.Set(float64(total))
	logging.Info().
		Int("total_clients", total).
		Str("room", client.room).
		Msg("websocket client connected")
}

// closeClientLocked closes a client's send channel exactly once. The
// caller must hold the write lock; Send checks the flag under the read
// lock, so no write can race the close.
func (h *Hub) closeClientLocked(client *Client) {
	if client.closed {
		return
	}
	client.closed = true
	close(client.send)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, known := h.clients[client]
	if known {
		delete(h.clients, client)
		h.closeClientLocked(client)
		if client.room != "" {
			delete(h.rooms[client.room], client)
			if len(h.rooms[client.room]) == 0 {
				delete(h.rooms, client.room)
			}
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !known {
		return
	}

	metrics.WebsocketClients.Set(float64(total))
	logging.Info().
		Int("total_clients", total).
		Str("room", client.room).
		Msg("websocket client disconnected")

	if h.handler != nil {
		h.handler.HandleDisconnect(client)
	}
}

// deliver fans a message out to a room in deterministic client order.
// Clients whose queue is full are dropped; their read pump notices the
// closed channel and unregisters.
func (h *Hub) deliver(rm roomMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[rm.room]
	clients := make([]*Client, 0, len(members))
	for client := range members {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- rm.msg:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		h.closeClientLocked(client)
		delete(h.clients, client)
		delete(members, client)
	}
	if len(members) == 0 {
		delete(h.rooms, rm.room)
	}
}

// shutdown closes every client in deterministic order.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		h.closeClientLocked(client)
		delete(h.clients, client)
	}
	h.rooms = make(map[string]map[*Client]bool)
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}

	metrics.WebsocketClients.Set(0)
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", len(clients)).
		Msg("websocket hub stopped")
}
