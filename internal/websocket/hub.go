package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/isdelr/expense-tracker-be/internal/notify"
	"github.com/rs/zerolog/log"
)

// delivery is a message addressed to every connection of one owner, or
// to a single client when client is set.
type delivery struct {
	ownerID string
	client  *Client
	message []byte
}

// Hub maintains the set of active clients and routes messages to the
// connections of the owner they concern. All state is owned by Run.
type Hub struct {
	// Registered clients, grouped by owner.
	owners map[string]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	publish  chan delivery
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		owners:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan delivery, 64),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			if h.owners[client.OwnerID] == nil {
				h.owners[client.OwnerID] = make(map[*Client]bool)
			}
			h.owners[client.OwnerID][client] = true
			log.Info().Str("user_id", client.OwnerID).Int("total_clients", h.count()).Msg("Client connected")
		case client := <-h.unregister:
			if h.remove(client) {
				log.Info().Str("user_id", client.OwnerID).Int("total_clients", h.count()).Msg("Client disconnected")
			}
		case d := <-h.publish:
			for client := range h.owners[d.ownerID] {
				if d.client != nil && d.client != client {
					continue
				}
				select {
				case client.Send <- d.message:
				default:
					// Slow consumer: drop it rather than block every owner.
					h.remove(client)
				}
			}
		case <-h.done:
			for _, clients := range h.owners {
				for client := range clients {
					close(client.Send)
				}
			}
			h.owners = make(map[string]map[*Client]bool)
			return
		}
	}
}

// Stop ends the loop and closes every client's send channel. Run must
// have been started.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendTo queues a message for one client only.
func (h *Hub) SendTo(client *Client, message []byte) {
	h.enqueue(context.Background(), delivery{ownerID: client.OwnerID, client: client, message: message})
}

// Notify pushes an expense change to the owner's live connections.
func (h *Hub) Notify(ctx context.Context, event notify.ExpenseEvent) error {
	message, err := json.Marshal(NewExpenseMessage(event))
	if err != nil {
		return fmt.Errorf("marshal websocket message: %w", err)
	}
	return h.enqueue(ctx, delivery{ownerID: event.OwnerID, message: message})
}

// enqueue hands d to the Run loop. Once the hub is stopped it is dropped.
func (h *Hub) enqueue(ctx context.Context, d delivery) error {
	select {
	case h.publish <- d:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) remove(client *Client) bool {
	clients, ok := h.owners[client.OwnerID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.owners, client.OwnerID)
	}
	return true
}

func (h *Hub) count() int {
	total := 0
	for _, clients := range h.owners {
		total += len(clients)
	}
	return total
}
