package sse

import (
	"context"
	"sync"

	"ms-barpos/internal/models"
)

// AllEvents subscribes to updates of every event.
const AllEvents = ""

// StatsEmitter manages SSE connections and broadcasting of stats updates
type StatsEmitter struct {
	// key: eventID (or AllEvents), value: client channels
	clients     map[string][]chan models.StatsUpdate
	clientMutex sync.RWMutex
}

// NewStatsEmitter creates a new SSE emitter for stats updates
func NewStatsEmitter() *StatsEmitter {
	return &StatsEmitter{
		clients: make(map[string][]chan models.StatsUpdate),
	}
}

// SubscribeToEvent adds a client to an event's stats updates. The channel is
// closed once ctx is done.
func (e *StatsEmitter) SubscribeToEvent(ctx context.Context, eventID string) <-chan models.StatsUpdate {
	clientChan := make(chan models.StatsUpdate, 10)

	e.clientMutex.Lock()
	e.clients[eventID] = append(e.clients[eventID], clientChan)
	e.clientMutex.Unlock()

	// Remove client when context is done
	go func() {
		<-ctx.Done()
		e.removeClient(eventID, clientChan)
	}()

	return clientChan
}

// Emit broadcasts an update to the event's subscribers and to AllEvents
// subscribers
func (e *StatsEmitter) Emit(update models.StatsUpdate) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	send(e.clients[update.EventID], update)
	if update.EventID != AllEvents {
		send(e.clients[AllEvents], update)
	}
}

func send(clients []chan models.StatsUpdate, update models.StatsUpdate) {
	for _, clientChan := range clients {
		// Non-blocking send so one slow client cannot stall the others
		select {
		case clientChan <- update:
		default:
		}
	}
}

func (e *StatsEmitter) removeClient(eventID string, clientChan chan models.StatsUpdate) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	clients := e.clients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	// Clean up map entry if no more clients
	if len(e.clients[eventID]) == 0 {
		delete(e.clients, eventID)
	}
}

// ClientCount returns the number of clients currently subscribed to an event
func (e *StatsEmitter) ClientCount(eventID string) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[eventID])
}
