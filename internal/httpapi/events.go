package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/tapestry-labs/tapestry/internal/library"
	"github.com/tapestry-labs/tapestry/internal/observability"
)

// Broadcaster fans library change events out to connected websocket clients.
// Slow clients have events dropped rather than blocking the mutation path.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[chan library.Event]struct{}
	metrics *observability.Metrics
}

func NewBroadcaster(metrics *observability.Metrics) *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan library.Event]struct{}),
		metrics: metrics,
	}
}

// Publish is the library's notify hook. It must never block.
func (b *Broadcaster) Publish(ev library.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
			// Client is not keeping up; it will resync on its next fetch.
		}
	}
}

func (b *Broadcaster) subscribe() chan library.Event {
	ch := make(chan library.Event, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	count := len(b.clients)
	b.mu.Unlock()
	b.metrics.SetEventClients(count)
	return ch
}

func (b *Broadcaster) unsubscribe(ch chan library.Event) {
	b.mu.Lock()
	delete(b.clients, ch)
	count := len(b.clients)
	b.mu.Unlock()
	b.metrics.SetEventClients(count)
}

func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.events.subscribe()
	defer s.events.unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Drain reads so pings and the close handshake are processed.
		conn.SetReadLimit(1 << 10)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
