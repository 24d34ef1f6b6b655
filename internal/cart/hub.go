package cart

import (
	"sync"

	"wellspring/internal/model"
)

const subscriberBuffer = 8

// Hub fans cart changes out to subscribers of the same session, such as the
// header badge stream. Publish never blocks: a subscriber whose buffer is full
// misses intermediate updates and only sees later ones.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan model.CartResponse
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan model.CartResponse)}
}

// Subscribe registers for changes of session. The returned cancel func
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(session string) (<-chan model.CartResponse, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan model.CartResponse, subscriberBuffer)
	if h.subs[session] == nil {
		h.subs[session] = make(map[int]chan model.CartResponse)
	}
	h.subs[session][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subs[session], id)
			if len(h.subs[session]) == 0 {
				delete(h.subs, session)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers c to every current subscriber of session.
func (h *Hub) Publish(session string, c model.Cart) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.subs[session]) == 0 {
		return
	}

	summary := Summarise(c)
	for _, ch := range h.subs[session] {
		select {
		case ch <- summary:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers of session.
func (h *Hub) Subscribers(session string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[session])
}
