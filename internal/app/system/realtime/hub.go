// internal/app/system/realtime/hub.go

// Package realtime fans newly persisted chat messages out to live
// subscribers. It is the push half of the chat contract: history is a
// pull read from the message store; everything sent after a subscription
// opens is delivered through here, per subscriber, in publish order,
// exactly once.
package realtime

import (
	"sync"

	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// sendBufSize is the per-subscriber buffer. A subscriber that falls this
// far behind is detached rather than allowed to stall every other
// subscriber on the chat.
const sendBufSize = 256

// ChatKey identifies one chat's fan-out group.
func ChatKey(projectID primitive.ObjectID, chatID string) string {
	return projectID.Hex() + "/" + chatID
}

// Subscription is one live listener on a chat. Receive from C until it is
// closed; call Cancel when done. Cancel is idempotent and safe to call
// concurrently with delivery.
type Subscription struct {
	hub  *Hub
	key  string
	ch   chan models.Message
	once sync.Once
}

// C yields messages in publish order. The channel is closed when the
// subscription is cancelled or the subscriber is detached as a slow
// consumer.
func (s *Subscription) C() <-chan models.Message { return s.ch }

// Cancel detaches the subscription and releases its hub slot. No
// messages are delivered after Cancel returns.
func (s *Subscription) Cancel() {
	s.hub.remove(s)
}

// Hub routes published messages to all current subscribers of each chat.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
	log  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscription]struct{}),
		log:  logger,
	}
}

// Subscribe registers a listener for a chat. The caller owns the
// returned subscription and must Cancel it.
func (h *Hub) Subscribe(projectID primitive.ObjectID, chatID string) *Subscription {
	s := &Subscription{
		hub: h,
		key: ChatKey(projectID, chatID),
		ch:  make(chan models.Message, sendBufSize),
	}

	h.mu.Lock()
	group, ok := h.subs[s.key]
	if !ok {
		group = make(map[*Subscription]struct{})
		h.subs[s.key] = group
	}
	group[s] = struct{}{}
	h.mu.Unlock()

	return s
}

// Publish delivers msg to every subscriber of its chat. Callers serialize
// Publish per chat (the chat store holds its per-chat send lock across
// persist+publish), so delivery order equals seq order.
func (h *Hub) Publish(msg models.Message) {
	key := ChatKey(msg.ProjectID, msg.ChatID)

	h.mu.Lock()
	defer h.mu.Unlock()

	group := h.subs[key]
	for s := range group {
		select {
		case s.ch <- msg:
		default:
			// Slow consumer: detach so one stalled client cannot block
			// or grow memory for the chat.
			delete(group, s)
			s.once.Do(func() { close(s.ch) })
			if h.log != nil {
				h.log.Warn("detached slow chat subscriber", zap.String("chat", key))
			}
		}
	}
	if len(group) == 0 {
		delete(h.subs, key)
	}
}

// Subscribers returns the number of live subscriptions for a chat.
func (h *Hub) Subscribers(projectID primitive.ObjectID, chatID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ChatKey(projectID, chatID)])
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	if group, ok := h.subs[s.key]; ok {
		delete(group, s)
		if len(group) == 0 {
			delete(h.subs, s.key)
		}
	}
	h.mu.Unlock()
	s.once.Do(func() { close(s.ch) })
}
