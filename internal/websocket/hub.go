package websocket

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// MessageType is the type field of every frame on the feed.
type MessageType string

const (
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"

	TypeSubscribe   MessageType = "subscribe"
	TypeUnsubscribe MessageType = "unsubscribe"
	TypeSubscribed  MessageType = "subscribed"

	TypeCreated MessageType = "created"
	TypeUpdated MessageType = "updated"
	TypeDeleted MessageType = "deleted"
)

const (
	TopicPosts    = "posts"
	TopicComments = "comments"

	postTopicPrefix = "post:"
)

// PostTopic carries comment events for a single post.
func PostTopic(postID uint) string {
	return postTopicPrefix + strconv.FormatUint(uint64(postID), 10)
}

func ValidTopic(topic string) bool {
	switch topic {
	case TopicPosts, TopicComments:
		return true
	}
	rest, ok := strings.CutPrefix(topic, postTopicPrefix)
	if !ok {
		return false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	return err == nil && id > 0
}

// Message is a frame sent by a client.
type Message struct {
	Type  MessageType `json:"type"`
	Topic string      `json:"topic,omitempty"`
}

// Event is a frame pushed to clients.
type Event struct {
	Type      MessageType `json:"type"`
	Topic     string      `json:"topic,omitempty"`
	Resource  string      `json:"resource,omitempty"`
	ID        uint        `json:"id,omitempty"`
	Data      any         `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type Client struct {
	ID     uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	Topics map[string]bool
	Hub    *Hub
	mu     sync.RWMutex
	closed bool
}

type Hub struct {
	clients map[uuid.UUID]*Client

	// subscribers per topic
	topics map[string]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event

	mu     sync.RWMutex
	logger *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(logger *logrus.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		topics:     make(map[string]map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 256),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run serves registrations and broadcasts until Stop.
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-ticker.C:
			h.ping()
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		client.closeSend()
		client.Conn.Close()
		delete(h.clients, id)
	}
	h.topics = make(map[string]map[uuid.UUID]*Client)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Publish queues an event for the subscribers of its topic. It never blocks the caller.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- &event:
	case <-h.ctx.Done():
	default:
		h.logger.WithField("topic", event.Topic).Warn("feed broadcast queue full, event dropped")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.logger.WithField("client_id", client.ID).Debug("feed client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	client.mu.RLock()
	for topic := range client.Topics {
		h.removeFromTopicUnsafe(client.ID, topic)
	}
	client.mu.RUnlock()

	delete(h.clients, client.ID)
	client.closeSend()
	h.logger.WithField("client_id", client.ID).Debug("feed client unregistered")
}

func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[uuid.UUID]*Client)
	}
	h.topics[topic][client.ID] = client

	client.mu.Lock()
	client.Topics[topic] = true
	client.mu.Unlock()
}

func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromTopicUnsafe(client.ID, topic)
	client.mu.Lock()
	delete(client.Topics, topic)
	client.mu.Unlock()
}

func (h *Hub) removeFromTopicUnsafe(clientID uuid.UUID, topic string) {
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, clientID)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Subscribers reports how many clients listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).WithField("topic", event.Topic).Error("encode feed event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.topics[event.Topic] {
		select {
		case client.Send <- data:
		default:
			h.logger.WithField("client_id", client.ID).Warn("feed client send channel full")
		}
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(Event{Type: TypePing, Timestamp: time.Now()})
	if err != nil {
		return
	}
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}
