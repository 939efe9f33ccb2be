package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// topicMessage carries a message addressed to the subscribers of one topic.
type topicMessage struct {
	topic string
	data  []byte
}

// Hub maintains the set of active feed clients and broadcasts messages to
// them. Clients subscribe either to the global feed or to a single user's
// topic (their username). All membership changes and deliveries go through
// the run loop, so no locking is needed.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages for global broadcast.
	Broadcast chan []byte

	// Messages for a single topic's subscribers.
	broadcastTopic chan topicMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of topics to the set of clients subscribed to each.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:      make(chan []byte),
		broadcastTopic: make(chan topicMessage),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		clients:        make(map[*Client]bool),
		subscriptions:  make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Feed client connected")
			if client.Topic != "" {
				h.addSubscription(client, client.Topic)
			}
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Feed client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscription(client)
				}
			}
		case msg := <-h.broadcastTopic:
			for client := range h.subscriptions[msg.topic] {
				select {
				case client.Send <- msg.data:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscription(client)
				}
			}
		}
	}
}

// Notify broadcasts an action/payload pair to every connected client.
func (h *Hub) Notify(action string, payload interface{}) {
	data, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode feed message")
		return
	}
	h.Broadcast <- data
}

// NotifyTopic sends an action/payload pair to the subscribers of one topic.
func (h *Hub) NotifyTopic(topic, action string, payload interface{}) {
	data, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode feed message")
		return
	}
	h.broadcastTopic <- topicMessage{topic: topic, data: data}
}

func (h *Hub) addSubscription(client *Client, topic string) {
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[*Client]bool)
	}
	h.subscriptions[topic][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for topic, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, topic)
			}
		}
	}
}
