package collab

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub connects the websocket peers of every room and holds the local
// document replica for rooms the coordinator has joined.
type Hub struct {
	logger *zap.Logger

	// Sessions by room id
	sessions map[string]*session

	// Inbound messages from clients
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex
}

// One room's transport state: the connected peers plus the local replica.
type session struct {
	doc     *TextDoc
	clients map[*Client]bool

	// True while the coordinator itself is joined via Join; keeps the
	// session alive when the last remote peer disconnects.
	attached bool
}

type Message struct {
	RoomID string
	Data   []byte
	Sender *Client
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		sessions:   make(map[string]*session),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			s := h.getSessionLocked(client.roomID)
			s.clients[client] = true
			clientCount := len(s.clients)
			h.mu.Unlock()

			h.logger.Info("client joined room",
				zap.String("room", client.roomID),
				zap.String("client", client.clientID),
				zap.Int("total", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if s, ok := h.sessions[client.roomID]; ok {
				if _, ok := s.clients[client]; ok {
					delete(s.clients, client)
					close(client.send)

					if len(s.clients) == 0 && !s.attached {
						delete(h.sessions, client.roomID)
						h.logger.Info("room closed (empty)", zap.String("room", client.roomID))
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.dispatch(message)
		}
	}
}

// Applies an inbound frame to the local replica and fans it out to the
// other peers in the room.
func (h *Hub) dispatch(message *Message) {
	h.mu.Lock()
	s, ok := h.sessions[message.RoomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	doc := s.doc
	h.fanOutLocked(s, message.Data, message.Sender)
	h.mu.Unlock()

	// Awareness frames are ephemeral: relayed, never applied
	if ParseMessageType(message.Data) == MessageSync {
		doc.SetText(string(Payload(message.Data)))
	}
}

func (h *Hub) fanOutLocked(s *session, data []byte, sender *Client) {
	for client := range s.clients {
		if client == sender {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(s.clients, client)
		}
	}
}

func (h *Hub) getSessionLocked(roomID string) *session {
	s, ok := h.sessions[roomID]
	if !ok {
		s = &session{
			doc:     NewTextDoc(),
			clients: make(map[*Client]bool),
		}
		h.sessions[roomID] = s
	}
	return s
}

// Join attaches the coordinator to a room, returning its document replica
// and a provider bound to the room's transport session.
func (h *Hub) Join(roomID string) (Document, Provider, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.getSessionLocked(roomID)
	s.attached = true
	return s.doc, &wsProvider{hub: h, roomID: roomID}, nil
}

// RoomCount reports rooms with at least one connected peer.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, s := range h.sessions {
		if len(s.clients) > 0 {
			count++
		}
	}
	return count
}

// ClientCount reports connected peers across all rooms.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, s := range h.sessions {
		count += len(s.clients)
	}
	return count
}

// wsProvider is the coordinator's transport handle for one room.
type wsProvider struct {
	hub    *Hub
	roomID string
}

func (p *wsProvider) Peers() int {
	p.hub.mu.RLock()
	defer p.hub.mu.RUnlock()

	s, ok := p.hub.sessions[p.roomID]
	if !ok {
		return 1
	}
	// The local replica counts as a peer
	return len(s.clients) + 1
}

func (p *wsProvider) SetStatusField(key, value string) {
	payload, err := json.Marshal(map[string]string{key: value})
	if err != nil {
		return
	}
	frame := EncodeMessage(MessageAwareness, payload)

	p.hub.mu.Lock()
	defer p.hub.mu.Unlock()

	if s, ok := p.hub.sessions[p.roomID]; ok {
		p.hub.fanOutLocked(s, frame, nil)
	}
}

func (p *wsProvider) Destroy() {
	p.hub.mu.Lock()
	defer p.hub.mu.Unlock()

	s, ok := p.hub.sessions[p.roomID]
	if !ok {
		return
	}
	s.attached = false
	if len(s.clients) == 0 {
		delete(p.hub.sessions, p.roomID)
	}
}
