/*
Package editor implements the message channel to the embedded sprite
editor.

Messages are small JSON envelopes:

	{"type": "initialize", "message": "<packed data>"}
	{"type": "ready"}
	{"type": "update", "id": 3}
	{"type": "update", "id": 3, "message": "<packed data>"}

The id on an update request is echoed back on the reply so the reply can be
matched with the request that caused it. Editors that do not echo it send
replies with no id.
*/
package editor

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Message types
const (
	TypeInitialize = "initialize"
	TypeReady      = "ready"
	TypeUpdate     = "update"
)

// ErrChannelUnavailable is returned by Send when no editor is connected.
var ErrChannelUnavailable = errors.New("editor: channel unavailable")

// Message is the envelope exchanged with the editor.
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	ID      uint64 `json:"id,omitempty"`
}

// Initialize returns a message asking the editor to load data.
func Initialize(data string) Message {
	return Message{Type: TypeInitialize, Message: data}
}

// RequestUpdate returns a message asking the editor for a snapshot.
func RequestUpdate(id uint64) Message {
	return Message{Type: TypeUpdate, ID: id}
}

const queueSize = 16

// Hub accepts a single editor over a WebSocket. A new connection replaces
// any existing one.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger
	messages chan Message

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewHub returns a Hub ready to be mounted as an http.Handler.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// The editor is hosted on a different origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:   logger,
		messages: make(chan Message, queueSize),
	}
}

// Messages returns the channel incoming messages are delivered on.
func (h *Hub) Messages() <-chan Message {
	return h.messages
}

// Send writes m to the connected editor. If there is no editor the message
// is dropped and ErrChannelUnavailable returned.
func (h *Hub) Send(m Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return ErrChannelUnavailable
	}
	return h.conn.WriteJSON(m)
}

// Connected reports whether an editor is attached.
func (h *Hub) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn != nil
}

func (h *Hub) attach(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn != nil {
		h.logger.Println("Replacing existing editor connection")
		h.conn.Close()
	}
	h.conn = conn
}

func (h *Hub) detach(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == conn {
		h.conn = nil
	}
	conn.Close()
}

// ServeHTTP upgrades the request and reads messages until the connection
// is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("Upgrade failed: %v\n", err)
		return
	}

	h.attach(conn)
	defer h.detach(conn)

	h.logger.Printf("Editor connected from %s\n", r.RemoteAddr)

	for {
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("Editor read failed: %v\n", err)
			}
			return
		}
		select {
		case h.messages <- m:
		case <-r.Context().Done():
			return
		}
	}
}

// Close disconnects any attached editor.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}
