package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// LiveMessageType is the type of a live socket message.
type LiveMessageType string

const (
	LiveTypeHello LiveMessageType = "hello"
	LiveTypeHTML  LiveMessageType = "html"
	LiveTypeError LiveMessageType = "error"
	LiveTypeEvent LiveMessageType = "event"
	LiveTypeSet   LiveMessageType = "set"
)

// LiveMessage is exchanged with browsers over the live socket. Browsers
// send event and set messages; the server sends hello, html and error.
type LiveMessage struct {
	Type  LiveMessageType `json:"type"`
	ID    string          `json:"id,omitempty"`
	HTML  string          `json:"html,omitempty"`
	Error string          `json:"error,omitempty"`
	Event string          `json:"event,omitempty"`
	Args  []any           `json:"args,omitempty"`
	Path  string          `json:"path,omitempty"`
	Value any             `json:"value,omitempty"`
}

// LiveHub manages WebSocket connections of preview clients.
type LiveHub struct {
	clients  map[string]*websocket.Conn
	mu       sync.Mutex
	upgrader websocket.Upgrader

	// greet returns the messages sent to a client right after it connects.
	greet func() []LiveMessage

	// onMessage handles a message received from a client.
	onMessage func(id string, msg LiveMessage)
}

// NewLiveHub creates a hub.
func NewLiveHub(greet func() []LiveMessage, onMessage func(id string, msg LiveMessage)) *LiveHub {
	return &LiveHub{
		clients: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Preview server, any origin
			},
		},
		greet:     greet,
		onMessage: onMessage,
	}
}

// ServeHTTP upgrades the connection and serves it until the client leaves.
func (h *LiveHub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	id := uuid.NewString()

	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()

	// greet may take the server lock, which is held while broadcasting, so
	// it must not run under h.mu.
	msgs := []LiveMessage{{Type: LiveTypeHello, ID: id}}
	if h.greet != nil {
		msgs = append(msgs, h.greet()...)
	}
	for _, msg := range msgs {
		h.send(id, msg)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg LiveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.send(id, LiveMessage{Type: LiveTypeError, Error: "invalid message"})
			continue
		}
		if h.onMessage != nil {
			h.onMessage(id, msg)
		}
	}

	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast sends msg to every client. Clients that fail are dropped.
func (h *LiveHub) Broadcast(msg LiveMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.clients, id)
			conn.Close()
		}
	}
}

// send writes msg to one client.
func (h *LiveHub) send(id string, msg LiveMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.clients[id]; ok {
		if err := conn.WriteJSON(msg); err != nil {
			delete(h.clients, id)
			conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *LiveHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *LiveHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		conn.Close()
		delete(h.clients, id)
	}
}

// LiveClientScript keeps the page in sync with the server.
const LiveClientScript = `
<script>
(function() {
    'use strict';

    var delay = 1000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/live');

        ws.onopen = function() { delay = 1000; };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            if (msg.type === 'html') {
                document.getElementById('vbind-root').innerHTML = msg.html;
            } else if (msg.type === 'error') {
                console.error('[vbind]', msg.error);
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, 30000);
                connect();
            }, delay);
        };

        window.vbind = {
            emit: function(event, args) {
                ws.send(JSON.stringify({type: 'event', event: event, args: args || []}));
            },
            set: function(path, value) {
                ws.send(JSON.stringify({type: 'set', path: path, value: value}));
            }
        };
    }

    connect();
})();
</script>
`
