// Package ws relays the conversation pipeline over a WebSocket, streaming
// reply deltas as they are generated.
package ws

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatService "github.com/partdesk/backend/internal/service/chat"
)

// Handler upgrades chat connections to WebSocket.
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New creates the WebSocket chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat", h.handleWebSocket)
}

type inboundMessage struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type outboundMessage struct {
	Event     string `json:"event"`
	SessionID string `json:"sessionId,omitempty"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}
		if msg.SessionID == "" {
			msg.SessionID = "default"
		}

		result, err := h.chatSvc.HandleMessageStream(ctx, msg.SessionID, msg.Message, func(delta string) {
			h.write(conn, outboundMessage{Event: "delta", SessionID: msg.SessionID, Content: delta})
		})
		if err != nil {
			if errors.Is(err, chatService.ErrEmptyMessage) {
				h.write(conn, outboundMessage{Event: "error", SessionID: msg.SessionID, Error: "message is required"})
				continue
			}
			// Context gone; the connection is on its way out too.
			return
		}

		h.write(conn, outboundMessage{Event: "message", SessionID: msg.SessionID, Content: result.Reply})
		h.write(conn, outboundMessage{Event: "end", SessionID: msg.SessionID})
	}
}

func (h *Handler) write(conn *websocket.Conn, msg outboundMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
