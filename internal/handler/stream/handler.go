package stream

import (
	"context"
	"errors"
	"log"
	"net/http"

	chatService "github.com/partdesk/backend/internal/service/chat"
	"github.com/partdesk/backend/pkg/utils"
)

// Handler streams assistant replies over Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the SSE stream handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// StreamResponse is one SSE payload.
type StreamResponse struct {
	Event     string `json:"event"`
	SessionID string `json:"sessionId,omitempty"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
}

// HandleStreamRequest runs the pipeline for one message, forwarding deltas
// as they arrive.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errors.New("streaming unsupported by response writer")
	}

	utils.SetupSSEHeaders(w)

	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "start", SessionID: sessionID})

	result, err := h.chatSvc.HandleMessageStream(ctx, sessionID, userMessage, func(delta string) {
		utils.SendSSEChunk(w, flusher, StreamResponse{Event: "delta", SessionID: sessionID, Content: delta})
	})
	if err != nil {
		if errors.Is(err, chatService.ErrEmptyMessage) {
			utils.SendSSEChunk(w, flusher, StreamResponse{Event: "error", SessionID: sessionID, Error: "message is required"})
			return err
		}
		log.Printf("[stream] request abandoned for session=%s: %v", sessionID, err)
		return err
	}

	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "message", SessionID: sessionID, Content: result.Reply})
	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "end", SessionID: sessionID, Finished: true})

	log.Printf("[stream] completed response for session=%s", sessionID)
	return nil
}
