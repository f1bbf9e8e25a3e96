package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/partdesk/backend/internal/model/part"
	chatService "github.com/partdesk/backend/internal/service/chat"
	"github.com/partdesk/backend/pkg/utils"
)

// Handler exposes the conversation endpoints.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/intro", h.handleIntro)
	r.Post("/chat", h.handleChat)
	r.Post("/reset", h.handleReset)
}

// PartData is the structured part summary returned alongside a reply.
type PartData struct {
	Name             string  `json:"name"`
	ID               string  `json:"id"`
	Price            float64 `json:"price"`
	Difficulty       string  `json:"difficulty"`
	Time             string  `json:"time"`
	Brand            string  `json:"brand,omitempty"`
	ProductURL       string  `json:"productUrl,omitempty"`
	VideoURL         string  `json:"videoUrl,omitempty"`
	CompatibilityURL string  `json:"compatibilityUrl,omitempty"`
}

func toPartData(record *part.Record) *PartData {
	if record == nil {
		return nil
	}
	difficulty := record.InstallDifficulty
	if difficulty == "" {
		difficulty = "Not specified"
	}
	installTime := record.InstallTime
	if installTime == "" {
		installTime = "Not specified"
	}
	return &PartData{
		Name:             record.Name,
		ID:               record.PartID,
		Price:            record.Price,
		Difficulty:       difficulty,
		Time:             installTime,
		Brand:            record.Brand,
		ProductURL:       record.ProductURL,
		VideoURL:         record.InstallVideoURL,
		CompatibilityURL: record.CompatibilityURL(),
	}
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	h.chatSvc.Sessions().GetOrCreate(sessionID)

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"sessionId": sessionID,
		"message":   chatService.IntroMessage,
	})
}

func (h *Handler) handleIntro(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": chatService.IntroMessage})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		payload.SessionID = "default"
	}

	result, err := h.chatSvc.HandleMessage(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		if errors.Is(err, chatService.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, "message is required")
			return
		}
		// Abandoned request: the client is gone, nothing was committed.
		return
	}

	response := map[string]any{"reply": result.Reply}
	if data := toPartData(result.Part); data != nil {
		response["partData"] = data
	}
	utils.RespondJSON(w, http.StatusOK, response)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		payload.SessionID = "default"
	}

	h.chatSvc.Sessions().Reset(payload.SessionID)

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": chatService.IntroMessage,
	})
}
