package handlers

import (
	"net/http"

	"docqa/internal/rag"
)

// ChatHandler handles HTTP requests for questions.
type ChatHandler struct {
	answerer Answerer
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(answerer Answerer) *ChatHandler {
	return &ChatHandler{answerer: answerer}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Question  string `json:"question"`
	FailCount int    `json:"fail_count"`
	Debug     bool   `json:"debug,omitempty"`
}

// ServeHTTP answers a question. The reply always carries the fail count the client
// must send with its next question.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.answerer.Answer(ctx, rag.AnswerRequest{
		Question:  req.Question,
		FailCount: req.FailCount,
		Debug:     req.Debug,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
