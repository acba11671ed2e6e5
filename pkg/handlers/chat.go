package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
	"github.com/Akul0725/sqlchat/pkg/apperrors"
	"github.com/Akul0725/sqlchat/pkg/logging"
	"github.com/Akul0725/sqlchat/pkg/middleware"
)

// User-facing messages of the chat endpoint.
const (
	msgNoMessage   = "No message provided"
	msgNoDatabase  = "No database selected. Connect a database first."
	msgRunFailed   = "An error occurred while processing your request."
	msgBadDatabase = "Invalid database URI"
	msgHostDenied  = "Database host is not allowed on this server"
)

// Answerer answers one question against one database.
type Answerer interface {
	Run(ctx context.Context, question, descriptor string) (string, error)
}

// DescriptorStore remembers the database a browser is chatting with.
type DescriptorStore interface {
	Descriptor(r *http.Request) string
	SetDescriptor(w http.ResponseWriter, r *http.Request, descriptor string) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

type chatRequest struct {
	Message     string `json:"message"`
	DatabaseURI string `json:"database_uri,omitempty"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// ChatHandler serves the chat endpoint.
type ChatHandler struct {
	answerer Answerer
	sessions DescriptorStore
	hosts    *datasource.HostPolicy
	logger   *zap.Logger
}

// NewChatHandler creates a ChatHandler. A nil hosts policy allows every database host.
func NewChatHandler(answerer Answerer, sessions DescriptorStore, hosts *datasource.HostPolicy, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		answerer: answerer,
		sessions: sessions,
		hosts:    hosts,
		logger:   logger.Named("chat"),
	}
}

// RegisterRoutes registers the chat route on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.Chat)
}

// Chat handles POST /api/chat.
// The database comes from the request body when present, which also replaces
// the one remembered in the session, and from the session otherwise.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	question := strings.TrimSpace(req.Message)
	if question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, msgNoMessage)
		return
	}

	descriptor := strings.TrimSpace(req.DatabaseURI)
	fromRequest := descriptor != ""
	if !fromRequest {
		descriptor = h.sessions.Descriptor(r)
	}
	if descriptor == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, msgNoDatabase)
		return
	}

	// The session is checked too: the allowlist may have changed since it was saved.
	if _, err := h.hosts.Parse(descriptor); err != nil {
		h.rejectDatabase(w, r, err)
		return
	}
	if fromRequest {
		if err := h.sessions.SetDescriptor(w, r, descriptor); err != nil {
			h.logger.Warn("Failed to remember database", zap.Error(err))
		}
	}

	answer, err := h.answerer.Run(r.Context(), question, descriptor)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyQuestion) {
			_ = ErrorResponse(w, http.StatusBadRequest, msgNoMessage)
			return
		}
		h.logger.Error("Chat request failed",
			zap.String("request_id", middleware.RequestID(r.Context())),
			zap.String("database", logging.SanitizeConnectionString(descriptor)),
			zap.String("error", logging.SanitizeError(err)))
		_ = ErrorResponse(w, http.StatusInternalServerError, msgRunFailed)
		return
	}

	if err := WriteJSON(w, http.StatusOK, chatResponse{Answer: answer}); err != nil {
		h.logger.Error("Failed to encode chat response", zap.Error(err))
	}
}

func (h *ChatHandler) rejectDatabase(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperrors.ErrHostNotAllowed) {
		h.logger.Warn("Rejected database host",
			zap.String("request_id", middleware.RequestID(r.Context())),
			zap.String("error", err.Error()))
	}
	writeDatabaseError(w, err)
}

// writeDatabaseError answers a descriptor the caller may not use: 403 for a
// host outside the allowlist, 400 for anything unparseable.
func writeDatabaseError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperrors.ErrHostNotAllowed) {
		_ = ErrorResponse(w, http.StatusForbidden, msgHostDenied)
		return
	}
	_ = ErrorResponse(w, http.StatusBadRequest, msgBadDatabase+": "+err.Error())
}
