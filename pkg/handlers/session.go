package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
)

type sessionRequest struct {
	DatabaseURI string `json:"database_uri"`
}

// sessionResponse never carries the password of the remembered database.
type sessionResponse struct {
	Connected bool   `json:"connected"`
	Database  string `json:"database,omitempty"`
}

// SessionHandler lets a browser pick, inspect and forget its database.
type SessionHandler struct {
	sessions DescriptorStore
	hosts    *datasource.HostPolicy
	logger   *zap.Logger
}

// NewSessionHandler creates a SessionHandler. A nil hosts policy allows every database host.
func NewSessionHandler(sessions DescriptorStore, hosts *datasource.HostPolicy, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, hosts: hosts, logger: logger.Named("session")}
}

// RegisterRoutes registers the session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/session", h.Get)
	mux.HandleFunc("POST /api/session", h.Connect)
	mux.HandleFunc("DELETE /api/session", h.Clear)
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.sessions.Descriptor(r))
}

// Connect handles POST /api/session. The descriptor is validated but no
// connection is attempted: the first question reports an unreachable database.
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	descriptor := strings.TrimSpace(req.DatabaseURI)
	if _, err := h.hosts.Parse(descriptor); err != nil {
		writeDatabaseError(w, err)
		return
	}

	if err := h.sessions.SetDescriptor(w, r, descriptor); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to save session")
		return
	}
	h.respond(w, descriptor)
}

// Clear handles DELETE /api/session.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.Error("Failed to clear session", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to clear session")
		return
	}
	h.respond(w, "")
}

func (h *SessionHandler) respond(w http.ResponseWriter, descriptor string) {
	resp := sessionResponse{Connected: descriptor != ""}
	if d, err := datasource.ParseDescriptor(descriptor); err == nil {
		resp.Database = d.String()
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode session response", zap.Error(err))
	}
}
