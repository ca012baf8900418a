// Package api provides HTTP handlers for SupportFlow endpoints.
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/VertexInfotech/SupportFlow/internal/models"
)

// chatHandler handles POST /api/v1/chat, the stateless binding. The request
// carries the previous turn's session; the response carries the next one for
// the caller to echo back. A missing or malformed session starts a new
// conversation rather than failing the request.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("chatHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("chatHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeChatRequest(r.Body)
	if err != nil {
		slog.Warn("chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	sess, fresh := s.restoreSession(req)
	var payload models.ResponsePayload
	if fresh && req.Message == "" {
		// Widget just opened: emit the root prompt.
		sess, payload = s.engine.Start(req.Language)
	} else {
		payload = s.safeStep(&sess, req.Message)
	}

	resp := models.ChatResponse{Response: payload.Text, State: sess.Wire(payload.Options)}
	slog.Debug("chatHandler: turn complete", "state", sess.CurrentState, "fresh", fresh)
	writeJSONResponse(w, http.StatusOK, resp)
}

// decodeChatRequest decodes the chat envelope, deferring the state field.
// The echoed session comes from a caller we do not control, so a state that
// is not even a SessionWire object is dropped and the turn starts a new
// session; only a body that is not valid JSON is an error.
func decodeChatRequest(body io.Reader) (models.ChatRequest, error) {
	var env struct {
		Message  string          `json:"message"`
		Language models.Language `json:"language"`
		State    json.RawMessage `json:"state"`
	}
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return models.ChatRequest{}, err
	}

	req := models.ChatRequest{Message: env.Message, Language: env.Language}
	if len(env.State) > 0 && string(env.State) != "null" {
		var wire models.SessionWire
		if err := json.Unmarshal(env.State, &wire); err != nil {
			slog.Warn("chatHandler: malformed wire session, starting over", "error", err)
		} else {
			req.State = &wire
		}
	}
	return req, nil
}

// restoreSession reconstructs the engine session from the wire form. Any
// session we cannot trust — no state, unknown step, unsupported language —
// is replaced by a fresh one, never an error to the caller.
func (s *Server) restoreSession(req models.ChatRequest) (models.Session, bool) {
	lang := req.Language
	if !models.IsValidLanguage(lang) {
		lang = models.LanguageEnglish
	}

	if req.State == nil || req.State.Step == "" {
		return models.Session{Language: lang, CurrentState: s.engine.Root()}, true
	}
	sess := req.State.Session()
	if !models.IsValidLanguage(sess.Language) {
		sess.Language = lang
	}
	if !s.engine.ResolveState(sess.CurrentState) {
		slog.Warn("chatHandler: unknown step in wire session, starting over", "step", sess.CurrentState)
		return models.Session{Language: sess.Language, CurrentState: s.engine.Root()}, true
	}
	return sess, false
}

// createConversationHandler handles POST /api/v1/conversations. The server
// holds the session in the store; the caller only keeps the conversation id.
func (s *Server) createConversationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var req models.ConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		slog.Warn("createConversationHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	id := uuid.NewString()
	sess, payload := s.engine.Start(req.Language)
	if err := s.st.SaveSession(r.Context(), id, sess); err != nil {
		slog.Error("createConversationHandler: failed to save session", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create conversation"))
		return
	}

	slog.Info("conversation created", "id", id, "language", sess.Language)
	resp := models.ConversationResponse{ID: id, Response: payload.Text, State: sess.Wire(payload.Options)}
	writeJSONResponse(w, http.StatusCreated, models.Success(resp))
}

// conversationMessageHandler handles POST /api/v1/conversations/{id}/messages.
func (s *Server) conversationMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	id := r.PathValue("id")

	var req models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("conversationMessageHandler: failed to decode JSON", "error", err, "id", id)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	sess, err := s.st.GetSession(r.Context(), id)
	if err != nil {
		slog.Error("conversationMessageHandler: failed to load session", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load conversation"))
		return
	}
	if sess == nil {
		slog.Debug("conversationMessageHandler: conversation not found", "id", id)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Conversation not found"))
		return
	}

	payload := s.safeStep(sess, req.Message)
	if err := s.st.SaveSession(r.Context(), id, *sess); err != nil {
		slog.Error("conversationMessageHandler: failed to save session", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save conversation"))
		return
	}

	resp := models.ConversationResponse{ID: id, Response: payload.Text, State: sess.Wire(payload.Options)}
	writeJSONResponse(w, http.StatusOK, models.Success(resp))
}

// deleteConversationHandler handles DELETE /api/v1/conversations/{id}.
func (s *Server) deleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.st.DeleteSession(r.Context(), id); err != nil {
		slog.Error("deleteConversationHandler: failed to delete session", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete conversation"))
		return
	}
	slog.Info("conversation deleted", "id", id)
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}
