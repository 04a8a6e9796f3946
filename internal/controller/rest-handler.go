package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/multiview/internal/service/session"
	"github.com/sharetube/multiview/pkg/rest"
)

type createSessionInput struct {
	SyncSeek bool `json:"sync_seek"`
}

type createSessionResponse struct {
	SessionId string `json:"session_id"`
}

func (c controller) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionInput
	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.InfoContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	createSessionResp, err := c.sessionService.CreateSession(r.Context(), &session.CreateSessionParams{
		SyncSeek: req.SyncSeek,
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to create session", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to create session"})
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createSessionResponse{
		SessionId: createSessionResp.SessionId,
	}})
}

func (c controller) getSession(w http.ResponseWriter, r *http.Request) {
	sessionId := chi.URLParam(r, "session-id")

	state, err := c.sessionService.GetSessionState(r.Context(), sessionId)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "session not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to get session state", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to get session"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": state})
}
