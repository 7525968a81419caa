package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"morsechat/internal/logging"
	"morsechat/internal/store"
)

type roomMessagesResponse struct {
	Room     string          `json:"room"`
	Messages []store.Message `json:"messages"`
	Count    int             `json:"count"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		logging.FromContext(r.Context(), h.log).WithError(err).Warn("store not ready")
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", "message store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) roomMessages(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	msgs, err := h.store.Recent(r.Context(), room, limit)
	if err != nil {
		if errors.Is(err, store.ErrInvalidRoom) {
			writeError(w, http.StatusBadRequest, "INVALID_ROOM", err.Error())
			return
		}
		logging.FromContext(r.Context(), h.log).WithError(err).WithField("room", room).Error("load room messages")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "could not load messages")
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	writeJSON(w, http.StatusOK, roomMessagesResponse{Room: room, Messages: msgs, Count: len(msgs)})
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if claims := claimsFromContext(r.Context()); claims != nil {
		userID = claims.UserID()
	}
	h.hub.ServeWS(h.upgrader, w, r, userID)
}
