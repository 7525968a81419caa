package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"morsechat/internal/auth"
	"morsechat/internal/chat"
	"morsechat/internal/metrics"
	"morsechat/internal/store"
)

// Handler is the HTTP entrypoint for translation, history and chat.
type Handler struct {
	hub          *chat.Hub
	upgrader     *websocket.Upgrader
	store        store.Store
	verifier     *auth.Verifier
	metrics      *metrics.Metrics
	log          *logrus.Entry
	historyLimit int
}

// Deps are the collaborators NewHandler wires together. Verifier may be
// nil to disable authentication.
type Deps struct {
	Hub            *chat.Hub
	Store          store.Store
	Verifier       *auth.Verifier
	Metrics        *metrics.Metrics
	Logger         *logrus.Entry
	AllowedOrigins []string
	HistoryLimit   int
}

func NewHandler(d Deps) *Handler {
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = 50
	}
	return &Handler{
		hub:          d.Hub,
		upgrader:     chat.NewUpgrader(d.AllowedOrigins),
		store:        d.Store,
		verifier:     d.Verifier,
		metrics:      d.Metrics,
		log:          d.Logger.WithField("component", "http"),
		historyLimit: d.HistoryLimit,
	}
}

// NewRouter registers routes and the middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)
	r.Use(h.metricsMiddleware)

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api/morse", func(r chi.Router) {
		r.Post("/text-to-morse", h.textToMorse)
		r.Post("/morse-to-text", h.morseToText)
		r.Post("/translate", h.translate)
		r.Get("/validate/morse", h.validateMorse)
		r.Get("/validate/text", h.validateText)
		r.Get("/characters", h.characters)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Get("/api/rooms/{room}/messages", h.roomMessages)
		r.Get("/ws", h.serveWS)
	})

	return r
}
