package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"morsechat/internal/logging"
	"morsechat/internal/morse"
)

type textToMorseRequest struct {
	Text string `json:"text"`
}

type textToMorseResponse struct {
	Original  string    `json:"original"`
	Morse     string    `json:"morse"`
	Timestamp time.Time `json:"timestamp"`
}

type morseToTextRequest struct {
	Morse string `json:"morse"`
}

type morseToTextResponse struct {
	Original  string    `json:"original"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type validateMorseResponse struct {
	Morse     string    `json:"morse"`
	IsValid   bool      `json:"isValid"`
	Timestamp time.Time `json:"timestamp"`
}

type validateTextResponse struct {
	Text      string    `json:"text"`
	IsValid   bool      `json:"isValid"`
	Timestamp time.Time `json:"timestamp"`
}

type charactersResponse struct {
	Characters []string `json:"characters"`
	Count      int      `json:"count"`
}

func (h *Handler) textToMorse(w http.ResponseWriter, r *http.Request) {
	var req textToMorseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	start := time.Now()
	encoded, err := morse.TextToMorse(req.Text)
	h.metrics.RecordTranslation(string(morse.TextToMorseDirection), morse.Code(err), time.Since(start))
	if err != nil {
		h.translationFailed(r.Context(), w, "text_to_morse", err)
		return
	}
	writeJSON(w, http.StatusOK, textToMorseResponse{
		Original:  req.Text,
		Morse:     encoded,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) morseToText(w http.ResponseWriter, r *http.Request) {
	var req morseToTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	start := time.Now()
	decoded, err := morse.MorseToText(req.Morse)
	h.metrics.RecordTranslation(string(morse.MorseToTextDirection), morse.Code(err), time.Since(start))
	if err != nil {
		h.translationFailed(r.Context(), w, "morse_to_text", err)
		return
	}
	writeJSON(w, http.StatusOK, morseToTextResponse{
		Original:  req.Morse,
		Text:      decoded,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) translate(w http.ResponseWriter, r *http.Request) {
	var req morse.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	start := time.Now()
	res, err := morse.Translate(req)
	direction := string(req.Direction)
	if errors.Is(err, morse.ErrInvalidDirection) {
		direction = "unknown"
	}
	h.metrics.RecordTranslation(direction, morse.Code(err), time.Since(start))
	if err != nil {
		h.translationFailed(r.Context(), w, "translate", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) validateMorse(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("morse")
	if input == "" {
		writeError(w, http.StatusBadRequest, "MISSING_INPUT", "morse query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, validateMorseResponse{
		Morse:     input,
		IsValid:   morse.ValidateMorseCode(input),
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) validateText(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("text")
	if input == "" {
		writeError(w, http.StatusBadRequest, "MISSING_INPUT", "text query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, validateTextResponse{
		Text:      input,
		IsValid:   morse.ValidateText(input),
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) characters(w http.ResponseWriter, _ *http.Request) {
	chars := morse.SupportedCharacters()
	writeJSON(w, http.StatusOK, charactersResponse{Characters: chars, Count: len(chars)})
}

// translationFailed answers a codec error. Every codec failure is a client
// error; anything else is logged as a server fault.
func (h *Handler) translationFailed(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	code := morse.Code(err)
	if code == "INTERNAL" {
		logging.FromContext(ctx, h.log).WithError(err).WithField("operation", operation).Error("translation failed")
		writeError(w, http.StatusInternalServerError, code, "internal server error")
		return
	}
	logging.FromContext(ctx, h.log).WithField("operation", operation).WithField("error_code", code).Debug("translation rejected")
	writeError(w, http.StatusBadRequest, code, err.Error())
}
