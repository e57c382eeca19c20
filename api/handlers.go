// Package api exposes the speechkit HTTP API: audio transcription plus the
// supplementary translation and language-detection endpoints.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/speechkit/errors"
	"github.com/skillsenselab/speechkit/logger"
	"github.com/skillsenselab/speechkit/observability"
	"github.com/skillsenselab/speechkit/server"
	"github.com/skillsenselab/speechkit/transcription"
	"github.com/skillsenselab/speechkit/translation"
	"github.com/skillsenselab/speechkit/validation"
)

// TranscribeResponse is the payload for a successful transcription.
type TranscribeResponse struct {
	Text     string                  `json:"text"`
	Metadata *transcription.Metadata `json:"metadata"`
}

// TranslateRequest is the JSON body for the translate endpoint.
type TranslateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Target string `json:"target"`
}

// TranslateResponse is the payload for a successful translation.
type TranslateResponse struct {
	TranslatedText string `json:"translated_text"`
	Source         string `json:"source"`
	Target         string `json:"target"`
}

// DetectRequest is the JSON body for the language-detection endpoint.
type DetectRequest struct {
	Text string `json:"text"`
}

// Handler serves the speechkit API routes.
type Handler struct {
	svc        transcription.Transcriber
	translator translation.Provider
	metrics    *observability.SpeechMetrics
	modelSize  string
	log        *logger.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithTranslator enables the translation endpoints.
func WithTranslator(p translation.Provider) HandlerOption {
	return func(h *Handler) { h.translator = p }
}

// WithMetrics enables transcription metric recording.
func WithMetrics(m *observability.SpeechMetrics, modelSize string) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
		h.modelSize = modelSize
	}
}

// NewHandler creates an API handler around a transcription service.
func NewHandler(svc transcription.Transcriber, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc: svc,
		log: logger.Get("api"),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// RegisterRoutes mounts the API under /api/v1.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.POST("/transcribe", h.Transcribe)
	if h.translator != nil {
		v1.POST("/translate", h.Translate)
		v1.POST("/detect-language", h.DetectLanguage)
	}
}

// Transcribe accepts a multipart audio upload with an optional language
// field and returns the transcription with its metadata.
func (h *Handler) Transcribe(c *gin.Context) {
	file, _, err := c.Request.FormFile("audio")
	if err != nil {
		server.RespondWithError(c, errors.MissingField("audio"))
		return
	}
	defer file.Close()

	language := c.PostForm("language")
	v := validation.New().Language("language", language)
	if appErr := v.Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	start := time.Now()
	text, meta, err := h.svc.TranscribeUpload(c.Request.Context(), file, language)
	if err != nil {
		h.recordTranscription(c, "error", 0, time.Since(start))
		server.RespondWithError(c, err)
		return
	}
	h.recordTranscription(c, "ok", meta.Confidence, time.Since(start))

	server.RespondOK(c, TranscribeResponse{Text: text, Metadata: meta})
}

// Translate converts text between languages via the configured provider.
func (h *Handler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidFormat("body", "JSON"))
		return
	}

	v := validation.New().
		Required("text", req.Text).
		Required("target", req.Target).
		Language("source", req.Source).
		Language("target", req.Target)
	if appErr := v.Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	translated, err := h.translator.Translate(c.Request.Context(), req.Text, req.Source, req.Target)
	if err != nil {
		server.RespondWithError(c, errors.ExternalServiceError(h.translator.Name(), err))
		return
	}

	server.RespondOK(c, TranslateResponse{
		TranslatedText: translated,
		Source:         req.Source,
		Target:         req.Target,
	})
}

// DetectLanguage identifies the language of a piece of text.
func (h *Handler) DetectLanguage(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidFormat("body", "JSON"))
		return
	}
	if appErr := validation.New().Required("text", req.Text).Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	detection, err := h.translator.DetectLanguage(c.Request.Context(), req.Text)
	if err != nil {
		server.RespondWithError(c, errors.ExternalServiceError(h.translator.Name(), err))
		return
	}

	server.RespondOK(c, detection)
}

func (h *Handler) recordTranscription(c *gin.Context, status string, confidence float64, duration time.Duration) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordTranscription(c.Request.Context(), h.modelSize, status, confidence, duration)
}

// readiness helpers

// LoadedChecker reports transcription model state for readiness probes.
type LoadedChecker interface {
	Loaded() bool
}

// ModelHealth builds a health entry from the lazy service's load state. An
// unloaded model is degraded, not down: the service still accepts traffic
// and loads on first use.
func ModelHealth(lc LoadedChecker, modelSize string) observability.Health {
	h := observability.Health{
		Name:    "model",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"model_size": modelSize},
	}
	if !lc.Loaded() {
		h.Status = observability.HealthStatusDegraded
		h.Message = "model not loaded yet"
	}
	return h
}
