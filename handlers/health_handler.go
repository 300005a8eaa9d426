package handlers

import (
	"net/http"

	"github.com/greengalaxy/vr-gateway/utils"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// StatusResponse is the body of GET /
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthHandler handles status and health HTTP requests
type HealthHandler struct {
	geminiConfigured bool
	authMode         string
	logger           *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. authMode is the
// credential capability reported by auth.Capability.Mode.
func NewHealthHandler(geminiConfigured bool, authMode string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		geminiConfigured: geminiConfigured,
		authMode:         authMode,
		logger:           logger,
	}
}

// HandleRoot handles GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.write(w, StatusResponse{
		Status:  "ok",
		Message: "GreenGalaxy VR Backend Running",
	})
}

// HandleHealth handles GET /health
// Always 200 while the process is serving; degraded dependencies are reported, not failed.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	gemini := "missing_key"
	if h.geminiConfigured {
		gemini = "ok"
	}

	h.write(w, HealthResponse{
		Status:  "healthy",
		Version: Version,
		Dependencies: map[string]string{
			"gemini":   gemini,
			"firebase": h.authMode,
		},
	})
}

// HandleLiveness handles GET /healthz
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	h.write(w, StatusResponse{Status: "ok", Message: "alive"})
}

func (h *HealthHandler) write(w http.ResponseWriter, body interface{}) {
	if err := utils.WriteJSON(w, http.StatusOK, body); err != nil {
		h.logger.Error("failed to write health response", zap.Error(err))
	}
}
