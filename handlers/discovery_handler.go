package handlers

import (
	"context"
	"net/http"

	"github.com/greengalaxy/vr-gateway/middleware"
	"github.com/greengalaxy/vr-gateway/services/discovery"
	"github.com/greengalaxy/vr-gateway/utils"
	"go.uber.org/zap"
)

// DiscoveryService searches the knowledge index
type DiscoveryService interface {
	Search(ctx context.Context, query string) ([]discovery.Entry, error)
}

// DiscoveryHandler handles knowledge discovery requests
type DiscoveryHandler struct {
	service DiscoveryService
	logger  *zap.Logger
}

// NewDiscoveryHandler creates a new DiscoveryHandler
func NewDiscoveryHandler(service DiscoveryService, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		service: service,
		logger:  logger,
	}
}

// HandleDiscovery handles POST /api/nexus/discovery?query=...
func (h *DiscoveryHandler) HandleDiscovery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	values := r.URL.Query()
	if !values.Has("query") {
		_ = utils.WriteBadRequest(w, "query parameter is required", map[string]interface{}{
			"query": "query is required",
		})
		return
	}

	results, err := h.service.Search(ctx, values.Get("query"))
	if err != nil {
		h.logger.Error("discovery search failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, results); err != nil {
		h.logger.Error("failed to write discovery response", zap.Error(err))
	}
}
