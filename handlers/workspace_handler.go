package handlers

import (
	"context"
	"net/http"

	"github.com/greengalaxy/vr-gateway/middleware"
	"github.com/greengalaxy/vr-gateway/services/workspace"
	"github.com/greengalaxy/vr-gateway/utils"
	"go.uber.org/zap"
)

// WorkspaceService defines the generative operations behind the AI routes
type WorkspaceService interface {
	GenerateLayout(ctx context.Context, req *workspace.LayoutRequest) ([]workspace.SceneObject, error)
	ProcessAppRequest(ctx context.Context, req *workspace.AppRequest) (*workspace.AppResponse, error)
}

// WorkspaceHandler handles the AI routes of the VR workspace
type WorkspaceHandler struct {
	service WorkspaceService
	logger  *zap.Logger
}

// NewWorkspaceHandler creates a new WorkspaceHandler
func NewWorkspaceHandler(service WorkspaceService, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		service: service,
		logger:  logger,
	}
}

// HandleGenerateLayout handles POST /api/ai/generate-layout
func (h *WorkspaceHandler) HandleGenerateLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req workspace.LayoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	objects, err := h.service.GenerateLayout(ctx, &req)
	if err != nil {
		h.logger.Error("failed to generate layout",
			h.requestFields(ctx, zap.String("model", req.ModelName), zap.Error(err))...)
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Debug("layout generated", h.requestFields(ctx, zap.Int("objects", len(objects)))...)
	if err := utils.WriteJSON(w, http.StatusOK, objects); err != nil {
		h.logger.Error("failed to write layout response", zap.Error(err))
	}
}

// HandleProcessRequest handles POST /api/ai/process-request
func (h *WorkspaceHandler) HandleProcessRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req workspace.AppRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.ProcessAppRequest(ctx, &req)
	if err != nil {
		h.logger.Error("failed to process app request",
			h.requestFields(ctx, zap.String("mode", req.Mode), zap.Error(err))...)
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("failed to write app response", zap.Error(err))
	}
}

func (h *WorkspaceHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(w, r, dst); err != nil {
		h.logger.Warn("failed to parse request body", h.requestFields(r.Context(), zap.Error(err))...)
		HandleValidationError(w, err, h.logger)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		h.logger.Warn("request validation failed", h.requestFields(r.Context(), zap.Error(err))...)
		HandleValidationError(w, err, h.logger)
		return false
	}
	return true
}

// requestFields prefixes log fields with the request ID and caller
func (h *WorkspaceHandler) requestFields(ctx context.Context, fields ...zap.Field) []zap.Field {
	out := []zap.Field{zap.String("request_id", middleware.GetRequestIDFromContext(ctx))}
	if id := middleware.GetIdentityFromContext(ctx); id != nil {
		out = append(out, zap.String("user_id", id.SubjectID))
	}
	return append(out, fields...)
}
