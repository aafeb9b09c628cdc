package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"catalog-metadata-service/internal/infra/cache"
	"catalog-metadata-service/internal/transport/httpserver/dto"
)

// AdminHandler handles cache administration requests.
type AdminHandler struct {
	store  *cache.Store
	sweep  cache.Sweeper
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. sweep may be nil when the
// configured backend has nothing to sweep.
func NewAdminHandler(store *cache.Store, sweep cache.Sweeper, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		store:  store,
		sweep:  sweep,
		logger: logger,
	}
}

// CleanupCache handles POST /api/v1/admin/cache/cleanup
func (h *AdminHandler) CleanupCache(c *fiber.Ctx) error {
	if h.sweep == nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: "configured cache backend expires entries on its own",
			Code:  "CLEANUP_UNSUPPORTED",
		})
	}

	h.logger.Info("manual cache cleanup triggered")

	removed, err := h.sweep.CleanupExpired(c.Context(), 0)
	if err != nil {
		h.logger.Error("cache cleanup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "cache cleanup failed",
			Code:  "CLEANUP_FAILED",
		})
	}

	return c.JSON(dto.CleanupResponse{Removed: removed})
}

// ClearCache handles DELETE /api/v1/admin/cache
func (h *AdminHandler) ClearCache(c *fiber.Ctx) error {
	h.logger.Info("manual cache clear triggered")

	if err := h.store.Clear(c.Context()); err != nil {
		h.logger.Error("cache clear failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "cache clear failed",
			Code:  "CLEAR_FAILED",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
