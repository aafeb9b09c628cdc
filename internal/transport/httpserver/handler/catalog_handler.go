// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"catalog-metadata-service/internal/app/service"
	"catalog-metadata-service/internal/domain"
	"catalog-metadata-service/internal/transport/httpserver/dto"
	"catalog-metadata-service/internal/validator"
)

// CatalogHandler handles catalog-related HTTP requests.
type CatalogHandler struct {
	service   *service.CatalogService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc *service.CatalogService, v *validator.Validator, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// GetCatalog handles GET /api/v1/catalog/:type/:id
func (h *CatalogHandler) GetCatalog(c *fiber.Ctx) error {
	typ, ok := domain.CanonicalType(c.Params("type"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "type must be movie or series",
			Code:  "INVALID_TYPE",
		})
	}
	sourceID := c.Params("id")
	if sourceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "catalog id is required",
			Code:  "MISSING_ID",
		})
	}

	var req dto.CatalogRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	catalog, err := h.service.Get(c.Context(), req.ToCatalogRequest(typ, sourceID))
	if err != nil {
		return h.catalogError(c, sourceID, err)
	}

	return c.JSON(dto.FromCatalog(catalog))
}

// ListSources handles GET /api/v1/catalogs
func (h *CatalogHandler) ListSources(c *fiber.Ctx) error {
	return c.JSON(dto.SourcesResponse{Sources: h.service.Sources()})
}

// catalogError maps assembly failures onto HTTP statuses: configuration
// problems are the caller's to fix, transient upstream failures are a
// bad gateway.
func (h *CatalogHandler) catalogError(c *fiber.Ctx, sourceID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownSource):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "UNKNOWN_SOURCE",
		})
	case errors.Is(err, domain.ErrMissingSession):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "MISSING_SESSION",
		})
	case domain.IsConfigError(err):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_CREDENTIALS",
		})
	}

	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		h.logger.Warn("upstream failure",
			zap.String("source", sourceID),
			zap.Int("upstream_status", statusErr.Status),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: "upstream catalog source failed",
			Code:  "UPSTREAM_ERROR",
		})
	}

	h.logger.Error("catalog assembly failed",
		zap.String("source", sourceID),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: "failed to assemble catalog",
		Code:  "INTERNAL_ERROR",
	})
}
