package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/service"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/middleware"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/response"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CatalogHandler serves tags, vendor packages and vendor ratings
type CatalogHandler struct {
	catalogService service.CatalogService
	ratingService  service.RatingService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService service.CatalogService, ratingService service.RatingService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		ratingService:  ratingService,
	}
}

// CreateTag handles POST /tags
func (h *CatalogHandler) CreateTag(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.catalog.create_tag")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	tag, err := h.catalogService.FindOrCreateTag(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("tag_id", tag.ID))
	span.SetStatus(codes.Ok, "")
	response.OK(c, tag)
}

// ListTags handles GET /tags
func (h *CatalogHandler) ListTags(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.catalog.list_tags")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tags, err := h.catalogService.ListTags(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, tags)
}

// CreatePackage handles POST /packages for the calling vendor
func (h *CatalogHandler) CreatePackage(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.catalog.create_package")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	vendorID := middleware.GetUserID(c)
	if vendorID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req dto.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	span.SetAttributes(attribute.String("vendor_id", vendorID))

	pkg, err := h.catalogService.CreatePackage(ctx, vendorID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("package_id", pkg.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, pkg)
}

// UpdatePackagePrice handles PATCH /packages/:id/price
func (h *CatalogHandler) UpdatePackagePrice(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.catalog.update_package_price")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	vendorID := middleware.GetUserID(c)
	if vendorID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req dto.UpdatePackagePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	packageID := c.Param("id")
	span.SetAttributes(
		attribute.String("vendor_id", vendorID),
		attribute.String("package_id", packageID),
		attribute.String("price", req.Price.String()),
	)

	pkg, err := h.catalogService.UpdatePackagePrice(ctx, vendorID, packageID, req.Price)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, pkg)
}

// ListVendorPackages handles GET /vendors/:id/packages
func (h *CatalogHandler) ListVendorPackages(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.catalog.list_vendor_packages")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	vendorID := c.Param("id")
	span.SetAttributes(attribute.String("vendor_id", vendorID))

	packages, err := h.catalogService.ListVendorPackages(ctx, vendorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(packages)))
	span.SetStatus(codes.Ok, "")
	response.OK(c, packages)
}

// GetVendorRating handles GET /vendors/:id/rating
func (h *CatalogHandler) GetVendorRating(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.catalog.vendor_rating")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	vendorID := c.Param("id")
	span.SetAttributes(attribute.String("vendor_id", vendorID))

	rating, err := h.ratingService.GetVendorRating(ctx, vendorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, rating)
}
