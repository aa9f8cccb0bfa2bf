package service

import (
	"context"
	"strings"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/dto"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CatalogService manages tags and vendor packages
type CatalogService interface {
	FindOrCreateTag(ctx context.Context, req *dto.CreateTagRequest) (*dto.TagResponse, error)
	ListTags(ctx context.Context) ([]*dto.TagResponse, error)

	CreatePackage(ctx context.Context, vendorID string, req *dto.CreatePackageRequest) (*dto.PackageResponse, error)
	// UpdatePackagePrice changes the live price; existing booking snapshots keep theirs
	UpdatePackagePrice(ctx context.Context, vendorID, packageID string, price decimal.Decimal) (*dto.PackageResponse, error)
	ListVendorPackages(ctx context.Context, vendorID string) ([]*dto.PackageResponse, error)
}

type catalogService struct {
	tagRepo     repository.TagRepository
	packageRepo repository.PackageRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(tagRepo repository.TagRepository, packageRepo repository.PackageRepository) CatalogService {
	return &catalogService{
		tagRepo:     tagRepo,
		packageRepo: packageRepo,
	}
}

// FindOrCreateTag returns the tag with the normalized name, creating it when missing
func (s *catalogService) FindOrCreateTag(ctx context.Context, req *dto.CreateTagRequest) (*dto.TagResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.catalog.find_or_create_tag")
	defer span.End()

	name := ""
	if req != nil {
		name = domain.NormalizeTagName(req.Name)
	}
	if name == "" {
		span.SetStatus(codes.Error, "empty tag name")
		return nil, domain.ErrInvalidName
	}
	span.SetAttributes(attribute.String("name", name))

	tag, err := s.tagRepo.FindOrCreate(ctx, name, req.Description)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.TagFromDomain(tag), nil
}

// ListTags lists every tag
func (s *catalogService) ListTags(ctx context.Context) ([]*dto.TagResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.catalog.list_tags")
	defer span.End()

	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]*dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.TagFromDomain(t))
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

// CreatePackage adds a package to a vendor's catalog
func (s *catalogService) CreatePackage(ctx context.Context, vendorID string, req *dto.CreatePackageRequest) (*dto.PackageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.catalog.create_package")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendorID))

	if req == nil {
		span.SetStatus(codes.Error, "empty request")
		return nil, domain.ErrInvalidName
	}
	if err := domain.ValidateIDs(req.Tags...); err != nil {
		span.SetStatus(codes.Error, "invalid tag id")
		return nil, err
	}

	now := time.Now()
	pkg := &domain.Package{
		ID:          domain.NewID(),
		VendorID:    vendorID,
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Capacity:    req.Capacity,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Tags:        uniqueStrings(req.Tags),
		OrderTypes:  req.OrderTypes,
		Inclusions:  req.Inclusions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := pkg.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("package_id", pkg.ID))
	span.SetStatus(codes.Ok, "")
	return dto.PackageFromDomain(pkg), nil
}

// UpdatePackagePrice changes the price of one of the vendor's packages
func (s *catalogService) UpdatePackagePrice(ctx context.Context, vendorID, packageID string, price decimal.Decimal) (*dto.PackageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.catalog.update_package_price")
	defer span.End()

	span.SetAttributes(
		attribute.String("vendor_id", vendorID),
		attribute.String("package_id", packageID),
		attribute.String("price", price.String()),
	)

	if err := domain.ValidateIDs(vendorID, packageID); err != nil {
		span.SetStatus(codes.Error, "invalid id")
		return nil, err
	}
	if price.IsNegative() {
		span.SetStatus(codes.Error, "negative price")
		return nil, domain.ErrInvalidPrice
	}

	current, err := s.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !current.BelongsToVendor(vendorID) {
		span.SetStatus(codes.Error, "package belongs to another vendor")
		return nil, domain.ErrPackageVendorMismatch
	}

	pkg, err := s.packageRepo.UpdatePrice(ctx, packageID, price)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.PackageFromDomain(pkg), nil
}

// ListVendorPackages lists a vendor's packages, most expensive first
func (s *catalogService) ListVendorPackages(ctx context.Context, vendorID string) ([]*dto.PackageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.catalog.list_vendor_packages")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendorID))

	if err := domain.ValidateID(vendorID); err != nil {
		span.SetStatus(codes.Error, "invalid vendor_id")
		return nil, err
	}

	pkgs, err := s.packageRepo.ListByVendor(ctx, vendorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]*dto.PackageResponse, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, dto.PackageFromDomain(p))
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}
