package gateway

import (
	"context"
	"fmt"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PackageCatalog supplies package metadata (capacity, minimum person, vehicle
// mode). Callers must re-fetch at slot-generation and slot-mutation time;
// cached values silently drift from the source of truth.
type PackageCatalog interface {
	GetPackage(ctx context.Context, packageType entity.PackageType, id uuid.UUID) (*entity.TourPackage, error)
}

type packageCatalog struct {
	repo repository.PackageRepository
	log  *zap.Logger
}

func NewPackageCatalog(repo repository.PackageRepository, log *zap.Logger) PackageCatalog {
	return &packageCatalog{
		repo: repo,
		log:  log.With(zap.String("gateway", "package_catalog")),
	}
}

func (c *packageCatalog) GetPackage(ctx context.Context, packageType entity.PackageType, id uuid.UUID) (*entity.TourPackage, error) {
	pkg, err := c.repo.FindByID(ctx, packageType, id)
	if err != nil {
		return nil, fmt.Errorf("get package %s: %w", id.String(), err)
	}

	return pkg, nil
}
