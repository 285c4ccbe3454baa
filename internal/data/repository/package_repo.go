package repository

import (
	"context"
	"fmt"

	"tour-booking/internal/data/entity"
	"tour-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PackageRepository interface {
	FindByID(ctx context.Context, packageType entity.PackageType, id uuid.UUID) (*entity.TourPackage, error)
}

type packageRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPackageRepository(db database.PgxIface, log *zap.Logger) PackageRepository {
	return &packageRepository{
		db:  db,
		log: log.With(zap.String("repository", "package")),
	}
}

func (r *packageRepository) FindByID(ctx context.Context, packageType entity.PackageType, id uuid.UUID) (*entity.TourPackage, error) {
	query := `
		SELECT id, name, package_type, maximum_person, minimum_person, is_private,
			departure_times, base_price, created_at, updated_at
		FROM packages
		WHERE id = $1 AND package_type = $2 AND deleted_at IS NULL
	`

	var pkg entity.TourPackage
	err := r.db.QueryRow(ctx, query, id, packageType).Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.Type,
		&pkg.MaximumPerson,
		&pkg.MinimumPerson,
		&pkg.IsPrivate,
		&pkg.DepartureTimes,
		&pkg.BasePrice,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find package by ID",
			zap.Error(err),
			zap.String("package_id", id.String()),
			zap.String("package_type", string(packageType)),
		)
		return nil, fmt.Errorf("find package by ID %s: %w", id.String(), err)
	}

	return &pkg, nil
}
