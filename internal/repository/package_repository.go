package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"travelbook_app/internal/models"
)

// PackageRepository is the catalog lookup boundary the booking flow needs
type PackageRepository interface {
	GetByID(ctx context.Context, id uint) (*models.TourPackage, error)
	ListActive(ctx context.Context) ([]models.TourPackage, error)
	ListByDestination(ctx context.Context, destinationID uint) ([]models.TourPackage, error)
}

type gormPackageRepository struct {
	db *gorm.DB
}

// NewPackageRepository returns a GORM-backed PackageRepository
func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &gormPackageRepository{db: db}
}

func (r *gormPackageRepository) GetByID(ctx context.Context, id uint) (*models.TourPackage, error) {
	var pkg models.TourPackage
	err := r.db.WithContext(ctx).
		Preload("Destination").
		Preload("Itinerary", func(db *gorm.DB) *gorm.DB { return db.Order("day_number asc") }).
		First(&pkg, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *gormPackageRepository) ListActive(ctx context.Context) ([]models.TourPackage, error) {
	var pkgs []models.TourPackage
	err := r.db.WithContext(ctx).Preload("Destination").
		Where("is_active = ?", true).
		Order("name asc").
		Find(&pkgs).Error
	return pkgs, err
}

func (r *gormPackageRepository) ListByDestination(ctx context.Context, destinationID uint) ([]models.TourPackage, error) {
	var pkgs []models.TourPackage
	err := r.db.WithContext(ctx).
		Where("destination_id = ? AND is_active = ?", destinationID, true).
		Order("name asc").
		Find(&pkgs).Error
	return pkgs, err
}
