package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"travelbook_app/internal/models"
)

const (
	catalogCachePrefix = "catalog:"
	catalogCacheTTL    = 5 * time.Minute
)

// CatalogService serves the public destination and package catalog. Reads
// go through the Redis cache; admin writes evict it.
type CatalogService struct {
	db    *gorm.DB
	cache *RedisCache
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *gorm.DB, cache *RedisCache) *CatalogService {
	return &CatalogService{db: db, cache: cache}
}

// ListDestinations returns active destinations with their active packages
func (s *CatalogService) ListDestinations(ctx context.Context) ([]models.Destination, error) {
	return GetOrSet(s.cache, ctx, catalogCachePrefix+"destinations", catalogCacheTTL, func() ([]models.Destination, error) {
		var destinations []models.Destination
		err := s.db.WithContext(ctx).
			Where("is_active = ?", true).
			Preload("Packages", "is_active = ?", true).
			Order("name ASC").
			Find(&destinations).Error
		return destinations, err
	})
}

// GetDestination returns one destination with its active packages
func (s *CatalogService) GetDestination(ctx context.Context, id uint) (*models.Destination, error) {
	var destination models.Destination
	err := s.db.WithContext(ctx).
		Preload("Packages", "is_active = ?", true).
		First(&destination, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: destination %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &destination, nil
}

// ListPackages returns active packages, optionally scoped to a destination
func (s *CatalogService) ListPackages(ctx context.Context, destinationID *uint) ([]models.TourPackage, error) {
	key := catalogCachePrefix + "packages"
	if destinationID != nil {
		key = fmt.Sprintf("%spackages:dest:%d", catalogCachePrefix, *destinationID)
	}
	return GetOrSet(s.cache, ctx, key, catalogCacheTTL, func() ([]models.TourPackage, error) {
		query := s.db.WithContext(ctx).
			Where("is_active = ?", true).
			Preload("Destination").
			Order("name ASC")
		if destinationID != nil {
			query = query.Where("destination_id = ?", *destinationID)
		}
		var packages []models.TourPackage
		err := query.Find(&packages).Error
		return packages, err
	})
}

// GetPackage returns one package with destination and itinerary loaded
func (s *CatalogService) GetPackage(ctx context.Context, id uint) (*models.TourPackage, error) {
	pkg, err := GetOrSet(s.cache, ctx, fmt.Sprintf("%spackage:%d", catalogCachePrefix, id), catalogCacheTTL, func() (models.TourPackage, error) {
		var pkg models.TourPackage
		err := s.db.WithContext(ctx).
			Preload("Destination").
			Preload("Itinerary", func(db *gorm.DB) *gorm.DB {
				return db.Order("day_number ASC")
			}).
			First(&pkg, id).Error
		return pkg, err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: package %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &pkg, nil
}

// CreateDestination adds a destination to the catalog
func (s *CatalogService) CreateDestination(ctx context.Context, destination *models.Destination) error {
	if destination.Name == "" {
		return fmt.Errorf("%w: destination name is required", ErrValidation)
	}
	if err := s.db.WithContext(ctx).Create(destination).Error; err != nil {
		return err
	}
	s.evict(ctx)
	return nil
}

// UpdateDestination saves changes to a destination
func (s *CatalogService) UpdateDestination(ctx context.Context, destination *models.Destination) error {
	if destination.ID == 0 {
		return fmt.Errorf("%w: destination id is required", ErrValidation)
	}
	if err := s.db.WithContext(ctx).Save(destination).Error; err != nil {
		return err
	}
	s.evict(ctx)
	return nil
}

// DeleteDestination soft-deletes a destination and hides its packages
func (s *CatalogService) DeleteDestination(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TourPackage{}).
			Where("destination_id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Destination{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: destination %d", ErrNotFound, id)
		}
		s.evict(ctx)
		return nil
	})
}

// CreatePackage adds a tour package to the catalog
func (s *CatalogService) CreatePackage(ctx context.Context, pkg *models.TourPackage) error {
	if err := s.validatePackage(pkg); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(pkg).Error; err != nil {
		return err
	}
	s.evict(ctx)
	return nil
}

// UpdatePackage saves changes to a tour package and its itinerary
func (s *CatalogService) UpdatePackage(ctx context.Context, pkg *models.TourPackage) error {
	if pkg.ID == 0 {
		return fmt.Errorf("%w: package id is required", ErrValidation)
	}
	if err := s.validatePackage(pkg); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Itinerary rows are replaced wholesale; day ordering comes from
		// the submitted rows
		if err := tx.Where("package_id = ?", pkg.ID).Delete(&models.ItineraryDay{}).Error; err != nil {
			return err
		}
		return tx.Save(pkg).Error
	})
	if err != nil {
		return err
	}
	s.evict(ctx)
	return nil
}

// DeletePackage soft-deletes a tour package
func (s *CatalogService) DeletePackage(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.TourPackage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: package %d", ErrNotFound, id)
	}
	s.evict(ctx)
	return nil
}

func (s *CatalogService) validatePackage(pkg *models.TourPackage) error {
	if pkg.Name == "" {
		return fmt.Errorf("%w: package name is required", ErrValidation)
	}
	if pkg.DestinationID == 0 {
		return fmt.Errorf("%w: package needs a destination", ErrValidation)
	}
	if pkg.Price <= 0 {
		return fmt.Errorf("%w: package price must be positive", ErrValidation)
	}
	if pkg.OfferPrice != nil && (*pkg.OfferPrice <= 0 || *pkg.OfferPrice >= pkg.Price) {
		return fmt.Errorf("%w: offer price must be positive and below the regular price", ErrValidation)
	}
	return nil
}

func (s *CatalogService) evict(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, catalogCachePrefix); err != nil {
		// Stale cache entries age out on their own TTL
		return
	}
}
