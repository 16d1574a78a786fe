package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"travelbook_app/internal/models"
)

// UserRepository resolves local user rows; it doubles as the authorization
// collaborator for the booking service (IsAdmin).
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetOrCreateByFirebaseUID(ctx context.Context, firebaseUID, email, name string) (*models.User, error)
	IsAdmin(ctx context.Context, userID uint) (bool, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a GORM-backed UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetOrCreateByFirebaseUID provisions a local row on first login
func (r *gormUserRepository) GetOrCreateByFirebaseUID(ctx context.Context, firebaseUID, email, name string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		FirebaseUID: firebaseUID,
		Email:       email,
		Name:        name,
		UserType:    models.UserTypeMember,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}
