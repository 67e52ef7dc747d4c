package repository

import (
	"context"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	Create(ctx context.Context, window *models.AvailabilityWindow) error
	FindByID(ctx context.Context, id uint) (*models.AvailabilityWindow, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.AvailabilityWindow, error)
	ListActiveByHost(ctx context.Context, hostID string) ([]models.AvailabilityWindow, error)
	ListByHost(ctx context.Context, hostID string) ([]models.AvailabilityWindow, error)
	Save(ctx context.Context, tx *gorm.DB, window *models.AvailabilityWindow) error
	GetDB() *gorm.DB
}

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *availabilityRepository) Create(ctx context.Context, window *models.AvailabilityWindow) error {
	return r.db.WithContext(ctx).Create(window).Error
}

func (r *availabilityRepository) FindByID(ctx context.Context, id uint) (*models.AvailabilityWindow, error) {
	var window models.AvailabilityWindow
	if err := r.db.WithContext(ctx).First(&window, id).Error; err != nil {
		return nil, err
	}
	return &window, nil
}

// FindByIDForUpdate locks the window row; one-on-one slot validation and
// consumption happen under this lock.
func (r *availabilityRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.AvailabilityWindow, error) {
	var window models.AvailabilityWindow
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&window, id).Error; err != nil {
		return nil, err
	}
	return &window, nil
}

// ListActiveByHost returns the host's unblocked windows, used for overlap
// checks and slot discovery.
func (r *availabilityRepository) ListActiveByHost(ctx context.Context, hostID string) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	err := r.db.WithContext(ctx).
		Where("host_id = ? AND is_blocked = false", hostID).
		Order("id ASC").
		Find(&windows).Error
	if err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *availabilityRepository) ListByHost(ctx context.Context, hostID string) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("id ASC").
		Find(&windows).Error
	if err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *availabilityRepository) Save(ctx context.Context, tx *gorm.DB, window *models.AvailabilityWindow) error {
	return tx.WithContext(ctx).Save(window).Error
}
