package repository

import (
	"context"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"gorm.io/gorm"
)

type WaitlistRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error
	FindByID(ctx context.Context, id uint) (*models.WaitlistEntry, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.WaitlistEntry, error)
	FindActiveBySessionAndRequester(ctx context.Context, tx *gorm.DB, sessionID uint, requesterID string) (*models.WaitlistEntry, error)
	FindFirstWaiting(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.WaitlistEntry, error)
	CountOffered(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error)
	ListStaleOffered(ctx context.Context, offeredBefore time.Time) ([]models.WaitlistEntry, error)
	ListBySession(ctx context.Context, sessionID uint) ([]models.WaitlistEntry, error)
	Save(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (r *waitlistRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *waitlistRepository) FindByID(ctx context.Context, id uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindActiveBySessionAndRequester matches entries still holding a place in
// line (waiting or offered).
func (r *waitlistRepository) FindActiveBySessionAndRequester(ctx context.Context, tx *gorm.DB, sessionID uint, requesterID string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := tx.WithContext(ctx).
		Where("session_id = ? AND requester_id = ? AND status IN ?", sessionID, requesterID,
			[]models.WaitlistStatus{models.WaitlistWaiting, models.WaitlistOffered}).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindFirstWaiting returns the promotion candidate: FIFO by creation time,
// ties broken by id ascending.
func (r *waitlistRepository) FindFirstWaiting(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := tx.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID, models.WaitlistWaiting).
		Order("created_at ASC, id ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) CountOffered(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("session_id = ? AND status = ?", sessionID, models.WaitlistOffered).
		Count(&count).Error
	return count, err
}

// ListStaleOffered feeds the expiry sweep. Reads outside a transaction; each
// entry is re-checked under its session lock before expiring.
func (r *waitlistRepository) ListStaleOffered(ctx context.Context, offeredBefore time.Time) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND offered_at < ?", models.WaitlistOffered, offeredBefore).
		Order("offered_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *waitlistRepository) ListBySession(ctx context.Context, sessionID uint) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *waitlistRepository) Save(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error {
	return tx.WithContext(ctx).Save(entry).Error
}
