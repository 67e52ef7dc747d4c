package repository

import (
	"context"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"gorm.io/gorm"
)

var activeStatuses = []models.BookingStatus{models.BookingPending, models.BookingConfirmed}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	Save(ctx context.Context, tx *gorm.DB, booking *models.Booking) error

	// Seat accounting for a session: bookings in {confirmed, attended}.
	CountSeatsTaken(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error)
	// Non-terminal bookings for a session: pending and confirmed.
	CountActiveBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error)

	// Invariant lookups; all run inside the caller's transaction.
	FindActiveByRequesterAndSession(ctx context.Context, tx *gorm.DB, requesterID string, sessionID uint) (*models.Booking, error)
	FindActiveByRequesterHostStart(ctx context.Context, tx *gorm.DB, requesterID, hostID string, startAt time.Time) (*models.Booking, error)
	FindActiveByWindowAndStart(ctx context.Context, tx *gorm.DB, windowID uint, startAt time.Time) (*models.Booking, error)
	CountActiveByHostOnDay(ctx context.Context, tx *gorm.DB, hostID string, dayStart, dayEnd time.Time) (int64, error)
	ExistsHostOverlap(ctx context.Context, tx *gorm.DB, hostID string, from, to time.Time, excludeID uint) (bool, error)

	ListBySession(ctx context.Context, sessionID uint, status *models.BookingStatus) ([]models.Booking, error)
	ListByRequester(ctx context.Context, requesterID string) ([]models.Booking, error)
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Save(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Save(booking).Error
}

func (r *bookingRepository) CountSeatsTaken(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("session_id = ? AND status IN ?", sessionID,
			[]models.BookingStatus{models.BookingConfirmed, models.BookingAttended}).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountActiveBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("session_id = ? AND status IN ?", sessionID, activeStatuses).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) FindActiveByRequesterAndSession(ctx context.Context, tx *gorm.DB, requesterID string, sessionID uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("requester_id = ? AND session_id = ? AND status IN ?", requesterID, sessionID, activeStatuses).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindActiveByRequesterHostStart(ctx context.Context, tx *gorm.DB, requesterID, hostID string, startAt time.Time) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("requester_id = ? AND host_id = ? AND start_at_utc = ? AND kind = ? AND status IN ?",
			requesterID, hostID, startAt, models.KindOneOnOne, activeStatuses).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindActiveByWindowAndStart(ctx context.Context, tx *gorm.DB, windowID uint, startAt time.Time) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("window_id = ? AND start_at_utc = ? AND status IN ?", windowID, startAt, activeStatuses).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) CountActiveByHostOnDay(ctx context.Context, tx *gorm.DB, hostID string, dayStart, dayEnd time.Time) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("host_id = ? AND start_at_utc >= ? AND start_at_utc < ? AND status IN ?",
			hostID, dayStart, dayEnd, activeStatuses).
		Count(&count).Error
	return count, err
}

// ExistsHostOverlap reports whether any active booking for the host overlaps
// [from, to). Used for buffer-time conflicts around one-on-one slots.
func (r *bookingRepository) ExistsHostOverlap(ctx context.Context, tx *gorm.DB, hostID string, from, to time.Time, excludeID uint) (bool, error) {
	var count int64
	q := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("host_id = ? AND status IN ? AND start_at_utc < ? AND end_at_utc > ?",
			hostID, activeStatuses, to, from)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *bookingRepository) ListBySession(ctx context.Context, sessionID uint, status *models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) ListByRequester(ctx context.Context, requesterID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("start_at_utc DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
