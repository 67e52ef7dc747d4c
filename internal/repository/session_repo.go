package repository

import (
	"context"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uint) (*models.Session, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error)
	FindByHostAndStart(ctx context.Context, tx *gorm.DB, hostID, courseID string, startAt time.Time) (*models.Session, error)
	ListByHost(ctx context.Context, hostID string) ([]models.Session, error)
	Save(ctx context.Context, tx *gorm.DB, session *models.Session) error
	GetDB() *gorm.DB
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id uint) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByIDForUpdate acquires a row-level lock on the session within the given
// transaction. All seat arithmetic happens under this lock.
func (r *sessionRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error) {
	var session models.Session
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByHostAndStart locates a scheduled session at an exact start instant,
// used by the recurrence expander to bind group occurrences.
func (r *sessionRepository) FindByHostAndStart(ctx context.Context, tx *gorm.DB, hostID, courseID string, startAt time.Time) (*models.Session, error) {
	var session models.Session
	q := tx.WithContext(ctx).
		Where("host_id = ? AND start_at_utc = ?", hostID, startAt)
	if courseID != "" {
		q = q.Where("course_id = ?", courseID)
	}
	if err := q.First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListByHost(ctx context.Context, hostID string) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("start_at_utc ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Save(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	return tx.WithContext(ctx).Save(session).Error
}
