package repository

import (
	"context"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PolicyRepository interface {
	Upsert(ctx context.Context, policy *models.BookingPolicy) error
	FindByHostAndCourse(ctx context.Context, hostID, courseID string) (*models.BookingPolicy, error)
	FindHostDefault(ctx context.Context, hostID string) (*models.BookingPolicy, error)
}

type policyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

// Upsert writes the (host, course) row, replacing rule fields on conflict.
// An empty course id is the host default row.
func (r *policyRepository) Upsert(ctx context.Context, policy *models.BookingPolicy) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "host_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"requires_approval_group", "requires_approval_one_on_one",
			"min_notice_hours", "cancel_window_hours",
			"buffer_before_minutes", "buffer_after_minutes",
			"max_bookings_per_day", "offer_window_hours",
			"host_bypasses_cancel_window", "updated_at",
		}),
	}).Create(policy).Error
}

func (r *policyRepository) FindByHostAndCourse(ctx context.Context, hostID, courseID string) (*models.BookingPolicy, error) {
	var policy models.BookingPolicy
	err := r.db.WithContext(ctx).
		Where("host_id = ? AND course_id = ?", hostID, courseID).
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *policyRepository) FindHostDefault(ctx context.Context, hostID string) (*models.BookingPolicy, error) {
	var policy models.BookingPolicy
	err := r.db.WithContext(ctx).
		Where("host_id = ? AND course_id = ''", hostID).
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}
