package service

import (
	"context"
	"testing"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockPolicyRepo struct {
	byHostCourse map[string]*models.BookingPolicy
	hostDefault  map[string]*models.BookingPolicy
	upserted     *models.BookingPolicy
}

func (m *mockPolicyRepo) Upsert(ctx context.Context, policy *models.BookingPolicy) error {
	m.upserted = policy
	return nil
}

func (m *mockPolicyRepo) FindByHostAndCourse(ctx context.Context, hostID, courseID string) (*models.BookingPolicy, error) {
	if p, ok := m.byHostCourse[hostID+"/"+courseID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPolicyRepo) FindHostDefault(ctx context.Context, hostID string) (*models.BookingPolicy, error) {
	if p, ok := m.hostDefault[hostID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestEffectivePolicyCourseOverride(t *testing.T) {
	repo := &mockPolicyRepo{
		byHostCourse: map[string]*models.BookingPolicy{
			"host-1/course-9": {HostID: "host-1", CourseID: "course-9", MinNoticeHours: 48},
		},
		hostDefault: map[string]*models.BookingPolicy{
			"host-1": {HostID: "host-1", MinNoticeHours: 12},
		},
	}
	svc := NewPolicyService(repo)

	policy, err := svc.EffectivePolicy(context.Background(), "host-1", "course-9")
	require.NoError(t, err)
	assert.Equal(t, 48, policy.MinNoticeHours, "course row wins")

	policy, err = svc.EffectivePolicy(context.Background(), "host-1", "course-other")
	require.NoError(t, err)
	assert.Equal(t, 12, policy.MinNoticeHours, "falls back to host default")
}

func TestEffectivePolicyEngineDefault(t *testing.T) {
	svc := NewPolicyService(&mockPolicyRepo{})

	policy, err := svc.EffectivePolicy(context.Background(), "host-without-rows", "")
	require.NoError(t, err)
	assert.Equal(t, "host-without-rows", policy.HostID)
	assert.Equal(t, 0, policy.MinNoticeHours)
	assert.Equal(t, 24, policy.OfferWindowHours)
	assert.True(t, policy.HostBypassesCancelWindow)
}

func TestUpsertPolicyDefaultsOfferWindow(t *testing.T) {
	repo := &mockPolicyRepo{}
	svc := NewPolicyService(repo)

	require.NoError(t, svc.UpsertPolicy(context.Background(), &models.BookingPolicy{HostID: "host-1"}))
	assert.Equal(t, 24, repo.upserted.OfferWindowHours)
}
