package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/repository"
	"gorm.io/gorm"
)

type PolicyService interface {
	// EffectivePolicy resolves (host, course) -> host default -> engine default.
	EffectivePolicy(ctx context.Context, hostID, courseID string) (*models.BookingPolicy, error)
	UpsertPolicy(ctx context.Context, policy *models.BookingPolicy) error
}

type policyService struct {
	repo repository.PolicyRepository
}

func NewPolicyService(repo repository.PolicyRepository) PolicyService {
	return &policyService{repo: repo}
}

func (s *policyService) EffectivePolicy(ctx context.Context, hostID, courseID string) (*models.BookingPolicy, error) {
	if courseID != "" {
		policy, err := s.repo.FindByHostAndCourse(ctx, hostID, courseID)
		if err == nil {
			return policy, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup course policy: %w", err)
		}
	}

	policy, err := s.repo.FindHostDefault(ctx, hostID)
	if err == nil {
		return policy, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup host policy: %w", err)
	}

	return models.DefaultPolicy(hostID), nil
}

func (s *policyService) UpsertPolicy(ctx context.Context, policy *models.BookingPolicy) error {
	if policy.OfferWindowHours <= 0 {
		policy.OfferWindowHours = 24
	}
	if err := s.repo.Upsert(ctx, policy); err != nil {
		return fmt.Errorf("upsert policy: %w", err)
	}
	return nil
}
