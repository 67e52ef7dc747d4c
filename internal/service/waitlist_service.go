package service

import (
	"context"
	"errors"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type WaitlistService interface {
	GetEntry(ctx context.Context, id uint) (*models.WaitlistEntry, error)
	ListBySession(ctx context.Context, sessionID uint) ([]models.WaitlistEntry, error)

	// AcceptOffer converts an offered entry into a confirmed booking. The
	// offer must still be inside its acceptance window.
	AcceptOffer(ctx context.Context, id uint, requesterID string) (*models.Booking, error)

	// ExpireSweep expires offers whose acceptance window has lapsed and
	// passes each freed seat to the next waiting entry. Returns the number
	// of entries expired. Meant to run periodically.
	ExpireSweep(ctx context.Context) (int, error)
}

type waitlistService struct {
	waitlistRepo repository.WaitlistRepository
	sessionRepo  repository.SessionRepository
	bookingRepo  repository.BookingRepository
	policies     PolicyService
	publisher    EventPublisher
	logger       *zap.Logger
}

func NewWaitlistService(
	waitlistRepo repository.WaitlistRepository,
	sessionRepo repository.SessionRepository,
	bookingRepo repository.BookingRepository,
	policies PolicyService,
	publisher EventPublisher,
	logger *zap.Logger,
) WaitlistService {
	return &waitlistService{
		waitlistRepo: waitlistRepo,
		sessionRepo:  sessionRepo,
		bookingRepo:  bookingRepo,
		policies:     policies,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *waitlistService) GetEntry(ctx context.Context, id uint) (*models.WaitlistEntry, error) {
	entry, err := s.waitlistRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *waitlistService) ListBySession(ctx context.Context, sessionID uint) ([]models.WaitlistEntry, error) {
	return s.waitlistRepo.ListBySession(ctx, sessionID)
}

func (s *waitlistService) AcceptOffer(ctx context.Context, id uint, requesterID string) (*models.Booking, error) {
	em := newEmitter(s.publisher, s.logger)
	var booking *models.Booking
	var lapsed bool

	err := s.sessionRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.waitlistRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrEntryNotFound
		}
		if entry.RequesterID != requesterID {
			return ErrEntryNotFound
		}
		if entry.Status != models.WaitlistOffered {
			return ErrOfferExpired
		}

		session, err := s.sessionRepo.FindByIDForUpdate(ctx, tx, entry.SessionID)
		if err != nil {
			return ErrSessionNotFound
		}
		policy, err := s.policies.EffectivePolicy(ctx, session.HostID, session.CourseID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if now.After(entry.OfferExpiresAt(policy.OfferWindow())) {
			// Lapsed but not yet swept. Expire it here, commit, and report
			// the expiry to the caller.
			lapsed = true
			return s.expireEntryTx(ctx, tx, entry, session, policy, em)
		}

		// The offer reserved the seat, but a capacity shrink or session
		// cancellation may have happened since.
		if !session.BookingOpen(now) {
			return ErrSessionNotOpen
		}
		taken, err := s.bookingRepo.CountSeatsTaken(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		if int(taken) >= session.Capacity {
			return ErrSessionFull
		}

		entry.Status = models.WaitlistAccepted
		entry.AcceptedAt = &now
		if err := s.waitlistRepo.Save(ctx, tx, entry); err != nil {
			return err
		}

		booking = &models.Booking{
			Ref:         uuid.New(),
			Kind:        models.KindGroup,
			HostID:      session.HostID,
			RequesterID: entry.RequesterID,
			CourseID:    session.CourseID,
			StartAtUTC:  session.StartAtUTC,
			EndAtUTC:    session.EndAtUTC,
			Status:      models.BookingConfirmed,
			SessionID:   &session.ID,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}
		if err := closeIfFullTx(ctx, tx, s.sessionRepo, s.bookingRepo, session); err != nil {
			return err
		}

		em.queue(EventBookingConfirmed, bookingEvent(booking))
		return nil
	})
	if err != nil {
		return nil, err
	}
	em.flush()
	if lapsed {
		return nil, ErrOfferExpired
	}

	s.logger.Info("waitlist offer accepted",
		zap.Uint("entry_id", id),
		zap.Uint("booking_id", booking.ID),
	)
	return booking, nil
}

func (s *waitlistService) ExpireSweep(ctx context.Context) (int, error) {
	// The cutoff trails an hour behind now as a loose pre-filter; the real
	// per-host offer window is applied under the row lock.
	cutoff := time.Now().UTC().Add(-time.Hour)
	stale, err := s.waitlistRepo.ListStaleOffered(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		em := newEmitter(s.publisher, s.logger)
		err := s.sessionRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			entry, err := s.waitlistRepo.FindByIDForUpdate(ctx, tx, stale[i].ID)
			if err != nil {
				return nil
			}
			if entry.Status != models.WaitlistOffered {
				return nil
			}
			session, err := s.sessionRepo.FindByIDForUpdate(ctx, tx, entry.SessionID)
			if err != nil {
				return nil
			}
			policy, err := s.policies.EffectivePolicy(ctx, session.HostID, session.CourseID)
			if err != nil {
				return err
			}
			if time.Now().UTC().Before(entry.OfferExpiresAt(policy.OfferWindow())) {
				return nil
			}
			if err := s.expireEntryTx(ctx, tx, entry, session, policy, em); err != nil {
				return err
			}
			expired++
			return nil
		})
		if err != nil {
			s.logger.Warn("waitlist expiry failed",
				zap.Uint("entry_id", stale[i].ID),
				zap.Error(err),
			)
			continue
		}
		em.flush()
	}

	if expired > 0 {
		s.logger.Info("waitlist offers expired", zap.Int("count", expired))
	}
	return expired, nil
}

// expireEntryTx marks the offer expired and passes the seat to the next
// waiting entry. Runs under the session row lock.
func (s *waitlistService) expireEntryTx(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry, session *models.Session, policy *models.BookingPolicy, em *emitter) error {
	now := time.Now().UTC()
	entry.Status = models.WaitlistExpired
	entry.ExpiredAt = &now
	if err := s.waitlistRepo.Save(ctx, tx, entry); err != nil {
		return err
	}

	em.queue(EventOfferExpired, WaitlistEvent{
		EntryID:     entry.ID,
		SessionID:   entry.SessionID,
		RequesterID: entry.RequesterID,
		OfferedAt:   entry.OfferedAt,
		ExpiresAt:   &now,
	})

	if session.Status != models.SessionScheduled {
		return nil
	}
	_, err := promoteNextWaiting(ctx, tx, s.waitlistRepo, session, policy.OfferWindow(), em)
	return err
}
