package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/repository"
	"github.com/Jvictorio09/fluentory-booking/internal/timeutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SessionStatusView struct {
	Session        *models.Session
	SeatsTaken     int64
	RemainingSeats int
	Waiting        int64
}

type SessionService interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id uint) (*models.Session, error)
	ListByHost(ctx context.Context, hostID string) ([]models.Session, error)
	Status(ctx context.Context, id uint) (*SessionStatusView, error)

	// CloseIfFull is idempotent: sets booking_closed iff the session is full
	// and has no waitlist.
	CloseIfFull(ctx context.Context, id uint) (*models.Session, error)

	// AdvanceStatus applies the external lifecycle triggers
	// (scheduled -> live -> completed, or -> cancelled).
	AdvanceStatus(ctx context.Context, id uint, next models.SessionStatus) (*models.Session, error)

	// UpdateCapacity grows capacity and promotes waiting entries into the new
	// seats. Shrinking below current seats taken is rejected.
	UpdateCapacity(ctx context.Context, id uint, capacity int) (*models.Session, error)
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	bookingRepo  repository.BookingRepository
	waitlistRepo repository.WaitlistRepository
	policies     PolicyService
	publisher    EventPublisher
	logger       *zap.Logger
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	bookingRepo repository.BookingRepository,
	waitlistRepo repository.WaitlistRepository,
	policies PolicyService,
	publisher EventPublisher,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		bookingRepo:  bookingRepo,
		waitlistRepo: waitlistRepo,
		policies:     policies,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, session *models.Session) error {
	if session.Capacity < 1 {
		return ErrInvalidCapacity
	}
	if !session.EndAtUTC.After(session.StartAtUTC) {
		return ErrInvalidWindow
	}
	if _, err := timeutil.ZoneOrUTC(session.TimezoneSnapshot); err != nil {
		return ErrInvalidWindow
	}
	if session.TimezoneSnapshot == "" {
		session.TimezoneSnapshot = "UTC"
	}
	session.Status = models.SessionScheduled

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("session created",
		zap.Uint("session_id", session.ID),
		zap.String("host_id", session.HostID),
		zap.Int("capacity", session.Capacity),
		zap.Bool("waitlist_enabled", session.WaitlistEnabled),
	)
	return nil
}

func (s *sessionService) GetSession(ctx context.Context, id uint) (*models.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *sessionService) ListByHost(ctx context.Context, hostID string) ([]models.Session, error) {
	return s.sessionRepo.ListByHost(ctx, hostID)
}

func (s *sessionService) Status(ctx context.Context, id uint) (*SessionStatusView, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.sessionRepo.GetDB()
	taken, err := s.bookingRepo.CountSeatsTaken(ctx, db, id)
	if err != nil {
		return nil, err
	}

	var waiting int64
	entries, err := s.waitlistRepo.ListBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Status == models.WaitlistWaiting || e.Status == models.WaitlistOffered {
			waiting++
		}
	}

	remaining := session.Capacity - int(taken)
	if remaining < 0 {
		remaining = 0
	}
	return &SessionStatusView{
		Session:        session,
		SeatsTaken:     taken,
		RemainingSeats: remaining,
		Waiting:        waiting,
	}, nil
}

func (s *sessionService) CloseIfFull(ctx context.Context, id uint) (*models.Session, error) {
	var result *models.Session
	err := s.sessionRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.sessionRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrSessionNotFound
		}
		if err := closeIfFullTx(ctx, tx, s.sessionRepo, s.bookingRepo, session); err != nil {
			return err
		}
		result = session
		return nil
	})
	return result, err
}

// closeIfFullTx runs under the session row lock held by the caller.
func closeIfFullTx(ctx context.Context, tx *gorm.DB, sessions repository.SessionRepository, bookings repository.BookingRepository, session *models.Session) error {
	if session.Status != models.SessionScheduled || session.WaitlistEnabled {
		return nil
	}
	taken, err := bookings.CountSeatsTaken(ctx, tx, session.ID)
	if err != nil {
		return err
	}
	if int(taken) >= session.Capacity {
		session.Status = models.SessionBookingClosed
		return sessions.Save(ctx, tx, session)
	}
	return nil
}

func (s *sessionService) AdvanceStatus(ctx context.Context, id uint, next models.SessionStatus) (*models.Session, error) {
	var result *models.Session
	err := s.sessionRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.sessionRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrSessionNotFound
		}
		if !session.CanAdvanceTo(next) {
			return ErrInvalidTransition
		}
		session.Status = next
		if err := s.sessionRepo.Save(ctx, tx, session); err != nil {
			return err
		}
		result = session
		return nil
	})
	if err == nil {
		s.logger.Info("session status advanced",
			zap.Uint("session_id", id),
			zap.String("status", string(next)),
		)
	}
	return result, err
}

func (s *sessionService) UpdateCapacity(ctx context.Context, id uint, capacity int) (*models.Session, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	em := newEmitter(s.publisher, s.logger)
	var result *models.Session
	err := s.sessionRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.sessionRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrSessionNotFound
		}

		taken, err := s.bookingRepo.CountSeatsTaken(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		if capacity < session.Capacity {
			// Shrinking is only allowed while no non-terminal booking exists;
			// a pending request counts even though it holds no seat yet.
			active, err := s.bookingRepo.CountActiveBySession(ctx, tx, session.ID)
			if err != nil {
				return err
			}
			if active > 0 {
				return ErrCapacityLocked
			}
		}

		freed := capacity - session.Capacity
		session.Capacity = capacity
		if freed > 0 && session.Status == models.SessionBookingClosed {
			session.Status = models.SessionScheduled
		}
		if err := s.sessionRepo.Save(ctx, tx, session); err != nil {
			return err
		}

		if freed > 0 && session.WaitlistEnabled {
			policy, err := s.policies.EffectivePolicy(ctx, session.HostID, session.CourseID)
			if err != nil {
				return err
			}
			offered, err := s.waitlistRepo.CountOffered(ctx, tx, session.ID)
			if err != nil {
				return err
			}
			open := capacity - int(taken) - int(offered)
			for i := 0; i < open; i++ {
				entry, err := promoteNextWaiting(ctx, tx, s.waitlistRepo, session, policy.OfferWindow(), em)
				if err != nil {
					return err
				}
				if entry == nil {
					break
				}
			}
		}

		result = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	em.flush()

	s.logger.Info("session capacity updated",
		zap.Uint("session_id", id),
		zap.Int("capacity", capacity),
	)
	return result, nil
}

// promoteNextWaiting offers the freed seat to the head of the queue. Runs
// under the session row lock; returns nil when the queue is empty.
func promoteNextWaiting(ctx context.Context, tx *gorm.DB, waitlist repository.WaitlistRepository, session *models.Session, offerWindow time.Duration, em *emitter) (*models.WaitlistEntry, error) {
	entry, err := waitlist.FindFirstWaiting(ctx, tx, session.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	now := time.Now().UTC()
	entry.Status = models.WaitlistOffered
	entry.OfferedAt = &now
	if err := waitlist.Save(ctx, tx, entry); err != nil {
		return nil, err
	}

	expires := entry.OfferExpiresAt(offerWindow)
	em.queue(EventSeatOffered, WaitlistEvent{
		EntryID:     entry.ID,
		SessionID:   entry.SessionID,
		RequesterID: entry.RequesterID,
		OfferedAt:   entry.OfferedAt,
		ExpiresAt:   &expires,
	})
	return entry, nil
}
