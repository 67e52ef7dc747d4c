package service

import (
	"context"
	"errors"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/repository"
	"github.com/Jvictorio09/fluentory-booking/internal/timeutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GroupBookingRequest struct {
	SessionID   uint
	RequesterID string
	Note        string
}

type OneOnOneBookingRequest struct {
	WindowID    uint
	RequesterID string
	StartAtUTC  time.Time
	EndAtUTC    time.Time
	Note        string
}

// GroupBookingResult carries either a booking or the waitlist entry created
// when the session was full, never both.
type GroupBookingResult struct {
	Booking       *models.Booking
	WaitlistEntry *models.WaitlistEntry
}

type RescheduleRequest struct {
	// Group reschedules target a new session; one-on-one reschedules target
	// a new window occurrence.
	NewSessionID uint
	NewWindowID  uint
	StartAtUTC   time.Time
	EndAtUTC     time.Time
	ActorID      string
}

type BookingService interface {
	RequestGroupBooking(ctx context.Context, req GroupBookingRequest) (*GroupBookingResult, error)
	RequestOneOnOneBooking(ctx context.Context, req OneOnOneBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBySession(ctx context.Context, sessionID uint, status *models.BookingStatus) ([]models.Booking, error)
	ListByRequester(ctx context.Context, requesterID string) ([]models.Booking, error)

	Approve(ctx context.Context, id uint, hostID, note string) (*models.Booking, error)
	Decline(ctx context.Context, id uint, hostID, note string) (*models.Booking, error)
	Cancel(ctx context.Context, id uint, actorID, reason string) (*models.Booking, error)
	Reschedule(ctx context.Context, id uint, req RescheduleRequest) (*models.Booking, error)
	MarkAttendance(ctx context.Context, id uint, hostID string, attended bool) (*models.Booking, error)
}

type bookingService struct {
	bookingRepo  repository.BookingRepository
	sessionRepo  repository.SessionRepository
	windowRepo   repository.AvailabilityRepository
	waitlistRepo repository.WaitlistRepository
	policies     PolicyService
	publisher    EventPublisher
	logger       *zap.Logger
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	sessionRepo repository.SessionRepository,
	windowRepo repository.AvailabilityRepository,
	waitlistRepo repository.WaitlistRepository,
	policies PolicyService,
	publisher EventPublisher,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		sessionRepo:  sessionRepo,
		windowRepo:   windowRepo,
		waitlistRepo: waitlistRepo,
		policies:     policies,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *bookingService) RequestGroupBooking(ctx context.Context, req GroupBookingRequest) (*GroupBookingResult, error) {
	em := newEmitter(s.publisher, s.logger)
	var result *GroupBookingResult

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.createGroupBookingTx(ctx, tx, req, em)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	em.flush()

	if result.Booking != nil {
		s.logger.Info("group booking created",
			zap.Uint("booking_id", result.Booking.ID),
			zap.Uint("session_id", req.SessionID),
			zap.String("requester_id", req.RequesterID),
			zap.String("status", string(result.Booking.Status)),
		)
	} else {
		s.logger.Info("requester waitlisted",
			zap.Uint("entry_id", result.WaitlistEntry.ID),
			zap.Uint("session_id", req.SessionID),
			zap.String("requester_id", req.RequesterID),
		)
	}
	return result, nil
}

// createGroupBookingTx holds the session row lock while it re-reads seat
// counts, so two racing requests for the last seat serialize and the loser
// sees a full session.
func (s *bookingService) createGroupBookingTx(ctx context.Context, tx *gorm.DB, req GroupBookingRequest, em *emitter) (*GroupBookingResult, error) {
	session, err := s.sessionRepo.FindByIDForUpdate(ctx, tx, req.SessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	now := time.Now().UTC()
	if !session.BookingOpen(now) {
		// A session closed for fullness reports full; other non-open states
		// (live, completed, cancelled, past start) report not open.
		if session.Status == models.SessionBookingClosed && now.Before(session.StartAtUTC) {
			return nil, ErrSessionFull
		}
		return nil, ErrSessionNotOpen
	}

	if _, err := s.bookingRepo.FindActiveByRequesterAndSession(ctx, tx, req.RequesterID, session.ID); err == nil {
		return nil, ErrDuplicateBooking
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.waitlistRepo.FindActiveBySessionAndRequester(ctx, tx, session.ID, req.RequesterID); err == nil {
		return nil, ErrDuplicateBooking
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	policy, err := s.policies.EffectivePolicy(ctx, session.HostID, session.CourseID)
	if err != nil {
		return nil, err
	}
	if err := checkMinNotice(policy, now, session.StartAtUTC); err != nil {
		return nil, err
	}

	taken, err := s.bookingRepo.CountSeatsTaken(ctx, tx, session.ID)
	if err != nil {
		return nil, err
	}
	offered, err := s.waitlistRepo.CountOffered(ctx, tx, session.ID)
	if err != nil {
		return nil, err
	}
	// Outstanding offers reserve their seats so the queue head cannot be
	// sniped by a direct request.
	remaining := session.Capacity - int(taken) - int(offered)

	if remaining <= 0 {
		if !session.WaitlistEnabled {
			return nil, ErrSessionFull
		}
		entry := &models.WaitlistEntry{
			SessionID:   session.ID,
			RequesterID: req.RequesterID,
			Status:      models.WaitlistWaiting,
		}
		if err := s.waitlistRepo.Create(ctx, tx, entry); err != nil {
			return nil, err
		}
		return &GroupBookingResult{WaitlistEntry: entry}, nil
	}

	booking := &models.Booking{
		Ref:              uuid.New(),
		Kind:             models.KindGroup,
		HostID:           session.HostID,
		RequesterID:      req.RequesterID,
		CourseID:         session.CourseID,
		StartAtUTC:       session.StartAtUTC,
		EndAtUTC:         session.EndAtUTC,
		SessionID:        &session.ID,
		RequiredApproval: policy.RequiresApproval(models.KindGroup),
		RequesterNote:    req.Note,
	}
	if booking.RequiredApproval {
		booking.Status = models.BookingPending
	} else {
		booking.Status = models.BookingConfirmed
	}
	if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
		return nil, err
	}

	if booking.Status == models.BookingConfirmed {
		if err := closeIfFullTx(ctx, tx, s.sessionRepo, s.bookingRepo, session); err != nil {
			return nil, err
		}
		em.queue(EventBookingConfirmed, bookingEvent(booking))
	} else {
		em.queue(EventBookingPending, bookingEvent(booking))
	}
	return &GroupBookingResult{Booking: booking}, nil
}

func (s *bookingService) RequestOneOnOneBooking(ctx context.Context, req OneOnOneBookingRequest) (*models.Booking, error) {
	em := newEmitter(s.publisher, s.logger)
	var booking *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.createOneOnOneBookingTx(ctx, tx, req, em)
		if err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	em.flush()

	s.logger.Info("one-on-one booking created",
		zap.Uint("booking_id", booking.ID),
		zap.Uint("window_id", req.WindowID),
		zap.String("requester_id", req.RequesterID),
		zap.String("status", string(booking.Status)),
	)
	return booking, nil
}

// createOneOnOneBookingTx holds the window row lock so two racing requests
// for the same slot serialize; the loser finds the slot taken.
func (s *bookingService) createOneOnOneBookingTx(ctx context.Context, tx *gorm.DB, req OneOnOneBookingRequest, em *emitter) (*models.Booking, error) {
	window, err := s.windowRepo.FindByIDForUpdate(ctx, tx, req.WindowID)
	if err != nil {
		return nil, ErrWindowNotFound
	}
	if window.IsBlocked || window.IsConsumed {
		return nil, ErrSlotUnavailable
	}

	start, end, err := resolveSlot(window, req.StartAtUTC, req.EndAtUTC)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !start.After(now) {
		return nil, ErrSlotUnavailable
	}

	if _, err := s.bookingRepo.FindActiveByWindowAndStart(ctx, tx, window.ID, start); err == nil {
		return nil, ErrSlotUnavailable
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.bookingRepo.FindActiveByRequesterHostStart(ctx, tx, req.RequesterID, window.HostID, start); err == nil {
		return nil, ErrDuplicateBooking
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	policy, err := s.policies.EffectivePolicy(ctx, window.HostID, window.CourseID)
	if err != nil {
		return nil, err
	}
	if err := checkMinNotice(policy, now, start); err != nil {
		return nil, err
	}

	// Buffers widen the occupied range on both sides of existing bookings.
	bufFrom := start.Add(-time.Duration(policy.BufferAfterMinutes) * time.Minute)
	bufTo := end.Add(time.Duration(policy.BufferBeforeMinutes) * time.Minute)
	busy, err := s.bookingRepo.ExistsHostOverlap(ctx, tx, window.HostID, bufFrom, bufTo, 0)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrSlotUnavailable
	}

	if policy.MaxBookingsPerDay != nil {
		dayStart := timeutil.DayStartUTC(start)
		count, err := s.bookingRepo.CountActiveByHostOnDay(ctx, tx, window.HostID, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		if int(count) >= *policy.MaxBookingsPerDay {
			return nil, ErrDailyCapReached
		}
	}

	booking := &models.Booking{
		Ref:              uuid.New(),
		Kind:             models.KindOneOnOne,
		HostID:           window.HostID,
		RequesterID:      req.RequesterID,
		CourseID:         window.CourseID,
		StartAtUTC:       start,
		EndAtUTC:         end,
		WindowID:         &window.ID,
		RequiredApproval: policy.RequiresApproval(models.KindOneOnOne),
		RequesterNote:    req.Note,
	}
	if booking.RequiredApproval {
		booking.Status = models.BookingPending
	} else {
		booking.Status = models.BookingConfirmed
	}
	if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
		return nil, err
	}

	if booking.Status == models.BookingConfirmed && window.Kind == models.WindowOneOff {
		window.IsConsumed = true
		if err := s.windowRepo.Save(ctx, tx, window); err != nil {
			return nil, err
		}
	}

	if booking.Status == models.BookingConfirmed {
		em.queue(EventBookingConfirmed, bookingEvent(booking))
	} else {
		em.queue(EventBookingPending, bookingEvent(booking))
	}
	return booking, nil
}

// resolveSlot checks the requested instants against the window. One-off
// windows are booked whole; recurring windows accept any slot contained in
// the occurrence resolved for that day in the window's timezone snapshot.
func resolveSlot(window *models.AvailabilityWindow, start, end time.Time) (time.Time, time.Time, error) {
	switch window.Kind {
	case models.WindowOneOff:
		if window.StartAtUTC == nil || window.EndAtUTC == nil {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		if !start.Equal(*window.StartAtUTC) {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		if end.IsZero() {
			end = *window.EndAtUTC
		}
		if !end.Equal(*window.EndAtUTC) {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		return start, end, nil

	case models.WindowRecurring:
		if window.DayOfWeek == nil {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		loc, err := timeutil.ZoneOrUTC(window.TimezoneSnapshot)
		if err != nil {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		local := start.In(loc)
		if timeutil.WeekdayIndex(local.Weekday()) != *window.DayOfWeek {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		if !window.InValidity(timeutil.DayStartUTC(start)) {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		occStart, err := timeutil.ResolveWall(local, window.StartTime, window.TimezoneSnapshot)
		if err != nil {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		occEnd, err := timeutil.ResolveWall(local, window.EndTime, window.TimezoneSnapshot)
		if err != nil {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		if end.IsZero() {
			end = occEnd
		}
		if start.Before(occStart) || end.After(occEnd) || !end.After(start) {
			return time.Time{}, time.Time{}, ErrSlotUnavailable
		}
		return start, end, nil
	}
	return time.Time{}, time.Time{}, ErrSlotUnavailable
}

func checkMinNotice(policy *models.BookingPolicy, now, startAt time.Time) error {
	if policy.MinNoticeHours <= 0 {
		return nil
	}
	if startAt.Before(now.Add(time.Duration(policy.MinNoticeHours) * time.Hour)) {
		return ErrNoticeTooShort
	}
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBySession(ctx context.Context, sessionID uint, status *models.BookingStatus) ([]models.Booking, error) {
	return s.bookingRepo.ListBySession(ctx, sessionID, status)
}

func (s *bookingService) ListByRequester(ctx context.Context, requesterID string) ([]models.Booking, error) {
	return s.bookingRepo.ListByRequester(ctx, requesterID)
}

func (s *bookingService) Approve(ctx context.Context, id uint, hostID, note string) (*models.Booking, error) {
	em := newEmitter(s.publisher, s.logger)
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrBookingNotFound
		}
		if booking.Status != models.BookingPending {
			return ErrNotPending
		}

		// Approval must re-check the resource: other requests may have taken
		// the seat or slot while this one sat pending.
		switch booking.Kind {
		case models.KindGroup:
			session, err := s.sessionRepo.FindByIDForUpdate(ctx, tx, *booking.SessionID)
			if err != nil {
				return ErrSessionNotFound
			}
			taken, err := s.bookingRepo.CountSeatsTaken(ctx, tx, session.ID)
			if err != nil {
				return err
			}
			offered, err := s.waitlistRepo.CountOffered(ctx, tx, session.ID)
			if err != nil {
				return err
			}
			if int(taken)+int(offered) >= session.Capacity {
				return ErrSessionFull
			}
			booking.Status = models.BookingConfirmed
			if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
				return err
			}
			if err := closeIfFullTx(ctx, tx, s.sessionRepo, s.bookingRepo, session); err != nil {
				return err
			}

		case models.KindOneOnOne:
			window, err := s.windowRepo.FindByIDForUpdate(ctx, tx, *booking.WindowID)
			if err != nil {
				return ErrWindowNotFound
			}
			if window.IsBlocked || window.IsConsumed {
				return ErrSlotUnavailable
			}
			booking.Status = models.BookingConfirmed
			if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
				return err
			}
			if window.Kind == models.WindowOneOff {
				window.IsConsumed = true
				if err := s.windowRepo.Save(ctx, tx, window); err != nil {
					return err
				}
			}
		}

		now := time.Now().UTC()
		booking.DecisionAt = &now
		booking.DecidedBy = hostID
		booking.HostNote = note
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}

		em.queue(EventBookingConfirmed, bookingEvent(booking))
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	em.flush()

	s.logger.Info("booking approved", zap.Uint("booking_id", id), zap.String("host_id", hostID))
	return result, nil
}

func (s *bookingService) Decline(ctx context.Context, id uint, hostID, note string) (*models.Booking, error) {
	em := newEmitter(s.publisher, s.logger)
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrBookingNotFound
		}
		if booking.Status != models.BookingPending {
			return ErrNotPending
		}

		now := time.Now().UTC()
		booking.Status = models.BookingDeclined
		booking.DecisionAt = &now
		booking.DecidedBy = hostID
		booking.HostNote = note
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}

		em.queue(EventBookingDeclined, bookingEvent(booking))
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	em.flush()

	s.logger.Info("booking declined", zap.Uint("booking_id", id), zap.String("host_id", hostID))
	return result, nil
}

func (s *bookingService) Cancel(ctx context.Context, id uint, actorID, reason string) (*models.Booking, error) {
	em := newEmitter(s.publisher, s.logger)
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrBookingNotFound
		}
		if !booking.Status.CanTransition(models.BookingCancelled) {
			return ErrInvalidTransition
		}

		now := time.Now().UTC()
		if booking.Status == models.BookingConfirmed {
			policy, err := s.policies.EffectivePolicy(ctx, booking.HostID, booking.CourseID)
			if err != nil {
				return err
			}
			if err := checkCancelWindow(policy, booking, actorID, now); err != nil {
				return err
			}
		}

		wasConfirmed := booking.Status == models.BookingConfirmed
		booking.Status = models.BookingCancelled
		booking.CancelledBy = actorID
		booking.CancelledAt = &now
		booking.CancelReason = reason
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}

		if wasConfirmed {
			if err := s.releaseSeatTx(ctx, tx, booking, em); err != nil {
				return err
			}
		}

		em.queue(EventBookingCancelled, bookingEvent(booking))
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	em.flush()

	s.logger.Info("booking cancelled",
		zap.Uint("booking_id", id),
		zap.String("cancelled_by", actorID),
	)
	return result, nil
}

// SystemActor marks engine-initiated cancellations, which are exempt from
// the requester cancel window.
const SystemActor = "system"

func checkCancelWindow(policy *models.BookingPolicy, booking *models.Booking, actorID string, now time.Time) error {
	if policy.CancelWindowHours <= 0 {
		return nil
	}
	if actorID == SystemActor {
		return nil
	}
	if actorID == booking.HostID && policy.HostBypassesCancelWindow {
		return nil
	}
	deadline := booking.StartAtUTC.Add(-time.Duration(policy.CancelWindowHours) * time.Hour)
	if now.After(deadline) {
		return ErrCancelWindowExpired
	}
	return nil
}

// releaseSeatTx frees the resource a confirmed booking held: the group seat
// goes to the waitlist head, a one-off window becomes bookable again, and a
// session closed for fullness reopens.
func (s *bookingService) releaseSeatTx(ctx context.Context, tx *gorm.DB, booking *models.Booking, em *emitter) error {
	switch booking.Kind {
	case models.KindGroup:
		session, err := s.sessionRepo.FindByIDForUpdate(ctx, tx, *booking.SessionID)
		if err != nil {
			return ErrSessionNotFound
		}
		if session.Status == models.SessionBookingClosed {
			session.Status = models.SessionScheduled
			if err := s.sessionRepo.Save(ctx, tx, session); err != nil {
				return err
			}
		}
		if session.WaitlistEnabled && session.Status == models.SessionScheduled {
			policy, err := s.policies.EffectivePolicy(ctx, session.HostID, session.CourseID)
			if err != nil {
				return err
			}
			if _, err := promoteNextWaiting(ctx, tx, s.waitlistRepo, session, policy.OfferWindow(), em); err != nil {
				return err
			}
		}

	case models.KindOneOnOne:
		window, err := s.windowRepo.FindByIDForUpdate(ctx, tx, *booking.WindowID)
		if err != nil {
			return ErrWindowNotFound
		}
		if window.IsConsumed {
			window.IsConsumed = false
			if err := s.windowRepo.Save(ctx, tx, window); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reschedule atomically retires the old booking and creates its replacement.
// If the new slot cannot be booked the whole operation rolls back and the
// old booking keeps its seat.
func (s *bookingService) Reschedule(ctx context.Context, id uint, req RescheduleRequest) (*models.Booking, error) {
	em := newEmitter(s.publisher, s.logger)
	var replacement *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrBookingNotFound
		}
		if booking.Status != models.BookingConfirmed {
			return ErrNotConfirmed
		}

		now := time.Now().UTC()
		policy, err := s.policies.EffectivePolicy(ctx, booking.HostID, booking.CourseID)
		if err != nil {
			return err
		}
		if err := checkCancelWindow(policy, booking, req.ActorID, now); err != nil {
			return err
		}

		// Retire the old booking first so its seat does not block the new
		// one when both target the same resource.
		booking.Status = models.BookingRescheduled
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}
		if err := s.releaseSeatTx(ctx, tx, booking, em); err != nil {
			return err
		}

		switch booking.Kind {
		case models.KindGroup:
			result, err := s.createGroupBookingTx(ctx, tx, GroupBookingRequest{
				SessionID:   req.NewSessionID,
				RequesterID: booking.RequesterID,
				Note:        booking.RequesterNote,
			}, em)
			if err != nil {
				return err
			}
			if result.Booking == nil {
				// A reschedule never parks the requester on a waitlist.
				return ErrSessionFull
			}
			replacement = result.Booking

		case models.KindOneOnOne:
			b, err := s.createOneOnOneBookingTx(ctx, tx, OneOnOneBookingRequest{
				WindowID:    req.NewWindowID,
				RequesterID: booking.RequesterID,
				StartAtUTC:  req.StartAtUTC,
				EndAtUTC:    req.EndAtUTC,
				Note:        booking.RequesterNote,
			}, em)
			if err != nil {
				return err
			}
			replacement = b
		}

		booking.RescheduledToID = &replacement.ID
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}

		em.queue(EventBookingRescheduled, bookingEvent(booking))
		return nil
	})
	if err != nil {
		return nil, err
	}
	em.flush()

	s.logger.Info("booking rescheduled",
		zap.Uint("old_booking_id", id),
		zap.Uint("new_booking_id", replacement.ID),
	)
	return replacement, nil
}

func (s *bookingService) MarkAttendance(ctx context.Context, id uint, hostID string, attended bool) (*models.Booking, error) {
	var result *models.Booking
	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrBookingNotFound
		}
		if booking.Status != models.BookingConfirmed {
			return ErrNotConfirmed
		}
		if time.Now().UTC().Before(booking.StartAtUTC) {
			return ErrNotStarted
		}

		// Only the status moves; the approval decision fields stay as the
		// audit record of who confirmed the booking and when.
		if attended {
			booking.Status = models.BookingAttended
		} else {
			booking.Status = models.BookingNoShow
		}
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("attendance marked",
		zap.Uint("booking_id", id),
		zap.String("host_id", hostID),
		zap.Bool("attended", attended),
	)
	return result, nil
}
