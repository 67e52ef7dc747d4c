package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/recurrence"
	"github.com/Jvictorio09/fluentory-booking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateSeriesRequest struct {
	RequesterID string
	HostID      string
	CourseID    string
	Kind        models.BookingKind

	Frequency  models.SeriesFrequency
	Interval   int
	DaysOfWeek string // comma-separated, 0=Monday
	Count      *int
	Until      *time.Time

	// Anchor is the first desired occurrence start; every occurrence uses
	// the same duration.
	AnchorStartAtUTC time.Time
	DurationMinutes  int
	Note             string
}

type SeriesService interface {
	// CreateSeries expands the rule and books each occurrence independently.
	// Occurrences that cannot be booked become recorded gaps; they never
	// abort the series.
	CreateSeries(ctx context.Context, req CreateSeriesRequest) (*models.BookingSeries, error)
	GetSeries(ctx context.Context, id uint) (*models.BookingSeries, error)

	// CancelSeries cancels every remaining active booking in the series.
	// Bookings already terminal are left untouched.
	CancelSeries(ctx context.Context, id uint, actorID string) (*models.BookingSeries, error)
}

type seriesService struct {
	seriesRepo  repository.SeriesRepository
	sessionRepo repository.SessionRepository
	windowRepo  repository.AvailabilityRepository
	bookings    BookingService
	publisher   EventPublisher
	horizonCap  int
	logger      *zap.Logger
}

func NewSeriesService(
	seriesRepo repository.SeriesRepository,
	sessionRepo repository.SessionRepository,
	windowRepo repository.AvailabilityRepository,
	bookings BookingService,
	publisher EventPublisher,
	horizonCap int,
	logger *zap.Logger,
) SeriesService {
	return &seriesService{
		seriesRepo:  seriesRepo,
		sessionRepo: sessionRepo,
		windowRepo:  windowRepo,
		bookings:    bookings,
		publisher:   publisher,
		horizonCap:  horizonCap,
		logger:      logger,
	}
}

func (s *seriesService) CreateSeries(ctx context.Context, req CreateSeriesRequest) (*models.BookingSeries, error) {
	if req.DurationMinutes <= 0 {
		return nil, ErrInvalidRule
	}
	days, err := recurrence.ParseDays(req.DaysOfWeek)
	if err != nil {
		return nil, ErrInvalidRule
	}
	rule := recurrence.Rule{
		Frequency:  recurrence.Frequency(req.Frequency),
		Interval:   req.Interval,
		DaysOfWeek: days,
		Count:      req.Count,
		Until:      req.Until,
	}
	occurrences, err := rule.Expand(req.AnchorStartAtUTC, time.Duration(req.DurationMinutes)*time.Minute, s.horizonCap)
	if err != nil {
		return nil, ErrInvalidRule
	}
	if len(occurrences) == 0 {
		return nil, ErrInvalidRule
	}

	series := &models.BookingSeries{
		GroupID:         uuid.New(),
		RequesterID:     req.RequesterID,
		HostID:          req.HostID,
		CourseID:        req.CourseID,
		Kind:            req.Kind,
		Status:          models.SeriesActive,
		Frequency:       req.Frequency,
		Interval:        req.Interval,
		DaysOfWeek:      req.DaysOfWeek,
		OccurrenceCount: req.Count,
		UntilAtUTC:      req.Until,
	}
	if err := s.seriesRepo.Create(ctx, series); err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}

	em := newEmitter(s.publisher, s.logger)
	db := s.seriesRepo.GetDB()

	// Each occurrence books in its own transaction so one contended slot
	// cannot roll back seats already won.
	for _, occ := range occurrences {
		item := models.SeriesItem{
			SeriesID:        series.ID,
			OccurrenceIndex: occ.Index,
			StartAtUTC:      occ.Start,
		}

		bookingID, gapReason := s.bookOccurrence(ctx, series, req, occ)
		item.BookingID = bookingID
		item.GapReason = gapReason

		if err := s.seriesRepo.CreateItem(ctx, db, &item); err != nil {
			return nil, fmt.Errorf("record series item: %w", err)
		}
		if gapReason != "" {
			em.queue(EventSeriesGapCreated, SeriesGapEvent{
				SeriesID:        series.ID,
				GroupID:         series.GroupID.String(),
				OccurrenceIndex: occ.Index,
				StartAtUTC:      occ.Start,
				Reason:          gapReason,
			})
		}
		series.Items = append(series.Items, item)
	}
	em.flush()

	s.logger.Info("series created",
		zap.Uint("series_id", series.ID),
		zap.String("group_id", series.GroupID.String()),
		zap.Int("occurrences", len(occurrences)),
	)
	return series, nil
}

// bookOccurrence attempts one occurrence and reports a gap reason instead of
// an error for conflicts and policy violations.
func (s *seriesService) bookOccurrence(ctx context.Context, series *models.BookingSeries, req CreateSeriesRequest, occ recurrence.Occurrence) (*uint, string) {
	switch series.Kind {
	case models.KindGroup:
		session, err := s.sessionRepo.FindByHostAndStart(ctx, s.sessionRepo.GetDB(), series.HostID, series.CourseID, occ.Start)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "no session scheduled at this time"
			}
			return nil, err.Error()
		}
		result, err := s.bookings.RequestGroupBooking(ctx, GroupBookingRequest{
			SessionID:   session.ID,
			RequesterID: series.RequesterID,
			Note:        req.Note,
		})
		if err != nil {
			return nil, gapReason(err)
		}
		if result.Booking == nil {
			// The seat went to the waitlist; the occurrence stays a gap and
			// the entry rides the normal promotion path.
			return nil, "session full, requester waitlisted"
		}
		return &result.Booking.ID, ""

	case models.KindOneOnOne:
		window := s.findWindowFor(ctx, series.HostID, series.CourseID, occ.Start, occ.End)
		if window == nil {
			return nil, "no availability window covers this time"
		}
		booking, err := s.bookings.RequestOneOnOneBooking(ctx, OneOnOneBookingRequest{
			WindowID:    window.ID,
			RequesterID: series.RequesterID,
			StartAtUTC:  occ.Start,
			EndAtUTC:    occ.End,
			Note:        req.Note,
		})
		if err != nil {
			return nil, gapReason(err)
		}
		return &booking.ID, ""
	}
	return nil, "unknown booking kind"
}

func gapReason(err error) string {
	if IsConflict(err) || IsPolicyViolation(err) || errors.Is(err, ErrSessionNotOpen) {
		return err.Error()
	}
	return "booking failed: " + err.Error()
}

// findWindowFor returns the first active window whose occurrence contains
// [start, end).
func (s *seriesService) findWindowFor(ctx context.Context, hostID, courseID string, start, end time.Time) *models.AvailabilityWindow {
	windows, err := s.windowRepo.ListActiveByHost(ctx, hostID)
	if err != nil {
		return nil
	}
	for i := range windows {
		w := &windows[i]
		if w.CourseID != "" && w.CourseID != courseID {
			continue
		}
		if w.IsConsumed {
			continue
		}
		if _, _, err := resolveSlot(w, start, end); err == nil {
			return w
		}
	}
	return nil
}

func (s *seriesService) GetSeries(ctx context.Context, id uint) (*models.BookingSeries, error) {
	series, err := s.seriesRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, err
	}
	return series, nil
}

func (s *seriesService) CancelSeries(ctx context.Context, id uint, actorID string) (*models.BookingSeries, error) {
	series, err := s.GetSeries(ctx, id)
	if err != nil {
		return nil, err
	}
	if series.Status == models.SeriesCancelled {
		return series, nil
	}

	reason := "series cancelled by " + actorID
	for i := range series.Items {
		item := &series.Items[i]
		if item.BookingID == nil {
			continue
		}
		if _, err := s.bookings.Cancel(ctx, *item.BookingID, SystemActor, reason); err != nil {
			// Terminal bookings stay as they are.
			if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrBookingNotFound) {
				continue
			}
			return nil, err
		}
	}

	series.Status = models.SeriesCancelled
	if err := s.seriesRepo.Save(ctx, s.seriesRepo.GetDB(), series); err != nil {
		return nil, err
	}

	s.logger.Info("series cancelled",
		zap.Uint("series_id", id),
		zap.String("actor_id", actorID),
	)
	return series, nil
}
