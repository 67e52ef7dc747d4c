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

// SlotOccurrence is one concrete bookable instant projected from a window.
type SlotOccurrence struct {
	WindowID   uint      `json:"window_id"`
	StartAtUTC time.Time `json:"start_at_utc"`
	EndAtUTC   time.Time `json:"end_at_utc"`
	Booked     bool      `json:"booked"`
}

type AvailabilityService interface {
	CreateRecurringWindow(ctx context.Context, window *models.AvailabilityWindow) error
	CreateOneOffWindow(ctx context.Context, window *models.AvailabilityWindow) error
	GetWindow(ctx context.Context, id uint) (*models.AvailabilityWindow, error)
	ListWindows(ctx context.Context, hostID string) ([]models.AvailabilityWindow, error)
	Block(ctx context.Context, id uint, reason string) (*models.AvailabilityWindow, error)
	Unblock(ctx context.Context, id uint) (*models.AvailabilityWindow, error)

	// ResolveOccurrences projects a host's windows onto concrete UTC slots
	// within [from, to). Blocked windows and consumed one-offs are skipped;
	// slots already backed by an active booking are marked Booked.
	ResolveOccurrences(ctx context.Context, hostID string, from, to time.Time) ([]SlotOccurrence, error)

	// ResolveWindowOccurrences is ResolveOccurrences restricted to one window.
	ResolveWindowOccurrences(ctx context.Context, windowID uint, from, to time.Time) ([]SlotOccurrence, error)
}

type availabilityService struct {
	windowRepo  repository.AvailabilityRepository
	bookingRepo repository.BookingRepository
	logger      *zap.Logger
}

func NewAvailabilityService(
	windowRepo repository.AvailabilityRepository,
	bookingRepo repository.BookingRepository,
	logger *zap.Logger,
) AvailabilityService {
	return &availabilityService{
		windowRepo:  windowRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

func (s *availabilityService) CreateRecurringWindow(ctx context.Context, window *models.AvailabilityWindow) error {
	window.Kind = models.WindowRecurring
	if window.DayOfWeek == nil || *window.DayOfWeek < 0 || *window.DayOfWeek > 6 {
		return ErrInvalidWindow
	}
	startMin, err := timeutil.ClockMinutes(window.StartTime)
	if err != nil {
		return ErrInvalidWindow
	}
	endMin, err := timeutil.ClockMinutes(window.EndTime)
	if err != nil {
		return ErrInvalidWindow
	}
	if endMin <= startMin {
		return ErrInvalidWindow
	}
	if window.TimezoneSnapshot == "" {
		window.TimezoneSnapshot = "UTC"
	}
	if _, err := timeutil.ZoneOrUTC(window.TimezoneSnapshot); err != nil {
		return ErrInvalidWindow
	}

	existing, err := s.windowRepo.ListByHost(ctx, window.HostID)
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}
	for i := range existing {
		if recurringOverlaps(window, &existing[i], startMin, endMin) {
			return ErrWindowOverlap
		}
	}

	if err := s.windowRepo.Create(ctx, window); err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	s.logger.Info("recurring window created",
		zap.Uint("window_id", window.ID),
		zap.String("host_id", window.HostID),
		zap.Int("day_of_week", *window.DayOfWeek),
	)
	return nil
}

func (s *availabilityService) CreateOneOffWindow(ctx context.Context, window *models.AvailabilityWindow) error {
	window.Kind = models.WindowOneOff
	if window.StartAtUTC == nil || window.EndAtUTC == nil {
		return ErrInvalidWindow
	}
	if !window.EndAtUTC.After(*window.StartAtUTC) {
		return ErrInvalidWindow
	}
	if window.TimezoneSnapshot == "" {
		window.TimezoneSnapshot = "UTC"
	}
	if _, err := timeutil.ZoneOrUTC(window.TimezoneSnapshot); err != nil {
		return ErrInvalidWindow
	}

	existing, err := s.windowRepo.ListByHost(ctx, window.HostID)
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}
	for i := range existing {
		if oneOffOverlaps(window, &existing[i]) {
			return ErrWindowOverlap
		}
	}

	if err := s.windowRepo.Create(ctx, window); err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	s.logger.Info("one-off window created",
		zap.Uint("window_id", window.ID),
		zap.String("host_id", window.HostID),
		zap.Time("start_at", *window.StartAtUTC),
	)
	return nil
}

// recurringOverlaps compares a new recurring pattern against an existing
// window on the same weekday with intersecting validity ranges. Wall-clock
// minutes are compared in each window's own zone, which is exact when the
// zones match and a close approximation across zones.
func recurringOverlaps(w, other *models.AvailabilityWindow, startMin, endMin int) bool {
	if other.Kind != models.WindowRecurring || other.DayOfWeek == nil {
		return false
	}
	if *other.DayOfWeek != *w.DayOfWeek {
		return false
	}
	if !validityIntersects(w, other) {
		return false
	}
	oStart, err1 := timeutil.ClockMinutes(other.StartTime)
	oEnd, err2 := timeutil.ClockMinutes(other.EndTime)
	if err1 != nil || err2 != nil {
		return false
	}
	return startMin < oEnd && oStart < endMin
}

func oneOffOverlaps(w, other *models.AvailabilityWindow) bool {
	if other.Kind != models.WindowOneOff || other.StartAtUTC == nil || other.EndAtUTC == nil {
		return false
	}
	return w.StartAtUTC.Before(*other.EndAtUTC) && other.StartAtUTC.Before(*w.EndAtUTC)
}

func validityIntersects(a, b *models.AvailabilityWindow) bool {
	if a.ValidFrom != nil && b.ValidUntil != nil && a.ValidFrom.After(*b.ValidUntil) {
		return false
	}
	if b.ValidFrom != nil && a.ValidUntil != nil && b.ValidFrom.After(*a.ValidUntil) {
		return false
	}
	return true
}

func (s *availabilityService) GetWindow(ctx context.Context, id uint) (*models.AvailabilityWindow, error) {
	window, err := s.windowRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}
	return window, nil
}

func (s *availabilityService) ListWindows(ctx context.Context, hostID string) ([]models.AvailabilityWindow, error) {
	return s.windowRepo.ListByHost(ctx, hostID)
}

func (s *availabilityService) Block(ctx context.Context, id uint, reason string) (*models.AvailabilityWindow, error) {
	return s.setBlocked(ctx, id, true, reason)
}

func (s *availabilityService) Unblock(ctx context.Context, id uint) (*models.AvailabilityWindow, error) {
	return s.setBlocked(ctx, id, false, "")
}

func (s *availabilityService) setBlocked(ctx context.Context, id uint, blocked bool, reason string) (*models.AvailabilityWindow, error) {
	var result *models.AvailabilityWindow
	err := s.windowRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		window, err := s.windowRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrWindowNotFound
		}
		window.IsBlocked = blocked
		window.BlockedReason = reason
		if err := s.windowRepo.Save(ctx, tx, window); err != nil {
			return err
		}
		result = window
		return nil
	})
	return result, err
}

func (s *availabilityService) ResolveOccurrences(ctx context.Context, hostID string, from, to time.Time) ([]SlotOccurrence, error) {
	if !to.After(from) {
		return nil, ErrInvalidWindow
	}

	windows, err := s.windowRepo.ListActiveByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}

	var slots []SlotOccurrence
	db := s.windowRepo.GetDB()
	for i := range windows {
		w := &windows[i]
		switch w.Kind {
		case models.WindowOneOff:
			if w.IsConsumed || w.StartAtUTC == nil || w.EndAtUTC == nil {
				continue
			}
			if w.StartAtUTC.Before(from) || !w.StartAtUTC.Before(to) {
				continue
			}
			booked, err := s.slotBooked(ctx, db, w.ID, *w.StartAtUTC)
			if err != nil {
				return nil, err
			}
			slots = append(slots, SlotOccurrence{
				WindowID:   w.ID,
				StartAtUTC: *w.StartAtUTC,
				EndAtUTC:   *w.EndAtUTC,
				Booked:     booked,
			})
		case models.WindowRecurring:
			expanded, err := s.expandRecurring(ctx, db, w, from, to)
			if err != nil {
				return nil, err
			}
			slots = append(slots, expanded...)
		}
	}
	return slots, nil
}

func (s *availabilityService) ResolveWindowOccurrences(ctx context.Context, windowID uint, from, to time.Time) ([]SlotOccurrence, error) {
	if !to.After(from) {
		return nil, ErrInvalidWindow
	}
	w, err := s.GetWindow(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if w.IsBlocked {
		return nil, nil
	}

	db := s.windowRepo.GetDB()
	switch w.Kind {
	case models.WindowOneOff:
		if w.IsConsumed || w.StartAtUTC == nil || w.EndAtUTC == nil {
			return nil, nil
		}
		if w.StartAtUTC.Before(from) || !w.StartAtUTC.Before(to) {
			return nil, nil
		}
		booked, err := s.slotBooked(ctx, db, w.ID, *w.StartAtUTC)
		if err != nil {
			return nil, err
		}
		return []SlotOccurrence{{
			WindowID:   w.ID,
			StartAtUTC: *w.StartAtUTC,
			EndAtUTC:   *w.EndAtUTC,
			Booked:     booked,
		}}, nil
	case models.WindowRecurring:
		return s.expandRecurring(ctx, db, w, from, to)
	}
	return nil, nil
}

// expandRecurring walks each day in [from, to) matching the window's weekday
// and resolves the wall-clock pattern in the window's timezone snapshot, so
// occurrences shift correctly across DST boundaries.
func (s *availabilityService) expandRecurring(ctx context.Context, db *gorm.DB, w *models.AvailabilityWindow, from, to time.Time) ([]SlotOccurrence, error) {
	if w.DayOfWeek == nil {
		return nil, nil
	}
	loc, err := timeutil.ZoneOrUTC(w.TimezoneSnapshot)
	if err != nil {
		return nil, nil
	}

	var slots []SlotOccurrence
	day := timeutil.DayStartUTC(from).In(loc)
	for day.Before(to.In(loc).AddDate(0, 0, 1)) {
		if timeutil.WeekdayIndex(day.Weekday()) == *w.DayOfWeek && w.InValidity(timeutil.DayStartUTC(day)) {
			start, err := timeutil.ResolveWall(day, w.StartTime, w.TimezoneSnapshot)
			if err != nil {
				return nil, err
			}
			end, err := timeutil.ResolveWall(day, w.EndTime, w.TimezoneSnapshot)
			if err != nil {
				return nil, err
			}
			if !start.Before(from) && start.Before(to) {
				booked, err := s.slotBooked(ctx, db, w.ID, start)
				if err != nil {
					return nil, err
				}
				slots = append(slots, SlotOccurrence{
					WindowID:   w.ID,
					StartAtUTC: start,
					EndAtUTC:   end,
					Booked:     booked,
				})
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return slots, nil
}

func (s *availabilityService) slotBooked(ctx context.Context, db *gorm.DB, windowID uint, startAt time.Time) (bool, error) {
	_, err := s.bookingRepo.FindActiveByWindowAndStart(ctx, db, windowID, startAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
