//go:build integration

package service

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

var testTables = []string{
	"series_items", "booking_series", "waitlist_entries", "bookings",
	"availability_windows", "booking_policies", "sessions",
}

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getTestEnv("TEST_DB_HOST", "localhost"),
		getTestEnv("TEST_DB_PORT", "5434"),
		getTestEnv("TEST_DB_USER", "postgres"),
		getTestEnv("TEST_DB_PASSWORD", "postgres"),
		getTestEnv("TEST_DB_NAME", "booking_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	for _, table := range testTables {
		testDB.Exec("DROP TABLE IF EXISTS " + table)
	}

	if err := testDB.AutoMigrate(
		&models.Session{},
		&models.AvailabilityWindow{},
		&models.Booking{},
		&models.WaitlistEntry{},
		&models.BookingPolicy{},
		&models.BookingSeries{},
		&models.SeriesItem{},
	); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	code := m.Run()

	for _, table := range testTables {
		testDB.Exec("DROP TABLE IF EXISTS " + table)
	}
	os.Exit(code)
}

func cleanTables() {
	for _, table := range testTables {
		testDB.Exec("DELETE FROM " + table)
	}
}

func getTestEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type testEngine struct {
	sessions SessionService
	windows  AvailabilityService
	bookings BookingService
	waitlist WaitlistService
	series   SeriesService
	policies PolicyService
}

func newTestEngine() *testEngine {
	sessionRepo := repository.NewSessionRepository(testDB)
	bookingRepo := repository.NewBookingRepository(testDB)
	windowRepo := repository.NewAvailabilityRepository(testDB)
	waitlistRepo := repository.NewWaitlistRepository(testDB)
	policyRepo := repository.NewPolicyRepository(testDB)
	seriesRepo := repository.NewSeriesRepository(testDB)

	logger := zap.NewNop()
	policySvc := NewPolicyService(policyRepo)
	bookingSvc := NewBookingService(bookingRepo, sessionRepo, windowRepo, waitlistRepo, policySvc, nil, logger)

	return &testEngine{
		sessions: NewSessionService(sessionRepo, bookingRepo, waitlistRepo, policySvc, nil, logger),
		windows:  NewAvailabilityService(windowRepo, bookingRepo, logger),
		bookings: bookingSvc,
		waitlist: NewWaitlistService(waitlistRepo, sessionRepo, bookingRepo, policySvc, nil, logger),
		series:   NewSeriesService(seriesRepo, sessionRepo, windowRepo, bookingSvc, nil, 52, logger),
		policies: policySvc,
	}
}

func createTestSession(t *testing.T, capacity int, waitlist bool) *models.Session {
	t.Helper()
	session := &models.Session{
		HostID:           "host-1",
		Title:            "Conversation Practice B2",
		StartAtUTC:       time.Now().UTC().Add(48 * time.Hour),
		EndAtUTC:         time.Now().UTC().Add(49 * time.Hour),
		TimezoneSnapshot: "UTC",
		Capacity:         capacity,
		WaitlistEnabled:  waitlist,
	}
	require.NoError(t, newTestEngine().sessions.CreateSession(t.Context(), session))
	return session
}

func createTestOneOffWindow(t *testing.T, start time.Time) *models.AvailabilityWindow {
	t.Helper()
	end := start.Add(time.Hour)
	window := &models.AvailabilityWindow{
		HostID:     "host-1",
		StartAtUTC: &start,
		EndAtUTC:   &end,
	}
	require.NoError(t, newTestEngine().windows.CreateOneOffWindow(t.Context(), window))
	return window
}
