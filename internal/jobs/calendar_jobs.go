package jobs

import (
	"context"
	"errors"
	"time"

	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/logger"
	"rentacar-calendar/internal/security"
)

// RefreshVisibleWindow reloads the bookings of the window the calendar shows,
// picking up changes made by other clients.
func (jr *JobRunner) RefreshVisibleWindow() {
	jr.runWithRecovery("RefreshVisibleWindow", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
		defer cancel()

		if err := jr.calendar.Refresh(ctx); err != nil {
			logger.Error("Failed to refresh calendar", "error", err)
		}
	})
}

// WarnExpiringToken warns when the booking API token expires soon
func (jr *JobRunner) WarnExpiringToken() {
	jr.runWithRecovery("WarnExpiringToken", func() {
		token := jr.config.API.Token
		if token == "" {
			logger.Debug("No booking API token configured")
			return
		}

		window := time.Duration(jr.config.Scheduler.TokenWarnHours) * time.Hour
		soon, err := jr.tokens.ExpiresWithin(token, window)
		if errors.Is(err, security.ErrInvalidToken) {
			logger.Debug("Booking API token is opaque, skipping expiry check")
			return
		}
		if err != nil {
			logger.Error("Failed to inspect booking API token", "error", err)
			return
		}
		if !soon {
			return
		}

		if jr.tokens.CheckUsable(token) != nil {
			logger.Error("Booking API token has expired")
			jr.bus.Toast.Publish(events.Notification{Level: events.LevelError, Message: "The booking API token has expired"})
			return
		}
		logger.Warn("Booking API token expires soon", "within", window.String())
		jr.bus.Toast.Publish(events.Notification{Level: events.LevelWarning, Message: "The booking API token expires soon"})
	})
}
