package tasks

import (
	"context"
	"time"

	"travelbook_app/internal/models"
	"travelbook_app/internal/services"
)

// ExpireStaleBookingsTaskDef sweeps bookings that never finished checkout
type ExpireStaleBookingsTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *ExpireStaleBookingsTaskDef) TaskID() string {
	return services.TaskExpireStaleBookings
}

// CreateTask builds the recurring sweep, due every hour
func (t *ExpireStaleBookingsTaskDef) CreateTask() (*models.ScheduledTask, error) {
	interval := "FREQ=HOURLY;INTERVAL=1"
	return BuildScheduledTask(t.TaskID(), map[string]interface{}{}, time.Now(), &interval, models.ScheduledTaskTypeRecurring, 3)
}

// HandleExecution runs one sweep. Bookings whose gateway session actually
// settled get confirmed instead of expired.
func (t *ExpireStaleBookingsTaskDef) HandleExecution(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	expired, confirmed, err := deps.BookingService.ExpireStalePending(ctx)
	if err != nil {
		return nil, err
	}

	expiredRefs := make([]string, 0, len(expired))
	for _, booking := range expired {
		expiredRefs = append(expiredRefs, booking.Reference)
	}
	confirmedRefs := make([]string, 0, len(confirmed))
	for _, booking := range confirmed {
		confirmedRefs = append(confirmedRefs, booking.Reference)
	}

	return map[string]interface{}{
		"status":          "success",
		"expired_count":   len(expired),
		"expired_refs":    expiredRefs,
		"confirmed_count": len(confirmed),
		"confirmed_refs":  confirmedRefs,
	}, nil
}

// ExpireStaleBookingsTask is the singleton instance of ExpireStaleBookingsTaskDef
var ExpireStaleBookingsTask = &ExpireStaleBookingsTaskDef{}
