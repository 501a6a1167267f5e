package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar-calendar/internal/config"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/jobs"
	"rentacar-calendar/internal/security"
)

func TestNewScheduler(t *testing.T) {
	t.Run("Registers both jobs", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			RefreshCalendar: "0 */5 * * * *",
			CheckToken:      "0 0 * * * *",
		}}
		jr := jobs.NewJobRunner(nil, security.NewTokenInspector(), events.NewBus(), cfg)

		s, err := NewScheduler(jr)
		require.NoError(t, err)
		assert.True(t, s.IsRunning())
		assert.Len(t, s.NextRun(), 2)
	})

	t.Run("Rejects a bad schedule", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			RefreshCalendar: "every now and then",
			CheckToken:      "0 0 * * * *",
		}}
		jr := jobs.NewJobRunner(nil, security.NewTokenInspector(), events.NewBus(), cfg)

		_, err := NewScheduler(jr)
		assert.Error(t, err)
	})
}
