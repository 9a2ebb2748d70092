package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func countingSpec(name, timeOfDay string, counter *atomic.Int32) JobSpec {
	return JobSpec{
		Name:      name,
		TimeOfDay: timeOfDay,
		Action: func(ctx context.Context) error {
			counter.Add(1)
			return nil
		},
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	var runs atomic.Int32
	s := New(time.UTC, testLogger(), []JobSpec{countingSpec("reminder:morning", "08:00", &runs)})
	defer s.StopAll()

	require.NoError(t, s.Initialize())
	require.NoError(t, s.Initialize()) // logged no-op

	statuses := s.Status()
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Running)
}

func TestStopAllAllowsReinitialization(t *testing.T) {
	var runs atomic.Int32
	s := New(time.UTC, testLogger(), []JobSpec{countingSpec("cleanup", "02:30", &runs)})

	require.NoError(t, s.Initialize())
	s.StopAll()

	statuses := s.Status()
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Running)

	require.NoError(t, s.Initialize())
	defer s.StopAll()
	assert.True(t, s.Status()[0].Running)
}

func TestTriggerJob(t *testing.T) {
	var runs atomic.Int32
	s := New(time.UTC, testLogger(), []JobSpec{countingSpec("reminder:midday", "13:00", &runs)})
	require.NoError(t, s.Initialize())
	defer s.StopAll()

	require.NoError(t, s.TriggerJob("reminder:midday"))
	require.NoError(t, s.TriggerJob("reminder:midday")) // no same-slot guard at this layer
	assert.Equal(t, int32(2), runs.Load())

	err := s.TriggerJob("no-such-job")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestTriggerJobWhenStopped(t *testing.T) {
	s := New(time.UTC, testLogger(), []JobSpec{{Name: "j", TimeOfDay: "10:00", Action: func(ctx context.Context) error { return nil }}})
	assert.ErrorIs(t, s.TriggerJob("j"), ErrNotRunning)
}

func TestTriggerJobPropagatesActionError(t *testing.T) {
	boom := fmt.Errorf("handler blew up")
	s := New(time.UTC, testLogger(), []JobSpec{{
		Name:      "flaky",
		TimeOfDay: "09:15",
		Action:    func(ctx context.Context) error { return boom },
	}})
	require.NoError(t, s.Initialize())
	defer s.StopAll()

	assert.ErrorIs(t, s.TriggerJob("flaky"), boom)

	// The job stays registered and its failure shows up in the status report.
	statuses := s.Status()
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Running)
	assert.Contains(t, statuses[0].LastError, "blew up")
	assert.False(t, statuses[0].LastRun.IsZero())
}

func TestPanickingActionIsContained(t *testing.T) {
	s := New(time.UTC, testLogger(), []JobSpec{{
		Name:      "panicky",
		TimeOfDay: "11:00",
		Action:    func(ctx context.Context) error { panic("oh no") },
	}})
	require.NoError(t, s.Initialize())
	defer s.StopAll()

	err := s.TriggerJob("panicky")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestStopJob(t *testing.T) {
	var runs atomic.Int32
	s := New(time.UTC, testLogger(), []JobSpec{
		countingSpec("a", "08:00", &runs),
		countingSpec("b", "09:00", &runs),
	})
	require.NoError(t, s.Initialize())
	defer s.StopAll()

	require.NoError(t, s.StopJob("a"))
	assert.ErrorIs(t, s.StopJob("a"), ErrUnknownJob)

	var running []string
	for _, st := range s.Status() {
		if st.Running {
			running = append(running, st.Name)
		}
	}
	assert.Equal(t, []string{"b"}, running)
}

func TestInitializeRejectsMalformedTimeOfDay(t *testing.T) {
	s := New(time.UTC, testLogger(), []JobSpec{{
		Name:      "bad",
		TimeOfDay: "25:99",
		Action:    func(ctx context.Context) error { return nil },
	}})
	err := s.Initialize()
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

func TestCronSpecFor(t *testing.T) {
	spec, err := cronSpecFor("08:05")
	require.NoError(t, err)
	assert.Equal(t, "05 08 * * *", spec)

	_, err = cronSpecFor("8am")
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}
