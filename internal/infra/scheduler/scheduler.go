// internal/infra/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownJob       = fmt.Errorf("unknown job name")
	ErrInvalidTimeOfDay = fmt.Errorf("invalid time of day, expected HH:MM")
	ErrNotRunning       = fmt.Errorf("scheduler is not running")
)

var timeOfDayRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// Action is the callable a job fires.
type Action func(ctx context.Context) error

// JobSpec binds a named action to one wall-clock time of day in the
// scheduler's configured zone.
type JobSpec struct {
	Name      string
	TimeOfDay string // "HH:MM"
	Timeout   time.Duration
	Action    Action
}

// JobStatus is one entry of the Status report.
type JobStatus struct {
	Name      string
	Running   bool // registered with a live cron engine
	LastRun   time.Time
	LastError string
}

type jobState struct {
	spec    JobSpec
	entryID cron.EntryID
	busy    atomic.Bool // guards against overlapping runs of the same job

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// State of the scheduler lifecycle: Uninitialized -> Running, and back to
// Uninitialized via StopAll so a later Initialize can re-register cleanly.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
)

// Scheduler fires a fixed set of jobs at configured local times. One
// instance per process; all jobs share a single timezone, which must match
// the period calculator's.
type Scheduler struct {
	mu    sync.Mutex
	loc   *time.Location
	log   *logrus.Logger
	specs []JobSpec

	cronEngine *cron.Cron
	jobs       map[string]*jobState
	state      State
}

func New(loc *time.Location, log *logrus.Logger, specs []JobSpec) *Scheduler {
	return &Scheduler{
		loc:   loc,
		log:   log,
		specs: specs,
		jobs:  make(map[string]*jobState),
	}
}

// Initialize registers every job spec with a fresh cron engine and starts
// it. Calling it while already running is a logged no-op, so a double
// initialization can never register jobs twice.
func (s *Scheduler) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		s.log.Info("Scheduler already running; skipping re-initialization.")
		return nil
	}

	engine := cron.New(cron.WithLocation(s.loc))
	jobs := make(map[string]*jobState, len(s.specs))
	for _, spec := range s.specs {
		cronExpr, err := cronSpecFor(spec.TimeOfDay)
		if err != nil {
			return fmt.Errorf("job %q: %w", spec.Name, err)
		}
		js := &jobState{spec: spec}
		entryID, err := engine.AddFunc(cronExpr, func() {
			s.runJob(js, "scheduled")
		})
		if err != nil {
			return fmt.Errorf("job %q: could not register cron entry: %w", spec.Name, err)
		}
		js.entryID = entryID
		jobs[spec.Name] = js
		s.log.Infof("Registered job %q at %s (%s).", spec.Name, spec.TimeOfDay, s.loc)
	}

	engine.Start()
	s.cronEngine = engine
	s.jobs = jobs
	s.state = StateRunning
	s.log.Infof("Scheduler started with %d jobs.", len(jobs))
	return nil
}

// runJob executes one job, serialized per job name: an invocation that
// overlaps a still-running one is skipped, not queued. Failures and panics
// are caught and recorded so one bad run never takes the process down or
// unregisters the job.
func (s *Scheduler) runJob(js *jobState, trigger string) error {
	if !js.busy.CompareAndSwap(false, true) {
		s.log.Warnf("Job %q is still running; skipping %s invocation.", js.spec.Name, trigger)
		return nil
	}
	defer js.busy.Store(false)

	timeout := js.spec.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	started := time.Now().In(s.loc)
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job %q panicked: %v", js.spec.Name, r)
			}
		}()
		err = js.spec.Action(ctx)
	}()

	js.mu.Lock()
	js.lastRun = started
	js.lastErr = err
	js.mu.Unlock()

	if err != nil {
		s.log.Errorf("Job %q (%s) failed: %v", js.spec.Name, trigger, err)
	} else {
		s.log.Infof("Job %q (%s) completed.", js.spec.Name, trigger)
	}
	return err
}

// TriggerJob synchronously invokes a named job's action, bypassing its
// schedule. Intended for operational testing and the admin surface.
func (s *Scheduler) TriggerJob(name string) error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return ErrNotRunning
	}
	js, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	s.log.Infof("Manually triggering job %q.", name)
	return s.runJob(js, "manual")
}

// StopJob cancels a single job's schedule; the job disappears from the
// engine but stays in the status report as not running.
func (s *Scheduler) StopJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return ErrNotRunning
	}
	js, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	s.cronEngine.Remove(js.entryID)
	delete(s.jobs, name)
	s.log.Infof("Job %q stopped.", name)
	return nil
}

// StopAll cancels every job and returns the scheduler to Uninitialized so
// a later Initialize re-registers cleanly. In-flight handlers are allowed
// to finish; no job starts a new iteration afterwards.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	engine := s.cronEngine
	s.cronEngine = nil
	s.jobs = make(map[string]*jobState)
	s.state = StateUninitialized
	s.mu.Unlock()

	if engine == nil {
		return
	}
	s.log.Info("Stopping scheduler...")
	<-engine.Stop().Done()
	s.log.Info("Scheduler stopped; all jobs unregistered.")
}

// Status reports every registered job with its last run and last error.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.specs))
	for _, spec := range s.specs {
		st := JobStatus{Name: spec.Name}
		if js, ok := s.jobs[spec.Name]; ok && s.state == StateRunning {
			st.Running = true
			js.mu.Lock()
			st.LastRun = js.lastRun
			if js.lastErr != nil {
				st.LastError = js.lastErr.Error()
			}
			js.mu.Unlock()
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// cronSpecFor translates an "HH:MM" wall-clock time into a daily cron
// expression.
func cronSpecFor(timeOfDay string) (string, error) {
	m := timeOfDayRe.FindStringSubmatch(timeOfDay)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, timeOfDay)
	}
	return fmt.Sprintf("%s %s * * *", m[2], m[1]), nil
}
