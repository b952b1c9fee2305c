// Package scheduler runs named jobs on cron schedules. A job that is
// still running when its next tick fires is skipped for that tick, so two
// scans never overlap.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/mkadlec/libris/core"
)

var (
	ErrUnknownJob = errors.New("scheduler: unknown job")
	ErrJobRunning = errors.New("scheduler: job already running")
)

type Job interface {
	Name() string
	Schedule() string // standard 5-field cron expression
	Run(ctx context.Context) error
}

type jobFunc struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

// NewJob wraps a plain function as a Job.
func NewJob(name, schedule string, run func(ctx context.Context) error) Job {
	return jobFunc{name: name, schedule: schedule, run: run}
}

func (j jobFunc) Name() string                  { return j.name }
func (j jobFunc) Schedule() string              { return j.schedule }
func (j jobFunc) Run(ctx context.Context) error { return j.run(ctx) }

type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	locks  map[string]*sync.Mutex
	logger core.Logger
	cancel context.CancelFunc
}

func NewScheduler(logger core.Logger) *Scheduler {
	return &Scheduler{
		locks:  make(map[string]*sync.Mutex),
		logger: logger,
	}
}

// RegisterJob adds a job. Must be called before Start; job names are unique.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.locks[name]; exists {
		return fmt.Errorf("scheduler: duplicate job name %q", name)
	}

	s.locks[name] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Jobs returns the registered jobs in registration order.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

// RunNow executes the named job immediately, outside its schedule. It
// shares the job's lock with scheduled runs, so a manual trigger cannot
// overlap a tick.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	var job Job
	for _, j := range s.jobs {
		if j.Name() == name {
			job = j
			break
		}
	}
	lock := s.locks[name]
	s.mu.Unlock()

	if job == nil {
		return errors.Wrap(ErrUnknownJob, name)
	}
	if !lock.TryLock() {
		return errors.Wrap(ErrJobRunning, name)
	}
	defer lock.Unlock()

	return job.Run(ctx)
}

// Start begins executing registered jobs on their schedules. It fails if
// any job carries an invalid cron expression.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.cron = cron.New(cron.WithParser(parser))

	for _, j := range s.jobs {
		job := j
		lock := s.locks[job.Name()]

		_, err := s.cron.AddFunc(job.Schedule(), func() {
			// TryLock is atomic: if the previous tick is still running,
			// skip this one.
			if !lock.TryLock() {
				s.logger.Warn(fmt.Sprintf("scheduler: job %q still running, skipping tick", job.Name()))
				return
			}
			defer lock.Unlock()

			s.logger.Debug(fmt.Sprintf("scheduler: job %q started", job.Name()))
			if err := job.Run(ctx); err != nil {
				s.logger.Error(fmt.Sprintf("scheduler: job %q failed: %v", job.Name(), err), err)
			} else {
				s.logger.Debug(fmt.Sprintf("scheduler: job %q completed", job.Name()))
			}
		})
		if err != nil {
			cancel()
			return fmt.Errorf("scheduler: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron.Start()
	s.logger.Info(fmt.Sprintf("scheduler: started with %d job(s)", len(s.jobs)))
	return nil
}

// Stop shuts the scheduler down, waiting for in-flight jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.logger.Info("scheduler: stopped")
	}
	return nil
}
