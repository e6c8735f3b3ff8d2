package cmd

import (
	"context"
	"io"
	"sync"

	"github.com/lithammer/shortuuid"
	"github.com/sqlctl/sqlctl/pkg/utils/jobqueue"
	"github.com/sqlctl/sqlctl/pkg/utils/shutdown"
)

// background jobs started with --as-job; main waits for them through the shutdown handler
var jobs struct {
	sync.Mutex
	queue  *jobqueue.QueueWithIDs
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func jobQueue(concurrent int) *jobqueue.QueueWithIDs {
	jobs.Lock()
	defer jobs.Unlock()
	if jobs.queue == nil {
		jobs.queue = jobqueue.NewQueueWithIDs(concurrent, 1024)
		jobs.ctx, jobs.cancel = context.WithCancel(context.Background())
		cancel := jobs.cancel
		shutdown.AddEarlyCleanupJob("background-jobs", func(isSignal bool) {
			if isSignal {
				cancel()
			}
		})
	}
	return jobs.queue
}

// RunJob starts fn in the background and returns its job ID.
func (s *System) RunJob(name string, fn func(ctx context.Context) error) (string, error) {
	concurrent := 1
	if s.Profile != nil {
		concurrent = s.Profile.MaxConcurrentJobs
	}
	q := jobQueue(concurrent)
	id := shortuuid.New()
	if err := q.Add(id); err != nil {
		return "", err
	}
	log := s.Logger.WithPrefix("job=" + id + " ")
	jobs.Lock()
	ctx := jobs.ctx
	jobs.wg.Add(1)
	jobs.Unlock()
	shutdown.AddJob()
	go func() {
		defer shutdown.DoneJob()
		defer jobs.wg.Done()
		if err := q.Start(id); err != nil {
			log.Error("Could not start %s: %s", name, err)
			return
		}
		log.Debug("Started %s", name)
		err := fn(ctx)
		if err != nil {
			log.Error("%s failed: %s", name, err)
		} else {
			log.Info("%s finished", name)
		}
		q.End(id, err)
	}()
	return id, nil
}

// FailedJobs returns the IDs of background jobs that returned an error.
func FailedJobs() []string {
	jobs.Lock()
	q := jobs.queue
	jobs.Unlock()
	if q == nil {
		return nil
	}
	return q.FailedIDs()
}

func waitBackgroundJobs() {
	jobs.wg.Wait()
}

// lockedWriter serializes writes from concurrent jobs.
type lockedWriter struct {
	sync.Mutex
	w io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.Lock()
	defer l.Unlock()
	return l.w.Write(p)
}
