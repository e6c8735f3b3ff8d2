// Package jobqueue limits how many identified background jobs run at once and
// records the outcome of each one.
package jobqueue

import (
	"errors"
	"sort"
	"sync"
)

type JobStatus int

const (
	JobCreated JobStatus = iota
	JobRunning
	JobFinished
	JobFailed
)

func (s JobStatus) String() string {
	switch s {
	case JobCreated:
		return "created"
	case JobRunning:
		return "running"
	case JobFinished:
		return "finished"
	case JobFailed:
		return "failed"
	}
	return "unknown"
}

var (
	ErrQueueFull         = errors.New("queue full")
	ErrJobAlreadyStarted = errors.New("job already started")
	ErrJobAlreadyQueued  = errors.New("job already queued")
	ErrJobNotFound       = errors.New("job not found")
	ErrJobNotRunning     = errors.New("job not running")
	ErrJobRunning        = errors.New("job running")
)

type job struct {
	status JobStatus
	err    error
}

type QueueWithIDs struct {
	sync.Mutex
	slots   chan struct{}
	maxJobs int
	queue   map[string]*job
	err     error
}

// NewQueueWithIDs allows concurrent jobs to run at once, with up to
// concurrent+queued jobs known to the queue.
func NewQueueWithIDs(concurrent int, queued int) *QueueWithIDs {
	if concurrent < 1 {
		concurrent = 1
	}
	if queued < concurrent {
		queued = concurrent
	}
	return &QueueWithIDs{
		slots:   make(chan struct{}, concurrent),
		maxJobs: concurrent + queued,
		queue:   make(map[string]*job),
	}
}

func (q *QueueWithIDs) Add(jobID string) error {
	q.Lock()
	defer q.Unlock()
	if q.err != nil {
		return q.err
	}
	if len(q.queue) >= q.maxJobs {
		return ErrQueueFull
	}
	if _, ok := q.queue[jobID]; ok {
		return ErrJobAlreadyQueued
	}
	q.queue[jobID] = &job{status: JobCreated}
	return nil
}

// SetNoAccept makes every further Add fail with err.
func (q *QueueWithIDs) SetNoAccept(err error) {
	q.Lock()
	q.err = err
	q.Unlock()
}

// Start marks a job as running. It blocks while the concurrency limit is reached.
func (q *QueueWithIDs) Start(jobID string) error {
	q.Lock()
	j, ok := q.queue[jobID]
	if !ok {
		q.Unlock()
		return ErrJobNotFound
	}
	if j.status != JobCreated {
		q.Unlock()
		return ErrJobAlreadyStarted
	}
	j.status = JobRunning
	q.Unlock()
	q.slots <- struct{}{}
	return nil
}

// End marks a running job as finished, or failed when err is not nil, and frees its slot.
func (q *QueueWithIDs) End(jobID string, err error) error {
	q.Lock()
	defer q.Unlock()
	j, ok := q.queue[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if j.status != JobRunning {
		return ErrJobNotRunning
	}
	j.status = JobFinished
	if err != nil {
		j.status = JobFailed
		j.err = err
	}
	<-q.slots
	return nil
}

func (q *QueueWithIDs) Remove(jobID string) error {
	q.Lock()
	defer q.Unlock()
	j, ok := q.queue[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if j.status == JobRunning {
		return ErrJobRunning
	}
	delete(q.queue, jobID)
	return nil
}

// GetSize returns the number of running jobs and of jobs waiting to run.
func (q *QueueWithIDs) GetSize() (running int, waiting int) {
	q.Lock()
	defer q.Unlock()
	for _, j := range q.queue {
		switch j.status {
		case JobRunning:
			running++
		case JobCreated:
			waiting++
		}
	}
	return
}

// GetJobStatus returns the status and, for failed jobs, the error of a job.
func (q *QueueWithIDs) GetJobStatus(jobID string) (status JobStatus, jobErr error, exists bool) {
	q.Lock()
	defer q.Unlock()
	j, ok := q.queue[jobID]
	if !ok {
		return 0, nil, false
	}
	return j.status, j.err, true
}

func (q *QueueWithIDs) GetJobs() map[string]JobStatus {
	q.Lock()
	defer q.Unlock()
	jobs := make(map[string]JobStatus, len(q.queue))
	for id, j := range q.queue {
		jobs[id] = j.status
	}
	return jobs
}

// Failed returns the errors of failed jobs keyed by job ID.
func (q *QueueWithIDs) Failed() map[string]error {
	q.Lock()
	failed := make(map[string]error)
	for id, j := range q.queue {
		if j.status == JobFailed {
			failed[id] = j.err
		}
	}
	q.Unlock()
	return failed
}

// FailedIDs returns the sorted IDs of failed jobs.
func (q *QueueWithIDs) FailedIDs() []string {
	ids := []string{}
	for id := range q.Failed() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
