// Package shutdown tracks background jobs and cleanup functions so the process
// can wait for them before exiting, including on SIGINT/SIGTERM.
package shutdown

import (
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
)

type CleanupJob struct {
	Name string
	Func func(isSignal bool)
}

type handler struct {
	jobs         sync.WaitGroup
	lock         sync.Mutex // guards the cleanup lists; held forever once shutdown starts
	stateLock    sync.Mutex
	shuttingDown bool
	early        []CleanupJob
	late         []CleanupJob
}

var h = new(handler)

// IsShuttingDown reports whether WaitJobs has been called or a signal received.
func IsShuttingDown() bool {
	return h.isShuttingDown()
}

// AddJob registers a goroutine that WaitJobs must wait for. Pair every call with DoneJob.
//
//	shutdown.AddJob()
//	go func() {
//	    defer shutdown.DoneJob()
//	    // ...
//	}()
func AddJob() {
	h.addJob()
}

func DoneJob() {
	h.jobs.Done()
}

// WaitJobs runs early cleanup jobs, waits for all jobs, then runs late cleanup jobs.
// Cleanup jobs run in reverse order of registration. Call it once, before exiting.
func WaitJobs() {
	h.wait(false)
}

// AddEarlyCleanupJob registers a function run before waiting for jobs.
func AddEarlyCleanupJob(name string, job func(isSignal bool)) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.early = append(h.early, CleanupJob{Name: name, Func: job})
}

// AddLateCleanupJob registers a function run after all jobs finished.
func AddLateCleanupJob(name string, job func(isSignal bool)) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.late = append(h.late, CleanupJob{Name: name, Func: job})
}

func DeleteEarlyCleanupJob(name string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.early = slices.DeleteFunc(h.early, func(job CleanupJob) bool {
		return job.Name == name
	})
}

func DeleteLateCleanupJob(name string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.late = slices.DeleteFunc(h.late, func(job CleanupJob) bool {
		return job.Name == name
	})
}

func (h *handler) isShuttingDown() bool {
	h.stateLock.Lock()
	defer h.stateLock.Unlock()
	return h.shuttingDown
}

func (h *handler) addJob() {
	h.lock.Lock()
	h.jobs.Add(1)
	h.lock.Unlock()
}

func (h *handler) wait(isSignal bool) {
	h.stateLock.Lock()
	h.shuttingDown = true
	h.stateLock.Unlock()
	h.lock.Lock() // no new jobs or cleanup functions from here on
	for i := len(h.early) - 1; i >= 0; i-- {
		h.early[i].Func(isSignal)
	}
	h.jobs.Wait()
	for i := len(h.late) - 1; i >= 0; i-- {
		h.late[i].Func(isSignal)
	}
}

func init() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		h.wait(true)
		os.Exit(130)
	}()
}
