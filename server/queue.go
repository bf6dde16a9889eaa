package server

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ugparu/mp4edts/format/mp4"
	"github.com/ugparu/mp4edts/utils/lifecycle"
	"github.com/ugparu/mp4edts/utils/logger"
)

type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobPatched JobState = "patched"
	// JobSkipped means the file was left as it was.
	JobSkipped JobState = "skipped"
)

// PatchRequest carries the arguments of mp4.PatchMixedVideo.
type PatchRequest struct {
	Path             string  `json:"path" binding:"required"`
	HeadSec          float64 `json:"head_sec"`
	TotalMaterialSec float64 `json:"total_material_sec"`
	InPlace          *bool   `json:"in_place"`
}

func (r PatchRequest) inPlace() bool {
	return r.InPlace == nil || *r.InPlace
}

type Job struct {
	ID       string       `json:"id"`
	Request  PatchRequest `json:"request"`
	State    JobState     `json:"state"`
	Queued   time.Time    `json:"queued"`
	Finished time.Time    `json:"finished,omitzero"`
}

// BusyPathError is returned when a path is already being patched.
type BusyPathError struct {
	Path  string
	JobID string
}

func (e *BusyPathError) Error() string {
	return fmt.Sprintf("%s is busy with job %s", e.Path, e.JobID)
}

type QueueFullError struct{}

func (QueueFullError) Error() string {
	return "patch queue is full"
}

// Queue patches files on a fixed set of workers. A path is owned by at most
// one job or synchronous call at a time.
type Queue struct {
	jobs    chan *Job
	mu      sync.Mutex
	byID    map[string]*Job
	busy    map[string]string
	workers []lifecycle.AsyncManager[*worker]
	patch   func(PatchRequest) bool
}

func NewQueue(workers, size int) *Queue {
	q := &Queue{
		jobs: make(chan *Job, size),
		byID: make(map[string]*Job),
		busy: make(map[string]string),
		patch: func(r PatchRequest) bool {
			return mp4.PatchMixedVideo(r.Path, r.HeadSec, r.TotalMaterialSec, r.inPlace())
		},
	}
	for i := range workers {
		q.workers = append(q.workers, lifecycle.NewFailSafeAsyncManager(&worker{id: i, q: q}))
	}
	return q
}

func (q *Queue) String() string {
	return fmt.Sprintf("PATCH_QUEUE workers=%d", len(q.workers))
}

func (q *Queue) Start() {
	for _, w := range q.workers {
		_ = w.Start(func(*worker) error { return nil })
	}
}

func (q *Queue) Close() {
	for _, w := range q.workers {
		w.Close()
	}
}

func (q *Queue) claim(path, owner string) error {
	key := filepath.Clean(path)
	q.mu.Lock()
	defer q.mu.Unlock()
	if id, ok := q.busy[key]; ok {
		return &BusyPathError{Path: path, JobID: id}
	}
	q.busy[key] = owner
	return nil
}

func (q *Queue) release(path string) {
	q.mu.Lock()
	delete(q.busy, filepath.Clean(path))
	q.mu.Unlock()
}

// Submit enqueues req and returns a snapshot of the new job.
func (q *Queue) Submit(req PatchRequest) (Job, error) {
	job := &Job{ID: uuid.NewString(), Request: req, State: JobQueued, Queued: time.Now()}
	if err := q.claim(req.Path, job.ID); err != nil {
		return Job{}, err
	}
	q.mu.Lock()
	q.byID[job.ID] = job
	snapshot := *job
	q.mu.Unlock()

	select {
	case q.jobs <- job:
		logger.Debugf(q, "Job %s queued for %s", job.ID, req.Path)
		return snapshot, nil
	default:
		q.mu.Lock()
		delete(q.byID, job.ID)
		q.mu.Unlock()
		q.release(req.Path)
		return Job{}, QueueFullError{}
	}
}

// Patch runs req on the calling goroutine.
func (q *Queue) Patch(req PatchRequest) (bool, error) {
	if err := q.claim(req.Path, "sync"); err != nil {
		return false, err
	}
	defer q.release(req.Path)
	return q.patch(req), nil
}

func (q *Queue) Get(id string) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.byID[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (q *Queue) setState(job *Job, state JobState) {
	q.mu.Lock()
	job.State = state
	if state == JobPatched || state == JobSkipped {
		job.Finished = time.Now()
	}
	q.mu.Unlock()
}

type worker struct {
	id int
	q  *Queue
}

func (w *worker) String() string {
	return fmt.Sprintf("PATCH_WORKER id=%d", w.id)
}

func (w *worker) Close_() {}

func (w *worker) Step(stopChan <-chan struct{}) error {
	select {
	case <-stopChan:
		return &lifecycle.BreakError{}
	case job := <-w.q.jobs:
		w.run(job)
		return nil
	}
}

func (w *worker) run(job *Job) {
	state := JobSkipped
	defer func() { w.q.setState(job, state) }()
	defer w.q.release(job.Request.Path)
	w.q.setState(job, JobRunning)
	if w.q.patch(job.Request) {
		state = JobPatched
	}
	logger.Infof(w, "Job %s finished: %s", job.ID, state)
}
