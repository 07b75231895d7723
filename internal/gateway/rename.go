package gateway

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/htmlgateway/internal/shared/id"
	"github.com/GriffinCanCode/htmlgateway/internal/storage"
)

const defaultTaskHistory = 128

// RenameTask is a running or finished bulk rename of one directory.
// Per-file failures are recorded here and logged; they never fail the
// request that started the task.
type RenameTask struct {
	ID  id.TaskID
	Dir string

	mu         sync.Mutex
	total      int
	renamed    int
	failed     []string
	startedAt  time.Time
	finishedAt time.Time
	done       chan struct{}
}

// TaskStatus is a point-in-time view of a RenameTask.
type TaskStatus struct {
	ID          id.TaskID  `json:"id"`
	Dir         string     `json:"dir"`
	Total       int        `json:"total"`
	Renamed     int        `json:"renamed"`
	Failed      int        `json:"failed"`
	FailedFiles []string   `json:"failed_files,omitempty"`
	Done        bool       `json:"done"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

func newRenameTask(dir string, total int, now time.Time) *RenameTask {
	return &RenameTask{
		ID:        id.NewTaskID(),
		Dir:       dir,
		total:     total,
		startedAt: now,
		done:      make(chan struct{}),
	}
}

// Done is closed once every entry has been attempted.
func (t *RenameTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done.
func (t *RenameTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns a snapshot of the task's progress.
func (t *RenameTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := TaskStatus{
		ID:        t.ID,
		Dir:       t.Dir,
		Total:     t.total,
		Renamed:   t.renamed,
		Failed:    len(t.failed),
		StartedAt: t.startedAt,
	}
	if len(t.failed) > 0 {
		s.FailedFiles = append([]string(nil), t.failed...)
	}
	if !t.finishedAt.IsZero() {
		finished := t.finishedAt
		s.FinishedAt = &finished
		s.Done = true
	}
	return s
}

func (t *RenameTask) recordSuccess() {
	t.mu.Lock()
	t.renamed++
	t.mu.Unlock()
}

func (t *RenameTask) recordFailure(name string) {
	t.mu.Lock()
	t.failed = append(t.failed, name)
	t.mu.Unlock()
}

func (t *RenameTask) finish(now time.Time) {
	t.mu.Lock()
	t.finishedAt = now
	t.mu.Unlock()
	close(t.done)
}

// TimestampedName returns the bulk-rename target for name at time ts.
func TimestampedName(name string, ts time.Time) string {
	return fmt.Sprintf("%s_%d.html", name, ts.UnixMilli())
}

// RenameAll lists the HTML directory and starts renaming every entry to
// "<name>_<unix millis>.html" in the background. It returns as soon as the
// listing succeeds; the returned task reports progress. The rename work is
// detached from ctx so it survives the request that started it.
func (g *Gateway) RenameAll(ctx context.Context) (task *RenameTask, err error) {
	t := g.timer("rename_multiple")
	defer func() { t.StopErr(err) }()

	dir := g.paths.HTMLDir
	entries, err := g.store.ReadDir(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	if !g.track() {
		return nil, ErrClosed
	}

	task = newRenameTask(dir, len(entries), g.now())
	g.tasks.add(task)
	if g.metrics != nil {
		g.metrics.RenameTaskStarted()
	}

	go g.runRename(context.WithoutCancel(ctx), task, entries)

	g.logger.Info("Bulk rename started",
		zap.String("task_id", task.ID.String()),
		zap.String("dir", dir),
		zap.Int("entries", len(entries)),
	)
	return task, nil
}

func (g *Gateway) runRename(ctx context.Context, task *RenameTask, entries []storage.Entry) {
	defer g.running.Done()

	for _, e := range entries {
		oldPath := path.Join(task.Dir, e.Name)
		newName := TimestampedName(e.Name, g.now())

		if err := g.store.Rename(ctx, oldPath, path.Join(task.Dir, newName)); err != nil {
			task.recordFailure(e.Name)
			if g.metrics != nil {
				g.metrics.IncRenameFailures()
			}
			g.logger.Error("Error renaming file",
				zap.String("task_id", task.ID.String()),
				zap.String("file", oldPath),
				zap.Error(err),
			)
			continue
		}

		task.recordSuccess()
		g.logger.Info("File renamed",
			zap.String("task_id", task.ID.String()),
			zap.String("file", oldPath),
			zap.String("new_name", newName),
		)
	}

	task.finish(g.now())
	if g.metrics != nil {
		g.metrics.RenameTaskFinished()
	}

	status := task.Status()
	g.logger.Info("Bulk rename finished",
		zap.String("task_id", task.ID.String()),
		zap.Int("renamed", status.Renamed),
		zap.Int("failed", status.Failed),
	)
}

// Task looks up a rename task by ID.
func (g *Gateway) Task(taskID id.TaskID) (*RenameTask, bool) {
	return g.tasks.get(taskID)
}

// taskRegistry keeps the most recent tasks. Finished tasks are evicted
// oldest first once the history limit is exceeded; running tasks are kept.
type taskRegistry struct {
	mu    sync.Mutex
	limit int
	order []id.TaskID
	tasks map[id.TaskID]*RenameTask
}

func newTaskRegistry(limit int) *taskRegistry {
	return &taskRegistry{
		limit: limit,
		tasks: make(map[id.TaskID]*RenameTask),
	}
}

func (r *taskRegistry) add(task *RenameTask) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = task
	r.order = append(r.order, task.ID)

	if len(r.order) <= r.limit {
		return
	}

	kept := r.order[:0]
	excess := len(r.order) - r.limit
	for _, tid := range r.order {
		t := r.tasks[tid]
		if excess > 0 && isClosed(t.done) {
			delete(r.tasks, tid)
			excess--
			continue
		}
		kept = append(kept, tid)
	}
	r.order = kept
}

func (r *taskRegistry) get(taskID id.TaskID) (*RenameTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	return t, ok
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
