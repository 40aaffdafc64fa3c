package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/romariotrain/bick-platform/internal/bick/models"
)

const (
	// TaskTypeProcess is the task type the processing workers consume.
	TaskTypeProcess = "bick:process"

	// ProcessingQueue is the queue the processing tasks land on.
	ProcessingQueue = "processing"

	// MaxAttempts bounds the total executions of one job, the first
	// attempt included.
	MaxAttempts = 3

	taskTimeout   = 10 * time.Minute
	taskRetention = 24 * time.Hour
)

// TaskIDFor derives the stable task id for a bick. Enqueueing the same
// bick twice while the first task is still alive is a no-op.
func TaskIDFor(bickID string) string {
	return "bick-" + bickID
}

// RetryDelay spaces retries exponentially: 1s after the first failure,
// then 2s, then 4s. Wired into the asynq server config.
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 1 {
		n = 1
	}
	return time.Duration(1<<(n-1)) * time.Second
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	Close() error
}

// Queue enqueues processing jobs. Close releases the underlying Redis
// connections and must be called by the owner.
type Queue struct {
	client    enqueuer
	inspector taskInspector
	logger    zerolog.Logger
}

func New(redisAddr string, logger zerolog.Logger) *Queue {
	opt := asynq.RedisClientOpt{Addr: redisAddr}
	return &Queue{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		logger:    logger.With().Str("component", "queue").Logger(),
	}
}

// EnqueueProcess schedules the processing job for a bick. A duplicate of
// a still-alive job is reported as success with the existing task id. A
// leftover of a finished run with the same id is deleted first, so a
// retry of a failed bick gets a fresh task.
func (q *Queue) EnqueueProcess(ctx context.Context, job models.ProcessingJob) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}

	taskID := TaskIDFor(job.BickID)
	task := asynq.NewTask(TaskTypeProcess, payload)
	opts := []asynq.Option{
		asynq.TaskID(taskID),
		asynq.Queue(ProcessingQueue),
		asynq.MaxRetry(MaxAttempts - 1),
		asynq.Timeout(taskTimeout),
		asynq.Retention(taskRetention),
	}

	info, err := q.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		replaced, rerr := q.replaceFinishedTask(taskID)
		if rerr != nil {
			return "", fmt.Errorf("resolve task id conflict: %w", rerr)
		}
		if !replaced {
			// дубликат, задача уже в очереди
			q.logger.Debug().Str("bick_id", job.BickID).Msg("processing task already enqueued")
			return taskID, nil
		}
		info, err = q.client.EnqueueContext(ctx, task, opts...)
	}
	if err != nil {
		return "", fmt.Errorf("enqueue processing task: %w", err)
	}

	q.logger.Info().
		Str("bick_id", job.BickID).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("processing task enqueued")
	return info.ID, nil
}

// replaceFinishedTask deletes the previous task under this id when it
// already ran to its end. Archived and completed tasks keep their id in
// Redis until retention expires, which would block every re-enqueue of
// the same bick.
func (q *Queue) replaceFinishedTask(taskID string) (bool, error) {
	info, err := q.inspector.GetTaskInfo(ProcessingQueue, taskID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) {
			// задача исчезла между конфликтом и проверкой
			return true, nil
		}
		return false, err
	}
	if !taskFinished(info.State) {
		return false, nil
	}
	if err := q.inspector.DeleteTask(ProcessingQueue, taskID); err != nil {
		return false, err
	}
	q.logger.Info().Str("task_id", taskID).Stringer("state", info.State).Msg("finished task replaced")
	return true, nil
}

// taskFinished reports whether a task in this state will never run
// again on its own.
func taskFinished(s asynq.TaskState) bool {
	return s == asynq.TaskStateArchived || s == asynq.TaskStateCompleted
}

func (q *Queue) Close() error {
	cerr := q.client.Close()
	if ierr := q.inspector.Close(); ierr != nil && cerr == nil {
		cerr = ierr
	}
	return cerr
}
