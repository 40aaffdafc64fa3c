package queue

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/bick-platform/internal/bick/models"
)

func validJob() models.ProcessingJob {
	return models.ProcessingJob{
		BickID:           "3f6b1f0e-9f7a-4c2d-8a5b-111111111111",
		StorageKey:       "uploads/3f6b1f0e-9f7a-4c2d-8a5b-111111111111/original.mp3",
		OriginalFilename: "take.mp3",
	}
}

func newMockedQueue(client *ClientMock, inspector *InspectorMock) *Queue {
	return &Queue{client: client, inspector: inspector, logger: zerolog.Nop()}
}

func TestTaskIDFor(t *testing.T) {
	id := "3f6b1f0e-9f7a-4c2d-8a5b-111111111111"

	assert.Equal(t, "bick-"+id, TaskIDFor(id))
	// одинаковый bick всегда даёт одинаковый task id
	assert.Equal(t, TaskIDFor(id), TaskIDFor(id))
	assert.NotEqual(t, TaskIDFor(id), TaskIDFor("other"))
}

func TestRetryDelay(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 3, want: 4 * time.Second},
		{attempt: 0, want: time.Second},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, RetryDelay(tc.attempt, nil, nil), "attempt %d", tc.attempt)
	}
}

func TestEnqueueProcess_RejectsInvalidJob(t *testing.T) {
	// валидация отрабатывает до обращения к Redis
	q := &Queue{}

	cases := []struct {
		name string
		job  models.ProcessingJob
	}{
		{name: "missing bick id", job: models.ProcessingJob{StorageKey: "uploads/a/original.mp3", OriginalFilename: "a.mp3"}},
		{name: "missing storage key", job: models.ProcessingJob{BickID: "a", OriginalFilename: "a.mp3"}},
		{name: "missing filename", job: models.ProcessingJob{BickID: "a", StorageKey: "uploads/a/original.mp3"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := q.EnqueueProcess(context.Background(), tc.job)
			assert.ErrorIs(t, err, models.ErrInvalidArgument)
		})
	}
}

func TestEnqueueProcess_ReplacesArchivedTask(t *testing.T) {
	job := validJob()
	taskID := TaskIDFor(job.BickID)

	client := new(ClientMock)
	inspector := new(InspectorMock)
	q := newMockedQueue(client, inspector)

	// хвост от провалившегося запуска держит task id до конца retention
	client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, asynq.ErrTaskIDConflict).
		Once()
	inspector.On("GetTaskInfo", ProcessingQueue, taskID).
		Return(&asynq.TaskInfo{ID: taskID, Queue: ProcessingQueue, State: asynq.TaskStateArchived}, nil).
		Once()
	inspector.On("DeleteTask", ProcessingQueue, taskID).Return(nil).Once()
	client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).
		Return(&asynq.TaskInfo{ID: taskID, Queue: ProcessingQueue}, nil).
		Once()

	got, err := q.EnqueueProcess(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, taskID, got)
	client.AssertExpectations(t)
	inspector.AssertExpectations(t)
}

func TestEnqueueProcess_AliveDuplicateIsNoop(t *testing.T) {
	job := validJob()
	taskID := TaskIDFor(job.BickID)

	client := new(ClientMock)
	inspector := new(InspectorMock)
	q := newMockedQueue(client, inspector)

	client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, asynq.ErrTaskIDConflict).
		Once()
	inspector.On("GetTaskInfo", ProcessingQueue, taskID).
		Return(&asynq.TaskInfo{ID: taskID, Queue: ProcessingQueue, State: asynq.TaskStatePending}, nil).
		Once()

	got, err := q.EnqueueProcess(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, taskID, got)

	// живую задачу не трогаем
	inspector.AssertNotCalled(t, "DeleteTask", mock.Anything, mock.Anything)
	client.AssertNumberOfCalls(t, "EnqueueContext", 1)
}

func TestEnqueueProcess_ConflictWithVanishedTaskRetries(t *testing.T) {
	job := validJob()
	taskID := TaskIDFor(job.BickID)

	client := new(ClientMock)
	inspector := new(InspectorMock)
	q := newMockedQueue(client, inspector)

	client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, asynq.ErrTaskIDConflict).
		Once()
	inspector.On("GetTaskInfo", ProcessingQueue, taskID).
		Return(nil, asynq.ErrTaskNotFound).
		Once()
	client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).
		Return(&asynq.TaskInfo{ID: taskID, Queue: ProcessingQueue}, nil).
		Once()

	got, err := q.EnqueueProcess(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, taskID, got)
	inspector.AssertNotCalled(t, "DeleteTask", mock.Anything, mock.Anything)
}

func TestTaskFinished(t *testing.T) {
	cases := []struct {
		state asynq.TaskState
		want  bool
	}{
		{state: asynq.TaskStateArchived, want: true},
		{state: asynq.TaskStateCompleted, want: true},
		{state: asynq.TaskStatePending, want: false},
		{state: asynq.TaskStateActive, want: false},
		{state: asynq.TaskStateRetry, want: false},
		{state: asynq.TaskStateScheduled, want: false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, taskFinished(tc.state), "state %s", tc.state)
	}
}
