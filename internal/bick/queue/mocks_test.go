package queue

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

type ClientMock struct {
	mock.Mock
}

func (m *ClientMock) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if v := args.Get(0); v != nil {
		return v.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClientMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

type InspectorMock struct {
	mock.Mock
}

func (m *InspectorMock) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	args := m.Called(queue, id)
	if v := args.Get(0); v != nil {
		return v.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InspectorMock) DeleteTask(queue, id string) error {
	args := m.Called(queue, id)
	return args.Error(0)
}

func (m *InspectorMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
