package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge-app/taskforge-api/internal/config"
	"github.com/taskforge-app/taskforge-api/internal/domain"
)

// countingTaskStore implements store.TaskStore for sweeper tests; only
// MarkOverdue matters.
type countingTaskStore struct {
	mu      sync.Mutex
	calls   int
	count   int64
	err     error
	lastNow time.Time
}

func (c *countingTaskStore) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastNow = now
	return c.count, c.err
}

func (c *countingTaskStore) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *countingTaskStore) Create(context.Context, *domain.Task) error { return nil }
func (c *countingTaskStore) GetByID(context.Context, uuid.UUID, uuid.UUID) (*domain.Task, error) {
	return nil, nil
}
func (c *countingTaskStore) ListByUser(context.Context, uuid.UUID) ([]*domain.Task, error) {
	return nil, nil
}
func (c *countingTaskStore) Update(context.Context, uuid.UUID, *domain.Task) error { return nil }
func (c *countingTaskStore) Delete(context.Context, uuid.UUID, uuid.UUID) error    { return nil }

// sweepTaskStore is a data-bearing fake: MarkOverdue applies the bulk
// transition rules to seeded tasks and records the count of every run.
type sweepTaskStore struct {
	countingTaskStore
	tasksMu sync.Mutex
	tasks   []*domain.Task
	counts  []int64
}

func (s *sweepTaskStore) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	var count int64
	for _, task := range s.tasks {
		if task.DueDate.Before(now) &&
			task.Status != domain.TaskStatusCompleted &&
			task.Status != domain.TaskStatusOverdue {
			task.Status = domain.TaskStatusOverdue
			task.UpdatedAt = now
			count++
		}
	}
	s.counts = append(s.counts, count)
	return count, nil
}

func TestSweepTransitionsOverdueTasks(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	userID := uuid.New()

	seed := func(due time.Time, status domain.TaskStatus) *domain.Task {
		return &domain.Task{
			ID:       uuid.New(),
			UserID:   userID,
			Title:    "seeded task",
			DueDate:  due,
			Status:   status,
			Priority: domain.TaskPriorityMedium,
		}
	}

	pastTodo := seed(past, domain.TaskStatusTodo)
	pastInProgress := seed(past, domain.TaskStatusInProgress)
	pastCompleted := seed(past, domain.TaskStatusCompleted)
	pastOverdue := seed(past, domain.TaskStatusOverdue)
	futureTodo := seed(future, domain.TaskStatusTodo)

	tasks := &sweepTaskStore{
		tasks: []*domain.Task{pastTodo, pastInProgress, pastCompleted, pastOverdue, futureTodo},
	}
	s := New(tasks, config.SweeperConfig{Enabled: true}, nil)
	s.timeFunc = func() time.Time { return now }

	s.Sweep(context.Background())

	// Past-due active tasks transition.
	assert.Equal(t, domain.TaskStatusOverdue, pastTodo.Status)
	assert.Equal(t, domain.TaskStatusOverdue, pastInProgress.Status)

	// Completed is terminal, future-due is untouched, already-overdue stays.
	assert.Equal(t, domain.TaskStatusCompleted, pastCompleted.Status)
	assert.Equal(t, domain.TaskStatusTodo, futureTodo.Status)
	assert.Equal(t, domain.TaskStatusOverdue, pastOverdue.Status)

	// A second run finds nothing left to transition.
	s.Sweep(context.Background())
	assert.Equal(t, []int64{2, 0}, tasks.counts)
	assert.Equal(t, domain.TaskStatusCompleted, pastCompleted.Status)
}

func TestSweepCallsMarkOverdue(t *testing.T) {
	tasks := &countingTaskStore{count: 3}
	s := New(tasks, config.SweeperConfig{Enabled: true}, nil)

	s.Sweep(context.Background())

	assert.Equal(t, 1, tasks.callCount())
	assert.Equal(t, time.UTC, tasks.lastNow.Location())
}

func TestSweepSwallowsErrors(t *testing.T) {
	tasks := &countingTaskStore{err: errors.New("db down")}
	s := New(tasks, config.SweeperConfig{Enabled: true}, nil)

	// Must not panic or propagate.
	s.Sweep(context.Background())
	assert.Equal(t, 1, tasks.callCount())
}

func TestNextWaitInterval(t *testing.T) {
	s := New(&countingTaskStore{}, config.SweeperConfig{
		Enabled:         true,
		IntervalMinutes: 15,
	}, nil)

	assert.Equal(t, 15*time.Minute, s.nextWait())
}

func TestNextWaitDailyHour(t *testing.T) {
	s := New(&countingTaskStore{}, config.SweeperConfig{
		Enabled: true,
		Hour:    0,
	}, nil)

	// 21:30 local; midnight is 2.5 hours away.
	s.timeFunc = func() time.Time {
		return time.Date(2025, 6, 1, 21, 30, 0, 0, time.UTC)
	}
	assert.Equal(t, 2*time.Hour+30*time.Minute, s.nextWait())

	// Exactly at the scheduled hour the next run is tomorrow.
	s.timeFunc = func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	assert.Equal(t, 24*time.Hour, s.nextWait())
}

func TestNextWaitLaterSameDay(t *testing.T) {
	s := New(&countingTaskStore{}, config.SweeperConfig{
		Enabled: true,
		Hour:    14,
	}, nil)
	s.timeFunc = func() time.Time {
		return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, 5*time.Hour, s.nextWait())
}

func TestStartDisabled(t *testing.T) {
	tasks := &countingTaskStore{}
	s := New(tasks, config.SweeperConfig{Enabled: false}, nil)

	s.Start()
	s.Stop()

	assert.Equal(t, 0, tasks.callCount())
}

func TestStartAndStopWithInterval(t *testing.T) {
	tasks := &countingTaskStore{}
	s := New(tasks, config.SweeperConfig{Enabled: true, IntervalMinutes: 1}, nil)

	s.Start()
	// Stop before the first tick; the loop must exit promptly.
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "sweeper did not stop in time")
	}
}
