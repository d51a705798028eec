package task

import (
	"testing"

	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	log, _ := logger.NewTestLogger()

	t.Run("enqueue and read", func(t *testing.T) {
		q := NewTaskQueue(2, log)
		task := newMockTask(nil)

		require.NoError(t, q.Enqueue(task))

		got := <-q.GetChannel()
		assert.Equal(t, task.ID(), got.ID())
	})

	t.Run("full queue", func(t *testing.T) {
		q := NewTaskQueue(1, log)
		require.NoError(t, q.Enqueue(newMockTask(nil)))

		err := q.Enqueue(newMockTask(nil))

		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed queue", func(t *testing.T) {
		q := NewTaskQueue(1, log)
		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(newMockTask(nil)), ErrQueueClosed)
		_, ok := <-q.GetChannel()
		assert.False(t, ok)
	})

	t.Run("size below one", func(t *testing.T) {
		q := NewTaskQueue(0, nil)
		assert.Equal(t, 1, cap(q.tasks))
	})
}
