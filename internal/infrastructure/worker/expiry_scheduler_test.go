package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockExpirer for testing
type MockExpirer struct {
	swept chan time.Time
}

func (m *MockExpirer) ExpireSentRecords(ctx context.Context, now time.Time) (int, error) {
	m.swept <- now
	return 1, nil
}

func TestExpirySchedulerSweepsOnStart(t *testing.T) {
	expirer := &MockExpirer{swept: make(chan time.Time, 4)}
	scheduler := NewExpiryScheduler("@every 1h", expirer, zap.NewNop())

	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop()

	select {
	case <-expirer.swept:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for startup sweep")
	}
}

func TestExpirySchedulerRejectsBadSchedule(t *testing.T) {
	expirer := &MockExpirer{swept: make(chan time.Time, 1)}
	scheduler := NewExpiryScheduler("not a schedule", expirer, zap.NewNop())

	err := scheduler.Start(context.Background())
	assert.Error(t, err)
}

func TestExpirySchedulerStopIdempotent(t *testing.T) {
	expirer := &MockExpirer{swept: make(chan time.Time, 4)}
	scheduler := NewExpiryScheduler("@every 1h", expirer, zap.NewNop())

	require.NoError(t, scheduler.Start(context.Background()))
	require.NoError(t, scheduler.Stop())
	require.NoError(t, scheduler.Stop())
}
