package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/domain/holiday"
	"fieldstock/internal/domain/technician"
	"fieldstock/internal/sync/feed"
	"fieldstock/pkg/logger"
)

// blockingFeed holds every FetchAll call until released.
type blockingFeed struct {
	calls   atomic.Int32
	release chan struct{}
}

func (b *blockingFeed) FetchAll(_ context.Context) ([]feed.RawOrder, error) {
	b.calls.Add(1)
	if b.release != nil {
		<-b.release
	}
	return nil, nil
}

func newSchedulerFixture(fc FeedClient, interval time.Duration) *Scheduler {
	log := logger.Default()
	orch := NewOrchestrator(
		fc,
		newFakeOrderRepo(),
		&fakeRecordRepo{},
		technician.NewResolver(&fakeTechRepo{}, log),
		holiday.NewService(&fakeHolidayRepo{}),
		passthroughTx{},
		nil,
		log,
	)
	return NewScheduler(orch, interval, log)
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	fc := &blockingFeed{}
	s := newSchedulerFixture(fc, time.Hour)
	defer s.Stop()

	require.NoError(t, s.Start())
	assert.True(t, s.Active())

	assert.Eventually(t, func() bool {
		return fc.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	fc := &blockingFeed{}
	s := newSchedulerFixture(fc, time.Hour)
	defer s.Stop()

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.Active())

	// Only the one immediate run, not one per Start call.
	assert.Eventually(t, func() bool { return fc.calls.Load() > 0 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fc.calls.Load())
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := newSchedulerFixture(&blockingFeed{}, time.Hour)

	require.NoError(t, s.Start())
	s.Stop()
	assert.False(t, s.Active())
	s.Stop()
}

func TestScheduler_RunNowRejectsConcurrentRun(t *testing.T) {
	fc := &blockingFeed{release: make(chan struct{})}
	s := newSchedulerFixture(fc, time.Hour)

	done := make(chan struct{})
	go func() {
		_, _ = s.RunNow(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return fc.calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	_, err := s.RunNow(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)

	close(fc.release)
	<-done
}

func TestScheduler_StatusTracksLastRun(t *testing.T) {
	s := newSchedulerFixture(&blockingFeed{}, 90*time.Second)

	st := s.Status()
	assert.False(t, st.Active)
	assert.Equal(t, 90, st.IntervalSeconds)
	assert.Nil(t, st.LastRunAt)

	_, err := s.RunNow(context.Background())
	require.NoError(t, err)

	st = s.Status()
	require.NotNil(t, st.LastRunAt)
	require.NotNil(t, st.LastStats)
	assert.Zero(t, st.LastStats.NewOrders)
	assert.Empty(t, st.LastError)
}

func TestScheduler_DefaultsInterval(t *testing.T) {
	s := newSchedulerFixture(&blockingFeed{}, 0)
	assert.Equal(t, int(DefaultInterval/time.Second), s.Status().IntervalSeconds)
}
