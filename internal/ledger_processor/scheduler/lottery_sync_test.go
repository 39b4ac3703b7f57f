package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/natillera-ledger/internal/config"
	"github.com/natillera-ledger/internal/domain/lottery"
	"github.com/natillera-ledger/internal/platform/clock"
	"github.com/natillera-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDrawSyncer struct {
	mock.Mock
}

func (m *MockDrawSyncer) SyncDraw(ctx context.Context) (*service.SyncOutcome, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncOutcome), args.Error(1)
}

func bogota(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	return loc
}

func newLotterySync(t *testing.T, syncer DrawSyncer, now time.Time) *LotterySync {
	cfg := &config.LotteryConfig{SyncHour: 22, SyncMinute: 10}
	return NewLotterySync(cfg, bogota(t), syncer, clock.Fixed{At: now}, slog.Default())
}

func TestLotterySync_NextRun(t *testing.T) {
	loc := bogota(t)
	s := newLotterySync(t, new(MockDrawSyncer), time.Now())

	testCases := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{
			name:     "LaterToday",
			now:      time.Date(2025, time.March, 28, 9, 0, 0, 0, loc),
			expected: time.Date(2025, time.March, 28, 22, 10, 0, 0, loc),
		},
		{
			name:     "ExactlyAtSyncTimeMovesToTomorrow",
			now:      time.Date(2025, time.March, 28, 22, 10, 0, 0, loc),
			expected: time.Date(2025, time.March, 29, 22, 10, 0, 0, loc),
		},
		{
			name:     "AfterSyncTimeCrossesMonth",
			now:      time.Date(2025, time.March, 31, 23, 0, 0, 0, loc),
			expected: time.Date(2025, time.April, 1, 22, 10, 0, 0, loc),
		},
		{
			name:     "UTCInputBeforeLocalSyncTime",
			now:      time.Date(2025, time.March, 29, 2, 0, 0, 0, time.UTC),
			expected: time.Date(2025, time.March, 28, 22, 10, 0, 0, loc),
		},
		{
			name:     "UTCInputAfterLocalSyncTime",
			now:      time.Date(2025, time.March, 29, 3, 30, 0, 0, time.UTC),
			expected: time.Date(2025, time.March, 29, 22, 10, 0, 0, loc),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := s.NextRun(tc.now)
			assert.True(t, next.Equal(tc.expected), "expected %s, got %s", tc.expected, next)
			assert.True(t, next.After(tc.now))
		})
	}
}

func TestLotterySync_RunOnce(t *testing.T) {
	ctx := context.Background()
	drawDate := time.Date(2025, time.March, 28, 0, 0, 0, 0, time.UTC)

	outcomes := []struct {
		name    string
		outcome *service.SyncOutcome
		err     error
	}{
		{"Skipped", &service.SyncOutcome{DrawDate: drawDate}, nil},
		{"AlreadyStored", &service.SyncOutcome{Ran: true, AlreadyStored: true, DrawDate: drawDate, Result: &lottery.Result{Result: "4821"}}, nil},
		{"Stored", &service.SyncOutcome{Ran: true, DrawDate: drawDate, Result: &lottery.Result{Result: "4821"}}, nil},
		{"Failed", nil, errors.New("feed unavailable")},
	}

	for _, tc := range outcomes {
		t.Run(tc.name, func(t *testing.T) {
			syncer := new(MockDrawSyncer)
			syncer.On("SyncDraw", ctx).Return(tc.outcome, tc.err).Once()

			assert.NotPanics(t, func() { newLotterySync(t, syncer, time.Now()).RunOnce(ctx) })
			syncer.AssertExpectations(t)
		})
	}
}

func TestLotterySync_StartRunsCatchUpAndStops(t *testing.T) {
	syncer := new(MockDrawSyncer)
	var runs atomic.Int32
	syncer.On("SyncDraw", mock.Anything).Return(&service.SyncOutcome{}, nil).Once().Run(func(mock.Arguments) { runs.Add(1) })

	// far from the next sync, so only the catch-up run happens
	now := time.Date(2025, time.March, 28, 9, 0, 0, 0, bogota(t))
	s := newLotterySync(t, syncer, now)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return runs.Load() == 1
	}, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	syncer.AssertExpectations(t)
}
