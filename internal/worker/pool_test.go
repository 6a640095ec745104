package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
)

func TestPoolRunsTasksAndDrains(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 3, QueueSize: 10}, zap.NewNop(), nil)
	p.Start()

	var n atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit("inc", func(context.Context) { n.Add(1) }))
	}
	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, int32(10), n.Load())

	assert.ErrorIs(t, p.Submit("late", func(context.Context) {}), ErrPoolClosed)
}

func TestPoolSubmitNeverBlocks(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 1}, zap.NewNop(), nil)
	p.Start()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit("block", func(context.Context) {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, p.Submit("queued", func(context.Context) {}))

	begin := time.Now()
	err := p.Submit("overflow", func(context.Context) {})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Less(t, time.Since(begin), 100*time.Millisecond)

	close(release)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestPoolRecoversPanicsAndAppliesTimeout(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 4, TaskTimeout: 20 * time.Millisecond}, zap.NewNop(), nil)
	p.Start()

	var deadlineHit atomic.Bool
	require.NoError(t, p.Submit("panic", func(context.Context) { panic("boom") }))
	require.NoError(t, p.Submit("slow", func(ctx context.Context) {
		<-ctx.Done()
		deadlineHit.Store(true)
	}))
	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, deadlineHit.Load())
}

func TestPoolShutdownDeadline(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 1}, zap.NewNop(), nil)
	p.Start()

	require.NoError(t, p.Submit("stuck", func(ctx context.Context) { <-ctx.Done() }))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Shutdown(ctx), context.DeadlineExceeded)
}

type recordingAnalyzer struct {
	mu  sync.Mutex
	ids []string
	wg  *sync.WaitGroup
}

func (r *recordingAnalyzer) AnalyzeTicket(_ context.Context, id string) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
	r.wg.Done()
}

func TestEnrichmentWorkerSubmitsCreatedTickets(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	pool := NewPool(PoolConfig{Workers: 2, QueueSize: 4}, zap.NewNop(), nil)
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(2)
	analyzer := &recordingAnalyzer{wg: &wg}
	StartEnrichmentWorker(dispatcher, pool, analyzer, zap.NewNop(), observability.NewMetrics("test"))

	for _, id := range []string{"t-1", "t-2"} {
		ev := events.NewEvent(events.EventTicketCreated, &domain.Ticket{ID: id, OrganizationID: "org"}, nil, nil)
		require.NoError(t, dispatcher.Publish(context.Background(), ev))
	}
	wg.Wait()
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.ElementsMatch(t, []string{"t-1", "t-2"}, analyzer.ids)
}

func TestEnrichmentWorkerSwallowsFullQueue(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	pool := NewPool(PoolConfig{Workers: 1, QueueSize: 0}, zap.NewNop(), nil)
	require.NoError(t, pool.Shutdown(context.Background()))

	var wg sync.WaitGroup
	StartEnrichmentWorker(dispatcher, pool, &recordingAnalyzer{wg: &wg}, zap.NewNop(), nil)

	ev := events.NewEvent(events.EventTicketCreated, &domain.Ticket{ID: "t-1"}, nil, nil)
	assert.NoError(t, dispatcher.Publish(context.Background(), ev))
}
