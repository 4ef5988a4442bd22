package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

// countingConn records how many events reach a ClickHouse batch.
type countingConn struct {
	driver.Conn
	appended int64
}

func (c *countingConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	return &countingBatch{appended: &c.appended}, nil
}

type countingBatch struct {
	driver.Batch
	appended *int64
}

func (b *countingBatch) Append(v ...interface{}) error {
	atomic.AddInt64(b.appended, 1)
	return nil
}

func (b *countingBatch) Send() error { return nil }

func testEvent(playerID string) *models.MoveEvent {
	return &models.MoveEvent{
		Timestamp:  time.Now(),
		GameID:     "g1",
		PlayerID:   playerID,
		PlayerName: playerID,
		Round:      1,
		Choice:     "rock",
		Prediction: "rock",
		AIChoice:   "paper",
		Confidence: 35,
		Correct:    true,
		Winner:     models.WinnerAI,
	}
}

func TestEnqueue(t *testing.T) {
	pool := &Pool{
		config:   PoolConfig{QueueSize: 10},
		jobQueue: make(chan Job, 10),
		logger:   zap.NewNop().Sugar(),
	}

	if ok := pool.Enqueue(testEvent("p1")); !ok {
		t.Error("Enqueue to an empty queue must succeed")
	}
	if got := pool.QueueDepth(); got != 1 {
		t.Errorf("QueueDepth = %d, want 1", got)
	}
}

func TestEnqueueFull(t *testing.T) {
	pool := &Pool{
		config:   PoolConfig{QueueSize: 2},
		jobQueue: make(chan Job, 2),
		logger:   zap.NewNop().Sugar(),
	}

	pool.Enqueue(testEvent("p1"))
	pool.Enqueue(testEvent("p2"))

	// Queue is full; the next event must be shed immediately, not block.
	start := time.Now()
	ok := pool.Enqueue(testEvent("p3"))
	elapsed := time.Since(start)

	if ok {
		t.Error("Enqueue on a full queue must return false")
	}
	if elapsed > 10*time.Millisecond {
		t.Errorf("Enqueue took %v, must not block on a full queue", elapsed)
	}
	if got := pool.QueueDepth(); got != 2 {
		t.Errorf("QueueDepth = %d, want 2", got)
	}
}

func TestEnqueueAfterStop(t *testing.T) {
	pool := &Pool{
		config:   PoolConfig{QueueSize: 2},
		jobQueue: make(chan Job, 2),
		logger:   zap.NewNop().Sugar(),
	}
	close(pool.jobQueue)

	// Must recover from the send on the closed channel, not panic.
	if ok := pool.Enqueue(testEvent("p1")); ok {
		t.Error("Enqueue after shutdown must return false")
	}
}

func TestStopFlushesQueuedEvents(t *testing.T) {
	const queued = 50

	ch := &countingConn{}
	pool := NewPool(PoolConfig{
		WorkerCount: 1,
		QueueSize:   queued,
		BatchSize:   500,
		// Long interval so nothing flushes before shutdown.
		FlushInterval: time.Minute,
		ClickHouse:    ch,
		Logger:        zap.NewNop(),
	})

	for i := 0; i < queued; i++ {
		if ok := pool.Enqueue(testEvent(fmt.Sprintf("p%d", i))); !ok {
			t.Fatalf("enqueue %d failed", i)
		}
	}

	pool.Start(context.Background())
	pool.Stop()

	if got := atomic.LoadInt64(&ch.appended); got != queued {
		t.Errorf("flushed %d of %d queued events on Stop", got, queued)
	}
}

func TestPoolConfigDefaults(t *testing.T) {
	pool := NewPool(PoolConfig{Logger: zap.NewNop()})

	if pool.config.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, want 4", pool.config.WorkerCount)
	}
	if pool.config.QueueSize != 10000 {
		t.Errorf("QueueSize = %d, want 10000", pool.config.QueueSize)
	}
	if pool.config.BatchSize != 500 {
		t.Errorf("BatchSize = %d, want 500", pool.config.BatchSize)
	}
	if pool.config.FlushInterval != time.Second {
		t.Errorf("FlushInterval = %v, want 1s", pool.config.FlushInterval)
	}
}
