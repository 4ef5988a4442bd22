// Package worker implements the buffered worker pool pattern for async
// move-event processing. This decouples round handling from analytics
// writes, providing:
// - Backpressure handling via load shedding
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

// Prometheus metrics
var (
	eventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rps_events_ingested_total",
		Help: "Total number of move events enqueued",
	})

	eventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rps_events_processed_total",
		Help: "Total number of move events processed by workers",
	})

	eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rps_events_failed_total",
		Help: "Total number of move events that failed processing",
	})

	queueDepthGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rps_worker_queue_depth",
		Help: "Current depth of the worker queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rps_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	eventsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rps_events_load_shed_total",
		Help: "Total number of move events dropped due to load shedding",
	})
)

// Job represents a unit of work for the worker pool
type Job struct {
	Event     *models.MoveEvent
	Timestamp time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Postgres      *pgxpool.Pool
	Redis         *redis.Client
	Logger        *zap.Logger
}

// Pool manages a pool of workers for async move-event processing
type Pool struct {
	config       PoolConfig
	jobQueue     chan Job
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	logger       *zap.SugaredLogger
	achievements *AchievementWorker
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	pool := &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}

	pool.achievements = NewAchievementWorker(cfg.Postgres, cfg.Redis, cfg.Logger.Sugar())
	return pool
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the worker pool, flushing pending batches.
// The queue is closed first so workers drain everything still buffered
// before exiting; cancellation only stops the depth reporter.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	close(p.jobQueue)
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a move event to the queue. Returns false when the event
// was shed because the queue is full or the pool is stopping.
func (p *Pool) Enqueue(event *models.MoveEvent) bool {
	// Protect against sending on closed channel during shutdown
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue event (pool stopped)", "error", r)
		}
	}()

	select {
	case p.jobQueue <- Job{Event: event, Timestamp: time.Now()}:
		eventsIngested.Inc()
		return true
	default:
		eventsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			queueDepthGauge.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			eventsFailed.Add(float64(len(batch)))
		} else {
			eventsProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	// Workers exit only once the queue is drained; racing a context
	// cancel here would abandon buffered jobs on shutdown.
	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}

			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// processBatch inserts a batch of move events into ClickHouse and then
// kicks off the redis/achievement side effects.
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO rps_stats.move_events (
			timestamp, game_id, player_id, player_name, round,
			choice, prediction, ai_choice, confidence, pattern_type,
			prediction_correct, winner
		)
	`)
	if err != nil {
		return err
	}

	for _, job := range batch {
		e := job.Event
		if err := chBatch.Append(
			e.Timestamp,
			e.GameID,
			e.PlayerID,
			e.PlayerName,
			uint32(e.Round),
			e.Choice,
			e.Prediction,
			e.AIChoice,
			uint8(e.Confidence),
			e.PatternType,
			e.Correct,
			e.Winner,
		); err != nil {
			p.logger.Warnw("Failed to append event to batch", "error", err, "gameID", e.GameID)
			continue
		}
	}

	// Side effects run after the data is durable; must copy because the
	// batch slice is reused in the worker loop.
	batchCopy := make([]Job, len(batch))
	copy(batchCopy, batch)

	if err := chBatch.Send(); err != nil {
		p.logger.Errorw("Failed to send batch to ClickHouse", "error", err, "batchSize", len(batch))
		return err
	}

	go p.processSideEffects(ctx, batchCopy)
	return nil
}

// processSideEffects updates per-player redis counters for a batch and
// hands threshold crossings to the achievement worker.
func (p *Pool) processSideEffects(ctx context.Context, batch []Job) {
	if p.config.Redis == nil {
		return
	}

	pipe := p.config.Redis.Pipeline()

	type winCheck struct {
		event *models.MoveEvent
		wins  *redis.IntCmd
		strk  *redis.IntCmd
	}
	var winChecks []winCheck

	for _, job := range batch {
		e := job.Event
		pipe.Incr(ctx, "player:"+e.PlayerID+":rounds")
		pipe.HSet(ctx, "player_names", e.PlayerID, e.PlayerName)
		if e.Correct {
			pipe.Incr(ctx, "player:"+e.PlayerID+":predicted")
		}

		switch e.Winner {
		case models.WinnerPlayer:
			wins := pipe.Incr(ctx, "player:"+e.PlayerID+":wins")
			strk := pipe.Incr(ctx, "player:"+e.PlayerID+":win_streak")
			winChecks = append(winChecks, winCheck{event: e, wins: wins, strk: strk})
		case models.WinnerAI:
			pipe.Set(ctx, "player:"+e.PlayerID+":win_streak", 0, 0)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		p.logger.Errorw("Redis pipeline failed", "error", err)
		return
	}

	if p.achievements == nil {
		return
	}
	for _, c := range winChecks {
		p.achievements.CheckThresholds(ctx, c.event.PlayerID, c.wins.Val(), c.strk.Val())
	}
}
