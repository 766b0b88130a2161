package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/talentops/hireflow/internal/application/port"
	"github.com/talentops/hireflow/internal/domain/entity"
)

var (
	// ErrQueueFull is returned by Enqueue when the letter queue is at
	// capacity.
	ErrQueueFull = errors.New("letter queue is full")

	// ErrNotRunning is returned by Enqueue before Start or after Stop.
	ErrNotRunning = errors.New("letter worker is not running")
)

// LetterWorkerConfig holds configuration for the letter pool
type LetterWorkerConfig struct {
	Concurrency   int
	QueueSize     int
	RenderTimeout time.Duration
}

// DefaultLetterWorkerConfig returns default configuration
func DefaultLetterWorkerConfig() LetterWorkerConfig {
	return LetterWorkerConfig{
		Concurrency:   2,
		QueueSize:     64,
		RenderTimeout: 30 * time.Second,
	}
}

// RecordAccess is the slice of the record service the letter pool needs.
type RecordAccess interface {
	GetRecord(ctx context.Context, id string) (*entity.Record, error)
	AppendLetterHistory(ctx context.Context, recordID, path string) error
}

// LetterWorker renders offer letters in the background. Enqueue accepts a
// record ID and returns immediately; a pool of goroutines renders the
// letter and appends the result to the record's history.
type LetterWorker struct {
	config   LetterWorkerConfig
	records  RecordAccess
	renderer port.LetterRenderer
	logger   *zap.Logger

	queue chan string
	wg    sync.WaitGroup

	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
	isRunning     bool
	renderedCount int
	failedCount   int
}

// NewLetterWorker creates a new letter worker pool
func NewLetterWorker(
	config LetterWorkerConfig,
	records RecordAccess,
	renderer port.LetterRenderer,
	logger *zap.Logger,
) *LetterWorker {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 1
	}
	return &LetterWorker{
		config:   config,
		records:  records,
		renderer: renderer,
		logger:   logger,
		queue:    make(chan string, config.QueueSize),
	}
}

// Name implements Worker
func (w *LetterWorker) Name() string { return "letter_worker" }

// Start launches the render goroutines
func (w *LetterWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("letter worker already running")
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.mu.Unlock()

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.renderLoop(i)
	}

	w.logger.Info("LetterWorker started",
		zap.Int("concurrency", w.config.Concurrency),
		zap.Int("queue_size", w.config.QueueSize))
	return nil
}

// Stop cancels in-flight renders and waits for the pool to drain
func (w *LetterWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()

	w.mu.RLock()
	defer w.mu.RUnlock()
	w.logger.Info("LetterWorker stopped",
		zap.Int("rendered_count", w.renderedCount),
		zap.Int("failed_count", w.failedCount))
	return nil
}

// Enqueue implements port.LetterDispatcher. It never blocks: a full
// queue is reported to the caller instead of stalling the request path.
func (w *LetterWorker) Enqueue(recordID string) error {
	w.mu.RLock()
	running := w.isRunning
	w.mu.RUnlock()
	if !running {
		return ErrNotRunning
	}

	select {
	case w.queue <- recordID:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *LetterWorker) renderLoop(id int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case recordID := <-w.queue:
			w.renderOne(id, recordID)
		}
	}
}

func (w *LetterWorker) renderOne(workerID int, recordID string) {
	ctx, cancel := context.WithTimeout(w.ctx, w.config.RenderTimeout)
	defer cancel()

	record, err := w.records.GetRecord(ctx, recordID)
	if err != nil {
		w.fail(workerID, recordID, err)
		return
	}

	path, err := w.renderer.Render(ctx, record)
	if err != nil {
		w.fail(workerID, recordID, err)
		return
	}

	if err := w.records.AppendLetterHistory(ctx, recordID, path); err != nil {
		w.fail(workerID, recordID, err)
		return
	}

	w.mu.Lock()
	w.renderedCount++
	w.mu.Unlock()

	w.logger.Info("Offer letter generated",
		zap.Int("worker_id", workerID),
		zap.String("record_id", recordID),
		zap.String("path", path))
}

func (w *LetterWorker) fail(workerID int, recordID string, err error) {
	w.mu.Lock()
	w.failedCount++
	w.mu.Unlock()

	w.logger.Error("Offer letter generation failed",
		zap.Int("worker_id", workerID),
		zap.String("record_id", recordID),
		zap.Error(err))
}

// Stats returns rendered and failed counts since start
func (w *LetterWorker) Stats() (rendered, failed int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.renderedCount, w.failedCount
}
