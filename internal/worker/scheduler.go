package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"propinvest/pkg/logx"
)

const defaultRefreshInterval = time.Hour

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RefreshScheduler периодически ставит задачу пересчёта рейтинга в очередь.
type RefreshScheduler struct {
	queue    Enqueuer
	interval time.Duration
	onStart  bool

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewRefreshScheduler(queue Enqueuer) *RefreshScheduler {
	return &RefreshScheduler{
		queue:    queue,
		interval: defaultRefreshInterval,
	}
}

func (w *RefreshScheduler) WithInterval(interval time.Duration) *RefreshScheduler {
	if interval > 0 {
		w.interval = interval
	}

	return w
}

// WithRefreshOnStart ставит задачу сразу при запуске, не дожидаясь первого тика.
func (w *RefreshScheduler) WithRefreshOnStart(enabled bool) *RefreshScheduler {
	w.onStart = enabled
	return w
}

func (w *RefreshScheduler) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("scheduler is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("refresh scheduler stopped", logx.Error(err))
		}
	}()

	return nil
}

func (w *RefreshScheduler) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *RefreshScheduler) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.isRunning
}

func (w *RefreshScheduler) Run(ctx context.Context) error {
	logger(ctx).Info("refresh scheduler started", slog.Duration("interval", w.interval))

	if w.onStart {
		w.enqueue(ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("refresh scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			w.enqueue(ctx)
		}
	}
}

// Enqueue ставит задачу вне расписания. Дубликат в пределах окна уникальности не ошибка.
func (w *RefreshScheduler) Enqueue(ctx context.Context) (string, error) {
	info, err := w.queue.EnqueueContext(ctx, NewRefreshTask())
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
			return "", nil
		}

		return "", fmt.Errorf("queue.EnqueueContext: %w", err)
	}

	return info.ID, nil
}

func (w *RefreshScheduler) enqueue(ctx context.Context) {
	id, err := w.Enqueue(ctx)
	if err != nil {
		logger(ctx).Error("failed to enqueue ranking refresh", logx.Error(err))
		return
	}

	if id == "" {
		logger(ctx).Debug("ranking refresh already queued")
		return
	}

	logger(ctx).Info("ranking refresh queued", slog.String(logx.FieldTaskID, id))
}
