package queue

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	defaultWorkers = 4
	defaultMaxSize = 100
)

var (
	ErrQueueFull   = common.NewError("QUEUE_FULL", "隊列已滿", http.StatusServiceUnavailable, nil)
	ErrQueueClosed = common.NewError("QUEUE_CLOSED", "隊列已關閉", http.StatusServiceUnavailable, nil)
)

// Job 在 worker 中執行的工作
type Job func(ctx context.Context) (string, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	Job     Job
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Value string
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 隊列管理器，以固定數量的 worker 限制同時進行的 AI 呼叫
type Manager struct {
	workers   int
	maxSize   int
	queue     chan *Request
	done      chan struct{}
	wg        sync.WaitGroup
	processed int64
	closeOnce sync.Once
}

// NewManager 創建隊列管理器並啟動 worker
func NewManager(cfg *config.QueueConfig) *Manager {
	workers, maxSize := defaultWorkers, defaultMaxSize
	if cfg != nil {
		if cfg.Workers > 0 {
			workers = cfg.Workers
		}
		if cfg.MaxSize > 0 {
			maxSize = cfg.MaxSize
		}
	}

	m := &Manager{
		workers: workers,
		maxSize: maxSize,
		queue:   make(chan *Request, maxSize),
		done:    make(chan struct{}),
	}

	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.worker()
	}

	common.LogInfo("Queue manager started",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", maxSize),
	)
	return m
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case req := <-m.queue:
			m.process(req)
		case <-m.done:
			m.drain()
			return
		}
	}
}

// process 執行單一請求，已取消的請求不執行
func (m *Manager) process(req *Request) {
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{Error: err}
		return
	}
	value, err := req.Job(req.Context)
	atomic.AddInt64(&m.processed, 1)
	req.Result <- Result{Value: value, Error: err}
}

// drain 關閉後通知仍在隊列中的請求
func (m *Manager) drain() {
	for {
		select {
		case req := <-m.queue:
			req.Result <- Result{Error: ErrQueueClosed}
		default:
			return
		}
	}
}

// Enqueue 將工作加入隊列，隊列已滿時立即回傳 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, job Job) (<-chan Result, error) {
	select {
	case <-m.done:
		return nil, ErrQueueClosed
	default:
	}

	req := &Request{
		Context: ctx,
		Job:     job,
		Result:  make(chan Result, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, ErrQueueFull
	}
}

// Do 排入工作並等待結果
func (m *Manager) Do(ctx context.Context, job Job) (string, error) {
	result, err := m.Enqueue(ctx, job)
	if err != nil {
		return "", err
	}
	select {
	case r := <-result:
		return r.Value, r.Error
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	if m == nil {
		return nil
	}
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止 worker，可重複呼叫
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		common.LogInfo("Queue manager stopped",
			zap.Int64("processed", atomic.LoadInt64(&m.processed)),
		)
	})
}
