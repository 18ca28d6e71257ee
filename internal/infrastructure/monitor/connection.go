package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/internal/infrastructure/buffer"
)

var errNotConfigured = errors.New("not configured")

type probe struct {
	store   string
	timeout time.Duration
	check   func(ctx context.Context) error
}

// Monitor periodically probes Postgres, Redis and the bbolt buffer. The buffer processor
// consults IsOnline before replaying writes.
type Monitor struct {
	probes  []probe
	pending func() (map[string]int, error)

	mu       sync.RWMutex
	status   Status
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(pg *pgxpool.Pool, redis *redislib.Client, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	m := newMonitor(interval, logger)
	m.probes = []probe{
		{store: StorePostgres, timeout: 3 * time.Second, check: func(ctx context.Context) error {
			if pg == nil {
				return errNotConfigured
			}
			return pg.Ping(ctx)
		}},
		{store: StoreRedis, timeout: 2 * time.Second, check: func(ctx context.Context) error {
			if redis == nil {
				return errNotConfigured
			}
			return redis.Ping(ctx).Err()
		}},
	}
	m.pending = func() (map[string]int, error) {
		if buf == nil {
			return nil, errNotConfigured
		}
		return buf.Pending()
	}
	return m
}

func newMonitor(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every store once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{LastCheck: time.Now()}
	for _, p := range m.probes {
		probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
		status.set(p.store, p.check(probeCtx))
		cancel()
	}

	pending, err := m.pending()
	status.set(StoreBuffer, err)
	status.Pending = pending
	for _, n := range pending {
		status.BufferSize += n
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if previous.Online() != status.Online() && !previous.LastCheck.IsZero() {
		m.logger.Warn("store connectivity changed",
			zap.Bool("online", status.Online()),
			zap.Any("failures", status.Failures),
			zap.Int("pending_writes", status.BufferSize))
	}
	return status
}
