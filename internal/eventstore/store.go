package eventstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"predictionScope/internal/metrics"
	"predictionScope/internal/model"
)

var (
	// ErrAllNetworksFailed is recorded when no source contributed to a fetch.
	ErrAllNetworksFailed = errors.New("all networks failed")
	// ErrClosed is returned by fetches on a closed store.
	ErrClosed = errors.New("event store closed")
)

// LogSource produces the logs of one network.
type LogSource interface {
	Network() model.Network
	FetchNetworkLogs(ctx context.Context) ([]model.ContractLog, error)
}

// Snapshot is a consistent view of the store state.
// Logs is shared with the store and must not be modified.
type Snapshot struct {
	Logs          []model.ContractLog
	Loading       bool
	Err           error
	LastFetched   time.Time
	Fingerprint   common.Hash
	NetworkErrors map[model.Network]error
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for lastFetched.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store caches the logs of every configured network. At most one fetch
// runs at a time; callers arriving during a fetch get the current logs.
type Store struct {
	sources []LogSource
	logger  *zap.Logger
	now     func() time.Time

	mu          sync.RWMutex
	logs        []model.ContractLog
	loading     bool
	done        chan struct{}
	err         error
	lastFetched time.Time
	fingerprint common.Hash
	netErrs     map[model.Network]error
	closed      bool
}

// New builds a store over sources, fetched in the given order.
func New(sources []LogSource, opts ...Option) *Store {
	s := &Store{
		sources:     append([]LogSource(nil), sources...),
		logger:      zap.NewNop(),
		now:         time.Now,
		logs:        []model.ContractLog{},
		fingerprint: Fingerprint(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin claims the fetch slot. When a fetch is already running it returns
// that fetch's done channel and started=false.
func (s *Store) begin() (done chan struct{}, started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	if s.loading {
		return s.done, false, nil
	}
	s.loading = true
	s.done = make(chan struct{})
	return s.done, true, nil
}

// FetchAllLogs fetches every network and commits the merged result. If a
// fetch is already in flight it returns the current collection without
// starting another one. On total failure the previous logs are kept and
// returned along with the error.
func (s *Store) FetchAllLogs(ctx context.Context) ([]model.ContractLog, error) {
	_, started, err := s.begin()
	if err != nil {
		return nil, err
	}
	if !started {
		metrics.StoreFetchesTotal.WithLabelValues("coalesced").Inc()
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.logs, nil
	}
	return s.run(ctx)
}

// Refresh starts a fetch, or joins the one in flight, and returns the
// committed result.
func (s *Store) Refresh(ctx context.Context) ([]model.ContractLog, error) {
	done, started, err := s.begin()
	if err != nil {
		return nil, err
	}
	if started {
		return s.run(ctx)
	}
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	snap := s.Snapshot()
	return snap.Logs, snap.Err
}

// Wait blocks until the in-flight fetch, if any, completes.
func (s *Store) Wait(ctx context.Context) error {
	s.mu.RLock()
	loading, done := s.loading, s.done
	s.mu.RUnlock()
	if !loading {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) run(ctx context.Context) ([]model.ContractLog, error) {
	start := s.now()
	merged := make([]model.ContractLog, 0)
	failures := make(map[model.Network]error)

	for _, source := range s.sources {
		if ctx.Err() != nil {
			break
		}
		network := source.Network()
		logs, err := source.FetchNetworkLogs(ctx)
		if err != nil {
			failures[network] = err
			s.logger.Warn("network fetch failed", zap.String("network", string(network)), zap.Error(err))
			continue
		}
		s.logger.Info("network fetched", zap.String("network", string(network)), zap.Int("logs", len(logs)))
		merged = append(merged, logs...)
	}

	var fetchErr error
	switch {
	case ctx.Err() != nil:
		fetchErr = fmt.Errorf("fetch all logs: %w", ctx.Err())
	case len(s.sources) > 0 && len(failures) == len(s.sources):
		errs := make([]error, 0, len(failures))
		for _, source := range s.sources {
			errs = append(errs, fmt.Errorf("%s: %w", source.Network(), failures[source.Network()]))
		}
		fetchErr = fmt.Errorf("%w: %w", ErrAllNetworksFailed, errors.Join(errs...))
	}

	var committed []model.ContractLog
	if fetchErr == nil {
		committed = SortLogs(Dedup(merged))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		s.loading = false
		close(s.done)
	}()

	metrics.StoreFetchLatency.Observe(s.now().Sub(start).Seconds())
	if s.closed {
		return nil, ErrClosed
	}
	s.netErrs = failures
	if fetchErr != nil {
		s.err = fetchErr
		metrics.StoreFetchesTotal.WithLabelValues("failed").Inc()
		s.logger.Error("fetch failed, keeping cached logs", zap.Int("cached", len(s.logs)), zap.Error(fetchErr))
		return s.logs, fetchErr
	}

	s.logs = committed
	s.err = nil
	s.lastFetched = s.now()
	s.fingerprint = Fingerprint(committed)

	result := "ok"
	if len(failures) > 0 {
		result = "partial"
	}
	metrics.StoreFetchesTotal.WithLabelValues(result).Inc()
	metrics.StoreLastFetched.Set(float64(s.lastFetched.Unix()))
	perNetwork := make(map[model.Network]int)
	for _, log := range committed {
		perNetwork[log.Network]++
	}
	for _, source := range s.sources {
		metrics.StoreLogs.WithLabelValues(string(source.Network())).Set(float64(perNetwork[source.Network()]))
	}

	s.logger.Info("fetch committed",
		zap.Int("logs", len(committed)),
		zap.Int("failed_networks", len(failures)),
		zap.Duration("elapsed", s.lastFetched.Sub(start)),
	)
	return s.logs, nil
}

// Snapshot returns the current store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	netErrs := make(map[model.Network]error, len(s.netErrs))
	for network, err := range s.netErrs {
		netErrs[network] = err
	}
	return Snapshot{
		Logs:          s.logs,
		Loading:       s.loading,
		Err:           s.err,
		LastFetched:   s.lastFetched,
		Fingerprint:   s.fingerprint,
		NetworkErrors: netErrs,
	}
}

// Logs returns the current collection.
func (s *Store) Logs() []model.ContractLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logs
}

// Close releases the cached logs. Later fetches fail with ErrClosed and a
// fetch still in flight discards its result.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.logs = []model.ContractLog{}
	s.fingerprint = Fingerprint(nil)
}
