package testutil

import (
	"context"
	"studymail/internal/models"
	"studymail/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MemoryStore implements interfaces.StoreInterface in memory.
type MemoryStore struct {
	mu           sync.Mutex
	Snapshot     *models.TimerSnapshot
	State        *models.DetectorState
	SaveStateErr error
	StateSaves   int
}

func (m *MemoryStore) LoadSnapshot() (*models.TimerSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Snapshot == nil {
		return nil, false
	}
	s := *m.Snapshot
	return &s, true
}

func (m *MemoryStore) SaveSnapshot(snapshot models.TimerSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshot = &snapshot
	return nil
}

func (m *MemoryStore) LoadState() (*models.DetectorState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.State == nil {
		return nil, false
	}
	s := m.State.Clone()
	return &s, true
}

func (m *MemoryStore) SaveState(state models.DetectorState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveStateErr != nil {
		return m.SaveStateErr
	}
	s := state.Clone()
	m.State = &s
	m.StateSaves++
	return nil
}

// MockNotifier implements notifier.NotifierInterface with injectable behavior.
type MockNotifier struct {
	mu     sync.Mutex
	SendFn func(ctx context.Context, req models.NotificationRequest) error
	Calls  []models.NotificationRequest
}

func (m *MockNotifier) Send(ctx context.Context, req models.NotificationRequest) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	fn := m.SendFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return nil
}

func (m *MockNotifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// MockMetrics implements providers.MetricsProviderInterface and counts outcomes.
type MockMetrics struct {
	mu          sync.Mutex
	PollCycles  map[string]int
	Dispatches  map[string]int
	Persistence map[string]int
	CacheHits   map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheLookup(record string, hit bool) {
	if !hit {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CacheHits == nil {
		m.CacheHits = make(map[string]int)
	}
	m.CacheHits[record]++
}

func (m *MockMetrics) ObservePersistenceDuration(record string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Persistence == nil {
		m.Persistence = make(map[string]int)
	}
	m.Persistence[record]++
}

func (m *MockMetrics) IncPollCycles(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PollCycles == nil {
		m.PollCycles = make(map[string]int)
	}
	m.PollCycles[outcome]++
}

func (m *MockMetrics) IncDispatches(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Dispatches == nil {
		m.Dispatches = make(map[string]int)
	}
	m.Dispatches[outcome]++
}

// MockWatcherService implements services.WatcherServiceInterface.
type MockWatcherService struct {
	mu          sync.Mutex
	Uploads     []models.TimerSnapshot
	UploadErr   error
	StatusValue models.Status
	ForceSendFn func(ctx context.Context, now time.Time) (string, error)
	Cycles      int
	CycleErr    error
}

func (m *MockWatcherService) RunCycle(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cycles++
	return m.CycleErr
}

func (m *MockWatcherService) Upload(snapshot models.TimerSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return m.UploadErr
	}
	m.Uploads = append(m.Uploads, snapshot)
	return nil
}

func (m *MockWatcherService) Status() models.Status {
	return m.StatusValue
}

func (m *MockWatcherService) ForceSend(ctx context.Context, now time.Time) (string, error) {
	if m.ForceSendFn != nil {
		return m.ForceSendFn(ctx, now)
	}
	return now.Format("2006-01-02"), nil
}
