package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roadgrid/cvstore/internal/domain"
)

// MockTierStore is a mock implementation of domain.TierStore for testing.
// NextOldestDayAfter walks the Rollups slice, which must be sorted by day.
type MockTierStore struct {
	mu            sync.Mutex
	TotalsResult  domain.CountAndSize
	Rollups       []domain.DailyRollup
	DeletedBefore []time.Time
	TotalsErr     error
	NextErr       error
	DeleteErr     error
}

func (m *MockTierStore) Totals(ctx context.Context) (domain.CountAndSize, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TotalsErr != nil {
		return domain.CountAndSize{}, m.TotalsErr
	}
	return m.TotalsResult, nil
}

func (m *MockTierStore) NextOldestDayAfter(ctx context.Context, day time.Time) (*domain.DailyRollup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NextErr != nil {
		return nil, m.NextErr
	}
	for _, r := range m.Rollups {
		if r.Day.After(day) {
			rollup := r
			return &rollup, nil
		}
	}
	return nil, nil
}

func (m *MockTierStore) DeleteBefore(ctx context.Context, cutoff time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.DeletedBefore = append(m.DeletedBefore, cutoff)
	return nil
}

// MockMessageWriter is a mock implementation of domain.MessageWriter for testing.
type MockMessageWriter struct {
	mu        sync.Mutex
	Inserted  []domain.MessageRecord
	InsertErr error
}

func (m *MockMessageWriter) Insert(ctx context.Context, rec domain.MessageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Inserted = append(m.Inserted, rec)
	return nil
}

// MockMessageFinder is a mock implementation of domain.MessageFinder for testing.
type MockMessageFinder struct {
	mu           sync.Mutex
	FindResult   []domain.MessageRecord
	AfterResult  []domain.MessageRecord
	FindAfterArg time.Time
	FindErr      error
	AfterErr     error
}

func (m *MockMessageFinder) Find(ctx context.Context, start time.Time, end *time.Time) ([]domain.MessageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	return m.FindResult, nil
}

func (m *MockMessageFinder) FindAfter(ctx context.Context, t time.Time) ([]domain.MessageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AfterErr != nil {
		return nil, m.AfterErr
	}
	m.FindAfterArg = t
	var out []domain.MessageRecord
	for _, rec := range m.AfterResult {
		if rec.TimeStamp.After(t) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// MockMinuteCounterStore is a mock implementation of domain.MinuteCounterStore
// for testing.
type MockMinuteCounterStore struct {
	mu                 sync.Mutex
	LastModifiedResult *time.Time
	Merged             []domain.MinuteCounter
	TrimmedBefore      []time.Time
	LastHourResult     []domain.CategoryCount
	LastModifiedErr    error
	MergeErr           error
	TrimErr            error
	LastHourErr        error
}

func (m *MockMinuteCounterStore) LastModified(ctx context.Context) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LastModifiedErr != nil {
		return nil, m.LastModifiedErr
	}
	return m.LastModifiedResult, nil
}

func (m *MockMinuteCounterStore) Merge(ctx context.Context, counters []domain.MinuteCounter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MergeErr != nil {
		return m.MergeErr
	}
	m.Merged = append(m.Merged, counters...)
	return nil
}

func (m *MockMinuteCounterStore) TrimBefore(ctx context.Context, cutoff time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TrimErr != nil {
		return m.TrimErr
	}
	m.TrimmedBefore = append(m.TrimmedBefore, cutoff)
	return nil
}

func (m *MockMinuteCounterStore) LastHourTotals(ctx context.Context, since time.Time) ([]domain.CategoryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LastHourErr != nil {
		return nil, m.LastHourErr
	}
	return m.LastHourResult, nil
}

// MockConfigStore is a mock implementation of domain.ConfigStore for testing.
type MockConfigStore struct {
	mu        sync.Mutex
	Stored    *domain.RetentionConfig
	GetErr    error
	InsertErr error
	UpdateErr error
	DeleteErr error
}

func (m *MockConfigStore) Get(ctx context.Context) (*domain.RetentionConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Stored == nil {
		return nil, nil
	}
	cfg := *m.Stored
	return &cfg, nil
}

func (m *MockConfigStore) Insert(ctx context.Context, cfg domain.RetentionConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Stored = &cfg
	return nil
}

func (m *MockConfigStore) Update(ctx context.Context, cfg domain.RetentionConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if m.Stored == nil || m.Stored.ID != cfg.ID {
		return domain.ErrConfigNotFound
	}
	m.Stored = &cfg
	return nil
}

func (m *MockConfigStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if m.Stored != nil && m.Stored.ID == id {
		m.Stored = nil
	}
	return nil
}

// MockStatusReader is a mock implementation of domain.StatusReader for testing.
type MockStatusReader struct {
	mu                 sync.Mutex
	CategoryTotals     []domain.CategoryCountAndSize
	Intersections      []domain.IntersectionTotals
	TotalCount         int64
	CategoryTotalsErr  error
	IntersectionsErr   error
	TotalCountErr      error
	CategoryTotalCalls int
}

func (m *MockStatusReader) TotalsByCategory(ctx context.Context) ([]domain.CategoryCountAndSize, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CategoryTotalsErr != nil {
		return nil, m.CategoryTotalsErr
	}
	m.CategoryTotalCalls++
	return m.CategoryTotals, nil
}

func (m *MockStatusReader) IntersectionTotals(ctx context.Context) ([]domain.IntersectionTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IntersectionsErr != nil {
		return nil, m.IntersectionsErr
	}
	return m.Intersections, nil
}

func (m *MockStatusReader) TotalMessageCount(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TotalCountErr != nil {
		return 0, m.TotalCountErr
	}
	return m.TotalCount, nil
}

// MockStatusCache is an in-memory mock of domain.StatusCache for testing.
type MockStatusCache struct {
	mu      sync.Mutex
	Entries map[string][]byte
	GetErr  error
	SetErr  error
}

func (m *MockStatusCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return false, m.GetErr
	}
	payload, ok := m.Entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, dest)
}

func (m *MockStatusCache) Set(ctx context.Context, key string, val any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	payload, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if m.Entries == nil {
		m.Entries = make(map[string][]byte)
	}
	m.Entries[key] = payload
	return nil
}

// MockObjectStore is a mock implementation of domain.ObjectStore for testing.
type MockObjectStore struct {
	mu        sync.Mutex
	Objects   map[string]domain.MessageRecord
	Removed   []string
	PutErr    error
	RemoveErr error
	SearchErr error
	nextKey   int
}

func (m *MockObjectStore) Put(ctx context.Context, rec domain.MessageRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return "", m.PutErr
	}
	if m.Objects == nil {
		m.Objects = make(map[string]domain.MessageRecord)
	}
	m.nextKey++
	key := fmt.Sprintf("%s/object-%d.json", rec.TimeStamp.UTC().Format("2006/01/02"), m.nextKey)
	m.Objects[key] = rec
	return key, nil
}

func (m *MockObjectStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.Objects, key)
	m.Removed = append(m.Removed, key)
	return nil
}

func (m *MockObjectStore) SearchRange(ctx context.Context, start, end time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	var keys []string
	for key, rec := range m.Objects {
		if !rec.TimeStamp.Before(start) && !rec.TimeStamp.After(end) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
