package scanner_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/polyscan/internal/domain"
	"github.com/alejandrodnm/polyscan/internal/ports"
	"github.com/alejandrodnm/polyscan/internal/scanner"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCache struct {
	mu      sync.Mutex
	entries map[string]domain.ScanResult
	getErr  error
	setErr  error
	sets    int
	lastTTL time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]domain.ScanResult)}
}

func (c *mockCache) Get(_ context.Context, key string) (domain.ScanResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return domain.ScanResult{}, false, c.getErr
	}
	r, ok := c.entries[key]
	return r, ok, nil
}

func (c *mockCache) Set(_ context.Context, key string, result domain.ScanResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.lastTTL = ttl
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = result
	return nil
}

var _ ports.ResultCache = (*mockCache)(nil)

// stubPipeline devuelve un resultado nuevo por llamada y cuenta las llamadas.
// Si release no es nil, cada llamada espera a que se cierre.
type stubPipeline struct {
	calls   atomic.Int32
	errs    []error
	release chan struct{}
}

func (p *stubPipeline) Scan(ctx context.Context, params domain.FilterParams) (domain.ScanResult, error) {
	n := int(p.calls.Add(1))
	if p.release != nil {
		<-p.release
	}
	if ctx.Err() != nil {
		return domain.ScanResult{}, ctx.Err()
	}
	if n <= len(p.errs) && p.errs[n-1] != nil {
		return domain.ScanResult{}, p.errs[n-1]
	}
	return domain.ScanResult{RunID: uuid.New(), Params: params, Status: domain.StatusEmptyUpstream}, nil
}

// --- tests ---

func TestCached_HitSkipsPipeline(t *testing.T) {
	next := &stubPipeline{}
	cache := newMockCache()
	c := scanner.NewCached(next, cache, time.Minute)
	params := scanner.DefaultFilterParams()

	first, err := c.Scan(context.Background(), params)
	require.NoError(t, err)
	second, err := c.Scan(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, time.Minute, cache.lastTTL)
}

func TestCached_KeyedByParams(t *testing.T) {
	next := &stubPipeline{}
	c := scanner.NewCached(next, newMockCache(), 0)

	_, err := c.Scan(context.Background(), domain.FilterParams{MinReward: 10, MaxDays: 7})
	require.NoError(t, err)
	_, err = c.Scan(context.Background(), domain.FilterParams{MinReward: 10, MaxDays: 8})
	require.NoError(t, err)
	_, err = c.Scan(context.Background(), domain.FilterParams{MinReward: 10, MaxDays: 7})
	require.NoError(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCached_DefaultTTL(t *testing.T) {
	cache := newMockCache()
	c := scanner.NewCached(&stubPipeline{}, cache, 0)

	_, err := c.Scan(context.Background(), scanner.DefaultFilterParams())
	require.NoError(t, err)
	assert.Equal(t, scanner.DefaultCacheTTL, cache.lastTTL)
}

func TestCached_ErrorsNotCached(t *testing.T) {
	upstreamErr := &domain.FetchError{Kind: domain.ErrUpstreamHTTP, StatusCode: 503}
	next := &stubPipeline{errs: []error{upstreamErr}}
	cache := newMockCache()
	c := scanner.NewCached(next, cache, time.Minute)
	params := scanner.DefaultFilterParams()

	_, err := c.Scan(context.Background(), params)
	require.ErrorIs(t, err, domain.ErrUpstreamHTTP)
	assert.Equal(t, 0, cache.sets)

	_, err = c.Scan(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
	assert.Equal(t, 1, cache.sets)
}

func TestCached_ReadFailureFallsBackToScan(t *testing.T) {
	next := &stubPipeline{}
	cache := newMockCache()
	cache.getErr = errors.New("dial tcp 127.0.0.1:6379: connection refused")
	c := scanner.NewCached(next, cache, time.Minute)

	result, err := c.Scan(context.Background(), scanner.DefaultFilterParams())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEmptyUpstream, result.Status)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCached_WriteFailureStillReturnsResult(t *testing.T) {
	next := &stubPipeline{}
	cache := newMockCache()
	cache.setErr = errors.New("OOM command not allowed")
	c := scanner.NewCached(next, cache, time.Minute)

	_, err := c.Scan(context.Background(), scanner.DefaultFilterParams())
	require.NoError(t, err)
	_, err = c.Scan(context.Background(), scanner.DefaultFilterParams())
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCached_InvalidParams(t *testing.T) {
	next := &stubPipeline{}
	c := scanner.NewCached(next, newMockCache(), time.Minute)

	_, err := c.Scan(context.Background(), domain.FilterParams{MaxDays: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
	assert.Equal(t, int32(0), next.calls.Load())
}

func TestCached_ConcurrentRefreshSharesOneScan(t *testing.T) {
	next := &stubPipeline{release: make(chan struct{})}
	c := scanner.NewCached(next, newMockCache(), time.Minute)
	params := scanner.DefaultFilterParams()

	const n = 8
	results := make([]domain.ScanResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := c.Scan(context.Background(), params)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}

	require.Eventually(t, func() bool { return next.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(next.release)
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
	for _, r := range results {
		assert.Equal(t, results[0].RunID, r.RunID)
	}
}

func TestCached_CallerCancelDoesNotAbortSharedScan(t *testing.T) {
	next := &stubPipeline{release: make(chan struct{})}
	c := scanner.NewCached(next, newMockCache(), time.Minute)
	params := scanner.DefaultFilterParams()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Scan(ctx, params)
		done <- err
	}()

	require.Eventually(t, func() bool { return next.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	close(next.release)
	require.NoError(t, <-done)

	// El resultado quedó en caché aunque el primer llamante canceló.
	_, err := c.Scan(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, int32(1), next.calls.Load())
}
