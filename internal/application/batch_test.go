package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ahrav/go-fairaudit/internal/domain"
)

func TestAuditBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, err := NewAuditService(DefaultConfig())
	require.NoError(t, err)

	datasets := []domain.Dataset{
		scenarioA(),
		{Name: "empty"},
		{Name: "fair", Predictions: []int{1, 0, 1, 0}, Labels: []int{1, 0, 1, 0}, Groups: []string{"a", "a", "b", "b"}},
		{Name: "bad-label", Predictions: []int{1}, Labels: []int{2}, Groups: []string{"a"}},
	}

	results, err := svc.AuditBatch(context.Background(), datasets)
	require.NoError(t, err)
	require.Len(t, results, len(datasets))

	for i, r := range results {
		assert.Equal(t, datasets[i].Name, r.Dataset, "results keep input order")
	}

	assert.NoError(t, results[0].Err)
	assert.False(t, results[0].Report.Passed)
	assert.ErrorIs(t, results[1].Err, domain.ErrEmptyInput)
	assert.NoError(t, results[2].Err)
	assert.True(t, results[2].Report.Passed)
	assert.ErrorIs(t, results[3].Err, domain.ErrNonBinaryValue)
}

// concurrencyProbe records the highest number of concurrently running
// audits it observes.
type concurrencyProbe struct {
	mu      sync.Mutex
	current int
	max     int
}

func (p *concurrencyProbe) Start(ctx context.Context, _ domain.Dataset) context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.max = max(p.max, p.current)
	return ctx
}

func (p *concurrencyProbe) Finish(context.Context, domain.Dataset, domain.Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current--
}

func TestAuditBatch_RespectsConcurrencyLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := DefaultConfig()
	cfg.Concurrency = 2
	probe := &concurrencyProbe{}
	svc, err := NewAuditService(cfg, WithObserver(probe))
	require.NoError(t, err)

	datasets := make([]domain.Dataset, 50)
	for i := range datasets {
		datasets[i] = scenarioA()
		datasets[i].Name = fmt.Sprintf("ds-%d", i)
	}

	results, err := svc.AuditBatch(context.Background(), datasets)
	require.NoError(t, err)
	assert.Len(t, results, 50)
	assert.LessOrEqual(t, probe.max, 2)
	assert.GreaterOrEqual(t, probe.max, 1)
}

// cancellingObserver cancels the batch once the first audit finishes.
type cancellingObserver struct {
	cancel context.CancelFunc
	calls  atomic.Int32
}

func (o *cancellingObserver) Start(ctx context.Context, _ domain.Dataset) context.Context {
	return ctx
}

func (o *cancellingObserver) Finish(context.Context, domain.Dataset, domain.Report, error) {
	if o.calls.Add(1) == 1 {
		o.cancel()
	}
}

func TestAuditBatch_Cancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := DefaultConfig()
	cfg.Concurrency = 1
	obs := &cancellingObserver{cancel: cancel}
	svc, err := NewAuditService(cfg, WithObserver(obs))
	require.NoError(t, err)

	datasets := make([]domain.Dataset, 10)
	for i := range datasets {
		datasets[i] = scenarioA()
	}

	results, err := svc.AuditBatch(ctx, datasets)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 10)

	assert.NoError(t, results[0].Err, "first audit completed before cancellation")
	assert.ErrorIs(t, results[len(results)-1].Err, context.Canceled)
}

func TestAuditBatch_AlreadyCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, err := NewAuditService(DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.AuditBatch(ctx, []domain.Dataset{scenarioA(), scenarioA()})
	assert.ErrorIs(t, err, context.Canceled)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestAuditBatch_Empty(t *testing.T) {
	svc, err := NewAuditService(DefaultConfig())
	require.NoError(t, err)

	results, err := svc.AuditBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
