// Package application wires the pure audit engine to configuration,
// caching, observability, and batch execution.
package application

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/ports"
)

var _ ports.Auditor = (*AuditService)(nil)

// AuditService implements ports.Auditor on top of domain.Audit.
// It adds group label normalisation, report caching, and observation hooks
// around the engine. The service holds no per-audit state, so one instance
// may serve any number of concurrent callers.
type AuditService struct {
	cfg      Config
	logger   *zap.Logger
	cache    ports.CacheStore
	observer ports.AuditObserver
}

// Option configures an AuditService.
type Option func(*AuditService)

// WithLogger sets the logger used for audit outcomes.
func WithLogger(logger *zap.Logger) Option {
	return func(s *AuditService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache enables report caching in store.
func WithCache(store ports.CacheStore) Option {
	return func(s *AuditService) { s.cache = store }
}

// WithObserver attaches an observer notified around every audit.
func WithObserver(observer ports.AuditObserver) Option {
	return func(s *AuditService) { s.observer = observer }
}

// NewAuditService validates cfg and returns a service using it.
func NewAuditService(cfg Config, opts ...Option) (*AuditService, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	s := &AuditService{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the configuration the service was built with.
func (s *AuditService) Config() Config { return s.cfg }

// Audit runs a single audit of ds with the configured tolerance.
func (s *AuditService) Audit(ctx context.Context, ds domain.Dataset) (report domain.Report, err error) {
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}

	if s.observer != nil {
		ctx = s.observer.Start(ctx, ds)
		defer func() { s.observer.Finish(ctx, ds, report, err) }()
	}

	start := time.Now()
	groups := ds.Groups
	if s.cfg.NormalizeGroups {
		groups = foldGroups(groups)
	}

	key := ""
	if s.cache != nil {
		key = cacheKey(ds.Predictions, ds.Labels, groups, s.cfg.Tolerance)
		cached, found, cerr := s.cache.Get(ctx, key)
		if cerr != nil {
			s.logger.Warn("report cache lookup failed", zap.String("dataset", ds.Name), zap.Error(cerr))
		} else if found {
			s.logger.Debug("report served from cache", zap.String("dataset", ds.Name), zap.String("key", key))
			return cached.Clone(), nil
		}
	}

	report, err = domain.Audit(ds.Predictions, ds.Labels, groups, s.cfg.Tolerance)
	if err != nil {
		kind, _ := domain.KindOf(err)
		s.logger.Info("audit rejected",
			zap.String("dataset", ds.Name),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return domain.Report{}, err
	}

	s.logger.Debug("audit completed",
		zap.String("dataset", ds.Name),
		zap.Int("subjects", report.Subjects),
		zap.Int("groups", len(report.Groups)),
		zap.Bool("passed", report.Passed),
		zap.Duration("elapsed", time.Since(start)),
	)

	if s.cache != nil {
		if cerr := s.cache.Set(ctx, key, report.Clone(), s.cfg.Cache.TTL); cerr != nil {
			s.logger.Warn("report cache store failed", zap.String("dataset", ds.Name), zap.Error(cerr))
		}
	}
	return report, nil
}

// foldGroups returns a case-folded copy of groups. A new Caser is created
// per call because cases.Caser is not safe for concurrent use.
func foldGroups(groups []string) []string {
	caser := cases.Fold()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = caser.String(g)
	}
	return out
}

// cacheKey digests every input that determines a report. Group labels are
// length-prefixed so that no two distinct group vectors share an encoding.
func cacheKey(predictions, labels []int, groups []string, tolerance float64) string {
	h := sha256.New()
	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], math.Float64bits(tolerance))
	h.Write(buf[:])
	for _, vec := range [][]int{predictions, labels} {
		binary.BigEndian.PutUint64(buf[:], uint64(len(vec)))
		h.Write(buf[:])
		for _, v := range vec {
			binary.BigEndian.PutUint64(buf[:], uint64(int64(v)))
			h.Write(buf[:])
		}
	}
	binary.BigEndian.PutUint64(buf[:], uint64(len(groups)))
	h.Write(buf[:])
	for _, g := range groups {
		binary.BigEndian.PutUint64(buf[:], uint64(len(g)))
		h.Write(buf[:])
		h.Write([]byte(g))
	}
	return fmt.Sprintf("sha256:%s", hex.EncodeToString(h.Sum(nil)))
}
