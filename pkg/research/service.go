// Package research turns a category/keyword search into a batch of normalized
// product records, serving from the result cache when it can and falling back
// to synthesized records when the search API fails.
package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gitlab.connectwisedev.com/product-scanner/models"
	"gitlab.connectwisedev.com/product-scanner/pkg/cache"
	"gitlab.connectwisedev.com/product-scanner/pkg/metrics"
	"gitlab.connectwisedev.com/product-scanner/pkg/upstream"
)

// ErrEmptyQuery is returned for a search with neither category nor keyword.
var ErrEmptyQuery = errors.New("category or keyword is required")

const backgroundTimeout = 10 * time.Second

// Upstream is the generative search API.
type Upstream interface {
	Query(ctx context.Context, q upstream.Query) ([]any, error)
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// HistoryRecorder appends market snapshots.
type HistoryRecorder interface {
	RecordHistory(ctx context.Context, samples []models.HistorySample) error
}

// AlertTrigger marks price alerts satisfied by a batch.
type AlertTrigger interface {
	TriggerAlerts(ctx context.Context, records []models.ProductRecord) ([]models.PriceAlert, error)
}

// SearchRequest is an inbound search.
type SearchRequest struct {
	Category string  `json:"category"`
	Keyword  string  `json:"keyword"`
	Filters  Filters `json:"filters"`
}

// SearchResult is the pipeline output. Fallback marks synthesized records.
type SearchResult struct {
	Products         []models.ProductRecord `json:"products"`
	Cached           bool                   `json:"cached"`
	Fallback         bool                   `json:"fallback"`
	FiltersMatched   bool                   `json:"filtersMatched"`
	CacheKey         string                 `json:"cacheKey"`
	CacheAgeMinutes  int                    `json:"cacheAgeMinutes"`
	ProcessingTimeMs int64                  `json:"processingTimeMs"`
}

// Service runs searches. Each call is independent; identical concurrent
// searches may both miss the cache and both store a result.
type Service struct {
	cache    *cache.Adapter
	upstream Upstream
	history  HistoryRecorder
	alerts   AlertTrigger
	logger   zerolog.Logger
	metrics  *metrics.Registry
	now      func() time.Time

	wg sync.WaitGroup
}

// Option customises a Service.
type Option func(*Service)

func WithHistory(h HistoryRecorder) Option { return func(s *Service) { s.history = h } }
func WithAlerts(a AlertTrigger) Option     { return func(s *Service) { s.alerts = a } }
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) { s.metrics = m }
}
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService wires the pipeline. A nil cache adapter disables caching.
func NewService(logger zerolog.Logger, c *cache.Adapter, up Upstream, opts ...Option) *Service {
	if c == nil {
		c = cache.NewAdapter(nil)
	}
	s := &Service{
		cache:    c,
		upstream: up,
		logger:   logger.With().Str("component", "research").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns a full batch for req. Upstream and storage failures never
// surface as errors; only an empty query does.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	req.Category = strings.TrimSpace(req.Category)
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Category == "" && req.Keyword == "" {
		return nil, ErrEmptyQuery
	}

	start := s.now()
	key := DeriveKey(req.Category, req.Keyword, req.Filters)
	log := s.logger.With().
		Str("cache_key", key).
		Str("category", req.Category).
		Str("keyword", req.Keyword).
		Logger()

	res := &SearchResult{CacheKey: key}

	if entry, ok := s.cache.Get(ctx, key); ok {
		s.metrics.Hit()
		id := entry.ID
		s.background(ctx, func(ctx context.Context) { s.cache.IncrementHit(ctx, id) })

		res.Products = entry.Products
		res.Cached = true
		res.CacheAgeMinutes = int(s.now().Sub(entry.CreatedAt).Minutes())
		log.Debug().Int64("hit_count", entry.HitCount+1).Msg("cache hit")
	} else {
		s.metrics.Miss()
		records, fallback := s.fetch(ctx, req, log)
		res.Products = records
		res.Fallback = fallback

		if !fallback {
			s.cache.Put(ctx, key, records, cache.PutOptions{Category: req.Category, Keyword: req.Keyword})
			s.track(ctx, records, log)
		}
	}

	res.Products, res.FiltersMatched = req.Filters.Apply(res.Products)
	elapsed := s.now().Sub(start)
	res.ProcessingTimeMs = elapsed.Milliseconds()
	s.metrics.ObserveSearch(elapsed.Seconds())

	log.Info().
		Bool("cached", res.Cached).
		Bool("fallback", res.Fallback).
		Int("products", len(res.Products)).
		Dur("duration", elapsed).
		Msg("search complete")
	return res, nil
}

// fetch queries upstream and normalizes the batch, substituting fallback
// records on any upstream or parse failure.
func (s *Service) fetch(ctx context.Context, req SearchRequest, log zerolog.Logger) ([]models.ProductRecord, bool) {
	if s.upstream == nil {
		s.metrics.Fallback("unconfigured")
		log.Warn().Msg("no search API configured, using fallback products")
		return Fallback(req.Category, req.Keyword, DefaultBatchSize), true
	}

	items, err := s.upstream.Query(ctx, upstream.Query{
		Category:    req.Category,
		Keyword:     req.Keyword,
		Constraints: req.Filters.Constraints(),
	})
	if err != nil {
		var perr *upstream.ParseError
		if errors.As(err, &perr) {
			s.metrics.Fallback("parse")
			log.Warn().Err(err).Str("raw", perr.Raw).Msg("search API response not parseable, using fallback products")
		} else {
			s.metrics.Fallback("upstream")
			log.Error().Err(err).Msg("search API call failed, using fallback products")
		}
		return Fallback(req.Category, req.Keyword, DefaultBatchSize), true
	}

	if len(items) > DefaultBatchSize {
		items = items[:DefaultBatchSize]
	}
	return NormalizeAll(items, req.Category, req.Keyword), false
}

// track appends history samples and evaluates price alerts off the request path.
func (s *Service) track(ctx context.Context, records []models.ProductRecord, log zerolog.Logger) {
	if s.history == nil && s.alerts == nil {
		return
	}
	batch := append([]models.ProductRecord(nil), records...)
	at := s.now()

	s.background(ctx, func(ctx context.Context) {
		if s.history != nil {
			samples := make([]models.HistorySample, len(batch))
			for i, p := range batch {
				samples[i] = models.HistorySample{
					ASIN:           p.ASIN,
					Price:          p.Price,
					BestSellerRank: p.BestSellerRank,
					Rating:         p.Rating,
					ReviewCount:    p.ReviewCount,
					Timestamp:      at,
				}
			}
			if err := s.history.RecordHistory(ctx, samples); err != nil {
				s.metrics.StorageError("history")
				log.Warn().Err(err).Msg("failed to record product history")
			}
		}
		if s.alerts != nil {
			fired, err := s.alerts.TriggerAlerts(ctx, batch)
			if err != nil {
				s.metrics.StorageError("alerts")
				log.Warn().Err(err).Msg("failed to evaluate price alerts")
				return
			}
			for _, a := range fired {
				log.Info().Str("asin", a.ASIN).Float64("target_price", a.TargetPrice).Msg("price alert triggered")
			}
		}
	})
}

// background runs fn detached from the request's cancellation.
func (s *Service) background(ctx context.Context, fn func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until background work started by earlier searches has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
