package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
	"github.com/couchcryptid/storm-data-hail/internal/hail"
	"github.com/couchcryptid/storm-data-hail/internal/observability"
)

// ProductPublisher sends a product summary downstream.
type ProductPublisher interface {
	Publish(ctx context.Context, summary domain.ProductSummary) error
}

// RetrievalRequest is one volume plus per-request overrides of the configured
// defaults. Nil or empty fields fall back to the defaults.
type RetrievalRequest struct {
	Volume       domain.Volume     `json:"volume"`
	Band         domain.RadarBand  `json:"radar_band,omitempty"`
	Levels       *domain.Levels    `json:"levels"`
	Method       domain.MeshMethod `json:"mesh_method,omitempty"`
	MinRangeKm   *float64          `json:"min_range_km,omitempty"`
	MaxRangeKm   *float64          `json:"max_range_km,omitempty"`
	CorrectCBand *bool             `json:"correct_cband,omitempty"`
}

// Retriever runs hail retrievals with logging, metrics and optional publishing.
type Retriever struct {
	defaults  hail.Options
	publisher ProductPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Retriever. publisher may be nil, in which case nothing is published.
func New(defaults hail.Options, publisher ProductPublisher, logger *slog.Logger, metrics *observability.Metrics) *Retriever {
	return &Retriever{
		defaults:  defaults,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the retriever has produced at least one product.
func (r *Retriever) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("retriever has not produced any products yet")
	}
	return nil
}

// Options resolves req's overrides on top of the configured defaults.
func (r *Retriever) Options(req RetrievalRequest) hail.Options {
	opts := r.defaults
	if req.Band != "" {
		opts.Band = req.Band
	}
	if opts.Band == "" {
		opts.Band = domain.BandS
	}
	opts.Levels = req.Levels
	if req.Method != "" {
		opts.Method = req.Method
	}
	if req.MinRangeKm != nil {
		opts.MinRangeKm = *req.MinRangeKm
	}
	if req.MaxRangeKm != nil {
		opts.MaxRangeKm = *req.MaxRangeKm
	}
	if req.CorrectCBand != nil {
		opts.CorrectCBand = *req.CorrectCBand
	}
	return opts
}

// Retrieve computes the hail products for req.
func (r *Retriever) Retrieve(ctx context.Context, req RetrievalRequest) (*domain.Products, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := r.Options(req)
	start := domain.Now()

	products, err := hail.Compute(req.Volume, opts)
	if err != nil {
		r.metrics.Retrievals.WithLabelValues(string(opts.Method), outcome(err)).Inc()
		r.logger.Warn("hail retrieval failed", "error", err, "sweeps", len(req.Volume.Sweeps))
		return nil, err
	}

	elapsed := domain.Since(start)
	products.ComputedAt = domain.Now().UTC()
	products.ProcessingSeconds = elapsed.Seconds()

	r.metrics.Retrievals.WithLabelValues(string(opts.Method), "success").Inc()
	r.metrics.RetrievalDuration.Observe(elapsed.Seconds())
	r.metrics.SweepsPerVolume.Observe(float64(products.Summary.SweepCount))
	r.metrics.ValidSHICells.Observe(float64(products.Summary.ValidCells))

	for _, adv := range products.Advisories {
		r.metrics.Advisories.WithLabelValues(adv.Code).Inc()
		r.logger.Warn("hail retrieval advisory", "code", adv.Code, "message", adv.Message)
	}

	r.logger.Info("hail retrieval complete",
		"sweeps", products.Summary.SweepCount,
		"valid_cells", products.Summary.ValidCells,
		"max_mesh_mm", products.Summary.MaxMESH,
		"method", products.Method,
		"band", products.Band,
		"duration", elapsed,
	)
	r.ready.Store(true)

	r.publish(ctx, req.Volume.Site, products)
	return products, nil
}

func (r *Retriever) publish(ctx context.Context, site *domain.Site, products *domain.Products) {
	if r.publisher == nil {
		return
	}
	summary := domain.NewProductSummary(site, products)
	if err := r.publisher.Publish(ctx, summary); err != nil {
		r.metrics.PublishErrors.Inc()
		r.logger.Error("publish product summary failed", "error", err, "id", summary.ID)
		return
	}
	r.metrics.ProductsPublished.Inc()
}

// Warmup runs a small built-in volume through the core so readiness reflects a
// working computation. Nothing is published.
func (r *Retriever) Warmup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	levels := &domain.Levels{FreezingLevel: 3000, Minus20Level: 6000}
	opts := r.defaults
	opts.Levels = levels
	if opts.Band == "" {
		opts.Band = domain.BandS
	}
	if _, err := hail.Compute(warmupVolume(), opts); err != nil {
		return fmt.Errorf("warmup retrieval: %w", err)
	}
	r.ready.Store(true)
	r.logger.Info("hail retriever warmed up")
	return nil
}

func warmupVolume() domain.Volume {
	azimuths := []float64{0, 90, 180, 270}
	ranges := []float64{20000, 25000}
	sweep := func(elevation float64) domain.Sweep {
		return domain.Sweep{
			Elevation:    elevation,
			Azimuths:     azimuths,
			Ranges:       ranges,
			Reflectivity: domain.NewGridFilled(len(azimuths), len(ranges), 55),
		}
	}
	return domain.Volume{Sweeps: []domain.Sweep{sweep(0.5), sweep(1.5)}}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, domain.ErrInsufficientSweeps):
		return "insufficient"
	default:
		return "error"
	}
}
