package elasticity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/config"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/Uddhav-Saikia/ElasticRev/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Calculation pipeline states. Every run walks them in order; failed is
// reachable from any step.
const (
	StateCollectingData       = "collecting_data"
	StateFeatureBuilding      = "feature_building"
	StateFitting              = "fitting"
	StateExtractingCoefficent = "extracting_coefficient"
	StateClassifying          = "classifying"
	StateSolvingPrice         = "solving_price"
	StatePersisting           = "persisting"
	StateDone                 = "done"
	StateFailed               = "failed"
)

// Engine orchestrates the elasticity pipeline: feature building, model fit,
// coefficient extraction, classification, price solving and persistence.
// Calculations for the same product are serialized through a keyed mutex;
// different products run independently.
type Engine struct {
	logger *zap.Logger
	cfg    *config.Config
	store  *store.Store
	locks  keyedLocks
}

// NewEngine creates a new elasticity engine.
func NewEngine(logger *zap.Logger, cfg *config.Config, st *store.Store) *Engine {
	return &Engine{
		logger: logger,
		cfg:    cfg,
		store:  st,
	}
}

// calcRun tracks one calculation through the pipeline states for logging.
type calcRun struct {
	logger *zap.Logger
	state  string
}

func (r *calcRun) transition(next string) {
	r.logger.Debug("Pipeline state transition",
		zap.String("from", r.state),
		zap.String("to", next))
	r.state = next
}

func (r *calcRun) fail(err error) error {
	r.logger.Warn("Calculation failed",
		zap.String("state", r.state),
		zap.String("kind", KindOf(err)),
		zap.Error(err))
	r.state = StateFailed
	return err
}

// Calculate runs the full pipeline over an already-loaded history and
// persists the result. No step is retried automatically; each failure is
// surfaced with its taxonomy kind.
func (e *Engine) Calculate(ctx context.Context, productID uint, modelType ModelType, history []models.Sale) (*models.ElasticityResult, error) {
	lock := e.locks.forProduct(productID)
	lock.Lock()
	defer lock.Unlock()

	run := &calcRun{
		logger: e.logger.With(
			zap.Uint("product_id", productID),
			zap.String("model_type", modelType.String())),
		state: StateCollectingData,
	}
	run.logger.Info("Starting elasticity calculation", zap.Int("records", len(history)))

	product, err := e.store.Product(productID)
	if err != nil {
		return nil, run.fail(err)
	}

	run.transition(StateFeatureBuilding)
	fs, err := BuildFeatures(history, e.featureOptions())
	if err != nil {
		return nil, run.fail(err)
	}

	run.transition(StateFitting)
	model, err := NewModel(modelType, ModelParams{
		BootstrapIters: e.cfg.Elasticity.BootstrapIters,
		Seed:           e.cfg.Elasticity.BootstrapSeed,
	})
	if err != nil {
		return nil, run.fail(err)
	}
	fitted, err := model.Fit(ctx, fs)
	if err != nil {
		return nil, run.fail(err)
	}

	run.transition(StateExtractingCoefficent)
	coefficient, rsquared := fitted.Coefficient()
	low, high, err := fitted.ConfidenceInterval(ctx)
	if err != nil {
		return nil, run.fail(err)
	}

	run.transition(StateClassifying)
	elasticityType := Classify(coefficient)

	run.transition(StateSolvingPrice)
	solution, err := OptimalPrice(coefficient, product.UnitCost, product.CurrentPrice, fs.MeanQuantity,
		SolverOptions{InelasticPriceCap: e.cfg.Elasticity.InelasticPriceCap})
	if errors.Is(err, ErrDegenerateElasticity) {
		// Explicit fallback policy for the singular point: hold the current
		// price rather than emitting Inf/NaN.
		run.logger.Warn("Degenerate elasticity, holding current price", zap.Float64("coefficient", coefficient))
		solution = &PriceSolution{
			OptimalPrice:      product.CurrentPrice,
			RecommendedAction: models.ActionHoldPrice,
		}
	} else if err != nil {
		return nil, run.fail(err)
	}

	result := &models.ElasticityResult{
		ProductID:             productID,
		Coefficient:           coefficient,
		ElasticityType:        elasticityType,
		RSquared:              rsquared,
		SampleSize:            len(fs.Y),
		ModelType:             modelType.String(),
		ConfidenceLow:         &low,
		ConfidenceHigh:        &high,
		CalculationDate:       time.Now().UTC(),
		RecommendedAction:     solution.RecommendedAction,
		OptimalPrice:          solution.OptimalPrice,
		ExpectedRevenueChange: solution.ExpectedRevenueChangePercent,
	}
	if start, end, ok := historyPeriod(history); ok {
		result.PeriodStart = &start
		result.PeriodEnd = &end
	}

	run.transition(StatePersisting)
	if err := e.store.SaveResult(result); err != nil {
		return nil, run.fail(err)
	}

	run.transition(StateDone)
	run.logger.Info("Elasticity calculation complete",
		zap.Float64("coefficient", coefficient),
		zap.String("elasticity_type", elasticityType),
		zap.Float64("optimal_price", solution.OptimalPrice),
		zap.Int("sample_size", result.SampleSize))

	return result, nil
}

// CalculateForPeriod loads the sales history from the store and runs
// Calculate over it. Zero-valued bounds are open-ended.
func (e *Engine) CalculateForPeriod(ctx context.Context, productID uint, modelType ModelType, from, to time.Time) (*models.ElasticityResult, error) {
	history, err := e.store.History(productID, from, to)
	if err != nil {
		return nil, err
	}
	return e.Calculate(ctx, productID, modelType, history)
}

// BulkError is one per-product failure inside a bulk run.
type BulkError struct {
	ProductID uint   `json:"product_id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// BulkReport aggregates a bulk calculation.
type BulkReport struct {
	TotalCalculated int         `json:"total_calculated"`
	TotalErrors     int         `json:"total_errors"`
	Errors          []BulkError `json:"errors"`
}

// BulkCalculate runs the pipeline over many products with bounded
// concurrency. Per-product failures are collected, never cancel the batch;
// only context cancellation aborts the whole run.
func (e *Engine) BulkCalculate(ctx context.Context, productIDs []uint, modelType ModelType) (*BulkReport, error) {
	limit := e.cfg.Elasticity.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	report := &BulkReport{}

	for _, id := range productIDs {
		productID := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := e.CalculateForPeriod(gctx, productID, modelType, time.Time{}, time.Time{})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.TotalErrors++
				report.Errors = append(report.Errors, BulkError{
					ProductID: productID,
					Kind:      KindOf(err),
					Message:   err.Error(),
				})
				return nil // isolated failure, keep the batch going
			}
			report.TotalCalculated++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("bulk calculation aborted: %w", err)
	}

	e.logger.Info("Bulk calculation finished",
		zap.Int("calculated", report.TotalCalculated),
		zap.Int("errors", report.TotalErrors))
	return report, nil
}

func (e *Engine) featureOptions() FeatureOptions {
	opts := DefaultFeatureOptions()
	if e.cfg.Elasticity.MinSamples > 0 {
		opts.MinSamples = e.cfg.Elasticity.MinSamples
	}
	if e.cfg.Elasticity.ZeroQuantityPolicy != "" {
		opts.ZeroQuantity = ZeroQuantityPolicy(e.cfg.Elasticity.ZeroQuantityPolicy)
	}
	if e.cfg.Elasticity.QuantityFloor > 0 {
		opts.QuantityFloor = e.cfg.Elasticity.QuantityFloor
	}
	return opts
}

func historyPeriod(history []models.Sale) (start, end time.Time, ok bool) {
	if len(history) == 0 {
		return
	}
	start, end = history[0].Date, history[0].Date
	for _, s := range history[1:] {
		if s.Date.Before(start) {
			start = s.Date
		}
		if s.Date.After(end) {
			end = s.Date
		}
	}
	return start, end, true
}

// keyedLocks hands out one mutex per product so same-product calculations
// serialize without a global lock.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (k *keyedLocks) forProduct(productID uint) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[uint]*sync.Mutex)
	}
	lock, ok := k.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[productID] = lock
	}
	return lock
}
