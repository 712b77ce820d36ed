package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/pest-risk/internal/domain"
	"github.com/couchcryptid/pest-risk/internal/observability"
)

// ErrWeatherFetch wraps any failure from the weather provider. The cycle is
// abandoned and no record is produced.
var ErrWeatherFetch = errors.New("weather fetch failed")

// Stage is how far an evaluation cycle progressed.
type Stage int

const (
	StageAwaitingInput Stage = iota
	StageValidated
	StageClassified
	StageRecommended
	StageAggregated
	StageEmitted
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingInput:
		return "awaiting_input"
	case StageValidated:
		return "validated"
	case StageClassified:
		return "classified"
	case StageRecommended:
		return "recommended"
	case StageAggregated:
		return "aggregated"
	case StageEmitted:
		return "emitted"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Result is the outcome of one evaluation.
type Result struct {
	Stage       Stage
	Observation domain.Observation
	Assessment  domain.RiskAssessment
	Record      domain.AlertRecord
}

// Evaluator runs the validate, fetch, classify, recommend, aggregate cycle.
type Evaluator struct {
	catalog *domain.Catalog
	table   domain.RecommendationTable
	weather domain.WeatherProvider
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// NewEvaluator creates an Evaluator over a catalog, recommendation table and
// weather provider.
func NewEvaluator(catalog *domain.Catalog, table domain.RecommendationTable, weather domain.WeatherProvider, logger *slog.Logger, metrics *observability.Metrics) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		table:   table,
		weather: weather,
		logger:  logger,
		metrics: metrics,
	}
}

// Catalog returns the crop catalog the evaluator validates against.
func (e *Evaluator) Catalog() *domain.Catalog { return e.catalog }

// CheckReadiness returns nil once at least one evaluation has completed.
func (e *Evaluator) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("no evaluation has completed yet")
	}
	return nil
}

// ValidateCrop checks a crop name on its own so callers can reject it before
// asking for a city.
func (e *Evaluator) ValidateCrop(input string) (domain.CropProfile, error) {
	p, err := domain.ValidateCrop(e.catalog, input)
	if err != nil {
		e.rejected(err)
	}
	return p, err
}

// Evaluate validates the inputs, fetches the city's weather, classifies it and
// appends the resulting record to report. On any error report is unchanged.
func (e *Evaluator) Evaluate(ctx context.Context, report *domain.Report, cropInput, cityInput string) (Result, error) {
	in, err := domain.Validate(e.catalog, cropInput, cityInput)
	if err != nil {
		e.rejected(err)
		return Result{Stage: StageAwaitingInput}, err
	}

	reading, err := e.weather.Current(ctx, in.City)
	if err != nil {
		e.logger.Warn("weather fetch failed", "city", in.City, "error", err)
		return Result{Stage: StageAwaitingInput}, fmt.Errorf("%w for %q: %w", ErrWeatherFetch, in.City, err)
	}

	obs := domain.NewObservation(in, reading)
	res := Result{Stage: StageValidated, Observation: obs}

	res.Assessment = domain.Assess(in.Crop, obs, e.table)
	tier := res.Assessment.Tier
	res.Stage = StageRecommended

	res.Record = domain.Aggregate(obs, res.Assessment)
	report.Append(res.Record)
	res.Stage = StageAggregated

	e.metrics.Evaluations.WithLabelValues(tierLabel(tier)).Inc()
	e.ready.Store(true)
	e.logger.Info("evaluation complete",
		"crop", obs.Crop,
		"city", obs.City,
		"temperature", obs.Temperature,
		"humidity", obs.Humidity,
		"tier", tierLabel(tier),
	)
	return res, nil
}

func (e *Evaluator) rejected(err error) {
	reason := "other"
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		reason = "empty_input"
	case errors.Is(err, domain.ErrUnknownCrop):
		reason = "unknown_crop"
	case errors.Is(err, domain.ErrInvalidCityName):
		reason = "invalid_city"
	}
	e.metrics.ValidationFailures.WithLabelValues(reason).Inc()
	e.logger.Debug("input rejected", "reason", reason, "error", err)
}

func tierLabel(t domain.RiskTier) string {
	if t == domain.TierUnknown {
		return "unknown"
	}
	return string(t)
}
