package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pest-risk/internal/domain"
	"github.com/couchcryptid/pest-risk/internal/observability"
	"github.com/couchcryptid/pest-risk/internal/pipeline"
)

// --- mocks ---

type mockProvider struct {
	reading domain.Reading
	err     error
	cities  []string
}

func (m *mockProvider) Current(_ context.Context, city string) (domain.Reading, error) {
	m.cities = append(m.cities, city)
	return m.reading, m.err
}

type mockSink struct {
	name    string
	err     error
	panics  bool
	written [][]domain.AlertRecord
}

func (m *mockSink) Name() string { return m.name }

func (m *mockSink) Write(_ context.Context, records []domain.AlertRecord) error {
	if m.panics {
		panic("disk on fire")
	}
	m.written = append(m.written, records)
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testNow = time.Date(2024, time.March, 12, 14, 30, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func newEvaluator(p domain.WeatherProvider) *pipeline.Evaluator {
	return pipeline.NewEvaluator(domain.DefaultCatalog(), domain.DefaultRecommendations(), p, discardLogger(), observability.NewMetricsForTesting())
}

// --- Evaluator tests ---

func TestEvaluate_FirstMatchExample(t *testing.T) {
	freezeClock(t)
	provider := &mockProvider{reading: domain.Reading{Temperature: 32, Humidity: 75}}
	ev := newEvaluator(provider)
	var report domain.Report

	res, err := ev.Evaluate(context.Background(), &report, "soja", "são paulo")
	require.NoError(t, err)

	assert.Equal(t, pipeline.StageAggregated, res.Stage)
	assert.Equal(t, domain.TierHigh, res.Assessment.Tier)
	assert.Equal(t, domain.DefaultRecommendations()[domain.TierHigh], res.Assessment.Recommendation)
	assert.Equal(t, []string{"são paulo"}, provider.cities)

	risk := domain.TierHigh
	want := domain.AlertRecord{
		Crop:           "Soja",
		City:           "São Paulo",
		Date:           testNow,
		Temperature:    32,
		Humidity:       75,
		Risk:           &risk,
		Recommendation: domain.DefaultRecommendations()[domain.TierHigh],
	}
	if diff := cmp.Diff(want, res.Record); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []domain.AlertRecord{res.Record}, report.Records())
	assert.NoError(t, ev.CheckReadiness(context.Background()))
}

func TestEvaluate_NoMatchFallsBack(t *testing.T) {
	provider := &mockProvider{reading: domain.Reading{Temperature: 10, Humidity: 20}}
	ev := newEvaluator(provider)
	var report domain.Report

	res, err := ev.Evaluate(context.Background(), &report, "milho", "Curitiba")
	require.NoError(t, err)

	assert.Equal(t, domain.TierUnknown, res.Assessment.Tier)
	milho, ok := domain.DefaultCatalog().Lookup("milho")
	require.True(t, ok)
	assert.Equal(t, domain.Assess(milho, res.Observation, domain.DefaultRecommendations()), res.Assessment)
	assert.Equal(t, domain.FallbackRecommendation, res.Record.Recommendation)
	assert.Nil(t, res.Record.Risk)
	assert.Equal(t, 1, report.Len())
}

func TestEvaluate_ValidationFailuresSkipFetch(t *testing.T) {
	tests := []struct {
		name    string
		crop    string
		city    string
		wantErr error
	}{
		{"empty crop", "", "Londrina", domain.ErrEmptyInput},
		{"unknown crop", "abacate", "Londrina", domain.ErrUnknownCrop},
		{"city with digits", "soja", "São Paulo123", domain.ErrInvalidCityName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{reading: domain.Reading{Temperature: 30, Humidity: 80}}
			ev := newEvaluator(provider)
			var report domain.Report

			res, err := ev.Evaluate(context.Background(), &report, tt.crop, tt.city)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, pipeline.StageAwaitingInput, res.Stage)
			assert.Empty(t, provider.cities, "no fetch attempted")
			assert.Equal(t, 0, report.Len())
		})
	}
}

func TestEvaluate_FetchFailureLeavesReportUntouched(t *testing.T) {
	provider := &mockProvider{err: errors.New("city not found")}
	ev := newEvaluator(provider)
	var report domain.Report
	report.Append(domain.AlertRecord{Crop: "Soja"})

	res, err := ev.Evaluate(context.Background(), &report, "soja", "Atlantida")

	require.ErrorIs(t, err, pipeline.ErrWeatherFetch)
	assert.Contains(t, err.Error(), "city not found")
	assert.Equal(t, pipeline.StageAwaitingInput, res.Stage)
	assert.Equal(t, domain.AlertRecord{}, res.Record)
	assert.Equal(t, 1, report.Len(), "no record appended")
	assert.Error(t, ev.CheckReadiness(context.Background()))
}

func TestEvaluator_ValidateCrop(t *testing.T) {
	ev := newEvaluator(&mockProvider{})

	p, err := ev.ValidateCrop(" Trigo ")
	require.NoError(t, err)
	assert.Equal(t, "trigo", p.Name)

	_, err = ev.ValidateCrop("abacate")
	require.ErrorIs(t, err, domain.ErrUnknownCrop)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "awaiting_input", pipeline.StageAwaitingInput.String())
	assert.Equal(t, "emitted", pipeline.StageEmitted.String())
	assert.Equal(t, "stage(42)", pipeline.Stage(42).String())
}

// --- Emitter tests ---

func TestEmit_AllSinksReceiveRecords(t *testing.T) {
	a := &mockSink{name: "a"}
	b := &mockSink{name: "b"}
	em := pipeline.NewEmitter(discardLogger(), observability.NewMetricsForTesting(), a, b)
	records := []domain.AlertRecord{{Crop: "Soja"}, {Crop: "Milho"}}

	require.NoError(t, em.Emit(context.Background(), records))

	assert.Equal(t, [][]domain.AlertRecord{records}, a.written)
	assert.Equal(t, [][]domain.AlertRecord{records}, b.written)
	assert.Equal(t, []string{"a", "b"}, em.Sinks())
}

func TestEmit_FailureIsolated(t *testing.T) {
	db := &mockSink{name: "postgres", err: errors.New("connection refused")}
	broken := &mockSink{name: "broken", panics: true}
	file := &mockSink{name: "json"}
	em := pipeline.NewEmitter(discardLogger(), observability.NewMetricsForTesting(), pipeline.Persistent(db), broken, file)

	err := em.Emit(context.Background(), []domain.AlertRecord{{Crop: "Soja"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrPersistence)
	assert.Len(t, file.written, 1, "file sink still runs after failures")
	assert.Equal(t, []string{"postgres", "broken", "json"}, em.Sinks())

	var sinkErr *pipeline.SinkError
	require.ErrorAs(t, err, &sinkErr)
	assert.Equal(t, "postgres", sinkErr.Sink)
	assert.Contains(t, err.Error(), "sink broken: panic: disk on fire")
}

func TestEmit_NonPersistenceFailureIsNotPersistence(t *testing.T) {
	file := &mockSink{name: "json", err: errors.New("disk full")}
	em := pipeline.NewEmitter(discardLogger(), observability.NewMetricsForTesting(), file)

	err := em.Emit(context.Background(), []domain.AlertRecord{{Crop: "Soja"}})

	require.Error(t, err)
	assert.NotErrorIs(t, err, pipeline.ErrPersistence)
}

func TestEmit_NoRecordsIsNoop(t *testing.T) {
	s := &mockSink{name: "a"}
	em := pipeline.NewEmitter(discardLogger(), observability.NewMetricsForTesting(), s)

	require.NoError(t, em.Emit(context.Background(), nil))
	assert.Empty(t, s.written)
}

func TestEmit_RecordsEmittedCountsDeliveredOnly(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	broken := pipeline.NewEmitter(discardLogger(), metrics,
		&mockSink{name: "a", err: errors.New("down")},
		&mockSink{name: "b", err: errors.New("down")},
	)
	records := []domain.AlertRecord{{Crop: "Soja"}, {Crop: "Milho"}}

	require.Error(t, broken.Emit(context.Background(), records))
	assert.Zero(t, testutil.ToFloat64(metrics.RecordsEmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SinkErrors.WithLabelValues("a")))

	partial := pipeline.NewEmitter(discardLogger(), metrics,
		&mockSink{name: "a", err: errors.New("down")},
		&mockSink{name: "b"},
	)
	require.Error(t, partial.Emit(context.Background(), records))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RecordsEmitted))
}
