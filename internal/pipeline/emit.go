package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/pest-risk/internal/domain"
	"github.com/couchcryptid/pest-risk/internal/observability"
)

// ErrPersistence marks failures of the persistence gateway sink.
var ErrPersistence = errors.New("persistence failed")

// Sink receives alert records. Implementations write each record set once and
// do not retry.
type Sink interface {
	Name() string
	Write(ctx context.Context, records []domain.AlertRecord) error
}

// SinkError is a failure of a single sink during Emit.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string { return fmt.Sprintf("sink %s: %v", e.Sink, e.Err) }

func (e *SinkError) Unwrap() error { return e.Err }

// Persistent marks s as the persistence gateway: its errors also match
// ErrPersistence.
func Persistent(s Sink) Sink {
	return persistentSink{s}
}

type persistentSink struct{ Sink }

func (p persistentSink) Write(ctx context.Context, records []domain.AlertRecord) error {
	if err := p.Sink.Write(ctx, records); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// Emitter hands records to every sink in registration order.
type Emitter struct {
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEmitter creates an Emitter for the given sinks.
func NewEmitter(logger *slog.Logger, metrics *observability.Metrics, sinks ...Sink) *Emitter {
	return &Emitter{sinks: sinks, logger: logger, metrics: metrics}
}

// Sinks returns the registered sink names in order.
func (e *Emitter) Sinks() []string {
	names := make([]string, len(e.sinks))
	for i, s := range e.sinks {
		names[i] = s.Name()
	}
	return names
}

// Emit writes records to each sink. A failing sink does not stop the others;
// the returned error joins one *SinkError per failure.
func (e *Emitter) Emit(ctx context.Context, records []domain.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}

	var errs []error
	delivered := false
	for _, s := range e.sinks {
		if err := e.write(ctx, s, records); err != nil {
			e.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			e.logger.Error("sink write failed", "sink", s.Name(), "records", len(records), "error", err)
			errs = append(errs, &SinkError{Sink: s.Name(), Err: err})
			continue
		}
		delivered = true
	}

	// Records count as emitted once any sink accepted them.
	if delivered {
		e.metrics.RecordsEmitted.Add(float64(len(records)))
	}
	return errors.Join(errs...)
}

// write isolates a sink so a panic is reported as that sink's failure.
func (e *Emitter) write(ctx context.Context, s Sink, records []domain.AlertRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Write(ctx, records)
}
