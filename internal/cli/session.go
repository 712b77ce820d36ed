package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/couchcryptid/pest-risk/internal/adapter/reportfile"
	"github.com/couchcryptid/pest-risk/internal/domain"
	"github.com/couchcryptid/pest-risk/internal/pipeline"
)

// Paths locates the report files the menu displays.
type Paths struct {
	JSON    string
	Full    string
	Summary string
}

// Session is one interactive run of the menu loop. It owns the working
// report between evaluation and emission.
type Session struct {
	in        io.Reader
	out       io.Writer
	evaluator *pipeline.Evaluator
	emitter   *pipeline.Emitter
	paths     Paths
	logger    *slog.Logger

	report domain.Report
	lines  <-chan line
}

// NewSession creates a Session reading commands from in and writing the menu
// to out.
func NewSession(in io.Reader, out io.Writer, evaluator *pipeline.Evaluator, emitter *pipeline.Emitter, paths Paths, logger *slog.Logger) *Session {
	return &Session{
		in:        in,
		out:       out,
		evaluator: evaluator,
		emitter:   emitter,
		paths:     paths,
		logger:    logger,
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Unexpected failures, panics included, are logged and the loop resumes. Only
// a failure to read input is returned.
func (s *Session) Run(ctx context.Context) error {
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.lines = startLineReader(readCtx, s.in)

	fmt.Fprintln(s.out, "-=-=-=-=- PEST PREVENTION -=-=-=-=-")

	for {
		outcome, err := s.step(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			fmt.Fprintln(s.out, "\n\nOperation cancelled by user.")
			s.logger.Info("session cancelled")
			return nil
		case errors.Is(err, io.EOF):
			s.finalNotice()
			return nil
		case errors.Is(err, errRead):
			return err
		case err != nil:
			fmt.Fprintf(s.out, "\nUnexpected error: %v\n", err)
			s.logger.Error("unexpected failure", "error", err)
			continue
		}
		if outcome == OutcomeExit {
			return nil
		}
	}
}

var errRead = errors.New("read input")

// step runs one menu iteration and converts a panic into an error.
func (s *Session) step(ctx context.Context) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	fmt.Fprint(s.out, "\n[1] Evaluate crop\n[2] Show full report\n[3] Show summary report\n[4] Exit\n")
	input, err := s.read(ctx, "Choose an option: ")
	if err != nil {
		return OutcomeExit, err
	}

	cmd, err := ParseCommand(input)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid option. Choose 1, 2, 3 or 4.")
		return OutcomeRetry, nil
	}
	s.logger.Debug("command selected", "command", cmd.String())

	outcome, err = s.handle(ctx, cmd)
	if err != nil || outcome != OutcomeContinue {
		return outcome, err
	}
	return s.askContinue(ctx)
}

func (s *Session) handle(ctx context.Context, cmd Command) (Outcome, error) {
	switch cmd {
	case CommandEvaluate:
		return s.evaluate(ctx)
	case CommandShowFull:
		return s.show(s.paths.Full)
	case CommandShowSummary:
		return s.show(s.paths.Summary)
	case CommandExit:
		s.finalNotice()
		return OutcomeExit, nil
	default:
		return OutcomeRetry, fmt.Errorf("%w: %s", ErrInvalidOption, cmd)
	}
}

func (s *Session) evaluate(ctx context.Context) (Outcome, error) {
	s.printCrops()

	crop, err := s.read(ctx, "\n\nEnter the crop name: ")
	if err != nil {
		return OutcomeExit, err
	}
	if _, err := s.evaluator.ValidateCrop(crop); err != nil {
		return s.rejected(err)
	}

	city, err := s.read(ctx, "Enter the city (Brazil): ")
	if err != nil {
		return OutcomeExit, err
	}

	res, err := s.evaluator.Evaluate(ctx, &s.report, crop, city)
	if err != nil {
		return s.rejected(err)
	}
	s.printDetailed(res)

	// Once classified the cycle runs to completion: sinks get a context that
	// an interrupt does not cancel. The report is cleared even when a sink
	// fails so the next emission does not insert this record twice.
	err = s.emitter.Emit(context.WithoutCancel(ctx), s.report.Records())
	s.report.Reset()
	res.Stage = pipeline.StageEmitted
	if err != nil {
		if errors.Is(err, pipeline.ErrPersistence) {
			fmt.Fprintln(s.out, "Database error: the alert was not saved to the database.")
		}
		fmt.Fprintf(s.out, "Some reports could not be written: %v\n", err)
	}
	s.logger.Debug("cycle finished", "stage", res.Stage.String(), "crop", res.Record.Crop)
	return OutcomeContinue, nil
}

// rejected reports an expected input or weather failure to the user. Anything
// else is returned for the session boundary to handle.
func (s *Session) rejected(err error) (Outcome, error) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		fmt.Fprintln(s.out, "Empty input. Try again.")
	case errors.Is(err, domain.ErrUnknownCrop):
		fmt.Fprintln(s.out, "Invalid crop. Try again.")
	case errors.Is(err, domain.ErrInvalidCityName):
		fmt.Fprintln(s.out, "Invalid city name. Use letters and spaces only.")
	case errors.Is(err, pipeline.ErrWeatherFetch):
		fmt.Fprintf(s.out, "Could not get weather data: %v\n", err)
	default:
		return OutcomeRetry, err
	}
	return OutcomeRetry, nil
}

func (s *Session) show(path string) (Outcome, error) {
	text, err := reportfile.ReadText(path)
	if errors.Is(err, reportfile.ErrNoReport) {
		fmt.Fprintln(s.out, "No report generated yet.")
		return OutcomeContinue, nil
	}
	if err != nil {
		return OutcomeRetry, err
	}
	fmt.Fprint(s.out, "\n", text)
	return OutcomeContinue, nil
}

func (s *Session) askContinue(ctx context.Context) (Outcome, error) {
	answer, err := s.read(ctx, "\nOpen the menu again? (y/n): ")
	if err != nil {
		return OutcomeExit, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "s":
		return OutcomeContinue, nil
	default:
		s.finalNotice()
		return OutcomeExit, nil
	}
}

// read wraps prompt, tagging scanner failures so Run can stop on them.
func (s *Session) read(ctx context.Context, msg string) (string, error) {
	text, err := s.prompt(ctx, msg)
	if err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
		return "", fmt.Errorf("%w: %w", errRead, err)
	}
	return text, err
}

func (s *Session) finalNotice() {
	fmt.Fprintf(s.out, "\nFinal report generated at %s\n", s.paths.JSON)
}

func (s *Session) printCrops() {
	for i, p := range s.evaluator.Catalog().Profiles() {
		fmt.Fprintf(s.out, "%02d - %-12s ", i+1, p.DisplayName())
		if (i+1)%3 == 0 {
			fmt.Fprintln(s.out)
		} else {
			fmt.Fprint(s.out, "| ")
		}
	}
}

func (s *Session) printDetailed(res pipeline.Result) {
	obs := res.Observation
	fmt.Fprintln(s.out, "\n-=-=-=- Detailed Report -=-=-=-")
	fmt.Fprintf(s.out, "%-20s %s\n", "Crop:", res.Record.Crop)
	fmt.Fprintf(s.out, "%-20s %s\n", "Location:", strings.ToUpper(obs.City))
	fmt.Fprintf(s.out, "%-20s %.1f°C\n", "Temperature:", obs.Temperature)
	fmt.Fprintf(s.out, "%-20s %g%%\n", "Relative humidity:", obs.Humidity)
	fmt.Fprintf(s.out, "%-20s %s\n", "Risk level:", res.Assessment.Tier.Label())
	fmt.Fprintf(s.out, "%-20s %s\n", "Recommended actions:", res.Assessment.Recommendation)
	fmt.Fprintln(s.out, strings.Repeat("-", 40))
}
