package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/mirror/internal/inspect"
	"github.com/roach88/mirror/internal/model"
	"github.com/roach88/mirror/internal/store"
	"github.com/roach88/mirror/internal/testutil"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes world loading and inspector logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store with a deterministic
// clock and sequential session ids. A non-nil error means the scenario
// could not be executed at all; assertion failures are reported on the
// result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	w, err := model.Load(scenario.World, model.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	in := inspect.New(w,
		inspect.WithStore(st),
		inspect.WithIDGenerator(testutil.NewSequentialIDs("scenario")),
		inspect.WithClock(testutil.NewDeterministicClock()),
		inspect.WithLogger(cfg.logger),
	)

	ctx := context.Background()
	result := NewResult()
	EvaluateAssertions(ctx, in, scenario.Assertions, result)

	for i, ref := range scenario.Dump {
		var buf bytes.Buffer
		if err := in.Dump(&buf, ref); err != nil {
			result.AddError(fmt.Sprintf("dump[%d]: %v", i, err))
			continue
		}
		result.Dumps = append(result.Dumps, Dump{Ref: ref, Text: buf.String()})
	}

	cfg.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"checked", result.Checked,
		"errors", len(result.Errors))
	return result, nil
}
