package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/roach88/ahghee/internal/config"
	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/session"
	"github.com/roach88/ahghee/internal/syntax"
	"github.com/roach88/ahghee/internal/testutil"
)

// CommandStep is the simulated duration of every command.
const CommandStep = time.Millisecond

// Harness is the test execution engine.
// It runs scenarios with a step clock and a fixed blank node scope.
type Harness struct {
	session *session.Session
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory session for isolation.
//
// Execution flow:
// 1. Open an in-memory session on the scenario backend
// 2. Import load files and run setup commands
// 3. Run steps and check expect clauses
// 4. Evaluate assertions
//
// An error is returned only when the scenario cannot run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Default()
	cfg.Store.Backend = scenario.Backend
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	cfg.Store.Path = session.InMemoryPath
	cfg.Workers = 2

	s, err := session.Open(ctx, cfg,
		session.WithLogger(logger),
		session.WithNow(testutil.NewStepClock(CommandStep).Now),
		session.WithScopeGenerator(testutil.NewFixedScopeGenerator(scenario.Scope)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer s.Close()

	h := &Harness{session: s, logger: logger}
	result := NewResult()

	if err := h.executeLoad(ctx, scenario.Load, result); err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{Session: s, Ctx: ctx}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func (h *Harness) executeLoad(ctx context.Context, files []string, result *Result) error {
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		res, err := h.session.Load(ctx, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if res.Err != nil {
			return fmt.Errorf("%s: %w", path, res.Err)
		}

		event := traceEvent(res)
		event.Type = EventLoad
		event.Command = "load " + filepath.Base(path)
		result.AddTrace(event)
	}
	return nil
}

// executeSetup runs setup commands. Any failure aborts the scenario.
func (h *Harness) executeSetup(ctx context.Context, setup []string, result *Result) error {
	for i, src := range setup {
		results, err := h.session.Exec(ctx, src)
		if err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		for _, res := range results {
			if !res.OK() {
				return fmt.Errorf("setup[%d]: %s", i, res.Status())
			}
			result.AddTrace(traceEvent(res))
		}
		h.logger.Info("setup step completed", "step", i, "commands", len(results))
	}
	return nil
}

// executeSteps runs every step and checks its expect clause. Unexpected
// failures are recorded on the result, never returned.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		results, err := h.session.Exec(ctx, step.Run)
		if err != nil {
			result.AddTrace(TraceEvent{Type: EventError, Command: step.Run, Status: err.Error()})
			checkCommandError(result, i, step.Expect, err)
			continue
		}

		for _, res := range results {
			result.AddTrace(traceEvent(res))
			if res.Err != nil {
				checkCommandError(result, i, step.Expect, res.Err)
				continue
			}
			if step.Expect != nil && step.Expect.Error != "" {
				result.AddError(fmt.Sprintf("steps[%d]: expected error containing %q, command succeeded", i, step.Expect.Error))
				continue
			}
			checkItems(result, i, step.Expect, res)
		}

		h.logger.Info("step completed", "step", i, "commands", len(results))
	}
	return nil
}

func checkCommandError(result *Result, index int, expect *ExpectClause, err error) {
	if expect == nil || expect.Error == "" {
		result.AddError(fmt.Sprintf("steps[%d]: unexpected error: %v", index, err))
		return
	}
	if !strings.Contains(err.Error(), expect.Error) {
		result.AddError(fmt.Sprintf("steps[%d]: error %q does not contain %q", index, err.Error(), expect.Error))
	}
}

// checkItems compares get items with the expect clause. Without an
// expect clause every item must succeed.
func checkItems(result *Result, index int, expect *ExpectClause, res session.Result) {
	if expect == nil || len(expect.Items) == 0 {
		for _, item := range res.Items {
			if item.Err != nil {
				result.AddError(fmt.Sprintf("steps[%d]: unexpected error for %s: %v", index, item.ID, item.Err))
			}
		}
		return
	}

	if len(expect.Items) != len(res.Items) {
		result.AddError(fmt.Sprintf("steps[%d]: expected %d items, got %d", index, len(expect.Items), len(res.Items)))
		return
	}

	for j, want := range expect.Items {
		got := res.Items[j]
		prefix := fmt.Sprintf("steps[%d].items[%d]", index, j)

		if got.ID.IRI != want.ID {
			result.AddError(fmt.Sprintf("%s: expected id %s, got %s", prefix, want.ID, got.ID.IRI))
			continue
		}
		if want.Error != "" {
			if got.Err == nil || !strings.Contains(got.Err.Error(), want.Error) {
				result.AddError(fmt.Sprintf("%s: expected error containing %q, got %v", prefix, want.Error, got.Err))
			}
			continue
		}
		if got.Err != nil {
			result.AddError(fmt.Sprintf("%s: unexpected error: %v", prefix, got.Err))
			continue
		}
		if iris := nodeIRIs(got.Nodes); !slices.Equal(iris, want.Nodes) {
			result.AddError(fmt.Sprintf("%s: expected nodes %v, got %v", prefix, want.Nodes, iris))
		}
	}
}

func traceEvent(res session.Result) TraceEvent {
	event := TraceEvent{Command: res.Command, Status: res.Status()}
	switch res.Kind {
	case syntax.CommandPut:
		event.Type = EventPut
	case syntax.CommandGet:
		event.Type = EventGet
	}

	for _, item := range res.Items {
		ti := TraceItem{ID: item.ID.String(), Nodes: nodeIRIs(item.Nodes)}
		if item.Err != nil {
			ti.Error = item.Err.Error()
		}
		event.Items = append(event.Items, ti)
	}
	return event
}

func nodeIRIs(nodes []ir.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID.IRI
	}
	return out
}
