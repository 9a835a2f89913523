package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/ahghee/internal/engine"
	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/session"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, event.Status)
		}
	}

	return buf.String()
}

// AssertionContext provides the session assertions read from.
type AssertionContext struct {
	Session *session.Session
	Ctx     context.Context
}

// readNode runs a plain get for iri through the session.
func (a *AssertionContext) readNode(iri string) (ir.Node, error) {
	results, err := a.Session.Exec(a.Ctx, fmt.Sprintf("get %q", iri))
	if err != nil {
		return ir.Node{}, err
	}
	res := results[0]
	if res.Err != nil {
		return ir.Node{}, res.Err
	}
	item := res.Items[0]
	if item.Err != nil {
		return ir.Node{}, item.Err
	}
	return item.Nodes[0], nil
}

func assertNodeExists(actx *AssertionContext, assertion Assertion) error {
	if _, err := actx.readNode(assertion.Node); err != nil {
		return &AssertionError{
			Type:     AssertNodeExists,
			Expected: fmt.Sprintf("node %s stored", assertion.Node),
			Actual:   err.Error(),
		}
	}
	return nil
}

func assertNodeMissing(actx *AssertionContext, assertion Assertion) error {
	_, err := actx.readNode(assertion.Node)
	if engine.IsNotFound(err) {
		return nil
	}
	actual := "node found"
	if err != nil {
		actual = err.Error()
	}
	return &AssertionError{
		Type:     AssertNodeMissing,
		Expected: fmt.Sprintf("node %s not stored", assertion.Node),
		Actual:   actual,
	}
}

// assertAttribute checks that some attribute of the node displays as
// key = value.
func assertAttribute(actx *AssertionContext, assertion Assertion) error {
	n, err := actx.readNode(assertion.Node)
	if err != nil {
		return &AssertionError{
			Type:     AssertAttribute,
			Expected: fmt.Sprintf("node %s stored", assertion.Node),
			Actual:   err.Error(),
		}
	}

	want := fmt.Sprint(assertion.Value)
	var seen []string
	for _, kv := range n.Attributes {
		if ir.DisplayTMD(kv.Key) != assertion.Key {
			continue
		}
		got := ir.DisplayTMD(kv.Value)
		if got == want {
			return nil
		}
		seen = append(seen, got)
	}

	actual := "no such key"
	if len(seen) > 0 {
		actual = fmt.Sprintf("values %v", seen)
	}
	return &AssertionError{
		Type:     AssertAttribute,
		Expected: fmt.Sprintf("%s.%s = %s", assertion.Node, assertion.Key, want),
		Actual:   actual,
	}
}

func assertHistoryCount(actx *AssertionContext, assertion Assertion) error {
	versions, err := actx.Session.History(actx.Ctx, ir.NodeID{IRI: assertion.Node})
	count := len(versions)
	if err != nil && !engine.IsNotFound(err) {
		return fmt.Errorf("history of %s: %w", assertion.Node, err)
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertHistoryCount,
			Expected: fmt.Sprintf("%d versions of %s", assertion.Count, assertion.Node),
			Actual:   fmt.Sprintf("%d versions", count),
		}
	}
	return nil
}

// assertTraceCount checks that exactly Count commands of Kind ran.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == assertion.Kind {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d %s commands", assertion.Count, assertion.Kind),
			Actual:   fmt.Sprintf("%d %s commands", count, assertion.Kind),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a list of error messages for failed assertions.
// Assertions that read the graph need actx; they run after the trace is
// complete so their own reads are not traced.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if assertion.Type != AssertTraceCount && (actx == nil || actx.Session == nil) {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %s requires a session", i, assertion.Type))
			continue
		}

		switch assertion.Type {
		case AssertNodeExists:
			err = assertNodeExists(actx, assertion)
		case AssertNodeMissing:
			err = assertNodeMissing(actx, assertion)
		case AssertAttribute:
			err = assertAttribute(actx, assertion)
		case AssertHistoryCount:
			err = assertHistoryCount(actx, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
