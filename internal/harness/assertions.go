package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the installation order to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Order    []string // Installation order for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nInstallation order:\n")
	for i, name := range e.Order {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, name)
	}

	return buf.String()
}

// assertOrderBefore checks that First is installed before Then.
func assertOrderBefore(result *Result, a Assertion) error {
	first := slices.Index(result.Order, a.First)
	then := slices.Index(result.Order, a.Then)

	switch {
	case first < 0:
		return &AssertionError{
			Type:     AssertOrderBefore,
			Expected: fmt.Sprintf("%s before %s", a.First, a.Then),
			Actual:   fmt.Sprintf("%s not in plan", a.First),
			Order:    result.Order,
		}
	case then < 0:
		return &AssertionError{
			Type:     AssertOrderBefore,
			Expected: fmt.Sprintf("%s before %s", a.First, a.Then),
			Actual:   fmt.Sprintf("%s not in plan", a.Then),
			Order:    result.Order,
		}
	case first > then:
		return &AssertionError{
			Type:     AssertOrderBefore,
			Expected: fmt.Sprintf("%s before %s", a.First, a.Then),
			Actual:   fmt.Sprintf("%s at position %d, %s at position %d", a.First, first+1, a.Then, then+1),
			Order:    result.Order,
		}
	}
	return nil
}

// assertScriptContains checks the rendered script for a substring.
func assertScriptContains(result *Result, a Assertion) error {
	if strings.Contains(result.Script, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertScriptContains,
		Expected: fmt.Sprintf("script containing %q", a.Text),
		Actual:   "not found",
		Order:    result.Order,
	}
}

// assertResolvesTo checks that a reference resolved to the given target.
func assertResolvesTo(result *Result, a Assertion) error {
	for _, n := range result.plan.Entities() {
		if n.Name() != a.Entity {
			continue
		}
		for _, r := range n.Requires {
			if r.Ref.Target != a.Ref {
				continue
			}
			if r.Target == a.Target {
				return nil
			}
			return &AssertionError{
				Type:     AssertResolvesTo,
				Expected: fmt.Sprintf("%s: %s resolves to %s", a.Entity, a.Ref, a.Target),
				Actual:   fmt.Sprintf("resolved to %s via %s", r.Target, r.Via),
				Order:    result.Order,
			}
		}
		return &AssertionError{
			Type:     AssertResolvesTo,
			Expected: fmt.Sprintf("%s: %s resolves to %s", a.Entity, a.Ref, a.Target),
			Actual:   fmt.Sprintf("%s has no reference %q", a.Entity, a.Ref),
			Order:    result.Order,
		}
	}
	return &AssertionError{
		Type:     AssertResolvesTo,
		Expected: fmt.Sprintf("%s: %s resolves to %s", a.Entity, a.Ref, a.Target),
		Actual:   fmt.Sprintf("%s not in plan", a.Entity),
		Order:    result.Order,
	}
}

// assertNodeCount checks the number of descriptors in the plan.
func assertNodeCount(result *Result, a Assertion) error {
	if len(result.Order) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertNodeCount,
		Expected: fmt.Sprintf("%d descriptors", a.Count),
		Actual:   fmt.Sprintf("%d descriptors", len(result.Order)),
		Order:    result.Order,
	}
}

// EvaluateAssertions runs every assertion against a successful result and
// returns the failure messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	if result.plan == nil {
		if len(assertions) > 0 {
			errs = append(errs, "assertions skipped: build failed")
		}
		return errs
	}

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertOrderBefore:
			err = assertOrderBefore(result, a)
		case AssertScriptContains:
			err = assertScriptContains(result, a)
		case AssertResolvesTo:
			err = assertResolvesTo(result, a)
		case AssertNodeCount:
			err = assertNodeCount(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}
