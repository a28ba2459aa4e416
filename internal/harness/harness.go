package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/extsql/internal/compiler"
	"github.com/roach88/extsql/internal/entity"
	"github.com/roach88/extsql/internal/graph"
	"github.com/roach88/extsql/internal/render"
	"github.com/roach88/extsql/internal/store"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load and compile the manifest
// 2. Register descriptors and build the plan
// 3. Compare the outcome against expect
// 4. Render the script and rebuild in reverse registration order
// 5. Evaluate assertions
//
// The returned error is for problems running the scenario itself (missing
// files, invalid CUE). Build errors are part of the result.
func Run(scenario *Scenario) (*Result, error) {
	m, err := compiler.LoadManifest(scenario.Manifest)
	if err != nil && entity.CodeOf(err) == "" {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	result := NewResult()

	var plan *graph.Plan
	if err == nil {
		plan, err = build(m.Descriptors)
	}
	if err != nil {
		result.ErrorCode = string(entity.CodeOf(err))
		result.ErrorMessage = err.Error()
		checkError(scenario.Expect, err, result)
		return result, nil
	}

	if scenario.Expect.Error != "" {
		result.AddError(fmt.Sprintf("expected error %s, build succeeded", scenario.Expect.Error))
	}

	result.plan = plan
	result.Order = plan.Names()
	result.Script = render.SQL(plan, render.Options{Header: scenario.Header})
	result.Fingerprint, err = entity.Fingerprint(pointers(m.Descriptors))
	if err != nil {
		return nil, err
	}

	if len(scenario.Expect.Order) > 0 && !slices.Equal(scenario.Expect.Order, result.Order) {
		result.AddError(fmt.Sprintf("order mismatch:\n  Expected: %v\n  Actual: %v", scenario.Expect.Order, result.Order))
	}

	if err := checkDeterminism(context.Background(), scenario, m, result); err != nil {
		return nil, err
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func build(descs []entity.Descriptor) (*graph.Plan, error) {
	reg, err := entity.NewRegistryFrom(descs...)
	if err != nil {
		return nil, err
	}
	return graph.Build(reg)
}

func pointers(descs []entity.Descriptor) []*entity.Descriptor {
	out := make([]*entity.Descriptor, len(descs))
	for i := range descs {
		out[i] = &descs[i]
	}
	return out
}

// checkError compares a build error against expect.
func checkError(expect Expect, err error, result *Result) {
	if expect.Error == "" {
		result.AddError(fmt.Sprintf("unexpected error: %v", err))
		return
	}
	if result.ErrorCode != expect.Error {
		result.AddError(fmt.Sprintf("error code mismatch:\n  Expected: %s\n  Actual: %s (%v)", expect.Error, result.ErrorCode, err))
		return
	}
	if len(expect.Cycle) == 0 {
		return
	}
	var ee *entity.Error
	if !errors.As(err, &ee) || !slices.Equal(ee.Cycle, expect.Cycle) {
		var got []string
		if ee != nil {
			got = ee.Cycle
		}
		result.AddError(fmt.Sprintf("cycle mismatch:\n  Expected: %v\n  Actual: %v", expect.Cycle, got))
	}
}

// checkDeterminism rebuilds the manifest with descriptors registered in
// reverse and archives both scripts under one version. The archive treats
// the second save as a no-op only when the fingerprint matches; the
// scripts must then be byte-identical.
func checkDeterminism(ctx context.Context, scenario *Scenario, m *compiler.Manifest, result *Result) error {
	reversed := slices.Clone(m.Descriptors)
	slices.Reverse(reversed)

	plan, err := build(reversed)
	if err != nil {
		result.AddError(fmt.Sprintf("build failed in reverse registration order: %v", err))
		return nil
	}
	script := render.SQL(plan, render.Options{Header: scenario.Header})
	fingerprint, err := entity.Fingerprint(pointers(reversed))
	if err != nil {
		return err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	version := m.Extension.Version
	if version == "" {
		version = "scenario"
	}
	first, _, err := st.Save(ctx, store.Artifact{
		Extension:   m.Extension.Name,
		Version:     version,
		Fingerprint: result.Fingerprint,
		Script:      result.Script,
		Descriptors: m.Descriptors,
		NodeCount:   len(result.Order),
	})
	if err != nil {
		return fmt.Errorf("failed to archive script: %w", err)
	}

	_, created, err := st.Save(ctx, store.Artifact{
		Extension:   m.Extension.Name,
		Version:     version,
		Fingerprint: fingerprint,
		Script:      script,
		Descriptors: reversed,
		NodeCount:   len(plan.Entities()),
	})
	switch {
	case store.IsConflictError(err):
		result.AddError(fmt.Sprintf("fingerprint depends on registration order: %v", err))
	case err != nil:
		return fmt.Errorf("failed to archive script: %w", err)
	case created:
		result.AddError("second archive save created a new row")
	case first.Script != script:
		result.AddError("script differs when descriptors are registered in reverse order")
	}

	slog.Debug("scenario archived",
		"scenario", scenario.Name,
		"fingerprint", result.Fingerprint,
		"nodes", len(result.Order))
	return nil
}
