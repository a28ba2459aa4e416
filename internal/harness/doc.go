// Package harness runs extsql scenarios: a manifest plus the installation
// order, errors and script content it is expected to produce.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	manifest: manifests/demo.cue   # relative to the scenario file
//	header:
//	  - generated by extsql
//	expect:
//	  order: [extension_bootstrap, complex_type, extension_finalize]
//	assertions:
//	  - type: order_before
//	    first: complex_type
//	    then: complex_add
//	  - type: resolves_to
//	    entity: complex_add
//	    ref: Option<Complex>
//	    target: complex_type
//
// A scenario that must fail names the error code instead:
//
//	expect:
//	  error: CYCLIC_DEPENDENCY
//	  cycle: [a, b, a]
//
// # Assertion Types
//
//   - order_before: first is installed before then
//   - script_contains: the rendered script contains text
//   - resolves_to: a reference of entity resolved to target
//   - node_count: the plan has exactly count descriptors
//
// # Determinism
//
// Every successful run is built a second time with the descriptors
// registered in reverse order. Both scripts are saved to an in-memory
// archive; the second save must be a no-op returning byte-identical
// output.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/complex.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
