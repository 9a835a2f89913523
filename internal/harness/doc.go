// Package harness runs YAML scenarios against a real engine.
//
// Each scenario opens a fresh in-memory session, loads its fixtures, runs
// its steps and evaluates its assertions. Every command is recorded in a
// trace that can be compared against a golden file.
//
// # Scenario Format
//
//	name: follow_knows
//	description: "follow reaches friends of friends"
//	backend: sqlite              # memory (default) | sqlite | badger
//	load:
//	  - people.nt                # N-Triples, relative to the scenario file
//	setup:
//	  - put {"id": "a", "kvps": {"knows": <b>}}
//	steps:
//	  - run: get "a" | follow "knows"[1:2]
//	    expect:
//	      items:
//	        - id: a
//	          nodes: [b, c]
//	  - run: get "a" | explode
//	    expect:
//	      error: UnsupportedOperator
//	assertions:
//	  - type: attribute
//	    node: b
//	    key: name
//	    value: bob
//	  - type: history_count
//	    node: a
//	    count: 1
//
// # Assertion Types
//
//   - node_exists: the node can be read
//   - node_missing: reading the node reports NOT_FOUND
//   - attribute: the node has an attribute whose key displays as key and
//     whose value displays as value
//   - history_count: the node has exactly count stored versions
//   - trace_count: exactly count commands of kind (put|get|load) ran
//
// # Deterministic Testing
//
// Scenarios run with a step clock (every command takes 1ms) and a fixed
// blank node scope, so traces are byte-identical across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/follow.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
package harness
