// Package harness provides conformance testing for the campaign engine.
//
// The harness builds a campaign from a fixture, drives it through named
// commands, and checks each outcome, the final document and the trace
// against expectations written in YAML.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	dice: [5, 18]          # scripted rolls, or
//	seed: 42               # a seeded generator
//	setup:
//	  fixture: document    # document | shipless
//	  set:
//	    campaign.tasksFinalized: false
//	flow:
//	  - invoke: trade
//	    args: { characterId: ch-1 }
//	    expect:
//	      case: ok
//	      result: { rowId: sell_cargo }
//	assertions:
//	  - type: final_state
//	    path: campaign.credits
//	    equals: 12
//	  - type: phase
//	    phase: actions
//
// Setup may instead carry a create block with campaign creation
// parameters; set overrides then apply to the created document.
//
// # Assertion Types
//
//   - final_state: the value at a dotted document path equals a value
//   - log_contains: a campaign log entry with the key exists
//   - interrupt: the pending interrupt has the kind ("none" for no interrupt)
//   - phase: the campaign is in the phase
//
// # Deterministic Testing
//
// Scenarios run with sequential entity ids ("character-101") and either
// scripted dice or a seeded generator, against a fresh in-memory store.
// Every accepted command is journaled; seeded scenarios are replayed from
// the journal at the end and must reach the same digest. Scripted rolls
// left unused fail the scenario.
//
// This ensures identical traces across runs for golden file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/trade.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
