// Package harness runs audit scenarios: synthetic week timelines paired with
// the findings an audit of them must produce.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: deload_with_failure
//	description: "Failure allowed in a deload week is a P0 violation"
//	profile: |
//	  min_decisions: 3
//	weeks:
//	  - week: 1
//	    feedback: { fatigue: 9.0, adherence: 0.9 }
//	    prescriptions:
//	      - { muscle: chest, sets: 10 }
//	  - week: 2
//	    phase: deload
//	    prescriptions:
//	      - { muscle: chest, sets: 6, allow_failure: true }
//	assertions:
//	  - type: violation_present
//	    rule: failure_in_deload
//	    week: 2
//	  - type: verdict
//	    verdict: fail
//
// The optional profile is CUE source unified with the default profile.
//
// # Assertion Types
//
//   - violation_count: number of violations, optionally filtered by rule or severity
//   - violation_present: a violation of a rule, optionally at a week and muscle
//   - verdict: the verdict level (pass, caution, fail) or full verdict text
//   - score: a score kind within [min, max]
//   - chaotic_weeks: number of chaotic weeks, optionally the exact week list
//   - reversible_cycles: number of reduce-then-recover cycles
//   - incoherent_transitions: number of incoherent directionality transitions
//   - failure_rate: failure rate in percent within [min, max], or its tier
//
// # Deterministic Testing
//
// Weeks are rendered to snapshot documents and parsed through the same path as
// files on disk, so scenarios exercise the parser as well as the analyzers.
// Golden snapshots capture the findings in canonical JSON.
package harness
