// Package snapshot turns one raw weekly engine snapshot into a normalised
// Record.
//
// A snapshot is the JSON document the training engine writes for one week:
//
//	{
//	  "weekNumber": 3,
//	  "feedbackInput": {"fatigue": 8.5, "adherence": 0.9},
//	  "plan": {"weeks": [{"sessions": [{"prescriptions": [...]}]}]},
//	  "decisions": [{"category": "week_setup", "context": {...}}]
//	}
//
// All defaulting of optional fields happens here. Analyzers only ever see a
// Record and never read the raw document for values hoisted into it.
package snapshot
