// Package audit runs the longitudinal checks over a timeline of weekly
// records and folds their findings into scores and a verdict.
//
// Each analyzer reads the timeline and returns its own findings together
// with the score adjustments it asks for. Analyzers never see each other's
// output. Aggregate is the only place scores are computed:
//
//	start at 50 for every score
//	subtract 30 (P0) or 15 (P1) from scientific and clinical per violation
//	apply analyzer deltas
//	clamp to [0, 100]
//
// The Auditor runs the analyzers in a fixed order, which only affects the
// order findings are reported in.
package audit
