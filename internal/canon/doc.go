// Package canon produces canonical JSON encodings and domain-separated
// digests for audit inputs.
//
// Weekly snapshots arrive as arbitrary engine output. Two snapshots that differ
// only in key order, whitespace or Unicode normalisation must hash to the same
// digest so a report can be traced back to exactly the inputs it audited.
//
// Canonical form:
//   - object keys sorted by UTF-16 code units
//   - no insignificant whitespace, no HTML escaping
//   - strings NFC normalised
//   - numbers in shortest round-trip form; integral values without a fraction
package canon
