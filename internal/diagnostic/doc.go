// Package diagnostic provides structured errors, warnings and notes
// produced while validating pin files and checking them against the
// statically discovered type hierarchy.
//
// Key capabilities:
//   - Accumulation by severity with stable codes
//   - Merging diagnostics from several passes
//   - Conversion to a single error for callers that only need pass/fail
package diagnostic
