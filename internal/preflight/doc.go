// Package preflight provides readiness checks for the external pieces an
// alignment run depends on: the aligner binary, the main pronunciation
// dictionary, the workspace directory, and the configured character
// encodings.
//
// The checks run in two contexts:
//   - "loom align" consults them before touching audio, so a doomed run
//     fails in milliseconds instead of partway through a long session.
//   - "loom doctor" renders the individual results as a table.
package preflight
