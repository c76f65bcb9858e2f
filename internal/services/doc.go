// Package services defines shared utilities consumed by the alignment
// components and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, tier names, and segment
//     indexes for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent process exit codes.
//
// Use these helpers when wiring new components so operational behaviour
// (error classification, observability) stays uniform across the pipeline.
package services
