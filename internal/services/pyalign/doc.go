// Package pyalign wraps the command-line forced aligner. One invocation
// aligns one transcript segment against a window of the audio file and
// writes a TextGrid with a phone tier and a word tier; the client parses
// that output back into timeline tiers. The Executor seam lets tests
// substitute the child process.
package pyalign
