// Package main hosts the loom CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into
// alignment runs, label-file merges and splits, dictionary checks, run
// ledger queries, and configuration scaffolding. It centralizes
// configuration resolution and logger setup so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// Aligned label output goes to stdout unless -o redirects it, so everything
// else a command says belongs on stderr or behind the logger.
package main
