// Package testutil provides utilities for testing stencil components.
//
// Key components:
//   - MemoryFS: In-memory filesystem implementation for fast, isolated tests,
//     with per-path error injection and mutation counters
//   - TestTemplate: Declarative template directory builder on top of MemoryFS
//
// All test data should be defined inline, not in external files, and each
// test should be completely isolated with no shared state.
package testutil
