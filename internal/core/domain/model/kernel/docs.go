// Package kernel provides core domain primitives shared by every aggregate in
// the custody system. It implements fundamental building blocks following
// Domain-Driven Design principles.
//
// The package includes:
//   - UUID: A value object for unique identifiers with validation and comparison capabilities
//   - Quantity: An immutable, unit-tagged decimal amount of waste
//   - Event / EventLog: The append-only, idempotent event-log capability shared
//     by every custody-bearing aggregate
//   - The custody error taxonomy (invalid transition, phase/stage mismatch,
//     conservation violation, stale version, unknown aggregate, corrupt log)
//
// These primitives enforce domain invariants and validation rules, ensuring
// that domain objects are always in a valid state. They are designed to be
// immutable and thread-safe unless stated otherwise.
package kernel
