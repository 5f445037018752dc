// Package residue provides the Residue aggregate and its custody state
// machine: the event-sourced core of the chain-of-custody engine.
//
// The package includes:
//   - Residue: The aggregate root whose state is the fold of its event log
//   - Event: Immutable custody records with idempotent application
//   - Operation payloads: Generation, Relocation, Transfer, Storage,
//     Transformation, Adjustment, Handover
//   - Status/OperationKind: the custody state machine with its explicit
//     legal-transition table held as data
//
// Key business rules:
//   - A residue exists only through its first generation event and is never
//     hard-deleted; Disposed and Consumed are terminal
//   - The declared fromStatus of an event must match the aggregate's status
//     at application time
//   - Any (status, operation, target) triple absent from the transition table
//     is rejected with an invalid-transition error, never silently ignored
//   - Replaying the log from empty always reproduces status and quantity
package residue
