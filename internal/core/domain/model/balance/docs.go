// Package balance contains the eventually consistent inventory read model.
//
// A balance row exists per (owner party, facility, waste type) and holds the
// summed quantity per custody status bucket. The balance projector feeds it
// incrementally from the event log; the sequence checkpoint and last-applied
// event id per row make projection idempotent under re-delivery.
package balance
