// Package services provides domain services that coordinate business rules
// across multiple aggregates of the custody chain.
//
// The package includes:
//   - ConservationEngine: validates that transformations neither create nor
//     destroy material beyond a configured tolerance
//   - EventDeriver: translates line-item stage advances into the custody
//     events they emit on the affected residues
//
// Domain services hold logic that spans aggregates and therefore belongs to
// no single aggregate root.
package services
