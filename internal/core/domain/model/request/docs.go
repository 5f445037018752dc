// Package request contains the request aggregate and its two-axis progress
// model.
//
// A request decomposes into line items, one per waste type. Each line item
// moves along two orthogonal axes: the Stage axis tracks the physical flow
// (Initiation through Finalization) and the Phase axis tracks the
// administrative flow. Both are strictly sequential, and every phase has a
// stage floor that must be reached first, so the administration can lag
// behind the physical flow but never overtake it.
//
// Orders are the scheduled execution units derived from line items, and
// management records are the immutable executed touches that become custody
// events on the affected residues.
package request
