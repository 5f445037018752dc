// Package certificate contains the certificate document aggregate.
//
// A certificate attests that treatment or disposal of a set of residues was
// completed. Issuance assigns a gapless sequential number within the issuing
// scope; revocation withdraws the document without undoing the attested
// operations. The lifecycle is a short linear event-sourced chain:
// Pending -> Issued -> Revoked.
package certificate
