package ports

import (
	"context"

	"custody/internal/core/domain/model/kernel"
)

// PartyRef is the directory's view of a party that can own residues or hold
// certificates.
type PartyRef struct {
	ID   kernel.UUID
	Name string
}

// FacilityRef is the directory's view of a facility, plant, or site residues
// can be located at.
type FacilityRef struct {
	ID   kernel.UUID
	Name string
}

// Directory resolves party and facility references before an event touching
// them is accepted. Unresolvable references are an ObjectNotFoundError.
type Directory interface {
	ResolveParty(ctx context.Context, id kernel.UUID) (PartyRef, error)
	ResolveFacility(ctx context.Context, id kernel.UUID) (FacilityRef, error)
}
