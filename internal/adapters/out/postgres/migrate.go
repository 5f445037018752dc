package postgres

import (
	"gorm.io/gorm"

	"custody/internal/adapters/out/postgres/balancerepo"
	"custody/internal/adapters/out/postgres/certificaterepo"
	"custody/internal/adapters/out/postgres/directoryrepo"
	"custody/internal/adapters/out/postgres/requestrepo"
	"custody/internal/adapters/out/postgres/residuerepo"
)

// AutoMigrate creates or updates every custody table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&residuerepo.ResidueDTO{},
		&residuerepo.ResidueEventDTO{},
		&requestrepo.RequestDTO{},
		&requestrepo.LineItemDTO{},
		&requestrepo.OrderDTO{},
		&certificaterepo.CertificateDTO{},
		&certificaterepo.CertificateEventDTO{},
		&certificaterepo.NumberSequenceDTO{},
		&balancerepo.BalanceDTO{},
		&balancerepo.ProjectionCheckpointDTO{},
		&directoryrepo.PartyDTO{},
		&directoryrepo.FacilityDTO{},
	)
}
