package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"custody/internal/adapters/in/http"
	"custody/internal/adapters/out/billing"
	"custody/internal/adapters/out/postgres"
	"custody/internal/adapters/out/postgres/directoryrepo"
	"custody/internal/adapters/out/postgres/residuerepo"
	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/domain/services"
	"custody/internal/core/ports"
	"custody/internal/jobs"
	"custody/internal/pkg/keylock"
)

// CompositionRoot wires adapters, domain services, and use case handlers.
// One instance serves the whole process; every command gets a fresh unit of
// work from the shared factory.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	directory    ports.Directory
	billing      ports.BillingNotifier
	conservation services.ConservationEngine
	deriver      services.EventDeriver
	locks        *keylock.KeyLock
	logger       *slog.Logger

	projectionBatchSize int
}

// NewCompositionRoot builds the object graph from configuration. The
// conservation tolerance comes from config so operations can tune the
// accepted transport shortfall without a rebuild.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	tolerance, err := decimal.NewFromString(config.ConservationTolerancePercent)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("invalid conservation tolerance: %w", err)
	}

	conservation, err := services.NewConservationEngine(tolerance)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		gormDB:              gormDB,
		uowFactory:          *postgres.NewGormUnitOfWorkFactory(gormDB),
		directory:           directoryrepo.NewGormDirectory(gormDB),
		billing:             billing.NewLogNotifier(logger),
		conservation:        conservation,
		deriver:             services.NewEventDeriver(conservation),
		locks:               keylock.NewKeyLock(),
		logger:              logger,
		projectionBatchSize: config.ProjectionBatchSize,
	}, nil
}

func (c *CompositionRoot) CreateGenerateResidueCommandHandler() commands.GenerateResidueCommandHandler {
	var f commands.ResidueUoWFactory = FuncResidueUoWFactory(func() commands.ResidueUoW {
		return c.uowFactory.Create()
	})
	return commands.NewGenerateResidueCommandHandler(f, c.directory)
}

func (c *CompositionRoot) CreateApplyResidueEventCommandHandler() commands.ApplyResidueEventCommandHandler {
	var f commands.ResidueUoWFactory = FuncResidueUoWFactory(func() commands.ResidueUoW {
		return c.uowFactory.Create()
	})
	return commands.NewApplyResidueEventCommandHandler(f, c.directory, c.conservation, c.locks)
}

func (c *CompositionRoot) CreateCreateRequestCommandHandler() commands.CreateRequestCommandHandler {
	var f commands.RequestUoWFactory = FuncRequestUoWFactory(func() commands.RequestUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateRequestCommandHandler(f, c.directory)
}

func (c *CompositionRoot) CreateAdvanceLineItemCommandHandler() commands.AdvanceLineItemCommandHandler {
	var f commands.AdvanceUoWFactory = FuncAdvanceUoWFactory(func() commands.AdvanceUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdvanceLineItemCommandHandler(f, c.deriver, c.billing, c.locks)
}

func (c *CompositionRoot) CreateCreateCertificateCommandHandler() commands.CreateCertificateCommandHandler {
	var f commands.CertificateUoWFactory = FuncCertificateUoWFactory(func() commands.CertificateUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCertificateCommandHandler(f)
}

func (c *CompositionRoot) CreateIssueCertificateCommandHandler() commands.IssueCertificateCommandHandler {
	var f commands.CertificateUoWFactory = FuncCertificateUoWFactory(func() commands.CertificateUoW {
		return c.uowFactory.Create()
	})
	return commands.NewIssueCertificateCommandHandler(f, c.locks)
}

func (c *CompositionRoot) CreateRevokeCertificateCommandHandler() commands.RevokeCertificateCommandHandler {
	var f commands.CertificateUoWFactory = FuncCertificateUoWFactory(func() commands.CertificateUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRevokeCertificateCommandHandler(f, c.locks)
}

func (c *CompositionRoot) CreateProjectBalancesCommandHandler() commands.ProjectBalancesCommandHandler {
	var f commands.BalanceUoWFactory = FuncBalanceUoWFactory(func() commands.BalanceUoW {
		return c.uowFactory.Create()
	})
	return commands.NewProjectBalancesCommandHandler(f, residuerepo.NewGormResidueEventStream(c.gormDB))
}

func (c *CompositionRoot) CreateGetBalancesQueryHandler() queries.GetBalancesQueryHandler {
	return queries.NewGetBalancesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetResidueHistoryQueryHandler() queries.GetResidueHistoryQueryHandler {
	return queries.NewGetResidueHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOpenRequestsQueryHandler() queries.GetOpenRequestsQueryHandler {
	return queries.NewGetOpenRequestsQueryHandler(c.gormDB)
}

// CreateJobManager wires the background jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateProjectBalancesCommandHandler(), c.projectionBatchSize, c.logger)
}

// CreateHTTPServer wires the REST API.
func (c *CompositionRoot) CreateHTTPServer() *http.Server {
	return http.NewServer(
		c.CreateGenerateResidueCommandHandler(),
		c.CreateApplyResidueEventCommandHandler(),
		c.CreateCreateRequestCommandHandler(),
		c.CreateAdvanceLineItemCommandHandler(),
		c.CreateCreateCertificateCommandHandler(),
		c.CreateIssueCertificateCommandHandler(),
		c.CreateRevokeCertificateCommandHandler(),
		c.CreateGetBalancesQueryHandler(),
		c.CreateGetResidueHistoryQueryHandler(),
		c.CreateGetOpenRequestsQueryHandler(),
	)
}

type FuncResidueUoWFactory func() commands.ResidueUoW

func (f FuncResidueUoWFactory) Create() commands.ResidueUoW {
	return f()
}

type FuncRequestUoWFactory func() commands.RequestUoW

func (f FuncRequestUoWFactory) Create() commands.RequestUoW {
	return f()
}

type FuncAdvanceUoWFactory func() commands.AdvanceUoW

func (f FuncAdvanceUoWFactory) Create() commands.AdvanceUoW {
	return f()
}

type FuncCertificateUoWFactory func() commands.CertificateUoW

func (f FuncCertificateUoWFactory) Create() commands.CertificateUoW {
	return f()
}

type FuncBalanceUoWFactory func() commands.BalanceUoW

func (f FuncBalanceUoWFactory) Create() commands.BalanceUoW {
	return f()
}
