package queries_test

import (
	"context"
	"testing"
	"time"

	"custody/internal/adapters/out/postgres/balancerepo"
	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/domain/model/balance"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GetBalancesQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetBalancesQueryHandler
	repo      *balancerepo.GormBalanceRepository
}

func (suite *GetBalancesQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&balancerepo.BalanceDTO{}, &balancerepo.ProjectionCheckpointDTO{})
	suite.Require().NoError(err)

	suite.handler = queries.NewGetBalancesQueryHandler(db)
	suite.repo = balancerepo.NewGormBalanceRepository(db)
}

func (suite *GetBalancesQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *GetBalancesQueryHandlerTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE balances CASCADE").Error
	suite.Require().NoError(err)
}

func (suite *GetBalancesQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	query := queries.NewGetBalancesQuery(kernel.UUID{}, kernel.UUID{})

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetBalancesQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.GetBalancesQuery{}

	result, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewGetBalancesQuery constructor")
}

func (suite *GetBalancesQueryHandlerTestSuite) TestHandle_NoFilters_ReturnsAllRows() {
	suite.seedBalance(kernel.NewUUID(), kernel.NewUUID(), "100")
	suite.seedBalance(kernel.NewUUID(), kernel.NewUUID(), "250")
	suite.seedBalance(kernel.NewUUID(), kernel.NewUUID(), "42.5")

	query := queries.NewGetBalancesQuery(kernel.UUID{}, kernel.UUID{})

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Len(result, 3)
}

func (suite *GetBalancesQueryHandlerTestSuite) TestHandle_MapsBucketAmountsAndCheckpoint() {
	owner := kernel.NewUUID()
	facility := kernel.NewUUID()

	// Generation followed by relocation: 100 leaves Generated, lands in InTransit
	row := suite.seedBalance(owner, facility, "100")
	suite.applyMovement(row, 2, residue.Generated, residue.InTransit, "100")
	suite.Require().NoError(suite.repo.Save(context.Background(), row))

	query := queries.NewGetBalancesQuery(owner, facility)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)

	resp := result[0]
	suite.Equal(owner, resp.Owner)
	suite.Equal(facility, resp.Facility)
	suite.Equal(row.WasteTypeID(), resp.WasteTypeID)
	suite.Equal(kernel.Kilogram, resp.Unit)
	suite.True(resp.Generated.IsZero(), "Generated bucket should be drained")
	suite.True(decimal.NewFromInt(100).Equal(resp.InTransit), "InTransit bucket should hold the quantity")
	suite.True(resp.Stored.IsZero())
	suite.True(resp.Treated.IsZero())
	suite.True(resp.Disposed.IsZero())
	suite.Equal(int64(2), resp.Checkpoint)
}

func (suite *GetBalancesQueryHandlerTestSuite) TestHandle_OwnerFilter_ReturnsOnlyOwnersRows() {
	owner := kernel.NewUUID()
	otherOwner := kernel.NewUUID()

	suite.seedBalance(owner, kernel.NewUUID(), "100")
	suite.seedBalance(owner, kernel.NewUUID(), "200")
	suite.seedBalance(otherOwner, kernel.NewUUID(), "300")

	query := queries.NewGetBalancesQuery(owner, kernel.UUID{})

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	for _, resp := range result {
		suite.Equal(owner, resp.Owner)
	}
}

func (suite *GetBalancesQueryHandlerTestSuite) TestHandle_FacilityFilter_ReturnsOnlyFacilityRows() {
	facility := kernel.NewUUID()

	suite.seedBalance(kernel.NewUUID(), facility, "100")
	suite.seedBalance(kernel.NewUUID(), kernel.NewUUID(), "200")

	query := queries.NewGetBalancesQuery(kernel.UUID{}, facility)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(facility, result[0].Facility)
}

func (suite *GetBalancesQueryHandlerTestSuite) TestHandle_CombinedFilters_ReturnsIntersection() {
	owner := kernel.NewUUID()
	facility := kernel.NewUUID()

	suite.seedBalance(owner, facility, "100")
	suite.seedBalance(owner, kernel.NewUUID(), "200")
	suite.seedBalance(kernel.NewUUID(), facility, "300")

	query := queries.NewGetBalancesQuery(owner, facility)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(owner, result[0].Owner)
	suite.Equal(facility, result[0].Facility)
}

func (suite *GetBalancesQueryHandlerTestSuite) TestHandle_RowsAreSortedByOwnerFacilityWasteType() {
	for range 5 {
		suite.seedBalance(kernel.NewUUID(), kernel.NewUUID(), "10")
	}

	query := queries.NewGetBalancesQuery(kernel.UUID{}, kernel.UUID{})

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 5)

	for i := range len(result) - 1 {
		prev := result[i].Owner.String() + result[i].Facility.String() + result[i].WasteTypeID.String()
		next := result[i+1].Owner.String() + result[i+1].Facility.String() + result[i+1].WasteTypeID.String()
		suite.Less(prev, next, "Rows should be sorted by owner, facility and waste type")
	}
}

func (suite *GetBalancesQueryHandlerTestSuite) TestHandle_ContextCancellation_ReturnsError() {
	suite.seedBalance(kernel.NewUUID(), kernel.NewUUID(), "100")

	query := queries.NewGetBalancesQuery(kernel.UUID{}, kernel.UUID{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := suite.handler.Handle(ctx, query)

	suite.Require().Error(err)
	suite.Nil(result)
}

// seedBalance persists a balance row holding the given generated amount.
func (suite *GetBalancesQueryHandlerTestSuite) seedBalance(
	owner, facility kernel.UUID, amount string,
) *balance.Balance {
	row, err := balance.NewBalance(owner, facility, kernel.NewUUID(), kernel.Kilogram)
	suite.Require().NoError(err)

	suite.applyMovement(row, 1, residue.StatusUnknown, residue.Generated, amount)
	suite.Require().NoError(suite.repo.Save(context.Background(), row))

	return row
}

// applyMovement projects one movement onto the row.
func (suite *GetBalancesQueryHandlerTestSuite) applyMovement(
	row *balance.Balance, seq int64, from, to residue.Status, amount string,
) {
	dec, err := decimal.NewFromString(amount)
	suite.Require().NoError(err)

	applied, err := row.Apply(balance.Movement{
		EventID: kernel.NewUUID(),
		Seq:     seq,
		From:    from,
		To:      to,
		Amount:  dec,
		Unit:    kernel.Kilogram,
	})
	suite.Require().NoError(err)
	suite.Require().True(applied)
}

func TestGetBalancesQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetBalancesQueryHandlerTestSuite))
}

// mockAggregateTracker is a no-op tracker for query tests; reads never
// register aggregates with a unit of work.
type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {
	// No-op for query tests
}
