package store

import (
	"context"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

// CountDatasetsOpts filters the non-deleted catalog count.
type CountDatasetsOpts struct {
	// Organization scopes the count to one organization id.
	Organization *string
	// Indicator keeps only rows whose has_<Indicator> column is true.
	Indicator string
}

// BouquetCounterSums aggregates the counter columns over a bouquet scope.
type BouquetCounterSums struct {
	NbDatasets            int `db:"nb_datasets"`
	NbDatasetsExternal    int `db:"nb_datasets_external"`
	NbFactors             int `db:"nb_factors"`
	NbFactorsMissing      int `db:"nb_factors_missing"`
	NbFactorsNotAvailable int `db:"nb_factors_not_available"`
}

type Store interface {
	UpsertDataset(ctx context.Context, d *domain.Dataset) error
	MarkDatasetsDeleted(ctx context.Context) error
	ListOrganizationIDs(ctx context.Context) ([]string, error)
	CountDatasets(ctx context.Context, opts CountDatasetsOpts) (int, error)
	AvgQualityScore(ctx context.Context, organization *string) (*float64, error)

	UpsertResource(ctx context.Context, r *domain.Resource) error
	DeleteDatasetResources(ctx context.Context, datasetID string) error

	UpsertOrganization(ctx context.Context, o *domain.Organization) error
	HasOrganization(ctx context.Context, id string) (bool, error)

	UpsertBouquet(ctx context.Context, b *domain.Bouquet) error
	MarkBouquetsDeleted(ctx context.Context) error
	ReplaceBouquetDatasets(ctx context.Context, bouquetID string, datasetIDs []string) (int, error)
	CountBouquets(ctx context.Context, publicOnly bool) (int, error)
	SumBouquetCounters(ctx context.Context, publicOnly bool) (*BouquetCounterSums, error)
	CountBouquetDatasets(ctx context.Context) (int, error)

	UpsertMetric(ctx context.Context, m *domain.Metric) error
}

type store struct {
	pool *Pool
}

func NewStore(pool *Pool) Store {
	return &store{pool}
}
