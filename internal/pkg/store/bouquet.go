package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store/xpgx"
)

var bouquetColumns = []string{
	"bouquet_id", "name", "private", "organization", "owner", "extras",
	"created_at", "last_modified", "theme",
	"nb_datasets", "nb_datasets_external", "nb_factors",
	"nb_factors_missing", "nb_factors_not_available", "deleted",
}

func bouquetValues(b *domain.Bouquet) []any {
	return []any{
		b.BouquetID, b.Name, b.Private, b.Organization, b.Owner, b.Extras,
		b.CreatedAt, b.LastModified, b.Theme,
		b.NbDatasets, b.NbDatasetsExternal, b.NbFactors,
		b.NbFactorsMissing, b.NbFactorsNotAvailable, b.Deleted,
	}
}

func (s *store) UpsertBouquet(ctx context.Context, b *domain.Bouquet) error {
	query := upsertQuery(tableBouquets, "bouquet_id", bouquetColumns, bouquetValues(b))
	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("upsert bouquet %s: %w", b.BouquetID, wrapErr(err))
	}
	return nil
}

func (s *store) MarkBouquetsDeleted(ctx context.Context) error {
	query := builder().Update(tableBouquets).Set("deleted", true)
	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("mark bouquets deleted: %w", wrapErr(err))
	}
	return nil
}

// ReplaceBouquetDatasets rebuilds the bouquet's catalog associations from the
// factor dataset ids, keeping only ids that exist locally. Returns the number
// of rows actually linked, which may be lower than len(datasetIDs) when some
// referenced datasets are not harvested yet.
func (s *store) ReplaceBouquetDatasets(ctx context.Context, bouquetID string, datasetIDs []string) (int, error) {
	del := builder().Delete(tableDatasetsBouquets).Where(sq.Eq{"bouquet_id": bouquetID})
	if _, err := s.pool.Execx(ctx, del); err != nil {
		return 0, fmt.Errorf("clear bouquet datasets %s: %w", bouquetID, wrapErr(err))
	}
	if len(datasetIDs) == 0 {
		return 0, nil
	}

	ins := builder().Insert(tableDatasetsBouquets).
		Columns("bouquet_id", "dataset_id").
		Select(builder().Select().
			Column(sq.Expr("?", bouquetID)).
			Column("dataset_id").
			From(tableCatalog).
			Where(sq.Eq{"dataset_id": datasetIDs}))

	tag, err := s.pool.Execx(ctx, ins)
	if err != nil {
		return 0, fmt.Errorf("link bouquet datasets %s: %w", bouquetID, wrapErr(err))
	}
	return int(tag.RowsAffected()), nil
}

func (s *store) CountBouquets(ctx context.Context, publicOnly bool) (int, error) {
	query := builder().Select("count(*)").
		From(tableBouquets).
		Where(sq.Eq{"deleted": false})
	if publicOnly {
		query = query.Where(sq.Eq{"private": false})
	}

	n, err := xpgx.Scalar[int64](ctx, s.pool, query)
	if err != nil {
		return 0, fmt.Errorf("count bouquets: %w", wrapErr(err))
	}
	return int(n), nil
}

func (s *store) SumBouquetCounters(ctx context.Context, publicOnly bool) (*BouquetCounterSums, error) {
	query := builder().Select(
		"coalesce(sum(nb_datasets), 0)::bigint as nb_datasets",
		"coalesce(sum(nb_datasets_external), 0)::bigint as nb_datasets_external",
		"coalesce(sum(nb_factors), 0)::bigint as nb_factors",
		"coalesce(sum(nb_factors_missing), 0)::bigint as nb_factors_missing",
		"coalesce(sum(nb_factors_not_available), 0)::bigint as nb_factors_not_available",
	).
		From(tableBouquets).
		Where(sq.Eq{"deleted": false})
	if publicOnly {
		query = query.Where(sq.Eq{"private": false})
	}

	sums, err := xpgx.Get[BouquetCounterSums](ctx, s.pool, query)
	if err != nil {
		return nil, fmt.Errorf("sum bouquet counters: %w", wrapErr(err))
	}
	return sums, nil
}

func (s *store) CountBouquetDatasets(ctx context.Context) (int, error) {
	query := builder().Select("count(*)").From(tableDatasetsBouquets)

	n, err := xpgx.Scalar[int64](ctx, s.pool, query)
	if err != nil {
		return 0, fmt.Errorf("count bouquet datasets: %w", wrapErr(err))
	}
	return int(n), nil
}
