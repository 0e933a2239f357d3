package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store/xpgx"
)

var datasetColumns = []string{
	"dataset_id", "title", "acronym", "slug", "description", "organization",
	"owner", "nb_resources", "frequency", "private", "created_at",
	"last_modified", "extras", "spatial", "contact_point", "temporal_coverage",
	"quality", "internal", "license", "license__title",
	"harvest__backend", "harvest__created_at", "harvest__dct_identifier",
	"harvest__domain", "harvest__last_update", "harvest__modified_at",
	"harvest__remote_id", "harvest__remote_url", "harvest__source_id",
	"harvest__uri", "harvest__created_at__year", "harvest__modified_at__year",
	"has_license", "has_harvest__created_at", "has_harvest__modified_at",
	"has_harvest__remote_id", "has_harvest__remote_url", "has_resources__total",
	"has_spatial__zones", "has_spatial__geom", "has_temporal_coverage",
	"has_frequency", "has_contact_point",
	"prefix_harvest_remote_id", "prefix_harvest_remote_url", "url_data_gouv",
	"consistent_dates", "consistent_temporal_coverage",
	"temporal_coverage__range", "spatial__coordinates",
	"description__length__bin", "description__length__bin_label",
	"quality__score", "quality__score__bin", "quality__score__bin_label",
	"contact_points__first__name", "contact_points__first__email", "deleted",
}

func datasetValues(d *domain.Dataset) []any {
	return []any{
		d.DatasetID, d.Title, d.Acronym, d.Slug, d.Description, d.Organization,
		d.Owner, d.NbResources, d.Frequency, d.Private, d.CreatedAt,
		d.LastModified, d.Extras, d.Spatial, d.ContactPoint, d.Temporal,
		d.Quality, d.Internal, d.License, d.LicenseTitle,
		d.HarvestBackend, d.HarvestCreatedAt, d.HarvestDctIdentifier,
		d.HarvestDomain, d.HarvestLastUpdate, d.HarvestModifiedAt,
		d.HarvestRemoteID, d.HarvestRemoteURL, d.HarvestSourceID,
		d.HarvestURI, d.HarvestCreatedAtYear, d.HarvestModifiedAtYear,
		d.HasLicense, d.HasHarvestCreatedAt, d.HasHarvestModifiedAt,
		d.HasHarvestRemoteID, d.HasHarvestRemoteURL, d.HasResourcesTotal,
		d.HasSpatialZones, d.HasSpatialGeom, d.HasTemporalCoverage,
		d.HasFrequency, d.HasContactPoint,
		d.PrefixHarvestRemoteID, d.PrefixHarvestRemoteURL, d.URLDataGouv,
		d.ConsistentDates, d.ConsistentTemporalCoverage,
		d.TemporalCoverageRange, d.SpatialCoordinates,
		d.DescriptionLengthBin, d.DescriptionLengthBinLabel,
		d.QualityScore, d.QualityScoreBin, d.QualityScoreBinLabel,
		d.ContactPointsFirstName, d.ContactPointsFirstEmail, d.Deleted,
	}
}

func (s *store) UpsertDataset(ctx context.Context, d *domain.Dataset) error {
	query := upsertQuery(tableCatalog, "dataset_id", datasetColumns, datasetValues(d))
	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("upsert dataset %s: %w", d.DatasetID, wrapErr(err))
	}
	return nil
}

// MarkDatasetsDeleted pre-sets deleted on the whole catalog at cycle start;
// the per-record upserts flip it back for every record actually seen.
func (s *store) MarkDatasetsDeleted(ctx context.Context) error {
	query := builder().Update(tableCatalog).Set("deleted", true)
	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("mark datasets deleted: %w", wrapErr(err))
	}
	return nil
}

func (s *store) ListOrganizationIDs(ctx context.Context) ([]string, error) {
	query := builder().Select("distinct organization").
		From(tableCatalog).
		Where(sq.Eq{"deleted": false}).
		Where("organization is not null")

	ids, err := xpgx.Scalars[string](ctx, s.pool, query)
	if err != nil {
		return nil, fmt.Errorf("list organization ids: %w", wrapErr(err))
	}
	return ids, nil
}

func (s *store) CountDatasets(ctx context.Context, opts CountDatasetsOpts) (int, error) {
	query := builder().Select("count(*)").
		From(tableCatalog).
		Where(sq.Eq{"deleted": false})

	if opts.Organization != nil {
		query = query.Where(sq.Eq{"organization": *opts.Organization})
	}
	if opts.Indicator != "" {
		query = query.Where(sq.Eq{domain.IndicatorColumn(opts.Indicator): true})
	}

	n, err := xpgx.Scalar[int64](ctx, s.pool, query)
	if err != nil {
		return 0, fmt.Errorf("count datasets: %w", wrapErr(err))
	}
	return int(n), nil
}

// AvgQualityScore averages the quality score over the non-deleted scope,
// nil when the scope is empty.
func (s *store) AvgQualityScore(ctx context.Context, organization *string) (*float64, error) {
	query := builder().Select("avg((quality__score)::numeric) as mean_score").
		From(tableCatalog).
		Where(sq.Eq{"deleted": false})

	if organization != nil {
		query = query.Where(sq.Eq{"organization": *organization})
	}

	mean, err := xpgx.Scalar[decimal.NullDecimal](ctx, s.pool, query)
	if err != nil {
		return nil, fmt.Errorf("avg quality score: %w", wrapErr(err))
	}
	if !mean.Valid {
		return nil, nil
	}
	v := mean.Decimal.InexactFloat64()
	return &v, nil
}
