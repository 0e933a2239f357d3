package metrics

import (
	"context"
	"sort"
	"time"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/logger"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store"
)

// Service snapshots the catalog into the time-series table. Measurement
// names are stable identifiers the dashboards query by; renaming one breaks
// their history.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Compute writes every measurement for the given date, both per-organization
// and catalog-wide. Running it twice for the same date overwrites the first
// snapshot.
func (s *Service) Compute(ctx context.Context, at time.Time) error {
	ctx = logger.ToContext(ctx, "metrics_date", at.Format(time.DateOnly))

	add := func(measurement string, organization *string, value *float64) error {
		return s.store.UpsertMetric(ctx, &domain.Metric{
			Date:         at,
			Measurement:  measurement,
			Organization: organization,
			Value:        value,
		})
	}
	count := func(measurement string, organization *string, n int) error {
		v := float64(n)
		return add(measurement, organization, &v)
	}

	orgs, err := s.store.ListOrganizationIDs(ctx)
	if err != nil {
		return err
	}
	if err := count("nb_organizations", nil, len(orgs)); err != nil {
		return err
	}

	// per-organization counts, accumulated into the catalog-wide totals
	totals := map[string]int{}
	for _, org := range orgs {
		org := org
		nb, err := s.store.CountDatasets(ctx, store.CountDatasetsOpts{Organization: &org})
		if err != nil {
			return err
		}
		if err := count("nb_datasets", &org, nb); err != nil {
			return err
		}
		totals["nb_datasets"] += nb

		avg, err := s.store.AvgQualityScore(ctx, &org)
		if err != nil {
			return err
		}
		if err := add("avg_quality__score", &org, avg); err != nil {
			return err
		}

		for _, ind := range domain.DatasetIndicators {
			nb, err := s.store.CountDatasets(ctx, store.CountDatasetsOpts{Organization: &org, Indicator: ind.Field})
			if err != nil {
				return err
			}
			measurement := "nb_" + ind.Field
			if err := count(measurement, &org, nb); err != nil {
				return err
			}
			totals[measurement] += nb
		}
	}

	measurements := make([]string, 0, len(totals))
	for m := range totals {
		measurements = append(measurements, m)
	}
	sort.Strings(measurements)
	for _, m := range measurements {
		if err := count(m, nil, totals[m]); err != nil {
			return err
		}
	}

	avg, err := s.store.AvgQualityScore(ctx, nil)
	if err != nil {
		return err
	}
	if err := add("avg_quality__score", nil, avg); err != nil {
		return err
	}

	linked, err := s.store.CountBouquetDatasets(ctx)
	if err != nil {
		return err
	}
	if err := count("nb_datasets_from_universe_in_bouquets", nil, linked); err != nil {
		return err
	}

	all, err := s.store.CountBouquets(ctx, false)
	if err != nil {
		return err
	}
	if err := count("nb_bouquets", nil, all); err != nil {
		return err
	}
	public, err := s.store.CountBouquets(ctx, true)
	if err != nil {
		return err
	}
	if err := count("nb_bouquets_public", nil, public); err != nil {
		return err
	}

	if err := s.bouquetSums(ctx, false, "", count); err != nil {
		return err
	}
	if err := s.bouquetSums(ctx, true, "_public", count); err != nil {
		return err
	}

	logger.Infof(ctx, "metrics computed for %d organizations", len(orgs))
	return nil
}

func (s *Service) bouquetSums(ctx context.Context, publicOnly bool, suffix string, count func(string, *string, int) error) error {
	sums, err := s.store.SumBouquetCounters(ctx, publicOnly)
	if err != nil {
		return err
	}
	for _, sum := range []struct {
		measurement string
		value       int
	}{
		{"nb_datasets_in_bouquets", sums.NbDatasets},
		{"nb_datasets_external_in_bouquets", sums.NbDatasetsExternal},
		{"nb_factors_in_bouquets", sums.NbFactors},
		{"nb_factors_missing_in_bouquets", sums.NbFactorsMissing},
		{"nb_factors_not_available_in_bouquets", sums.NbFactorsNotAvailable},
	} {
		if err := count(sum.measurement+suffix, nil, sum.value); err != nil {
			return err
		}
	}
	return nil
}
