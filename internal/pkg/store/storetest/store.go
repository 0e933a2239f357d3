// Package storetest provides an in-memory Store for exercising load cycles
// and metric aggregation without a database.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store"
)

type Store struct {
	mu sync.Mutex

	Datasets      map[string]*domain.Dataset
	Resources     map[string]*domain.Resource
	Organizations map[string]*domain.Organization
	Bouquets      map[string]*domain.Bouquet
	// Links maps bouquet id to the dataset ids actually associated.
	Links map[string][]string
	// Metrics is keyed by MetricKey.
	Metrics map[string]*domain.Metric
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		Datasets:      map[string]*domain.Dataset{},
		Resources:     map[string]*domain.Resource{},
		Organizations: map[string]*domain.Organization{},
		Bouquets:      map[string]*domain.Bouquet{},
		Links:         map[string][]string{},
		Metrics:       map[string]*domain.Metric{},
	}
}

// MetricKey is the natural key of the metrics time series.
func MetricKey(date time.Time, measurement string, organization *string) string {
	org := ""
	if organization != nil {
		org = *organization
	}
	return fmt.Sprintf("%s|%s|%s", date.Format("2006-01-02"), measurement, org)
}

func (s *Store) UpsertDataset(_ context.Context, d *domain.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *d
	s.Datasets[d.DatasetID] = &row
	return nil
}

func (s *Store) MarkDatasetsDeleted(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.Datasets {
		d.Deleted = true
	}
	return nil
}

func (s *Store) ListOrganizationIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var ids []string
	for _, d := range s.Datasets {
		if d.Deleted || d.Organization == nil || seen[*d.Organization] {
			continue
		}
		seen[*d.Organization] = true
		ids = append(ids, *d.Organization)
	}
	return ids, nil
}

func (s *Store) CountDatasets(_ context.Context, opts store.CountDatasetsOpts) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.Datasets {
		if s.matches(d, opts) {
			n++
		}
	}
	return n, nil
}

func (s *Store) matches(d *domain.Dataset, opts store.CountDatasetsOpts) bool {
	if d.Deleted {
		return false
	}
	if opts.Organization != nil &&
		(d.Organization == nil || *d.Organization != *opts.Organization) {
		return false
	}
	if opts.Indicator != "" && !d.Indicator(opts.Indicator) {
		return false
	}
	return true
}

func (s *Store) AvgQualityScore(_ context.Context, organization *string) (*float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, n := 0.0, 0
	for _, d := range s.Datasets {
		if !s.matches(d, store.CountDatasetsOpts{Organization: organization}) {
			continue
		}
		sum += d.QualityScore
		n++
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / float64(n)
	return &avg, nil
}

func (s *Store) UpsertResource(_ context.Context, r *domain.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *r
	s.Resources[r.ResourceID] = &row
	return nil
}

func (s *Store) DeleteDatasetResources(_ context.Context, datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.Resources {
		if r.DatasetID == datasetID {
			delete(s.Resources, id)
		}
	}
	return nil
}

func (s *Store) UpsertOrganization(_ context.Context, o *domain.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *o
	s.Organizations[o.OrganizationID] = &row
	return nil
}

func (s *Store) HasOrganization(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Organizations[id]
	return ok, nil
}

func (s *Store) UpsertBouquet(_ context.Context, b *domain.Bouquet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *b
	s.Bouquets[b.BouquetID] = &row
	return nil
}

func (s *Store) MarkBouquetsDeleted(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.Bouquets {
		b.Deleted = true
	}
	return nil
}

func (s *Store) ReplaceBouquetDatasets(_ context.Context, bouquetID string, datasetIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var linked []string
	for _, id := range datasetIDs {
		if _, ok := s.Datasets[id]; ok {
			linked = append(linked, id)
		}
	}
	s.Links[bouquetID] = linked
	return len(linked), nil
}

func (s *Store) CountBouquets(_ context.Context, publicOnly bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.Bouquets {
		if b.Deleted || (publicOnly && b.Private) {
			continue
		}
		n++
	}
	return n, nil
}

func (s *Store) SumBouquetCounters(_ context.Context, publicOnly bool) (*store.BouquetCounterSums, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sums := &store.BouquetCounterSums{}
	for _, b := range s.Bouquets {
		if b.Deleted || (publicOnly && b.Private) {
			continue
		}
		sums.NbDatasets += b.NbDatasets
		sums.NbDatasetsExternal += b.NbDatasetsExternal
		sums.NbFactors += b.NbFactors
		sums.NbFactorsMissing += b.NbFactorsMissing
		sums.NbFactorsNotAvailable += b.NbFactorsNotAvailable
	}
	return sums, nil
}

func (s *Store) CountBouquetDatasets(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ids := range s.Links {
		n += len(ids)
	}
	return n, nil
}

func (s *Store) UpsertMetric(_ context.Context, m *domain.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *m
	s.Metrics[MetricKey(m.Date, m.Measurement, m.Organization)] = &row
	return nil
}
