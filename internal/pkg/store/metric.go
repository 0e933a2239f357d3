package store

import (
	"context"
	"fmt"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
)

var metricColumns = []string{"date", "measurement", "organization", "value"}

// UpsertMetric overwrites the measurement's value for its (date, measurement,
// organization) key; the conflict target matches the expression index that
// folds the null organization of global measurements into ''.
func (s *store) UpsertMetric(ctx context.Context, m *domain.Metric) error {
	query := upsertQuery(
		tableMetrics,
		"date, measurement, (coalesce(organization, ''))",
		metricColumns,
		[]any{m.Date, m.Measurement, m.Organization, m.Value},
	)
	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("upsert metric %s: %w", m.Measurement, wrapErr(err))
	}
	return nil
}
