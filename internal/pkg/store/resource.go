package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
)

var resourceColumns = []string{
	"resource_id", "dataset_id", "title", "description", "type", "format",
	"url", "latest", "checksum", "filesize", "mime", "created_at",
	"last_modified", "harvest", "internal", "schema",
	"title__exists", "description__exists", "type__exists", "format__exists",
	"schema__exists", "schema__name", "available",
}

func resourceValues(r *domain.Resource) []any {
	return []any{
		r.ResourceID, r.DatasetID, r.Title, r.Description, r.Type, r.Format,
		r.URL, r.Latest, r.Checksum, r.Filesize, r.Mime, r.CreatedAt,
		r.LastModified, r.Harvest, r.Internal, r.Schema,
		r.TitleExists, r.DescriptionExists, r.TypeExists, r.FormatExists,
		r.SchemaExists, r.SchemaName, r.Available,
	}
}

func (s *store) UpsertResource(ctx context.Context, r *domain.Resource) error {
	query := upsertQuery(tableResources, "resource_id", resourceColumns, resourceValues(r))
	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("upsert resource %s: %w", r.ResourceID, wrapErr(err))
	}
	return nil
}

// DeleteDatasetResources clears a dataset's resources before re-upserting the
// current sweep, so resources dropped upstream don't linger.
func (s *store) DeleteDatasetResources(ctx context.Context, datasetID string) error {
	query := builder().Delete(tableResources).Where(sq.Eq{"dataset_id": datasetID})
	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("delete resources of %s: %w", datasetID, wrapErr(err))
	}
	return nil
}
