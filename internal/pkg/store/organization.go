package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/constants"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store/xpgx"
)

var organizationColumns = []string{
	"organization_id", "name", "acronym", "service_public",
}

func (s *store) UpsertOrganization(ctx context.Context, o *domain.Organization) error {
	query := upsertQuery(tableOrganizations, "organization_id", organizationColumns,
		[]any{o.OrganizationID, o.Name, o.Acronym, o.ServicePublic})
	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("upsert organization %s: %w", o.OrganizationID, wrapErr(err))
	}
	return nil
}

func (s *store) HasOrganization(ctx context.Context, id string) (bool, error) {
	query := builder().Select("1").
		From(tableOrganizations).
		Where(sq.Eq{"organization_id": id})

	_, err := xpgx.Scalar[int](ctx, s.pool, query)
	if err != nil {
		if errors.Is(wrapErr(err), constants.ErrDBNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("has organization %s: %w", id, err)
	}
	return true, nil
}
