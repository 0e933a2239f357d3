package domain

import (
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/payload"
)

// servicePublicBadges must all be present for an organization to count as a
// public service.
var servicePublicBadges = []string{"public-service", "certified"}

type Organization struct {
	OrganizationID string  `db:"organization_id"`
	Name           string  `db:"name"`
	Acronym        *string `db:"acronym"`
	ServicePublic  bool    `db:"service_public"`
}

// OrganizationFromPayload flattens one organization payload. Badge entries
// come as {"kind": ...} objects from the API, bare strings are tolerated for
// older payload shapes.
func OrganizationFromPayload(p payload.Payload) *Organization {
	kinds := map[string]bool{}
	for _, b := range payload.GetList(p, "badges") {
		switch badge := b.(type) {
		case map[string]any:
			if kind, ok := badge["kind"].(string); ok {
				kinds[kind] = true
			}
		case string:
			kinds[badge] = true
		}
	}

	servicePublic := true
	for _, required := range servicePublicBadges {
		if !kinds[required] {
			servicePublic = false
			break
		}
	}

	return &Organization{
		OrganizationID: payload.GetString(p, "id"),
		Name:           payload.GetString(p, "name"),
		Acronym:        payload.GetStringPtr(p, "acronym"),
		ServicePublic:  servicePublic,
	}
}
