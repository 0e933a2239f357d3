package domain

import (
	"time"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/payload"
)

// factorsPath locates a bouquet's dataset-reference list in its extras.
const factorsPath = "extras__ecospheres__datasets_properties"

// Availability statuses a factor can be annotated with.
const (
	AvailabilityMissing      = "missing"
	AvailabilityNotAvailable = "not available"
)

// Theme maps a bouquet tag to its display label; ordering is match priority.
type Theme struct {
	Tag   string
	Label string
}

type Bouquet struct {
	BouquetID    string         `db:"bouquet_id"`
	Name         string         `db:"name"`
	Private      bool           `db:"private"`
	Organization *string        `db:"organization"`
	Owner        *string        `db:"owner"`
	Extras       map[string]any `db:"extras"`
	CreatedAt    *time.Time     `db:"created_at"`
	LastModified *time.Time     `db:"last_modified"`
	Theme        *string        `db:"theme"`

	NbDatasets            int `db:"nb_datasets"`
	NbDatasetsExternal    int `db:"nb_datasets_external"`
	NbFactors             int `db:"nb_factors"`
	NbFactorsMissing      int `db:"nb_factors_missing"`
	NbFactorsNotAvailable int `db:"nb_factors_not_available"`

	Deleted bool `db:"deleted"`
}

// BouquetFromPayload flattens one topic payload and aggregates its factor
// list. The counters are computed from the payload alone: whether a
// referenced dataset actually exists locally is resolved separately, so
// NbDatasets may exceed the number of associated rows.
func BouquetFromPayload(p payload.Payload, themes []Theme) *Bouquet {
	b := &Bouquet{
		BouquetID:    payload.GetString(p, "id"),
		Name:         payload.GetString(p, "name"),
		Private:      payload.GetBool(p, "private"),
		Organization: payload.GetStringPtr(p, "organization__id"),
		Owner:        payload.GetStringPtr(p, "owner__id"),
		Extras:       jsonColumn(p, "extras"),
		CreatedAt:    payload.GetTime(p, "created_at"),
		LastModified: payload.GetTime(p, "last_modified"),
		Theme:        matchTheme(p, themes),
	}

	for _, f := range factors(p) {
		b.NbFactors++
		id, _ := f["id"].(string)
		uri, _ := f["uri"].(string)
		if id != "" {
			b.NbDatasets++
		} else if uri != "" {
			b.NbDatasetsExternal++
		}
		switch f["availability"] {
		case AvailabilityMissing:
			b.NbFactorsMissing++
		case AvailabilityNotAvailable:
			b.NbFactorsNotAvailable++
		}
	}

	return b
}

// FactorDatasetIDs lists the catalog dataset ids referenced by a bouquet's
// factors, for resolution against the local catalog.
func FactorDatasetIDs(p payload.Payload) []string {
	var ids []string
	for _, f := range factors(p) {
		if id, _ := f["id"].(string); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func factors(p payload.Payload) []map[string]any {
	var out []map[string]any
	for _, e := range payload.GetList(p, factorsPath) {
		if f, ok := e.(map[string]any); ok {
			out = append(out, f)
		} else {
			// malformed entries still count towards nb_factors
			out = append(out, map[string]any{})
		}
	}
	return out
}

func matchTheme(p payload.Payload, themes []Theme) *string {
	tags := map[string]bool{}
	for _, t := range payload.GetList(p, "tags") {
		if tag, ok := t.(string); ok {
			tags[tag] = true
		}
	}
	for _, theme := range themes {
		if tags[theme.Tag] {
			label := theme.Label
			return &label
		}
	}
	return nil
}
