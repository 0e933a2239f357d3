package domain

import (
	"time"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/payload"
)

// ResourceIndicators declares the __exists indicators of a resource row.
// schema uses the object rule: a schema whose name/url/version are all null
// does not count as existing, unlike the plain string rules next to it.
var ResourceIndicators = []payload.Indicator{
	{Field: "title", Exclude: payload.ExcludeString},
	{Field: "description", Exclude: payload.ExcludeString},
	{Field: "type", Exclude: payload.ExcludeString},
	{Field: "format", Exclude: payload.ExcludeString},
	{Field: "schema", Exclude: payload.ExcludeObject},
}

type Resource struct {
	ResourceID   string         `db:"resource_id"`
	DatasetID    string         `db:"dataset_id"`
	Title        *string        `db:"title"`
	Description  *string        `db:"description"`
	Type         *string        `db:"type"`
	Format       *string        `db:"format"`
	URL          *string        `db:"url"`
	Latest       *string        `db:"latest"`
	Checksum     map[string]any `db:"checksum"`
	Filesize     *int           `db:"filesize"`
	Mime         *string        `db:"mime"`
	CreatedAt    *time.Time     `db:"created_at"`
	LastModified *time.Time     `db:"last_modified"`
	Harvest      map[string]any `db:"harvest"`
	Internal     map[string]any `db:"internal"`
	Schema       map[string]any `db:"schema"`

	TitleExists       bool    `db:"title__exists"`
	DescriptionExists bool    `db:"description__exists"`
	TypeExists        bool    `db:"type__exists"`
	FormatExists      bool    `db:"format__exists"`
	SchemaExists      bool    `db:"schema__exists"`
	SchemaName        *string `db:"schema__name"`

	Available bool `db:"available"`
}

// ResourceFromPayload flattens one resource payload, attached to its owning
// dataset.
func ResourceFromPayload(p payload.Payload, datasetID string) *Resource {
	r := &Resource{
		ResourceID:   payload.GetString(p, "id"),
		DatasetID:    datasetID,
		Title:        payload.GetStringPtr(p, "title"),
		Description:  payload.GetStringPtr(p, "description"),
		Type:         payload.GetStringPtr(p, "type"),
		Format:       payload.GetStringPtr(p, "format"),
		URL:          payload.GetStringPtr(p, "url"),
		Latest:       payload.GetStringPtr(p, "latest"),
		Checksum:     jsonColumn(p, "checksum"),
		Filesize:     payload.GetIntPtr(p, "filesize"),
		Mime:         payload.GetStringPtr(p, "mime"),
		CreatedAt:    payload.GetTime(p, "created_at"),
		LastModified: payload.GetTime(p, "last_modified"),
		Harvest:      jsonColumn(p, "harvest"),
		Internal:     jsonColumn(p, "internal"),
		Schema:       jsonColumn(p, "schema"),
		SchemaName:   payload.GetStringPtr(p, "schema__name"),
		Available:    payload.GetBool(p, "extras__check:available"),
	}

	ind := payload.Indicators(p, ResourceIndicators)
	r.TitleExists = ind["has_title"]
	r.DescriptionExists = ind["has_description"]
	r.TypeExists = ind["has_type"]
	r.FormatExists = ind["has_format"]
	r.SchemaExists = ind["has_schema"]

	return r
}
