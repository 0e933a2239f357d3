package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/payload"
)

// MissingPrefixMessage is stored instead of a harvest prefix when the remote
// identifier carries no usable one.
const MissingPrefixMessage = "[préfixe absent]"

const (
	spatialCoordinatesMaxLen = 500
	truncationMarker         = "…"
)

// DatasetIndicators declares the has_* presence indicators of a dataset row.
// The extra literals ("notspecified", "unknown", 0) are the catalog's own
// not-filled sentinels for those fields and must not be generalized.
var DatasetIndicators = []payload.Indicator{
	{Field: "license", Exclude: payload.ExcludeString.With("notspecified")},
	{Field: "harvest__created_at", Exclude: payload.ExcludeAbsent},
	{Field: "harvest__modified_at", Exclude: payload.ExcludeAbsent},
	{Field: "harvest__remote_id", Exclude: payload.ExcludeString},
	{Field: "harvest__remote_url", Exclude: payload.ExcludeString},
	{Field: "resources__total", Exclude: payload.Exclusion{}.With(0)},
	{Field: "spatial__zones", Exclude: payload.ExcludeList},
	{Field: "spatial__geom", Exclude: payload.ExcludeList},
	{Field: "temporal_coverage", Exclude: payload.ExcludeAbsent},
	{Field: "frequency", Exclude: payload.ExcludeString.With("unknown")},
	{Field: "contact_point", Exclude: payload.ExcludeAbsent},
}

// IndicatorColumn is the catalog column holding the indicator for field.
func IndicatorColumn(field string) string {
	return "has_" + field
}

var (
	// DescriptionLengthBins buckets description lengths, open-ended above
	// the last bound.
	DescriptionLengthBins = payload.Binner{
		Bounds:   []float64{200, 1000, 5000},
		OpenTail: true,
	}
	// QualityScoreBins buckets the data.gouv.fr quality score; scores are
	// clamped to [0, 1] upstream so the tail stays closed.
	QualityScoreBins = payload.Binner{
		Bounds: []float64{0.2, 0.4, 0.6, 0.8, 1.0},
		Format: func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) },
	}
)

// Dataset is one flat catalog row. The harvest__* columns are the allow-listed
// provenance keys; anything else in the harvest sub-object is dropped.
type Dataset struct {
	DatasetID    string         `db:"dataset_id"`
	Title        string         `db:"title"`
	Acronym      *string        `db:"acronym"`
	Slug         string         `db:"slug"`
	Description  *string        `db:"description"`
	Organization *string        `db:"organization"`
	Owner        *string        `db:"owner"`
	NbResources  int            `db:"nb_resources"`
	Frequency    *string        `db:"frequency"`
	Private      bool           `db:"private"`
	CreatedAt    *time.Time     `db:"created_at"`
	LastModified *time.Time     `db:"last_modified"`
	Extras       map[string]any `db:"extras"`
	Spatial      map[string]any `db:"spatial"`
	ContactPoint map[string]any `db:"contact_point"`
	Temporal     map[string]any `db:"temporal_coverage"`
	Quality      map[string]any `db:"quality"`
	Internal     map[string]any `db:"internal"`
	License      *string        `db:"license"`
	LicenseTitle *string        `db:"license__title"`

	HarvestBackend       *string    `db:"harvest__backend"`
	HarvestCreatedAt     *time.Time `db:"harvest__created_at"`
	HarvestDctIdentifier *string    `db:"harvest__dct_identifier"`
	HarvestDomain        *string    `db:"harvest__domain"`
	HarvestLastUpdate    *time.Time `db:"harvest__last_update"`
	HarvestModifiedAt    *time.Time `db:"harvest__modified_at"`
	HarvestRemoteID      *string    `db:"harvest__remote_id"`
	HarvestRemoteURL     *string    `db:"harvest__remote_url"`
	HarvestSourceID      *string    `db:"harvest__source_id"`
	HarvestURI           *string    `db:"harvest__uri"`

	HarvestCreatedAtYear  *int `db:"harvest__created_at__year"`
	HarvestModifiedAtYear *int `db:"harvest__modified_at__year"`

	HasLicense           bool `db:"has_license"`
	HasHarvestCreatedAt  bool `db:"has_harvest__created_at"`
	HasHarvestModifiedAt bool `db:"has_harvest__modified_at"`
	HasHarvestRemoteID   bool `db:"has_harvest__remote_id"`
	HasHarvestRemoteURL  bool `db:"has_harvest__remote_url"`
	HasResourcesTotal    bool `db:"has_resources__total"`
	HasSpatialZones      bool `db:"has_spatial__zones"`
	HasSpatialGeom       bool `db:"has_spatial__geom"`
	HasTemporalCoverage  bool `db:"has_temporal_coverage"`
	HasFrequency         bool `db:"has_frequency"`
	HasContactPoint      bool `db:"has_contact_point"`

	PrefixHarvestRemoteID  string `db:"prefix_harvest_remote_id"`
	PrefixHarvestRemoteURL string `db:"prefix_harvest_remote_url"`
	URLDataGouv            string `db:"url_data_gouv"`

	ConsistentDates            bool    `db:"consistent_dates"`
	ConsistentTemporalCoverage bool    `db:"consistent_temporal_coverage"`
	TemporalCoverageRange      *string `db:"temporal_coverage__range"`
	SpatialCoordinates         *string `db:"spatial__coordinates"`

	DescriptionLengthBin      int    `db:"description__length__bin"`
	DescriptionLengthBinLabel string `db:"description__length__bin_label"`

	QualityScore         float64 `db:"quality__score"`
	QualityScoreBin      int     `db:"quality__score__bin"`
	QualityScoreBinLabel string  `db:"quality__score__bin_label"`

	ContactPointsFirstName  *string `db:"contact_points__first__name"`
	ContactPointsFirstEmail *string `db:"contact_points__first__email"`

	Deleted bool `db:"deleted"`
}

// DatasetFromPayload flattens one catalog dataset payload into a row.
// It is total over arbitrary payload shapes: malformed or missing fields end
// up as nulls, defaults or false indicators, never as errors.
func DatasetFromPayload(p payload.Payload, sitePrefix string, licenses []License) *Dataset {
	d := &Dataset{
		DatasetID:    payload.GetString(p, "id"),
		Title:        payload.GetString(p, "title"),
		Acronym:      payload.GetStringPtr(p, "acronym"),
		Slug:         payload.GetString(p, "slug"),
		Description:  payload.GetStringPtr(p, "description"),
		Organization: payload.GetStringPtr(p, "organization__id"),
		Owner:        payload.GetStringPtr(p, "owner__id"),
		Frequency:    payload.GetStringPtr(p, "frequency"),
		Private:      payload.GetBool(p, "private"),
		CreatedAt:    payload.GetTime(p, "created_at"),
		LastModified: payload.GetTime(p, "last_modified"),
		Extras:       jsonColumn(p, "extras"),
		Spatial:      jsonColumn(p, "spatial"),
		ContactPoint: jsonColumn(p, "contact_point"),
		Temporal:     jsonColumn(p, "temporal_coverage"),
		Quality:      jsonColumn(p, "quality"),
		Internal:     jsonColumn(p, "internal"),
		License:      payload.GetStringPtr(p, "license"),
	}
	d.NbResources, _ = payload.GetInt(p, "resources__total")
	d.LicenseTitle = licenseTitle(d.License, licenses)

	d.HarvestBackend = payload.GetStringPtr(p, "harvest__backend")
	d.HarvestCreatedAt = payload.GetTime(p, "harvest__created_at")
	d.HarvestDctIdentifier = payload.GetStringPtr(p, "harvest__dct_identifier")
	d.HarvestDomain = payload.GetStringPtr(p, "harvest__domain")
	d.HarvestLastUpdate = payload.GetTime(p, "harvest__last_update")
	d.HarvestModifiedAt = payload.GetTime(p, "harvest__modified_at")
	d.HarvestRemoteID = payload.GetStringPtr(p, "harvest__remote_id")
	d.HarvestRemoteURL = payload.GetStringPtr(p, "harvest__remote_url")
	d.HarvestSourceID = payload.GetStringPtr(p, "harvest__source_id")
	d.HarvestURI = payload.GetStringPtr(p, "harvest__uri")
	d.HarvestCreatedAtYear = year(d.HarvestCreatedAt)
	d.HarvestModifiedAtYear = year(d.HarvestModifiedAt)

	ind := payload.Indicators(p, DatasetIndicators)
	d.HasLicense = ind["has_license"]
	d.HasHarvestCreatedAt = ind["has_harvest__created_at"]
	d.HasHarvestModifiedAt = ind["has_harvest__modified_at"]
	d.HasHarvestRemoteID = ind["has_harvest__remote_id"]
	d.HasHarvestRemoteURL = ind["has_harvest__remote_url"]
	d.HasResourcesTotal = ind["has_resources__total"]
	d.HasSpatialZones = ind["has_spatial__zones"]
	d.HasSpatialGeom = ind["has_spatial__geom"]
	d.HasTemporalCoverage = ind["has_temporal_coverage"]
	d.HasFrequency = ind["has_frequency"]
	d.HasContactPoint = ind["has_contact_point"]

	d.PrefixHarvestRemoteID = prefixOrFallback(p, "remote_id")
	d.PrefixHarvestRemoteURL = prefixOrFallback(p, "remote_url")
	d.URLDataGouv = urlDataGouv(sitePrefix, d.DatasetID)

	d.ConsistentDates = consistentDates(p)
	d.ConsistentTemporalCoverage = consistentTemporalCoverage(p)
	d.TemporalCoverageRange = temporalCoverageRange(p)
	d.SpatialCoordinates = spatialCoordinates(p)

	description := ""
	if d.Description != nil {
		description = *d.Description
	}
	d.DescriptionLengthBin, d.DescriptionLengthBinLabel =
		DescriptionLengthBins.Bin(float64(utf8.RuneCountInString(description)))

	d.QualityScore, _ = payload.GetFloat(p, "quality__score")
	d.QualityScoreBin, d.QualityScoreBinLabel = QualityScoreBins.Bin(d.QualityScore)

	if contacts := payload.GetList(p, "contact_points"); len(contacts) > 0 {
		if first, ok := contacts[0].(map[string]any); ok {
			d.ContactPointsFirstName = payload.GetStringPtr(first, "name")
			d.ContactPointsFirstEmail = payload.GetStringPtr(first, "email")
		}
	}

	return d
}

// Indicator returns the row's indicator value for a declared field.
func (d *Dataset) Indicator(field string) bool {
	switch field {
	case "license":
		return d.HasLicense
	case "harvest__created_at":
		return d.HasHarvestCreatedAt
	case "harvest__modified_at":
		return d.HasHarvestModifiedAt
	case "harvest__remote_id":
		return d.HasHarvestRemoteID
	case "harvest__remote_url":
		return d.HasHarvestRemoteURL
	case "resources__total":
		return d.HasResourcesTotal
	case "spatial__zones":
		return d.HasSpatialZones
	case "spatial__geom":
		return d.HasSpatialGeom
	case "temporal_coverage":
		return d.HasTemporalCoverage
	case "frequency":
		return d.HasFrequency
	case "contact_point":
		return d.HasContactPoint
	}
	return false
}

var prefixPattern = regexp.MustCompile(`^(.*/)[^/]+$`)

// prefixOrFallback keeps everything up to and including the last slash of the
// harvest value at key, or the placeholder when there is nothing to extract.
func prefixOrFallback(p payload.Payload, key string) string {
	v, ok := payload.Resolve(p, "harvest"+payload.Separator+key)
	if !ok {
		return MissingPrefixMessage
	}
	s, ok := v.(string)
	if !ok {
		return MissingPrefixMessage
	}
	if m := prefixPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return MissingPrefixMessage
}

func urlDataGouv(sitePrefix, id string) string {
	url := fmt.Sprintf("https://%s.data.gouv.fr/fr/datasets/", sitePrefix)
	return fmt.Sprintf(`<a href="%s%s" target="_blank">%s</a>`, url, id, id)
}

// consistentDates compares the raw ISO-8601 strings: lexicographic order is
// chronological order for this format and stays total over malformed input.
func consistentDates(p payload.Payload) bool {
	created := payload.GetString(p, "created_at")
	modified := payload.GetString(p, "last_modified")

	if created == "" {
		return modified == ""
	}
	if modified == "" {
		return true
	}
	return modified >= created
}

func consistentTemporalCoverage(p payload.Payload) bool {
	if _, ok := payload.Resolve(p, "temporal_coverage"); !ok {
		return true
	}
	start := payload.GetString(p, "temporal_coverage__start")
	end := payload.GetString(p, "temporal_coverage__end")

	if start == "" {
		return end == ""
	}
	if end == "" {
		return false
	}
	return end > start
}

func temporalCoverageRange(p payload.Payload) *string {
	if _, ok := payload.Resolve(p, "temporal_coverage"); !ok {
		return nil
	}
	start := payload.GetString(p, "temporal_coverage__start")
	end := payload.GetString(p, "temporal_coverage__end")
	if start == "" {
		start = "?"
	}
	if end == "" {
		end = "?"
	}
	r := fmt.Sprintf("%s - %s", start, end)
	return &r
}

// spatialCoordinates renders the geometry's coordinate list literally,
// truncated so dashboards don't choke on multi-megabyte polygons.
func spatialCoordinates(p payload.Payload) *string {
	coords := payload.GetList(p, "spatial__geom__coordinates")
	if len(coords) == 0 {
		return nil
	}
	raw, err := sonic.Marshal(coords)
	if err != nil {
		return nil
	}
	s := truncate(string(raw), spatialCoordinatesMaxLen)
	return &s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-utf8.RuneCountInString(truncationMarker)]) + truncationMarker
}

// jsonColumn null-coalesces a JSON sub-object to {} the way the legacy schema
// stored those columns.
func jsonColumn(p payload.Payload, key string) map[string]any {
	if m := payload.GetMap(p, key); m != nil {
		return m
	}
	return map[string]any{}
}

func licenseTitle(id *string, licenses []License) *string {
	if id == nil {
		return nil
	}
	for _, l := range licenses {
		if l.ID == *id {
			title := l.Title
			return &title
		}
	}
	return nil
}

func year(t *time.Time) *int {
	if t == nil {
		return nil
	}
	y := t.Year()
	return &y
}
