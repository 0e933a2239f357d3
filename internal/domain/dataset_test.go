package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/payload"
)

var testLicenses = []License{
	{ID: "lov2", Title: "Licence Ouverte / Open Licence version 2.0"},
	{ID: "notspecified", Title: "License Not Specified"},
}

func datasetPayload() payload.Payload {
	return payload.Payload{
		"id":          "5cc9be",
		"title":       "Éoliennes de la Marne",
		"acronym":     nil,
		"slug":        "eoliennes-marne",
		"description": strings.Repeat("a", 250),
		"organization": map[string]any{
			"id":   "org-1",
			"name": "DREAL Grand Est",
		},
		"owner":         nil,
		"resources":     map[string]any{"total": float64(3), "href": "https://demo.data.gouv.fr/api/2/datasets/5cc9be/resources/"},
		"frequency":     "annual",
		"private":       false,
		"created_at":    "2020-01-02T10:00:00+00:00",
		"last_modified": "2021-06-01T10:00:00+00:00",
		"license":       "lov2",
		"harvest": map[string]any{
			"backend":     "DCAT",
			"created_at":  "2019-05-06T00:00:00+00:00",
			"modified_at": "2022-01-01T00:00:00+00:00",
			"remote_id":   "https://catalog.example.org/datasets/abc",
			"remote_url":  "https://catalog.example.org/page/abc",
			"uri":         "https://catalog.example.org/datasets/abc",
			"unknown_key": "dropped",
		},
		"temporal_coverage": map[string]any{"start": "2019-01-01", "end": "2021-12-31"},
		"spatial": map[string]any{
			"zones": []any{"fr:departement:51"},
			"geom": map[string]any{
				"type":        "Polygon",
				"coordinates": []any{[]any{float64(4.02), float64(48.9)}},
			},
		},
		"quality":        map[string]any{"score": float64(0.8)},
		"contact_point":  map[string]any{"name": "SIG"},
		"contact_points": []any{map[string]any{"name": "SIG", "email": "sig@example.org"}},
		"extras":         map[string]any{},
		"internal":       map[string]any{"created_at_internal": "2020-01-02"},
	}
}

func TestDatasetFromPayloadBasics(t *testing.T) {
	d := DatasetFromPayload(datasetPayload(), "demo", testLicenses)

	assert.Equal(t, "5cc9be", d.DatasetID)
	assert.Equal(t, "Éoliennes de la Marne", d.Title)
	require.NotNil(t, d.Organization)
	assert.Equal(t, "org-1", *d.Organization)
	assert.Nil(t, d.Owner)
	assert.Equal(t, 3, d.NbResources)
	require.NotNil(t, d.LicenseTitle)
	assert.Equal(t, "Licence Ouverte / Open Licence version 2.0", *d.LicenseTitle)
	assert.False(t, d.Deleted)
}

func TestDatasetIndicatorValues(t *testing.T) {
	d := DatasetFromPayload(datasetPayload(), "demo", testLicenses)

	assert.True(t, d.HasLicense)
	assert.True(t, d.HasHarvestCreatedAt)
	assert.True(t, d.HasHarvestModifiedAt)
	assert.True(t, d.HasHarvestRemoteID)
	assert.True(t, d.HasHarvestRemoteURL)
	assert.True(t, d.HasResourcesTotal)
	assert.True(t, d.HasSpatialZones)
	assert.True(t, d.HasSpatialGeom)
	assert.True(t, d.HasTemporalCoverage)
	assert.True(t, d.HasFrequency)
	assert.True(t, d.HasContactPoint)
}

func TestDatasetIndicatorSentinels(t *testing.T) {
	p := datasetPayload()
	p["license"] = "notspecified"
	p["frequency"] = "unknown"
	p["resources"] = map[string]any{"total": float64(0)}
	d := DatasetFromPayload(p, "demo", testLicenses)

	assert.False(t, d.HasLicense)
	assert.False(t, d.HasFrequency)
	assert.False(t, d.HasResourcesTotal)
}

func TestDatasetEmptyPayload(t *testing.T) {
	d := DatasetFromPayload(payload.Payload{}, "demo", nil)

	assert.Equal(t, "", d.DatasetID)
	assert.Nil(t, d.Organization)
	assert.Nil(t, d.License)
	assert.Nil(t, d.LicenseTitle)
	assert.Equal(t, 0, d.NbResources)
	assert.False(t, d.HasLicense)
	assert.Equal(t, MissingPrefixMessage, d.PrefixHarvestRemoteID)
	assert.Equal(t, MissingPrefixMessage, d.PrefixHarvestRemoteURL)
	assert.True(t, d.ConsistentDates)
	assert.True(t, d.ConsistentTemporalCoverage)
	assert.Nil(t, d.TemporalCoverageRange)
	assert.Nil(t, d.SpatialCoordinates)
	assert.NotNil(t, d.Extras)
	assert.Equal(t, float64(0), d.QualityScore)
	assert.Equal(t, 0, d.QualityScoreBin)
	assert.Equal(t, "less than 0.2", d.QualityScoreBinLabel)
}

func TestDatasetPrefixExtraction(t *testing.T) {
	p := datasetPayload()
	d := DatasetFromPayload(p, "demo", testLicenses)
	assert.Equal(t, "https://catalog.example.org/datasets/", d.PrefixHarvestRemoteID)
	assert.Equal(t, "https://catalog.example.org/page/", d.PrefixHarvestRemoteURL)

	// no slash in value: nothing to extract
	p["harvest"] = map[string]any{"remote_id": "abc"}
	d = DatasetFromPayload(p, "demo", testLicenses)
	assert.Equal(t, MissingPrefixMessage, d.PrefixHarvestRemoteID)

	// null harvest sub-object
	p["harvest"] = nil
	d = DatasetFromPayload(p, "demo", testLicenses)
	assert.Equal(t, MissingPrefixMessage, d.PrefixHarvestRemoteID)
	assert.Equal(t, MissingPrefixMessage, d.PrefixHarvestRemoteURL)
}

func TestDatasetURLDataGouv(t *testing.T) {
	d := DatasetFromPayload(datasetPayload(), "demo", testLicenses)
	assert.Equal(t,
		`<a href="https://demo.data.gouv.fr/fr/datasets/5cc9be" target="_blank">5cc9be</a>`,
		d.URLDataGouv)
}

func TestDatasetConsistentDates(t *testing.T) {
	cases := []struct {
		created, modified any
		want              bool
	}{
		{nil, nil, true},
		{"2020", nil, true},
		{nil, "2020", false},
		{"2020", "2019", false},
		{"2020", "2020", true},
		{"2019", "2020", true},
	}
	for _, c := range cases {
		p := payload.Payload{"created_at": c.created, "last_modified": c.modified}
		d := DatasetFromPayload(p, "demo", nil)
		assert.Equal(t, c.want, d.ConsistentDates,
			fmt.Sprintf("created=%v modified=%v", c.created, c.modified))
	}
}

func TestDatasetConsistentTemporalCoverage(t *testing.T) {
	cases := []struct {
		coverage any
		want     bool
	}{
		{nil, true},
		{map[string]any{}, true},
		{map[string]any{"end": "2020"}, false},
		{map[string]any{"start": "2019"}, false},
		{map[string]any{"start": "2019", "end": "2020"}, true},
		{map[string]any{"start": "2020", "end": "2020"}, false},
		{map[string]any{"start": "2020", "end": "2019"}, false},
	}
	for i, c := range cases {
		p := payload.Payload{"temporal_coverage": c.coverage}
		d := DatasetFromPayload(p, "demo", nil)
		assert.Equal(t, c.want, d.ConsistentTemporalCoverage, fmt.Sprintf("case %d", i))
	}
}

func TestDatasetTemporalCoverageRange(t *testing.T) {
	p := payload.Payload{"temporal_coverage": map[string]any{"start": "2019-01-01"}}
	d := DatasetFromPayload(p, "demo", nil)
	require.NotNil(t, d.TemporalCoverageRange)
	assert.Equal(t, "2019-01-01 - ?", *d.TemporalCoverageRange)

	p["temporal_coverage"] = map[string]any{"end": "2021-12-31"}
	d = DatasetFromPayload(p, "demo", nil)
	require.NotNil(t, d.TemporalCoverageRange)
	assert.Equal(t, "? - 2021-12-31", *d.TemporalCoverageRange)
}

func TestDatasetSpatialCoordinatesTruncation(t *testing.T) {
	d := DatasetFromPayload(datasetPayload(), "demo", testLicenses)
	require.NotNil(t, d.SpatialCoordinates)
	assert.Equal(t, "[[4.02,48.9]]", *d.SpatialCoordinates)

	// a polygon whose rendering exceeds the cap
	big := make([]any, 0, 200)
	for i := 0; i < 200; i++ {
		big = append(big, []any{float64(i), float64(i)})
	}
	p := datasetPayload()
	p["spatial"] = map[string]any{"geom": map[string]any{"coordinates": big}}
	d = DatasetFromPayload(p, "demo", testLicenses)
	require.NotNil(t, d.SpatialCoordinates)
	assert.LessOrEqual(t, len([]rune(*d.SpatialCoordinates)), 500)
	assert.True(t, strings.HasSuffix(*d.SpatialCoordinates, "…"))

	// empty coordinate list
	p["spatial"] = map[string]any{"geom": map[string]any{"coordinates": []any{}}}
	d = DatasetFromPayload(p, "demo", testLicenses)
	assert.Nil(t, d.SpatialCoordinates)
}

func TestDatasetDescriptionLengthBin(t *testing.T) {
	d := DatasetFromPayload(datasetPayload(), "demo", testLicenses)
	assert.Equal(t, 1, d.DescriptionLengthBin)
	assert.Equal(t, "less than 1000", d.DescriptionLengthBinLabel)

	p := datasetPayload()
	p["description"] = nil
	d = DatasetFromPayload(p, "demo", testLicenses)
	assert.Equal(t, 0, d.DescriptionLengthBin)
	assert.Equal(t, "less than 200", d.DescriptionLengthBinLabel)

	p["description"] = strings.Repeat("x", 5000)
	d = DatasetFromPayload(p, "demo", testLicenses)
	assert.Equal(t, 3, d.DescriptionLengthBin)
	assert.Equal(t, "at least 5000", d.DescriptionLengthBinLabel)
}

func TestDatasetQualityScoreBin(t *testing.T) {
	d := DatasetFromPayload(datasetPayload(), "demo", testLicenses)
	assert.Equal(t, float64(0.8), d.QualityScore)
	assert.Equal(t, 4, d.QualityScoreBin)
	assert.Equal(t, "less than 1.0", d.QualityScoreBinLabel)

	p := datasetPayload()
	p["quality"] = map[string]any{"score": float64(1)}
	d = DatasetFromPayload(p, "demo", testLicenses)
	assert.Equal(t, 4, d.QualityScoreBin)
	assert.Equal(t, "1.0", d.QualityScoreBinLabel)
}

func TestDatasetHarvestColumns(t *testing.T) {
	d := DatasetFromPayload(datasetPayload(), "demo", testLicenses)

	require.NotNil(t, d.HarvestBackend)
	assert.Equal(t, "DCAT", *d.HarvestBackend)
	require.NotNil(t, d.HarvestCreatedAtYear)
	assert.Equal(t, 2019, *d.HarvestCreatedAtYear)
	require.NotNil(t, d.HarvestModifiedAtYear)
	assert.Equal(t, 2022, *d.HarvestModifiedAtYear)
	assert.Nil(t, d.HarvestDctIdentifier)
	assert.Nil(t, d.HarvestLastUpdate)
}

func TestDatasetContactPoints(t *testing.T) {
	d := DatasetFromPayload(datasetPayload(), "demo", testLicenses)
	require.NotNil(t, d.ContactPointsFirstName)
	assert.Equal(t, "SIG", *d.ContactPointsFirstName)
	require.NotNil(t, d.ContactPointsFirstEmail)
	assert.Equal(t, "sig@example.org", *d.ContactPointsFirstEmail)

	p := datasetPayload()
	p["contact_points"] = []any{}
	d = DatasetFromPayload(p, "demo", testLicenses)
	assert.Nil(t, d.ContactPointsFirstName)
	assert.Nil(t, d.ContactPointsFirstEmail)
}

func TestDatasetNormalizationIsIdempotent(t *testing.T) {
	a := DatasetFromPayload(datasetPayload(), "demo", testLicenses)
	b := DatasetFromPayload(datasetPayload(), "demo", testLicenses)
	assert.Equal(t, a, b)
}
