package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/constants"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/datagouv"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store/storetest"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/service/loader"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/service/metrics"
)

func testAPI(t *testing.T) (*APIService, *storetest.Store) {
	t.Helper()
	st := storetest.New()
	loaderService := loader.NewService(st, datagouv.NewClient("http://unused.invalid"), "www", "topic", "tag", nil, 1)
	svc, err := NewAPIService(loaderService, metrics.NewService(st))
	require.NoError(t, err)
	return svc, st
}

func doRequest(svc *APIService, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	svc.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthOpen(t *testing.T) {
	svc, _ := testAPI(t)
	rec := doRequest(svc, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTriggerRoutesRequireSecret(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "sekret")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	svc, _ := testAPI(t)

	for _, route := range []string{"/api/v1/load", "/api/v1/metrics"} {
		rec := doRequest(svc, httptest.NewRequest(http.MethodPost, route, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, route)

		var resp domain.ErrorResponse
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/metrics", nil)
	req.Header.Set(constants.HeaderKeySecretToken, "wrong")
	assert.Equal(t, http.StatusUnauthorized, doRequest(svc, req).Code)
}

func TestUnsetSecretDeniesTriggers(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "")
	svc, _ := testAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/metrics", nil)
	req.Header.Set(constants.HeaderKeySecretToken, "")
	assert.Equal(t, http.StatusUnauthorized, doRequest(svc, req).Code)
}

func TestComputeMetricsEndpoint(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "sekret")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	svc, st := testAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/metrics?date=2024-03-15", nil)
	req.Header.Set(constants.HeaderKeySecretToken, "sekret")
	rec := doRequest(svc, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "2024-03-15"))

	at := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Contains(t, st.Metrics, storetest.MetricKey(at, "nb_organizations", nil))
}

func TestComputeMetricsRejectsBadDate(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "sekret")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	svc, _ := testAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/metrics?date=15/03/2024", nil)
	req.Header.Set(constants.HeaderKeySecretToken, "sekret")
	assert.Equal(t, http.StatusBadRequest, doRequest(svc, req).Code)
}
