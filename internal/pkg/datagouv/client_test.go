package datagouv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/constants"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/payload"
)

func testClient(url string) *Client {
	c := NewClient(url)
	c.retryWait = time.Millisecond
	return c
}

func TestPagesWalksAllPagesInOrder(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "2":
			fmt.Fprint(w, `{"data":[{"id":"c"}],"total":3,"page":2,"page_size":2,"next_page":null}`)
		default:
			fmt.Fprintf(w, `{"data":[{"id":"a"},{"id":"b"}],"total":3,"page":1,"page_size":2,"next_page":"%s/?page=2"}`, srv.URL)
		}
	}))
	defer srv.Close()

	var ids []string
	err := testClient(srv.URL).Pages(context.Background(), srv.URL+"/?page=1", func(p payload.Payload) error {
		ids = append(ids, p["id"].(string))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestPagesRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"a"}],"total":1,"page":1,"page_size":20,"next_page":null}`)
	}))
	defer srv.Close()

	var got int
	err := testClient(srv.URL).Pages(context.Background(), srv.URL, func(payload.Payload) error {
		got++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPagesHardFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Pages(context.Background(), srv.URL, func(payload.Payload) error {
		t.Fatal("callback should not run")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code error: 500")
}

func TestOrganizationGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Organization(context.Background(), "org-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrGone))
}

func TestLicenses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/1/datasets/licenses/", r.URL.Path)
		fmt.Fprint(w, `[{"id":"lov2","title":"Licence Ouverte"}]`)
	}))
	defer srv.Close()

	licenses, err := testClient(srv.URL).Licenses(context.Background())
	require.NoError(t, err)
	require.Len(t, licenses, 1)
	assert.Equal(t, "lov2", licenses[0].ID)
}

func TestTopicsURL(t *testing.T) {
	c := NewClient("https://demo.data.gouv.fr")
	assert.Equal(t,
		"https://demo.data.gouv.fr/api/2/topics/?tag=ecospheres&include_private=yes",
		c.TopicsURL("ecospheres", true))
	assert.Equal(t,
		"https://demo.data.gouv.fr/api/2/topics/?tag=ecospheres",
		c.TopicsURL("ecospheres", false))
}
