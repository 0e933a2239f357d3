package datagouv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/constants"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/logger"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/payload"
)

// Page is the pagination envelope every list endpoint of the API returns.
type Page struct {
	Data     []payload.Payload `json:"data"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	NextPage *string           `json:"next_page"`
}

// Client talks to one data.gouv.fr deployment. A 429 answer means "wait and
// retry the same URL"; any other non-2xx is an error, with 404/410 surfaced
// as constants.ErrGone so callers can treat deleted records as non-fatal.
type Client struct {
	baseURL   string
	http      *http.Client
	retryWait time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
		retryWait: 10 * time.Second,
	}
}

var errRateLimited = errors.New("rate limited")

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("http.Get: %w", err))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			logger.Warnf(ctx, "429 hit on %s, waiting a bit", url)
			return errRateLimited
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			return backoff.Permanent(fmt.Errorf("%s: %w", url, constants.ErrGone))
		case resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("status code error: %d on %s", resp.StatusCode, url))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.NewConstantBackOff(c.retryWait), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// Pages walks a paginated relation starting at href, calling fn for every
// entity in page order until the last page or the first error.
func (c *Client) Pages(ctx context.Context, href string, fn func(payload.Payload) error) error {
	current := href
	for current != "" {
		var page Page
		if err := c.getJSON(ctx, current, &page); err != nil {
			return fmt.Errorf("fetch page: %w", err)
		}
		logger.Debugf(ctx, "handling page %d (%d of %d items)", page.Page, len(page.Data), page.Total)
		for _, entity := range page.Data {
			if err := fn(entity); err != nil {
				return err
			}
		}
		if page.NextPage == nil {
			break
		}
		current = *page.NextPage
	}
	return nil
}

// Topic fetches one topic (bouquet universe) by slug.
func (c *Client) Topic(ctx context.Context, slug string) (payload.Payload, error) {
	var topic payload.Payload
	url := fmt.Sprintf("%s/api/2/topics/%s/", c.baseURL, slug)
	if err := c.getJSON(ctx, url, &topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// Licenses fetches the license referential, once per load cycle.
func (c *Client) Licenses(ctx context.Context) ([]domain.License, error) {
	var licenses []domain.License
	url := fmt.Sprintf("%s/api/1/datasets/licenses/", c.baseURL)
	if err := c.getJSON(ctx, url, &licenses); err != nil {
		return nil, err
	}
	return licenses, nil
}

// Organization fetches one organization; constants.ErrGone when deleted.
func (c *Client) Organization(ctx context.Context, id string) (payload.Payload, error) {
	var org payload.Payload
	url := fmt.Sprintf("%s/api/1/organizations/%s/", c.baseURL, id)
	if err := c.getJSON(ctx, url, &org); err != nil {
		return nil, err
	}
	return org, nil
}

// TopicsURL is the first page of the topics listing for a universe tag.
func (c *Client) TopicsURL(tag string, includePrivate bool) string {
	url := fmt.Sprintf("%s/api/2/topics/?tag=%s", c.baseURL, tag)
	if includePrivate {
		url += "&include_private=yes"
	}
	return url
}
