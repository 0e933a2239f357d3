package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/constants"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/datagouv"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/logger"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/payload"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/store"
)

// Service runs one load cycle: mark everything deleted, sweep the universe
// topic's datasets (plus their resources and organizations), then the
// bouquets, upserting every record seen.
type Service struct {
	store   store.Store
	client  *datagouv.Client
	prefix  string
	topic   string
	tag     string
	themes  []domain.Theme
	workers int
}

func NewService(st store.Store, client *datagouv.Client, prefix, topicSlug, universeTag string, themes []domain.Theme, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		store:   st,
		client:  client,
		prefix:  prefix,
		topic:   topicSlug,
		tag:     universeTag,
		themes:  themes,
		workers: workers,
	}
}

// Failure records one record that could not be processed; the cycle goes on
// without it.
type Failure struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

type Result struct {
	Datasets int       `json:"datasets"`
	Bouquets int       `json:"bouquets"`
	Failures []Failure `json:"failures"`

	mu sync.Mutex
}

func (r *Result) fail(kind, id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, Failure{Kind: kind, ID: id, Error: err.Error()})
}

// Load runs a full cycle. Per-record failures are collected in the result;
// only API fetch failures and store-wide operations abort the cycle.
func (s *Service) Load(ctx context.Context) (*Result, error) {
	ctx = logger.ToContext(ctx, "cycle_id", uuid.NewString())

	licenses, err := s.client.Licenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch licenses: %w", err)
	}
	topic, err := s.client.Topic(ctx, s.topic)
	if err != nil {
		return nil, fmt.Errorf("fetch topic %s: %w", s.topic, err)
	}
	datasetsHref := payload.GetString(topic, "datasets__href")
	if datasetsHref == "" {
		return nil, fmt.Errorf("topic %s carries no datasets relation", s.topic)
	}

	// pre-set deleted, overwritten by the upsert of every record seen
	if err := s.store.MarkDatasetsDeleted(ctx); err != nil {
		return nil, err
	}

	res := &Result{}
	var orgs singleflight.Group
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)

	pagesErr := s.client.Pages(ctx, datasetsHref, func(p payload.Payload) error {
		eg.Go(func() error {
			id := payload.GetString(p, "id")
			if err := s.loadDataset(egCtx, p, licenses, &orgs); err != nil {
				logger.Errorf(egCtx, "dataset %s: %s", id, err.Error())
				res.fail("dataset", id, err)
				return nil
			}
			res.mu.Lock()
			res.Datasets++
			res.mu.Unlock()
			return nil
		})
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if pagesErr != nil {
		return nil, pagesErr
	}

	if err := s.loadBouquets(ctx, res); err != nil {
		return nil, err
	}

	logger.Infof(ctx, "load cycle done: %d datasets, %d bouquets, %d failures",
		res.Datasets, res.Bouquets, len(res.Failures))
	return res, nil
}

func (s *Service) loadDataset(ctx context.Context, p payload.Payload, licenses []domain.License, orgs *singleflight.Group) error {
	d := domain.DatasetFromPayload(p, s.prefix, licenses)
	if d.DatasetID == "" {
		return errors.New("payload without id")
	}
	if err := s.store.UpsertDataset(ctx, d); err != nil {
		return err
	}
	if err := s.loadResources(ctx, p, d.DatasetID); err != nil {
		return fmt.Errorf("resources: %w", err)
	}
	if d.Organization != nil {
		if err := s.ensureOrganization(ctx, *d.Organization, orgs); err != nil {
			return fmt.Errorf("organization: %w", err)
		}
	}
	return nil
}

func (s *Service) loadResources(ctx context.Context, p payload.Payload, datasetID string) error {
	if err := s.store.DeleteDatasetResources(ctx, datasetID); err != nil {
		return err
	}
	href := payload.GetString(p, "resources__href")
	if href == "" {
		return nil
	}
	return s.client.Pages(ctx, href, func(rp payload.Payload) error {
		return s.store.UpsertResource(ctx, domain.ResourceFromPayload(rp, datasetID))
	})
}

// ensureOrganization fetches and upserts an organization the first time a
// dataset references it; concurrent workers referencing the same id share a
// single flight. Organizations deleted upstream are logged and skipped.
func (s *Service) ensureOrganization(ctx context.Context, id string, orgs *singleflight.Group) error {
	_, err, _ := orgs.Do(id, func() (any, error) {
		ok, err := s.store.HasOrganization(ctx, id)
		if err != nil || ok {
			return nil, err
		}
		p, err := s.client.Organization(ctx, id)
		if err != nil {
			if errors.Is(err, constants.ErrGone) {
				logger.Warnf(ctx, "organization %s has been deleted upstream", id)
				return nil, nil
			}
			return nil, err
		}
		return nil, s.store.UpsertOrganization(ctx, domain.OrganizationFromPayload(p))
	})
	return err
}

func (s *Service) loadBouquets(ctx context.Context, res *Result) error {
	if err := s.store.MarkBouquetsDeleted(ctx); err != nil {
		return err
	}
	url := s.client.TopicsURL(s.tag, true)
	return s.client.Pages(ctx, url, func(p payload.Payload) error {
		b := domain.BouquetFromPayload(p, s.themes)
		if b.BouquetID == "" {
			res.fail("bouquet", "", errors.New("payload without id"))
			return nil
		}
		if err := s.store.UpsertBouquet(ctx, b); err != nil {
			logger.Errorf(ctx, "bouquet %s: %s", b.BouquetID, err.Error())
			res.fail("bouquet", b.BouquetID, err)
			return nil
		}
		linked, err := s.store.ReplaceBouquetDatasets(ctx, b.BouquetID, domain.FactorDatasetIDs(p))
		if err != nil {
			logger.Errorf(ctx, "bouquet %s associations: %s", b.BouquetID, err.Error())
			res.fail("bouquet", b.BouquetID, err)
			return nil
		}
		if linked < b.NbDatasets {
			logger.Debugf(ctx, "bouquet %s references %d catalog datasets, %d found locally",
				b.BouquetID, b.NbDatasets, linked)
		}
		res.mu.Lock()
		res.Bouquets++
		res.mu.Unlock()
		return nil
	})
}
