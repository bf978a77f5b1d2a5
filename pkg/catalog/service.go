package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kubestro/core/pkg/async"
)

// Entry is one catalog line: a repository joined with its cached packages.
type Entry struct {
	Repository *Repository `json:"repository"`
	Packages   []Package   `json:"packages"`
}

// Service orchestrates repository persistence, remote index fetching and
// the Redis cache. Mutations schedule their cache work through the
// executor so the originating request never waits on the remote.
type Service struct {
	store   Store
	cache   *Cache
	fetcher Fetcher
	exec    async.Executor
	log     *logrus.Logger
}

// NewService wires the catalog service.
func NewService(store Store, cache *Cache, fetcher Fetcher, exec async.Executor, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: store, cache: cache, fetcher: fetcher, exec: exec, log: log}
}

// Create validates and persists a repository, then warms its cache in the
// background. A fetch failure is logged, never surfaced here.
func (s *Service) Create(ctx context.Context, name, url string) (*Repository, error) {
	create, err := NewCreateRepository(name, url)
	if err != nil {
		return nil, err
	}

	repo, err := s.store.Create(ctx, create)
	if err != nil {
		return nil, err
	}

	s.exec.Go(ctx, "catalog-warm", func(taskCtx context.Context) error {
		return s.fetchAndCache(taskCtx, repo)
	})
	return repo, nil
}

// Delete removes a repository and drops its cache entry in the background.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.exec.Go(ctx, "catalog-invalidate", func(taskCtx context.Context) error {
		return s.cache.Invalidate(taskCtx, id)
	})
	return nil
}

// List returns repositories, optionally filtered.
func (s *Service) List(ctx context.Context, search string) ([]*Repository, error) {
	return s.store.FindAll(ctx, search)
}

// RefreshCache re-fetches package indexes, one task per repository. When
// force is false, repositories with a live cache entry are skipped.
//
// All fetches run to completion regardless of sibling failures; the first
// error is returned after the join.
func (s *Service) RefreshCache(ctx context.Context, force bool) error {
	repos, err := s.store.FindAll(ctx, "")
	if err != nil {
		return err
	}

	var g errgroup.Group
	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			if !force {
				cached, err := s.cache.Exists(ctx, repo.ID)
				if err != nil {
					return err
				}
				if cached {
					return nil
				}
			}
			return s.fetchAndCache(ctx, repo)
		})
	}
	return g.Wait()
}

// Catalog returns every repository joined with its cached package list.
// A cache miss yields an empty package list, never an error.
func (s *Service) Catalog(ctx context.Context) ([]Entry, error) {
	repos, err := s.store.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(repos))
	for _, repo := range repos {
		packages, _, err := s.cache.Get(ctx, repo.ID)
		if err != nil {
			return nil, err
		}
		if packages == nil {
			packages = []Package{}
		}
		entries = append(entries, Entry{Repository: repo, Packages: packages})
	}
	return entries, nil
}

func (s *Service) fetchAndCache(ctx context.Context, repo *Repository) error {
	packages, err := s.fetcher.Fetch(ctx, repo.URL)
	if err != nil {
		return fmt.Errorf("repository %s: %w", repo.Name, err)
	}

	s.log.WithFields(logrus.Fields{
		"repository": repo.Name,
		"packages":   len(packages),
	}).Debug("fetched package index")

	return s.cache.Put(ctx, repo.ID, packages)
}
