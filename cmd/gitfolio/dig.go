package main

import (
	"context"
	"errors"

	"go.uber.org/dig"

	"github.com/kevinmichaelchen/gitfolio/internal/config"
	"github.com/kevinmichaelchen/gitfolio/internal/embedding"
	"github.com/kevinmichaelchen/gitfolio/internal/github"
	"github.com/kevinmichaelchen/gitfolio/internal/llm"
	"github.com/kevinmichaelchen/gitfolio/internal/pipeline"
	"github.com/kevinmichaelchen/gitfolio/internal/surrealdb"
)

var errStoreDisabled = errors.New("SurrealDB is not configured (set SURREAL_URL)")

func buildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()
	providers := []any{
		func() *config.Config { return cfg },
		newGitHubClient,
		githubSource,
		newAnalyzer,
		newEnricher,
		newOrchestrator,
		pipeline.NewService,
		newStore,
		newEmbeddingClient,
		newEmbedder,
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, err
		}
	}
	return container, nil
}

func newGitHubClient(cfg *config.Config) (*github.Client, error) {
	return github.NewClient(cfg.GitHubToken, cfg.GitHubBaseURL)
}

func newAnalyzer(cfg *config.Config) (llm.Analyzer, error) {
	return llm.NewAnalyzer(context.Background(), cfg)
}

func newEnricher(cfg *config.Config, gh *github.Client) *pipeline.Enricher {
	return pipeline.NewEnricher(gh, cfg.CommitLimit)
}

func newOrchestrator(cfg *config.Config, analyzer llm.Analyzer) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(analyzer, pipeline.WithDelay(cfg.AnalysisDelay))
}

// newStore connects and makes sure the schema exists. The container only
// calls it for commands that ask for a store.
func newStore(cfg *config.Config) (*surrealdb.Client, error) {
	if !cfg.StoreEnabled() {
		return nil, errStoreDisabled
	}
	ctx := context.Background()
	db, err := surrealdb.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, err
	}
	return db, nil
}

func newEmbeddingClient(cfg *config.Config) *embedding.Client {
	return embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
}

// newEmbedder yields nil without an embedding key, which turns embeddings off.
func newEmbedder(cfg *config.Config, c *embedding.Client) pipeline.Embedder {
	if cfg.EmbeddingAPIKey == "" {
		return nil
	}
	return c
}

// githubSource adapts *github.Client to the service's RepoSource.
func githubSource(gh *github.Client) pipeline.RepoSource { return gh }

func injectService(cfg *config.Config) (*pipeline.Service, error) {
	container, err := buildContainer(cfg)
	if err != nil {
		return nil, err
	}

	var svc *pipeline.Service
	if err := container.Invoke(func(s *pipeline.Service) {
		svc = s
	}); err != nil {
		return nil, dig.RootCause(err)
	}
	return svc, nil
}

func injectGitHubClient(cfg *config.Config) (*github.Client, error) {
	container, err := buildContainer(cfg)
	if err != nil {
		return nil, err
	}

	var gh *github.Client
	if err := container.Invoke(func(c *github.Client) {
		gh = c
	}); err != nil {
		return nil, dig.RootCause(err)
	}
	return gh, nil
}

// injectStoredService returns the service wired to persist into SurrealDB.
// The caller closes the returned store.
func injectStoredService(cfg *config.Config) (*pipeline.Service, *surrealdb.Client, error) {
	container, err := buildContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	var svc *pipeline.Service
	var db *surrealdb.Client
	if err := container.Invoke(func(s *pipeline.Service, store *surrealdb.Client, emb pipeline.Embedder) {
		svc = s.WithStore(store, emb)
		db = store
	}); err != nil {
		return nil, nil, dig.RootCause(err)
	}
	return svc, db, nil
}

func injectStore(cfg *config.Config) (*surrealdb.Client, error) {
	container, err := buildContainer(cfg)
	if err != nil {
		return nil, err
	}

	var db *surrealdb.Client
	if err := container.Invoke(func(store *surrealdb.Client) {
		db = store
	}); err != nil {
		return nil, dig.RootCause(err)
	}
	return db, nil
}

func injectEmbeddingClient(cfg *config.Config) (*embedding.Client, error) {
	container, err := buildContainer(cfg)
	if err != nil {
		return nil, err
	}

	var c *embedding.Client
	if err := container.Invoke(func(e *embedding.Client) {
		c = e
	}); err != nil {
		return nil, dig.RootCause(err)
	}
	return c, nil
}
