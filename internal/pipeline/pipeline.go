package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/kevinmichaelchen/gitfolio/internal/github"
	"github.com/kevinmichaelchen/gitfolio/internal/models"
)

var ErrMissingUsername = errors.New("a GitHub username is required")

// RepoSource resolves an account and lists its repositories.
type RepoSource interface {
	User(ctx context.Context, username string) (*models.User, error)
	ListRepos(ctx context.Context, username string) ([]models.RawRepository, error)
}

// Store persists analyzed repositories. Stored results are never read back
// to skip an analysis.
type Store interface {
	SaveAll(ctx context.Context, owner string, repos []models.AnalyzedRepository) error
	UpdateEmbedding(ctx context.Context, fullName string, embedding []float32) error
}

// Embedder turns texts into vectors, one per text and in the same order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	Username string
	// IncludeAll disables the fork / empty repository filter.
	IncludeAll bool
}

type Result struct {
	User  *models.User
	Repos []models.AnalyzedRepository
}

// Service runs the whole flow: resolve account, list, filter, enrich,
// analyze and optionally persist.
type Service struct {
	source       RepoSource
	enricher     *Enricher
	orchestrator *Orchestrator
	store        Store
	embedder     Embedder
}

func NewService(source RepoSource, enricher *Enricher, orchestrator *Orchestrator) *Service {
	return &Service{source: source, enricher: enricher, orchestrator: orchestrator}
}

// WithStore returns a copy of s that saves results to store and, when
// embedder is not nil, stores an embedding of every successful analysis.
func (s *Service) WithStore(store Store, embedder Embedder) *Service {
	cp := *s
	cp.store = store
	cp.embedder = embedder
	return &cp
}

func (s *Service) Run(ctx context.Context, opts Options, onProgress ProgressFunc) (*Result, error) {
	username := strings.TrimSpace(opts.Username)
	if username == "" {
		return nil, ErrMissingUsername
	}

	user, err := s.source.User(ctx, username)
	if err != nil {
		return nil, err
	}
	logger.Infof("Fetching repositories of %s (%d public)", user.Login, user.PublicRepos)

	raw, err := s.source.ListRepos(ctx, username)
	if err != nil {
		return nil, err
	}
	if !opts.IncludeAll {
		raw = github.FilterCandidates(raw)
	}
	logger.Infof("Enriching %d repositories", len(raw))
	enhanced := s.enricher.Enrich(ctx, raw)

	logger.Infof("Analyzing %d repositories", len(enhanced))
	analyzed, err := s.orchestrator.Run(ctx, enhanced, onProgress)
	if analyzed == nil {
		return nil, err
	}
	result := &Result{User: user, Repos: analyzed}
	if err != nil {
		return result, err
	}

	if s.store != nil {
		if err := s.persist(ctx, user.Login, analyzed); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *Service) persist(ctx context.Context, owner string, repos []models.AnalyzedRepository) error {
	if err := s.store.SaveAll(ctx, owner, repos); err != nil {
		return fmt.Errorf("storing portfolio: %w", err)
	}
	logger.Infof("Stored %d repositories", len(repos))

	if s.embedder == nil {
		return nil
	}
	var toEmbed []models.AnalyzedRepository
	var texts []string
	for _, r := range repos {
		if r.Status == models.StatusSucceeded {
			toEmbed = append(toEmbed, r)
			texts = append(texts, EmbeddingText(r))
		}
	}
	if len(texts) == 0 {
		return nil
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("generating embeddings: %w", err)
	}
	for i, r := range toEmbed {
		if i >= len(vectors) || vectors[i] == nil {
			continue
		}
		if err := s.store.UpdateEmbedding(ctx, r.FullName, vectors[i]); err != nil {
			logger.WithField("repo", r.FullName).Warnf("Storing embedding failed: %v", err)
		}
	}
	return nil
}

// EmbeddingText is the text embedded for semantic search over a repository.
func EmbeddingText(r models.AnalyzedRepository) string {
	text := fmt.Sprintf("%s: %s", r.FullName, r.Summary)
	if len(r.TechKeywords) > 0 {
		text += " Keywords: " + strings.Join(r.TechKeywords, ", ")
	}
	return text
}
