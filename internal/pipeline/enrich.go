package pipeline

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/kevinmichaelchen/gitfolio/internal/models"
)

const DefaultCommitLimit = 10

// DetailsFetcher fetches the per-repository metadata used for enrichment.
type DetailsFetcher interface {
	Languages(ctx context.Context, owner, repo string) (map[string]int, error)
	CommitMessages(ctx context.Context, owner, repo string, limit int) ([]string, error)
}

// Enricher adds languages and recent commits to repositories, one repository
// at a time.
type Enricher struct {
	fetcher     DetailsFetcher
	commitLimit int
}

func NewEnricher(fetcher DetailsFetcher, commitLimit int) *Enricher {
	if commitLimit <= 0 {
		commitLimit = DefaultCommitLimit
	}
	return &Enricher{fetcher: fetcher, commitLimit: commitLimit}
}

// Enrich returns one EnhancedRepository per input, in input order. A failed
// language fetch leaves an empty histogram and marks the item excluded; a
// failed commit fetch only leaves the commit list empty. Neither stops the
// batch.
func (e *Enricher) Enrich(ctx context.Context, repos []models.RawRepository) []models.EnhancedRepository {
	out := make([]models.EnhancedRepository, 0, len(repos))
	for i, repo := range repos {
		out = append(out, e.enrichOne(ctx, repo))
		logger.Debugf("Enriched %d/%d: %s", i+1, len(repos), repo.FullName)
	}
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, repo models.RawRepository) models.EnhancedRepository {
	owner, name := ownerAndName(repo)
	enhanced := models.EnhancedRepository{
		RawRepository: repo,
		Languages:     map[string]int{},
		RecentCommits: []string{},
		Included:      true,
	}

	langs, err := e.fetcher.Languages(ctx, owner, name)
	if err != nil {
		logger.WithField("repo", repo.FullName).Warnf("Fetching languages failed, excluding repository: %v", err)
		enhanced.Included = false
	} else if langs != nil {
		enhanced.Languages = langs
	}

	commits, err := e.fetcher.CommitMessages(ctx, owner, name, e.commitLimit)
	if err != nil {
		logger.WithField("repo", repo.FullName).Warnf("Fetching commits failed: %v", err)
	} else if commits != nil {
		if len(commits) > e.commitLimit {
			commits = commits[:e.commitLimit]
		}
		enhanced.RecentCommits = commits
	}

	return enhanced
}

func ownerAndName(repo models.RawRepository) (string, string) {
	if repo.Owner != "" {
		return repo.Owner, repo.Name
	}
	if owner, name, ok := strings.Cut(repo.FullName, "/"); ok {
		return owner, name
	}
	return "", repo.Name
}
