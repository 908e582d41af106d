package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v62/github"

	"github.com/kevinmichaelchen/gitfolio/internal/models"
)

// maxRepos is the page size of the repository listing; only the first page
// (most recently updated) is considered.
const maxRepos = 100

// Client is a thin wrapper around the GitHub REST API.
type Client struct {
	gh *gh.Client
}

// NewClient returns a client for api.github.com, or for baseURL when set.
// token may be empty, in which case requests are unauthenticated.
func NewClient(token, baseURL string) (*Client, error) {
	c := gh.NewClient(http.DefaultClient)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub base URL: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.BaseURL = u
	}
	return &Client{gh: c}, nil
}

func (c *Client) User(ctx context.Context, username string) (*models.User, error) {
	u, _, err := c.gh.Users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", username, err)
	}
	return &models.User{
		Login:       u.GetLogin(),
		Name:        u.Name,
		Bio:         u.Bio,
		URL:         u.GetHTMLURL(),
		AvatarURL:   u.GetAvatarURL(),
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
	}, nil
}

// ListRepos returns up to 100 repositories owned by username, most recently
// updated first.
func (c *Client) ListRepos(ctx context.Context, username string) ([]models.RawRepository, error) {
	repos, _, err := c.gh.Repositories.ListByUser(ctx, username, &gh.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: maxRepos},
	})
	if err != nil {
		return nil, fmt.Errorf("listing repositories of %s: %w", username, err)
	}

	out := make([]models.RawRepository, 0, len(repos))
	for _, r := range repos {
		out = append(out, toRawRepository(r))
	}
	return out, nil
}

// Languages returns the language → byte count histogram of a repository.
func (c *Client) Languages(ctx context.Context, owner, repo string) (map[string]int, error) {
	langs, _, err := c.gh.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching languages of %s/%s: %w", owner, repo, err)
	}
	if langs == nil {
		langs = map[string]int{}
	}
	return langs, nil
}

// CommitMessages returns the messages of the newest limit commits.
func (c *Client) CommitMessages(ctx context.Context, owner, repo string, limit int) ([]string, error) {
	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching commits of %s/%s: %w", owner, repo, err)
	}

	msgs := make([]string, 0, len(commits))
	for _, rc := range commits {
		if len(msgs) == limit {
			break
		}
		msgs = append(msgs, rc.GetCommit().GetMessage())
	}
	return msgs, nil
}

// FilterCandidates drops forks and repositories that have neither a
// description nor any stars.
func FilterCandidates(repos []models.RawRepository) []models.RawRepository {
	out := make([]models.RawRepository, 0, len(repos))
	for _, r := range repos {
		if r.Fork {
			continue
		}
		hasDescription := r.Description != nil && strings.TrimSpace(*r.Description) != ""
		if !hasDescription && r.Stars == 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

func toRawRepository(r *gh.Repository) models.RawRepository {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}
	return models.RawRepository{
		ID:          r.GetID(),
		Owner:       r.GetOwner().GetLogin(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.Description,
		URL:         r.GetHTMLURL(),
		HomepageURL: r.Homepage,
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Language:    r.Language,
		Topics:      topics,
		Fork:        r.GetFork(),
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
		PushedAt:    r.GetPushedAt().Time,
	}
}
