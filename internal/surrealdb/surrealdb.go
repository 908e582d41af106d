package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	sdk "github.com/surrealdb/surrealdb.go"
	"golang.org/x/sync/errgroup"

	"github.com/kevinmichaelchen/gitfolio/internal/config"
	"github.com/kevinmichaelchen/gitfolio/internal/models"
)

// saveConcurrency bounds the parallel upserts of SaveAll.
const saveConcurrency = 5

var ErrInvalidLimit = errors.New("result limit must be positive")

type Client struct {
	db *sdk.DB
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	db, err := sdk.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, sdk.Auth{
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}

	if err := db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting ns/db: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
DEFINE TABLE IF NOT EXISTS portfolio_repo SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS owner          ON TABLE portfolio_repo TYPE string;
DEFINE FIELD IF NOT EXISTS github_id      ON TABLE portfolio_repo TYPE int;
DEFINE FIELD IF NOT EXISTS name           ON TABLE portfolio_repo TYPE string;
DEFINE FIELD IF NOT EXISTS full_name      ON TABLE portfolio_repo TYPE string;
DEFINE FIELD IF NOT EXISTS description    ON TABLE portfolio_repo TYPE option<string>;
DEFINE FIELD IF NOT EXISTS url            ON TABLE portfolio_repo TYPE string;
DEFINE FIELD IF NOT EXISTS homepage_url   ON TABLE portfolio_repo TYPE option<string>;
DEFINE FIELD IF NOT EXISTS stars          ON TABLE portfolio_repo TYPE int;
DEFINE FIELD IF NOT EXISTS forks          ON TABLE portfolio_repo TYPE int;
DEFINE FIELD IF NOT EXISTS language       ON TABLE portfolio_repo TYPE option<string>;
DEFINE FIELD IF NOT EXISTS topics         ON TABLE portfolio_repo TYPE array<string>;
DEFINE FIELD IF NOT EXISTS languages      ON TABLE portfolio_repo FLEXIBLE TYPE object;
DEFINE FIELD IF NOT EXISTS recent_commits ON TABLE portfolio_repo TYPE array<string>;
DEFINE FIELD IF NOT EXISTS included       ON TABLE portfolio_repo TYPE bool;
DEFINE FIELD IF NOT EXISTS summary        ON TABLE portfolio_repo TYPE string;
DEFINE FIELD IF NOT EXISTS bullet_points  ON TABLE portfolio_repo TYPE array<string>;
DEFINE FIELD IF NOT EXISTS tech_keywords  ON TABLE portfolio_repo TYPE array<string>;
DEFINE FIELD IF NOT EXISTS status         ON TABLE portfolio_repo TYPE string;
DEFINE FIELD IF NOT EXISTS embedding      ON TABLE portfolio_repo TYPE option<array<float>>;
DEFINE FIELD IF NOT EXISTS pushed_at      ON TABLE portfolio_repo TYPE option<datetime>;
DEFINE FIELD IF NOT EXISTS analyzed_at    ON TABLE portfolio_repo TYPE datetime;

DEFINE INDEX IF NOT EXISTS idx_full_name ON TABLE portfolio_repo FIELDS full_name UNIQUE;
DEFINE INDEX IF NOT EXISTS idx_owner     ON TABLE portfolio_repo FIELDS owner;
`
	_, err := sdk.Query[any](ctx, c.db, schema, nil)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// SaveAll upserts the analyzed repositories of owner. It runs after a batch
// has completed, so the upserts may overlap.
func (c *Client) SaveAll(ctx context.Context, owner string, repos []models.AnalyzedRepository) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(saveConcurrency)
	for _, r := range repos {
		g.Go(func() error {
			return c.UpsertRepo(gCtx, owner, r)
		})
	}
	return g.Wait()
}

func (c *Client) UpsertRepo(ctx context.Context, owner string, r models.AnalyzedRepository) error {
	_, err := sdk.Query[any](ctx, c.db,
		`UPSERT type::thing("portfolio_repo", $id) MERGE $data`,
		map[string]any{
			"id":   RecordID(r.FullName),
			"data": recordData(owner, r, time.Now().UTC()),
		})
	if err != nil {
		return fmt.Errorf("upserting %s: %w", r.FullName, err)
	}
	return nil
}

func (c *Client) SetIncluded(ctx context.Context, fullName string, included bool) error {
	_, err := sdk.Query[any](ctx, c.db,
		`UPDATE portfolio_repo SET included = $included WHERE full_name = $full_name`,
		map[string]any{
			"full_name": fullName,
			"included":  included,
		})
	if err != nil {
		return fmt.Errorf("updating inclusion for %s: %w", fullName, err)
	}
	return nil
}

// Toggle flips the inclusion flag of one repository and returns the new value.
func (c *Client) Toggle(ctx context.Context, fullName string) (bool, error) {
	results, err := sdk.Query[[]PortfolioEntry](ctx, c.db,
		`UPDATE portfolio_repo SET included = !included WHERE full_name = $full_name RETURN AFTER`,
		map[string]any{"full_name": fullName})
	if err != nil {
		return false, fmt.Errorf("toggling %s: %w", fullName, err)
	}
	if len(*results) == 0 || len((*results)[0].Result) == 0 {
		return false, fmt.Errorf("repository %s is not stored", fullName)
	}
	return (*results)[0].Result[0].Included, nil
}

func (c *Client) UpdateEmbedding(ctx context.Context, fullName string, embedding []float32) error {
	_, err := sdk.Query[any](ctx, c.db,
		`UPDATE portfolio_repo SET embedding = $embedding WHERE full_name = $full_name`,
		map[string]any{
			"full_name": fullName,
			"embedding": embedding,
		})
	if err != nil {
		return fmt.Errorf("updating embedding for %s: %w", fullName, err)
	}
	return nil
}

// PortfolioEntry is the stored view of one analyzed repository.
type PortfolioEntry struct {
	FullName     string   `json:"full_name"`
	URL          string   `json:"url"`
	Stars        int      `json:"stars"`
	Included     bool     `json:"included"`
	Status       string   `json:"status"`
	Summary      string   `json:"summary"`
	BulletPoints []string `json:"bullet_points"`
	TechKeywords []string `json:"tech_keywords"`
}

// GetSelected returns the included repositories of owner, most recently
// pushed first.
func (c *Client) GetSelected(ctx context.Context, owner string) ([]PortfolioEntry, error) {
	results, err := sdk.Query[[]PortfolioEntry](ctx, c.db,
		`SELECT full_name, url, stars, included, status, summary, bullet_points, tech_keywords, pushed_at
		FROM portfolio_repo WHERE owner = $owner AND included = true ORDER BY pushed_at DESC`,
		map[string]any{"owner": owner})
	if err != nil {
		return nil, fmt.Errorf("querying selected repos of %s: %w", owner, err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// VectorSearch returns the k stored repositories closest to queryVec.
func (c *Client) VectorSearch(ctx context.Context, queryVec []float32, k int) ([]models.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, k)
	}
	query := fmt.Sprintf(`
		SELECT full_name, url, stars, summary, tech_keywords,
			vector::similarity::cosine(embedding, $query_vec) AS score
		FROM portfolio_repo
		WHERE embedding IS NOT NONE
		ORDER BY score DESC
		LIMIT %d
	`, k)

	results, err := sdk.Query[[]models.SearchResult](ctx, c.db, query,
		map[string]any{"query_vec": queryVec})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

type Stats struct {
	Total       int
	Included    int
	Succeeded   int
	Unavailable int
	Failed      int
	Embedded    int
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	results, err := sdk.Query[[]map[string]any](ctx, c.db,
		`SELECT
			count() AS total,
			math::sum(IF included THEN 1 ELSE 0 END) AS included,
			math::sum(IF status = "succeeded" THEN 1 ELSE 0 END) AS succeeded,
			math::sum(IF status = "unavailable" THEN 1 ELSE 0 END) AS unavailable,
			math::sum(IF status = "failed" THEN 1 ELSE 0 END) AS failed,
			math::sum(IF embedding IS NOT NONE THEN 1 ELSE 0 END) AS embedded
		FROM portfolio_repo GROUP ALL`,
		nil)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	if len(*results) == 0 || len((*results)[0].Result) == 0 {
		return &Stats{}, nil
	}
	row := (*results)[0].Result[0]
	return &Stats{
		Total:       toInt(row["total"]),
		Included:    toInt(row["included"]),
		Succeeded:   toInt(row["succeeded"]),
		Unavailable: toInt(row["unavailable"]),
		Failed:      toInt(row["failed"]),
		Embedded:    toInt(row["embedded"]),
	}, nil
}

type KeywordCount struct {
	Keyword string
	Count   int
}

func (c *Client) GetKeywordBreakdown(ctx context.Context) ([]KeywordCount, error) {
	results, err := sdk.Query[[]PortfolioEntry](ctx, c.db,
		`SELECT tech_keywords FROM portfolio_repo WHERE status = "succeeded"`, nil)
	if err != nil {
		return nil, fmt.Errorf("getting keywords: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	var keywords [][]string
	for _, r := range (*results)[0].Result {
		keywords = append(keywords, r.TechKeywords)
	}
	return CountKeywords(keywords), nil
}

// CountKeywords tallies keywords case-insensitively, most frequent first.
func CountKeywords(lists [][]string) []KeywordCount {
	counts := map[string]int{}
	var order []string
	for _, list := range lists {
		for _, kw := range list {
			key := strings.ToLower(strings.TrimSpace(kw))
			if key == "" {
				continue
			}
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
	}
	out := make([]KeywordCount, 0, len(order))
	for _, kw := range order {
		out = append(out, KeywordCount{Keyword: kw, Count: counts[kw]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

// RecordID maps "owner/name" to a SurrealDB record key.
func RecordID(fullName string) string {
	return strings.ReplaceAll(fullName, "/", "__")
}

// recordData omits nil optionals to avoid the CBOR NULL vs SurrealDB NONE
// mismatch.
func recordData(owner string, r models.AnalyzedRepository, now time.Time) map[string]any {
	data := map[string]any{
		"owner":          owner,
		"github_id":      r.ID,
		"name":           r.Name,
		"full_name":      r.FullName,
		"url":            r.URL,
		"stars":          r.Stars,
		"forks":          r.Forks,
		"topics":         nonNil(r.Topics),
		"recent_commits": nonNil(r.RecentCommits),
		"included":       r.Included,
		"summary":        r.Summary,
		"bullet_points":  nonNil(r.BulletPoints),
		"tech_keywords":  nonNil(r.TechKeywords),
		"status":         string(r.Status),
		"analyzed_at":    now,
	}
	languages := r.Languages
	if languages == nil {
		languages = map[string]int{}
	}
	data["languages"] = languages
	if r.Description != nil {
		data["description"] = *r.Description
	}
	if r.HomepageURL != nil {
		data["homepage_url"] = *r.HomepageURL
	}
	if r.Language != nil {
		data["language"] = *r.Language
	}
	if !r.PushedAt.IsZero() {
		data["pushed_at"] = r.PushedAt.UTC()
	}
	return data
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}
