package models

import "time"

// User is the account whose repositories are analyzed.
type User struct {
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	URL         string  `json:"url"`
	AvatarURL   string  `json:"avatar_url"`
	PublicRepos int     `json:"public_repos"`
	Followers   int     `json:"followers"`
}

// RawRepository is a repository as listed by the data provider.
type RawRepository struct {
	ID          int64     `json:"id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	HomepageURL *string   `json:"homepage_url"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Language    *string   `json:"language"`
	Topics      []string  `json:"topics"`
	Fork        bool      `json:"fork"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
}

// EnhancedRepository adds the per-repository language histogram and recent
// commit messages. Included is false only when enrichment failed.
type EnhancedRepository struct {
	RawRepository
	Languages     map[string]int `json:"languages"`
	RecentCommits []string       `json:"recent_commits"`
	Included      bool           `json:"included"`
}

type AnalysisStatus string

const (
	StatusSucceeded   AnalysisStatus = "succeeded"
	StatusUnavailable AnalysisStatus = "unavailable"
	StatusFailed      AnalysisStatus = "failed"
)

// AnalyzedRepository is always fully populated: the three generated fields
// are set together from one parsed reply or one fallback triple.
type AnalyzedRepository struct {
	EnhancedRepository
	Summary      string         `json:"summary"`
	BulletPoints []string       `json:"bullet_points"`
	TechKeywords []string       `json:"tech_keywords"`
	Status       AnalysisStatus `json:"status"`
}

// Progress is one progress tick of an analysis batch.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type SearchResult struct {
	FullName     string   `json:"full_name"`
	URL          string   `json:"url"`
	Stars        int      `json:"stars"`
	Summary      *string  `json:"summary"`
	TechKeywords []string `json:"tech_keywords"`
	Score        float64  `json:"score"`
}

// ToggleInclusion returns a copy of repos with the inclusion flag of the
// repository identified by id flipped. Other items are left untouched.
func ToggleInclusion(repos []AnalyzedRepository, id int64) []AnalyzedRepository {
	out := make([]AnalyzedRepository, len(repos))
	copy(out, repos)
	for i := range out {
		if out[i].ID == id {
			out[i].Included = !out[i].Included
		}
	}
	return out
}

// Selected returns the included repositories, in order.
func Selected(repos []AnalyzedRepository) []AnalyzedRepository {
	var out []AnalyzedRepository
	for _, r := range repos {
		if r.Included {
			out = append(out, r)
		}
	}
	return out
}
