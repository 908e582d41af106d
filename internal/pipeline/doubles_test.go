package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/kevinmichaelchen/gitfolio/internal/llm"
	"github.com/kevinmichaelchen/gitfolio/internal/models"
)

var namePattern = regexp.MustCompile(`(?m)^- Name: (.+)$`)

// scriptedAnalyzer answers per repository name, taken from the prompt.
type scriptedAnalyzer struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	panics  map[string]bool
	calls   []string
	times   []time.Time
}

func (a *scriptedAnalyzer) Analyze(_ context.Context, prompt string) (string, error) {
	m := namePattern.FindStringSubmatch(prompt)
	if m == nil {
		return "", errors.New("prompt without name")
	}
	name := m[1]

	a.mu.Lock()
	a.calls = append(a.calls, name)
	a.times = append(a.times, time.Now())
	a.mu.Unlock()

	if a.panics[name] {
		panic("analyzer exploded")
	}
	if err, ok := a.errs[name]; ok {
		return "", err
	}
	if reply, ok := a.replies[name]; ok {
		return reply, nil
	}
	return fmt.Sprintf("SUMMARY: %s summary\nBULLET_POINTS:\n- Built %s\nKEYWORDS: go, %s", name, name, name), nil
}

// stubFetcher serves languages and commits per "owner/name".
type stubFetcher struct {
	langErrs   map[string]error
	commitErrs map[string]error
	commits    []string
	calls      []string
}

func (f *stubFetcher) Languages(_ context.Context, owner, repo string) (map[string]int, error) {
	key := owner + "/" + repo
	f.calls = append(f.calls, "languages "+key)
	if err := f.langErrs[key]; err != nil {
		return nil, err
	}
	return map[string]int{"Go": 100}, nil
}

func (f *stubFetcher) CommitMessages(_ context.Context, owner, repo string, limit int) ([]string, error) {
	key := owner + "/" + repo
	f.calls = append(f.calls, fmt.Sprintf("commits %s %d", key, limit))
	if err := f.commitErrs[key]; err != nil {
		return nil, err
	}
	if f.commits != nil {
		return f.commits, nil
	}
	return []string{"commit on " + repo}, nil
}

// stubSource lists a fixed set of repositories.
type stubSource struct {
	user    *models.User
	userErr error
	repos   []models.RawRepository
}

func (s *stubSource) User(_ context.Context, username string) (*models.User, error) {
	if s.userErr != nil {
		return nil, s.userErr
	}
	if s.user != nil {
		return s.user, nil
	}
	return &models.User{Login: username}, nil
}

func (s *stubSource) ListRepos(context.Context, string) ([]models.RawRepository, error) {
	return s.repos, nil
}

// spyStore records what the service persisted.
type spyStore struct {
	saveErr    error
	savedOwner string
	saved      []models.AnalyzedRepository
	embeddings map[string][]float32
}

func (s *spyStore) SaveAll(_ context.Context, owner string, repos []models.AnalyzedRepository) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.savedOwner = owner
	s.saved = repos
	return nil
}

func (s *spyStore) UpdateEmbedding(_ context.Context, fullName string, embedding []float32) error {
	if s.embeddings == nil {
		s.embeddings = map[string][]float32{}
	}
	s.embeddings[fullName] = embedding
	return nil
}

type fakeEmbedder struct {
	texts []string
}

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.texts = texts
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i + 1)}
	}
	return out, nil
}

func raw(names ...string) []models.RawRepository {
	desc := "something useful"
	out := make([]models.RawRepository, 0, len(names))
	for i, n := range names {
		out = append(out, models.RawRepository{
			ID:          int64(i + 1),
			Owner:       "octo",
			Name:        n,
			FullName:    "octo/" + n,
			Description: &desc,
		})
	}
	return out
}

func enhancedRepos(names ...string) []models.EnhancedRepository {
	out := make([]models.EnhancedRepository, 0, len(names))
	for _, r := range raw(names...) {
		out = append(out, models.EnhancedRepository{RawRepository: r, Languages: map[string]int{}, Included: true})
	}
	return out
}

var _ llm.Analyzer = (*scriptedAnalyzer)(nil)
