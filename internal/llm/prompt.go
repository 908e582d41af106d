package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kevinmichaelchen/gitfolio/internal/models"
)

// Section markers. The prompt asks for them verbatim and Parse splits the
// reply on them, so both sides must agree.
const (
	MarkerSummary  = "SUMMARY:"
	MarkerBullets  = "BULLET_POINTS:"
	MarkerKeywords = "KEYWORDS:"
)

const (
	noDescription = "No description provided"
	noTopics      = "None"
	noLanguages   = "Unknown"
	noCommits     = "No recent commits available"
)

const promptTemplate = `You are an expert developer and technical writer helping to create a professional portfolio.

Please analyze this GitHub repository and generate:
1. A concise project summary (2-3 lines)
2. 2-3 resume bullet points in STAR format (Situation, Task, Action, Result)
3. 5 relevant technical keywords

Repository Information:
- Name: %s
- Description: %s
- Languages: %s
- Topics/Tags: %s
- Stars: %d
- Forks: %d

Recent Commit Messages:
%s

Please format your response exactly as follows:
` + MarkerSummary + `
[Your 2-3 line summary here]

` + MarkerBullets + `
- [First STAR format bullet point]
- [Second STAR format bullet point]
- [Optional third bullet point]

` + MarkerKeywords + `
keyword1, keyword2, keyword3, keyword4, keyword5
`

// BuildPrompt renders the analysis prompt for one repository. The output only
// depends on repo.
func BuildPrompt(repo models.EnhancedRepository) string {
	description := noDescription
	if repo.Description != nil && strings.TrimSpace(*repo.Description) != "" {
		description = strings.TrimSpace(*repo.Description)
	}

	topics := noTopics
	if len(repo.Topics) > 0 {
		topics = strings.Join(repo.Topics, ", ")
	}

	languages := noLanguages
	if names := languageNames(repo.Languages); len(names) > 0 {
		languages = strings.Join(names, ", ")
	}

	commits := noCommits
	if len(repo.RecentCommits) > 0 {
		lines := make([]string, 0, len(repo.RecentCommits))
		for _, msg := range repo.RecentCommits {
			lines = append(lines, "- "+subjectLine(msg))
		}
		commits = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(promptTemplate,
		repo.Name, description, languages, topics, repo.Stars, repo.Forks, commits)
}

// languageNames orders languages by byte count, largest first, ties by name.
func languageNames(langs map[string]int) []string {
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if langs[names[i]] != langs[names[j]] {
			return langs[names[i]] > langs[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func subjectLine(msg string) string {
	msg = strings.TrimSpace(msg)
	if i := strings.IndexByte(msg, '\n'); i != -1 {
		msg = strings.TrimSpace(msg[:i])
	}
	return msg
}
