package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinmichaelchen/gitfolio/internal/models"
)

func analyzed(id int64, name string, included bool) models.AnalyzedRepository {
	return models.AnalyzedRepository{
		EnhancedRepository: models.EnhancedRepository{
			RawRepository: models.RawRepository{ID: id, Name: name},
			Included:      included,
		},
	}
}

func TestToggleInclusion(t *testing.T) {
	t.Parallel()

	t.Run("should flip only the matching repository", func(t *testing.T) {
		t.Parallel()

		// given
		repos := []models.AnalyzedRepository{analyzed(1, "a", true), analyzed(2, "b", true), analyzed(3, "c", false)}

		// when
		out := models.ToggleInclusion(repos, 2)

		// then
		require.Len(t, out, 3)
		assert.True(t, out[0].Included)
		assert.False(t, out[1].Included)
		assert.False(t, out[2].Included)
		assert.True(t, repos[1].Included, "input must not be mutated")
	})

	t.Run("should return an unchanged copy for an unknown id", func(t *testing.T) {
		t.Parallel()

		// given
		repos := []models.AnalyzedRepository{analyzed(1, "a", true)}

		// when
		out := models.ToggleInclusion(repos, 42)

		// then
		assert.Equal(t, repos, out)
	})
}

func TestSelected(t *testing.T) {
	t.Parallel()

	// given
	repos := []models.AnalyzedRepository{analyzed(1, "a", true), analyzed(2, "b", false), analyzed(3, "c", true)}

	// when
	out := models.Selected(repos)

	// then
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Name)
	assert.Equal(t, "c", out[1].Name)
}
