package llm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevinmichaelchen/gitfolio/internal/llm"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("should split a well formed reply into the three fields", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "SUMMARY:\nDoes X\n\nBULLET_POINTS:\n- Built X\n\nKEYWORDS:\nweb, api"

		// when
		out := llm.Parse(raw)

		// then
		assert.Equal(t, "Does X", out.Summary)
		assert.Equal(t, []string{"Built X"}, out.BulletPoints)
		assert.Equal(t, []string{"web", "api"}, out.Keywords)
	})

	t.Run("should collapse wrapped bullets and keep hyphenated words", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "SUMMARY: A real-time engine\nBULLET_POINTS:\n- Designed a real-time\n   pipeline   for   events\n-   Cut latency by 40%\nKEYWORDS: go,  kafka ,, grpc"

		// when
		out := llm.Parse(raw)

		// then
		assert.Equal(t, "A real-time engine", out.Summary)
		assert.Equal(t, []string{"Designed a real-time pipeline for events", "Cut latency by 40%"}, out.BulletPoints)
		assert.Equal(t, []string{"go", "kafka", "grpc"}, out.Keywords)
	})

	t.Run("should default only the fields whose marker is missing", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "BULLET_POINTS:\n- Shipped it\nKEYWORDS: a, b"

		// when
		out := llm.Parse(raw)

		// then
		assert.Equal(t, llm.DefaultSummary, out.Summary)
		assert.Equal(t, []string{"Shipped it"}, out.BulletPoints)
		assert.Equal(t, []string{"a", "b"}, out.Keywords)
	})

	t.Run("should keep at most three bullets", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "BULLET_POINTS:\n- one\n- two\n- three\n- four\n"

		// when
		out := llm.Parse(raw)

		// then
		assert.Equal(t, []string{"one", "two", "three"}, out.BulletPoints)
	})

	t.Run("should strip a surrounding code fence", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "```text\nSUMMARY: ok\nBULLET_POINTS:\n- b\nKEYWORDS: x, y\n```"

		// when
		out := llm.Parse(raw)

		// then
		assert.Equal(t, "ok", out.Summary)
		assert.Equal(t, []string{"b"}, out.BulletPoints)
		assert.Equal(t, []string{"x", "y"}, out.Keywords)
	})

	t.Run("should run the summary to the end of the reply without a bullets marker", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "SUMMARY: ok\nKEYWORDS: x, y"

		// when
		out := llm.Parse(raw)

		// then
		assert.Equal(t, "ok\nKEYWORDS: x, y", out.Summary)
		assert.Equal(t, []string{"x", "y"}, out.Keywords)
	})

	t.Run("should use the default summary for a blank summary section", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "SUMMARY:\n\nBULLET_POINTS:\n- a\nKEYWORDS: x"

		// when
		out := llm.Parse(raw)

		// then
		assert.Equal(t, llm.DefaultSummary, out.Summary)
		assert.Equal(t, []string{"a"}, out.BulletPoints)
		assert.Equal(t, []string{"x"}, out.Keywords)
	})

	t.Run("should return a well formed triple for anomalous input", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			"",
			"   ",
			"SUMMARY:",
			"KEYWORDS:",
			"BULLET_POINTS:\n-\n-\n",
			"KEYWORDS: z\nBULLET_POINTS:\n- late\nSUMMARY: last",
			"```",
			"no markers at all, just text - with a dash",
			strings.Repeat("SUMMARY:BULLET_POINTS:KEYWORDS:", 50),
		}

		for _, raw := range inputs {
			// when
			var out llm.Analysis
			assert.NotPanics(t, func() { out = llm.Parse(raw) }, "input %q", raw)

			// then
			assert.NotEmpty(t, out.Summary, "input %q", raw)
			assert.NotNil(t, out.BulletPoints, "input %q", raw)
			assert.NotNil(t, out.Keywords, "input %q", raw)
			assert.LessOrEqual(t, len(out.BulletPoints), llm.MaxBulletPoints)
		}
	})

	t.Run("should read sections independently when markers are out of order", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "KEYWORDS: z\nBULLET_POINTS:\n- late\nSUMMARY: last"

		// when
		out := llm.Parse(raw)

		// then
		assert.Equal(t, "last", out.Summary)
		assert.Equal(t, []string{"late SUMMARY: last"}, out.BulletPoints)
		assert.Equal(t, []string{"z\nBULLET_POINTS:\n- late\nSUMMARY: last"}, out.Keywords)
	})
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		summary  string
		bullets  []string
		keywords []string
	}{
		{"Does X", []string{"Built X"}, []string{"web", "api", "go", "sql", "docker"}},
		{
			"A CLI that turns repos into a portfolio.\nWritten in Go.",
			[]string{"Built a batch pipeline", "Reduced API calls by 50% using throttling", "Shipped v1"},
			[]string{"cli", "github-api", "llm", "portfolio", "go"},
		},
		{"  padded  ", []string{"  spaced   out  ", "two"}, []string{" a ", "b", "c", "d", "e"}},
	}

	for _, tc := range cases {
		// given
		var b strings.Builder
		b.WriteString(llm.MarkerSummary + "\n" + tc.summary + "\n\n" + llm.MarkerBullets + "\n")
		for _, bp := range tc.bullets {
			b.WriteString("- " + bp + "\n")
		}
		b.WriteString("\n" + llm.MarkerKeywords + "\n" + strings.Join(tc.keywords, ", ") + "\n")

		// when
		out := llm.Parse(b.String())

		// then
		assert.Equal(t, strings.TrimSpace(tc.summary), out.Summary)
		wantBullets := make([]string, 0, len(tc.bullets))
		for _, bp := range tc.bullets {
			wantBullets = append(wantBullets, strings.Join(strings.Fields(bp), " "))
		}
		assert.Equal(t, wantBullets, out.BulletPoints)
		wantKeywords := make([]string, 0, len(tc.keywords))
		for _, k := range tc.keywords {
			wantKeywords = append(wantKeywords, strings.TrimSpace(k))
		}
		assert.Equal(t, wantKeywords, out.Keywords)
	}
}
