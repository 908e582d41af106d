package llm

import "strings"

const (
	DefaultSummary = "No summary generated"
	// MaxBulletPoints caps the bullets kept from one reply.
	MaxBulletPoints = 3
)

// Analysis is the structured form of one generation reply.
type Analysis struct {
	Summary      string
	BulletPoints []string
	Keywords     []string
}

// Parse scans a reply for the three section markers. It never fails: a
// missing or empty section yields that field's default and leaves the other
// fields alone.
//
// Grammar, each section read independently:
//
//	summary  = MarkerSummary  text up to MarkerBullets or end of reply
//	bullets  = MarkerBullets  lines up to MarkerKeywords or end of reply;
//	           a line starting with "-" opens a bullet, other non-blank
//	           lines continue the open one
//	keywords = MarkerKeywords comma separated tokens up to end of reply
func Parse(raw string) Analysis {
	raw = stripCodeFences(raw)

	out := Analysis{
		Summary:      DefaultSummary,
		BulletPoints: []string{},
		Keywords:     []string{},
	}

	if text, ok := section(raw, MarkerSummary, MarkerBullets); ok {
		if s := strings.TrimSpace(text); s != "" {
			out.Summary = s
		}
	}
	if text, ok := section(raw, MarkerBullets, MarkerKeywords); ok {
		out.BulletPoints = parseBullets(text)
	}
	if text, ok := section(raw, MarkerKeywords, ""); ok {
		out.Keywords = parseKeywords(text)
	}
	return out
}

// section returns the text after the first occurrence of marker, cut at the
// next occurrence of until when until is non-empty.
func section(raw, marker, until string) (string, bool) {
	i := strings.Index(raw, marker)
	if i == -1 {
		return "", false
	}
	rest := raw[i+len(marker):]
	if until != "" {
		if j := strings.Index(rest, until); j != -1 {
			rest = rest[:j]
		}
	}
	return rest, true
}

func parseBullets(text string) []string {
	var open []string
	var bullets [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "-"):
			if open != nil {
				bullets = append(bullets, open)
			}
			open = []string{strings.TrimPrefix(line, "-")}
		case line == "":
		case open == nil:
			open = []string{line}
		default:
			open = append(open, line)
		}
	}
	if open != nil {
		bullets = append(bullets, open)
	}

	out := []string{}
	for _, b := range bullets {
		joined := strings.Join(strings.Fields(strings.Join(b, " ")), " ")
		if joined == "" {
			continue
		}
		out = append(out, joined)
		if len(out) == MaxBulletPoints {
			break
		}
	}
	return out
}

func parseKeywords(text string) []string {
	out := []string{}
	for _, tok := range strings.Split(text, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// stripCodeFences removes markdown code fences that some models wrap around
// the whole reply.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
