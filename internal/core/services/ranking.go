package services

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

// DefaultResultCap is the number of ranked results the search palette shows.
const DefaultResultCap = 8

// Score weights, applied additively.
const (
	scoreTitleContains    = 10
	scoreTitleExact       = 20
	scoreTitlePrefix      = 5
	scoreTitleFuzzy       = 3
	scoreCategoryContains = 4
	scoreDescContains     = 2
	scoreFeatured         = 2
)

// FuzzyMatch reports whether every rune of query appears in text in order,
// not necessarily contiguously. Comparison is case-insensitive and an empty
// query always matches.
func FuzzyMatch(query, text string) bool {
	for query != "" {
		if text == "" {
			return false
		}
		q, qn := utf8.DecodeRuneInString(query)
		t, tn := utf8.DecodeRuneInString(text)
		if unicode.ToLower(q) == unicode.ToLower(t) {
			query = query[qn:]
		}
		text = text[tn:]
	}
	return true
}

// Score computes the relevance of item for query. Zero means no match.
func Score(query string, item domain.SearchCandidate) float64 {
	q := strings.ToLower(query)
	title := strings.ToLower(item.Title)
	desc := strings.ToLower(item.Description)
	category := strings.ToLower(item.Category)

	var score float64

	if strings.Contains(title, q) {
		score += scoreTitleContains
		if title == q {
			score += scoreTitleExact
		}
	}
	if strings.HasPrefix(title, q) {
		score += scoreTitlePrefix
	}
	if FuzzyMatch(query, item.Title) {
		score += scoreTitleFuzzy
	}
	if strings.Contains(category, q) {
		score += scoreCategoryContains
	}
	if strings.Contains(desc, q) {
		score += scoreDescContains
	}

	// The featured boost only reorders matches; it never creates one.
	if score > 0 && item.Category == domain.FeaturedCategory {
		score += scoreFeatured
	}

	return score
}

// Rank scores candidates against query, drops non-matches, and returns at
// most limit candidates ordered by descending score. Ties keep input order.
// A blank query returns no results.
func Rank(query string, candidates []domain.SearchCandidate, limit int) []domain.SearchCandidate {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return []domain.SearchCandidate{}
	}

	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if s := Score(query, c); s > 0 {
			scored = append(scored, domain.ScoredCandidate{Candidate: c, Score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	results := make([]domain.SearchCandidate, len(scored))
	for i := range scored {
		results[i] = scored[i].Candidate
	}
	return results
}
