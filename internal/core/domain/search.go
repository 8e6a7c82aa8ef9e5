package domain

// CandidateType is the closed set of searchable record kinds.
type CandidateType string

const (
	CandidatePlugin   CandidateType = "plugin"
	CandidateShowcase CandidateType = "showcase"
	CandidateDoc      CandidateType = "doc"
)

// FeaturedCategory marks curated catalogue entries.
const FeaturedCategory = "精选"

// SearchCandidate is a normalised projection of a plugin, showcase entry or
// doc page used for local ranking. It is never persisted.
type SearchCandidate struct {
	ID          string        `json:"id"`
	Type        CandidateType `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	Category    string        `json:"category,omitempty"`
}

// ScoredCandidate pairs a candidate with its score during one ranking pass.
type ScoredCandidate struct {
	Candidate SearchCandidate
	Score     float64
}
