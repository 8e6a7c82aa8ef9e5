package services

import (
	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

// docSnippetRunes is the length of a doc body excerpt used as description.
const docSnippetRunes = 150

// PluginCandidates converts plugins into search candidates.
func PluginCandidates(plugins []domain.Plugin) []domain.SearchCandidate {
	out := make([]domain.SearchCandidate, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, domain.SearchCandidate{
			ID:          "plugin-" + p.ID,
			Type:        domain.CandidatePlugin,
			Title:       p.Name,
			Description: p.Description,
			URL:         "/plugins/" + p.Slug,
			Category:    p.Category,
		})
	}
	return out
}

// ShowcaseCandidates converts showcase entries into search candidates.
func ShowcaseCandidates(items []domain.Showcase) []domain.SearchCandidate {
	out := make([]domain.SearchCandidate, 0, len(items))
	for _, s := range items {
		out = append(out, domain.SearchCandidate{
			ID:          "showcase-" + s.ID,
			Type:        domain.CandidateShowcase,
			Title:       s.Title,
			Description: s.Description,
			URL:         "/showcase/" + s.Slug,
			Category:    s.Category,
		})
	}
	return out
}

// DocCandidates converts doc pages into search candidates. Docs carry no
// category; their description is an excerpt of the body.
func DocCandidates(docs []domain.DocEntry) []domain.SearchCandidate {
	out := make([]domain.SearchCandidate, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.SearchCandidate{
			ID:          "doc-" + d.ID,
			Type:        domain.CandidateDoc,
			Title:       d.Title,
			Description: excerpt(d.Body, docSnippetRunes) + "...",
			URL:         "/docs/" + d.Slug,
		})
	}
	return out
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
