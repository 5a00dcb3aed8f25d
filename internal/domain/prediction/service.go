// Package prediction fronts the external inference services: symptom
// based disease prediction and embedding driven semantic code search.
// Semantic hits are enriched with the stored terminology rows they
// reference.
package prediction

import (
	"context"

	"github.com/ayushbridge/ayushbridge/internal/domain/terminology"
	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
	"github.com/ayushbridge/ayushbridge/internal/platform/predict"
)

// Predictor is the disease prediction upstream.
type Predictor interface {
	Symptoms(ctx context.Context) ([]string, error)
	Models(ctx context.Context) ([]string, error)
	Predict(ctx context.Context, req predict.PredictionRequest) (*predict.PredictionResult, error)
}

// SemanticSearcher is the embedding search upstream.
type SemanticSearcher interface {
	Search(ctx context.Context, query, vocabulary string, limit int) ([]predict.SemanticMatch, error)
	GenerateEmbeddings(ctx context.Context) error
}

// CodeResolver resolves semantic hit identifiers to stored concepts.
// Satisfied by terminology.Repository.
type CodeResolver interface {
	GetNamasteByCode(ctx context.Context, code string) (*terminology.NamasteCode, error)
	GetICD11ByCode(ctx context.Context, code string) (*terminology.ICD11Code, error)
}

// SemanticResult is one enriched semantic search hit.
type SemanticResult struct {
	Code       string  `json:"code"`
	Display    string  `json:"display"`
	Category   string  `json:"category,omitempty"`
	Similarity float64 `json:"similarity"`
}

// Service glues the upstreams to the HTTP layer.
type Service struct {
	predictor Predictor
	semantic  SemanticSearcher
	codes     CodeResolver
}

func NewService(predictor Predictor, semantic SemanticSearcher, codes CodeResolver) *Service {
	return &Service{predictor: predictor, semantic: semantic, codes: codes}
}

// Symptoms lists the symptom vocabulary of the ML service.
func (s *Service) Symptoms(ctx context.Context) ([]string, error) {
	return s.predictor.Symptoms(ctx)
}

// Models lists the ML models available upstream.
func (s *Service) Models(ctx context.Context) ([]string, error) {
	return s.predictor.Models(ctx)
}

// Predict runs a disease prediction for the given symptoms.
func (s *Service) Predict(ctx context.Context, req predict.PredictionRequest) (*predict.PredictionResult, error) {
	return s.predictor.Predict(ctx, req)
}

// SemanticSearch runs an embedding search and resolves hits against the
// terminology store. Hits that no longer resolve are dropped.
func (s *Service) SemanticSearch(ctx context.Context, query, vocabulary string, limit int) ([]SemanticResult, error) {
	if query == "" {
		return []SemanticResult{}, nil
	}
	if vocabulary == "" {
		vocabulary = terminology.VocabularyNamaste
	}
	if vocabulary != terminology.VocabularyNamaste && vocabulary != terminology.VocabularyICD11 {
		return nil, apperr.Validation("unknown vocabulary %q", vocabulary)
	}
	matches, err := s.semantic.Search(ctx, query, vocabulary, limit)
	if err != nil {
		return nil, err
	}

	results := []SemanticResult{}
	for _, m := range matches {
		switch vocabulary {
		case terminology.VocabularyNamaste:
			c, err := s.codes.GetNamasteByCode(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			if c == nil {
				continue
			}
			results = append(results, SemanticResult{
				Code: c.Code, Display: c.Display, Category: c.SystemType, Similarity: m.Similarity,
			})
		case terminology.VocabularyICD11:
			c, err := s.codes.GetICD11ByCode(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			if c == nil {
				continue
			}
			results = append(results, SemanticResult{
				Code: c.ICDCode, Display: c.Title, Category: c.Module, Similarity: m.Similarity,
			})
		}
	}
	return results, nil
}

// RegenerateEmbeddings rebuilds the upstream embedding index.
func (s *Service) RegenerateEmbeddings(ctx context.Context) error {
	return s.semantic.GenerateEmbeddings(ctx)
}
