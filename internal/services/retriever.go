package services

import (
	"context"
	"fmt"
	"log"
)

// ContextRetriever looks up reference material relevant to a resume.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

type ragRetriever struct {
	geminiService GeminiService
	qdrantService QdrantService
	docTypes      []string
	limit         int
}

func NewContextRetriever(geminiService GeminiService, qdrantService QdrantService) ContextRetriever {
	return &ragRetriever{
		geminiService: geminiService,
		qdrantService: qdrantService,
		docTypes:      []string{DocTypeRoleProfile, DocTypeCourseCatalog},
		limit:         3,
	}
}

func (r *ragRetriever) Retrieve(ctx context.Context, query string) (string, error) {
	embedding, err := r.geminiService.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	var allResults []SearchResult
	for _, docType := range r.docTypes {
		results, err := r.qdrantService.SearchSimilar(ctx, embedding, docType, r.limit)
		if err != nil {
			log.Printf("⚠️  Failed to search for %s: %v", docType, err)
			continue
		}
		allResults = append(allResults, results...)
	}

	return FormatRAGContext(allResults), nil
}
