package ingest

import (
	"context"
	"fmt"
	"log"
	"os"

	"alfredoptarigan/resume-analyzer/internal/services"
)

// Report summarises one document's ingestion.
type Report struct {
	Document Document
	Chunks   int
	Stored   int
	Err      error
}

type Ingester struct {
	extractor     services.TextExtractor
	chunker       services.TextChuncker
	geminiService services.GeminiService
	qdrantService services.QdrantService
}

func NewIngester(
	extractor services.TextExtractor,
	chunker services.TextChuncker,
	geminiService services.GeminiService,
	qdrantService services.QdrantService,
) *Ingester {
	return &Ingester{
		extractor:     extractor,
		chunker:       chunker,
		geminiService: geminiService,
		qdrantService: qdrantService,
	}
}

// Run ingests every document in the manifest and reports on each one.
func (i *Ingester) Run(ctx context.Context, manifest *Manifest) []Report {
	reports := make([]Report, 0, len(manifest.Documents))
	for _, doc := range manifest.Documents {
		if err := ctx.Err(); err != nil {
			reports = append(reports, Report{Document: doc, Err: err})
			continue
		}
		reports = append(reports, i.ingestDocument(ctx, doc, manifest.ChunkSize, manifest.ChunkOverlap))
	}
	return reports
}

func (i *Ingester) ingestDocument(ctx context.Context, doc Document, chunkSize, overlap int) Report {
	report := Report{Document: doc}

	log.Printf("📄 Processing: %s", doc.Name)
	log.Printf("   Path: %s", doc.Path)
	log.Printf("   Type: %s", doc.DocType)

	if _, err := os.Stat(doc.Path); err != nil {
		report.Err = fmt.Errorf("file not accessible: %w", err)
		return report
	}

	fileType, _, err := services.DetectFileType(doc.Path)
	if err != nil {
		report.Err = err
		return report
	}

	log.Printf("   📖 Extracting text...")
	result, err := i.extractor.Extract(ctx, doc.Path, fileType)
	if err != nil {
		report.Err = fmt.Errorf("failed to extract text: %w", err)
		return report
	}
	log.Printf("   ✅ Extracted %d pages, %d characters (%s)", result.PageCount, len(result.Text), result.Method)

	chunks := i.chunker.ChunkText(result.Text, chunkSize, overlap)
	report.Chunks = len(chunks)
	log.Printf("   ✂️  Created %d chunks", len(chunks))

	if err := i.qdrantService.DeleteDocument(ctx, doc.ID); err != nil {
		log.Printf("   ⚠️  Failed to remove previous chunks: %v", err)
	}

	for idx, text := range chunks {
		embedding, err := i.geminiService.GenerateEmbedding(ctx, text)
		if err != nil {
			log.Printf("   ❌ Failed to generate embedding for chunk %d: %v", idx+1, err)
			continue
		}

		chunk := services.ReferenceChunk{
			DocID:   doc.ID,
			DocType: doc.DocType,
			Index:   idx,
			Text:    text,
		}
		if err := i.qdrantService.UpsertChunk(ctx, chunk, embedding); err != nil {
			log.Printf("   ❌ Failed to store chunk %d: %v", idx+1, err)
			continue
		}
		report.Stored++

		if (idx+1)%5 == 0 || idx == len(chunks)-1 {
			log.Printf("   📊 Progress: %d/%d chunks stored", idx+1, len(chunks))
		}
	}

	if report.Stored < report.Chunks {
		report.Err = fmt.Errorf("stored %d of %d chunks", report.Stored, report.Chunks)
	}

	return report
}
