package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/ingest"
	"alfredoptarigan/resume-analyzer/internal/ocr"
	"alfredoptarigan/resume-analyzer/internal/ocr/mupdf"
	"alfredoptarigan/resume-analyzer/internal/ocr/tesseract"
	"alfredoptarigan/resume-analyzer/internal/services"
)

func main() {
	cfg := config.Load()

	manifestPath := flag.String("manifest", cfg.Ingest.ManifestPath, "path to the reference document manifest")
	flag.Parse()

	log.Println("🚀 Starting document ingestion...")

	if cfg.Qdrant.URL == "" {
		log.Fatal("❌ QDRANT_URL is not set")
	}

	manifest, err := ingest.LoadManifest(*manifestPath)
	if err != nil {
		log.Fatalf("❌ Failed to load manifest: %v", err)
	}
	log.Printf("✅ Loaded %d documents from %s", len(manifest.Documents), *manifestPath)

	ctx := context.Background()

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	extractor := services.NewTextExtractor(
		services.NewPDFParserService(),
		services.NewDocxParserService(),
		tesseract.NewEngine(),
		mupdf.NewRenderer(),
		ocr.Options{
			Languages: cfg.OCR.Languages,
			DPI:       cfg.OCR.DPI,
			MinWidth:  cfg.OCR.MinWidth,
		},
	)

	ingester := ingest.NewIngester(extractor, services.NewTextChunker(), geminiService, qdrantService)
	reports := ingester.Run(ctx, manifest)

	if failed := printSummary(reports); failed > 0 {
		os.Exit(1)
	}
}

func printSummary(reports []ingest.Report) int {
	title := color.New(color.FgWhite, color.Bold)
	positive := color.New(color.FgGreen)
	negative := color.New(color.FgRed)
	warning := color.New(color.FgYellow)

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	title.Println("📊 Ingestion Summary")

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			negative.Printf("   ❌ %-40s %v\n", r.Document.Name, r.Err)
			continue
		}
		positive.Printf("   ✅ %-40s %d chunks\n", r.Document.Name, r.Stored)
	}

	fmt.Println(strings.Repeat("-", 60))
	positive.Printf("   Successful: %d documents\n", len(reports)-failed)
	if failed > 0 {
		negative.Printf("   Failed: %d documents\n", failed)
		warning.Println("⚠️  Some documents failed to ingest. Please check the logs above.")
	}
	fmt.Println(strings.Repeat("=", 60))

	return failed
}
