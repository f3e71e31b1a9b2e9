package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"recruitflow/screening-api/internal/config"
	"recruitflow/screening-api/internal/logger"
	"recruitflow/screening-api/internal/services"
)

// Ingests scoring-rubric and screening-guideline PDFs into the knowledge
// base so screening prompts can retrieve them.
func main() {
	dir := flag.String("dir", "./reference_docs", "directory of rubric PDFs to ingest")
	docType := flag.String("type", "screening_rubric", "knowledge-base document type for the ingested files")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatal("failed to initialize Gemini", zap.Error(err))
	}

	knowledgeService, err := services.NewKnowledgeService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
		log,
	)
	if err != nil {
		log.Fatal("failed to initialize Qdrant", zap.Error(err))
	}

	if err := knowledgeService.InitCollection(); err != nil {
		log.Fatal("failed to initialize collection", zap.Error(err))
	}

	pdfParser := services.NewPDFParserService()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatal("failed to read rubric directory", zap.String("dir", *dir), zap.Error(err))
	}

	ctx := context.Background()
	successCount := 0
	failCount := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		log.Info("processing rubric", zap.String("file", path))

		text, err := pdfParser.ExtractText(path)
		if err != nil {
			log.Warn("failed to extract text", zap.String("file", path), zap.Error(err))
			failCount++
			continue
		}

		if err := knowledgeService.IndexContent(ctx, name, *docType, text); err != nil {
			log.Warn("failed to index rubric", zap.String("file", path), zap.Error(err))
			failCount++
			continue
		}

		log.Info("rubric ingested", zap.String("file", path), zap.Int("characters", len(text)))
		successCount++
	}

	log.Info("ingestion finished",
		zap.Int("successful", successCount),
		zap.Int("failed", failCount),
	)

	if failCount > 0 {
		os.Exit(1)
	}
}
