package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// KnowledgeService manages the rubric/context knowledge base: role
// descriptions and scoring rubrics are chunked, embedded and indexed so
// screening can enrich its prompts with the most relevant passages.
type KnowledgeService interface {
	KnowledgeRetriever
	InitCollection() error
	IndexContent(ctx context.Context, docID string, docType string, text string) error
	UpsertChunk(ctx context.Context, docID string, docType string, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error)
}

type SearchResult struct {
	ID      string
	Score   float32
	Text    string
	DocType string
}

type embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type knowledgeService struct {
	client         *qdrant.Client
	embedder       embedder
	chunker        TextChunker
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewKnowledgeService(urlStr, apiKey, collectionName string, embedder embedder, logger *zap.Logger) (KnowledgeService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &knowledgeService{
		client:         client,
		embedder:       embedder,
		chunker:        NewTextChunker(),
		collectionName: collectionName,
		vectorSize:     768,
		logger:         logger,
	}, nil
}

// InitCollection implements KnowledgeService.
func (k *knowledgeService) InitCollection() error {
	ctx := context.Background()

	exists, err := k.client.CollectionExists(ctx, k.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = k.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: k.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     k.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	k.logger.Info("qdrant collection created", zap.String("collection", k.collectionName))
	return nil
}

// IndexContent chunks, embeds and stores a piece of knowledge-base content.
func (k *knowledgeService) IndexContent(ctx context.Context, docID string, docType string, text string) error {
	chunks := k.chunker.ChunkText(text, 1000, 200)

	for i, chunk := range chunks {
		embedding, err := k.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i+1, err)
		}

		chunkID := fmt.Sprintf("%s_chunk_%d", docID, i)
		if err := k.UpsertChunk(ctx, chunkID, docType, chunk, embedding); err != nil {
			return fmt.Errorf("failed to store chunk %d: %w", i+1, err)
		}
	}

	k.logger.Debug("content indexed",
		zap.String("doc_id", docID),
		zap.String("doc_type", docType),
		zap.Int("chunks", len(chunks)),
	)
	return nil
}

// UpsertChunk implements KnowledgeService.
func (k *knowledgeService) UpsertChunk(ctx context.Context, docID string, docType string, text string, embedding []float32) error {
	pointID := uuid.New()

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(pointID.ID())),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"doc_id":   docID,
			"doc_type": docType,
			"text":     text,
		}),
	}

	_, err := k.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: k.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements KnowledgeService.
func (k *knowledgeService) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if docType != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("doc_type", docType),
			},
		}
	}

	searchResult, err := k.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: k.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var results []SearchResult
	for _, point := range searchResult {
		payload := point.Payload

		result := SearchResult{
			Score: point.Score,
		}

		if docID, ok := payload["doc_id"]; ok {
			if val, ok := docID.GetKind().(*qdrant.Value_StringValue); ok {
				result.ID = val.StringValue
			}
		}

		if text, ok := payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				result.Text = val.StringValue
			}
		}

		if dtype, ok := payload["doc_type"]; ok {
			if val, ok := dtype.GetKind().(*qdrant.Value_StringValue); ok {
				result.DocType = val.StringValue
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// RetrieveContext embeds the query, pulls the closest chunks and formats them
// for prompt injection. Implements KnowledgeRetriever.
func (k *knowledgeService) RetrieveContext(ctx context.Context, query string, limit int) (string, error) {
	embedding, err := k.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := k.SearchSimilar(ctx, embedding, "", limit)
	if err != nil {
		return "", err
	}

	return FormatKnowledgeContext(results), nil
}
