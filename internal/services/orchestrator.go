package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recruitflow/screening-api/internal/models"
	"recruitflow/screening-api/internal/utils"
)

// Configuration errors reject a screening run before any remote call is
// issued. Everything that happens after admission is converted into
// failure-variant records instead of being surfaced as an error.
var (
	ErrInvalidConcurrency = errors.New("concurrency cap must be at least 1")
	ErrInvalidBatchSize   = errors.New("batch size must be at least 1")
	ErrEmptyRole          = errors.New("role content is empty")
	ErrNoDocuments        = errors.New("no candidate documents to screen")
)

// KnowledgeRetriever pulls rubric context for a role from the knowledge base.
type KnowledgeRetriever interface {
	RetrieveContext(ctx context.Context, query string, limit int) (string, error)
}

// Orchestrator runs a bulk screening: it partitions candidate documents into
// batches, scores them with a bounded number of in-flight remote calls, and
// streams every record to the caller as soon as its batch completes.
type Orchestrator struct {
	scorer        ScoringClient
	knowledge     KnowledgeRetriever
	promptBuilder *PromptBuilder
	batchSize     int
	concurrency   int
	maxDiagLen    int
	logger        *zap.Logger
}

func NewOrchestrator(
	scorer ScoringClient,
	knowledge KnowledgeRetriever,
	batchSize int,
	concurrency int,
	maxDiagLen int,
	logger *zap.Logger,
) *Orchestrator {
	if maxDiagLen <= 0 {
		maxDiagLen = 200
	}
	return &Orchestrator{
		scorer:        scorer,
		knowledge:     knowledge,
		promptBuilder: NewPromptBuilder(),
		batchSize:     batchSize,
		concurrency:   concurrency,
		maxDiagLen:    maxDiagLen,
		logger:        logger,
	}
}

// Screen starts a screening run and returns the record stream. Exactly one
// record is emitted per submitted document, success or failure; the channel
// is closed once every batch has reported. Records of one batch arrive
// together in batch order, batches themselves complete in any order.
func (o *Orchestrator) Screen(ctx context.Context, role models.Role, docs []models.Document) (<-chan models.ScreeningRecord, error) {
	if o.concurrency < 1 {
		return nil, ErrInvalidConcurrency
	}
	if o.batchSize < 1 {
		return nil, ErrInvalidBatchSize
	}
	if strings.TrimSpace(role.Content) == "" {
		return nil, ErrEmptyRole
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	rubric := o.retrieveRubric(ctx, role)
	batches := PartitionDocuments(docs, o.batchSize)

	o.logger.Info("screening started",
		zap.String("role_id", role.ID.String()),
		zap.Int("documents", len(docs)),
		zap.Int("batches", len(batches)),
		zap.Int("concurrency", o.concurrency),
	)

	out := make(chan models.ScreeningRecord)
	go o.run(ctx, role, rubric, batches, out)

	return out, nil
}

// run is the coordinating loop. Completed tasks post their records to a
// single outcome channel; receiving one outcome frees exactly one slot, so
// at most o.concurrency calls are ever in flight and a slow batch never
// blocks the observation of faster ones.
func (o *Orchestrator) run(ctx context.Context, role models.Role, rubric string, batches []Batch, out chan<- models.ScreeningRecord) {
	defer close(out)

	outcomes := make(chan []models.ScreeningRecord)
	next := 0
	inFlight := 0

	for next < len(batches) || inFlight > 0 {
		for next < len(batches) && inFlight < o.concurrency {
			batch := batches[next]
			next++
			inFlight++
			go func(b Batch) {
				outcomes <- o.scoreBatch(ctx, role, rubric, b)
			}(batch)
		}

		records := <-outcomes
		inFlight--
		for _, record := range records {
			out <- record
		}
	}
}

// scoreBatch is the single boundary where remote failures become data. An
// adapter error degrades only this batch's documents; an item missing from
// an otherwise healthy response degrades only that document.
func (o *Orchestrator) scoreBatch(ctx context.Context, role models.Role, rubric string, batch Batch) []models.ScreeningRecord {
	items, err := o.scorer.ScoreBatch(ctx, role, rubric, batch.Documents)
	if err != nil {
		o.logger.Warn("batch scoring failed",
			zap.String("role_id", role.ID.String()),
			zap.Int("batch", batch.Index),
			zap.Int("documents", len(batch.Documents)),
			zap.Error(err),
		)
		diagnostic := "scoring failed: " + utils.Truncate(err.Error(), o.maxDiagLen)
		records := make([]models.ScreeningRecord, 0, len(batch.Documents))
		for _, doc := range batch.Documents {
			records = append(records, failureRecord(doc, diagnostic))
		}
		return records
	}

	byID := make(map[string]ScoredItem, len(items))
	for _, item := range items {
		byID[item.DocumentID] = item
	}

	records := make([]models.ScreeningRecord, 0, len(batch.Documents))
	for _, doc := range batch.Documents {
		item, ok := byID[doc.ID.String()]
		if !ok {
			o.logger.Warn("no scoring result for document",
				zap.String("document_id", doc.ID.String()),
				zap.Int("batch", batch.Index),
			)
			records = append(records, failureRecord(doc, "scoring returned no result for this document"))
			continue
		}
		records = append(records, successRecord(doc, item))
	}

	return records
}

func (o *Orchestrator) retrieveRubric(ctx context.Context, role models.Role) string {
	if o.knowledge == nil {
		return ""
	}

	query := o.promptBuilder.BuildRetrievalQuery(role.Title)
	rubric, err := o.knowledge.RetrieveContext(ctx, query, 3)
	if err != nil {
		// Context is an enrichment; screening proceeds without it.
		o.logger.Warn("failed to retrieve rubric context",
			zap.String("role_id", role.ID.String()),
			zap.Error(err),
		)
		return ""
	}
	return rubric
}

func successRecord(doc models.Document, item ScoredItem) models.ScreeningRecord {
	name := strings.TrimSpace(item.CandidateName)
	if name == "" || strings.EqualFold(name, "unknown") {
		name = displayName(doc)
	}

	return models.ScreeningRecord{
		ID:                 uuid.New(),
		DocumentID:         doc.ID,
		CandidateName:      name,
		Email:              strings.TrimSpace(item.Email),
		MatchScore:         clampScore(item.MatchScore),
		CompatibilityScore: clampScore(item.CompatibilityScore),
		KeySkills:          item.KeySkills,
		Feedback:           item.Feedback,
		SourceFileName:     doc.OriginalFileName,
	}
}

func failureRecord(doc models.Document, diagnostic string) models.ScreeningRecord {
	return models.ScreeningRecord{
		ID:             uuid.New(),
		DocumentID:     doc.ID,
		CandidateName:  displayName(doc),
		Feedback:       diagnostic,
		SourceFileName: doc.OriginalFileName,
		Failed:         true,
	}
}

// displayName strips the file extension from the document's original name.
func displayName(doc models.Document) string {
	name := doc.OriginalFileName
	return strings.TrimSuffix(name, filepath.Ext(name))
}
