package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recruitflow/screening-api/internal/models"
)

type stubScorer struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	delay       time.Duration
	gate        chan struct{}
	scoreFn     func(docs []models.Document) ([]ScoredItem, error)
}

func (s *stubScorer) ScoreBatch(_ context.Context, _ models.Role, _ string, docs []models.Document) ([]ScoredItem, error) {
	s.mu.Lock()
	s.calls++
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.gate != nil {
		<-s.gate
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	if s.scoreFn != nil {
		return s.scoreFn(docs)
	}
	return defaultItems(docs), nil
}

func defaultItems(docs []models.Document) []ScoredItem {
	items := make([]ScoredItem, 0, len(docs))
	for i, doc := range docs {
		items = append(items, ScoredItem{
			DocumentID:         doc.ID.String(),
			CandidateName:      fmt.Sprintf("Candidate %s", doc.OriginalFileName),
			Email:              fmt.Sprintf("c%d@example.com", i),
			MatchScore:         80,
			CompatibilityScore: 75,
			KeySkills:          "Go, PostgreSQL",
			Feedback:           "Solid backend profile.",
		})
	}
	return items
}

func makeDocs(n int) []models.Document {
	docs := make([]models.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, models.Document{
			ID:               uuid.New(),
			OriginalFileName: fmt.Sprintf("cv_%02d.pdf", i),
			ExtractedText:    fmt.Sprintf("cv text %d", i),
		})
	}
	return docs
}

func makeRole() models.Role {
	return models.Role{
		ID:      uuid.New(),
		Title:   "Backend Engineer",
		Content: "Go, PostgreSQL, distributed systems",
	}
}

func collect(t *testing.T, stream <-chan models.ScreeningRecord) []models.ScreeningRecord {
	t.Helper()

	var records []models.ScreeningRecord
	timeout := time.After(5 * time.Second)
	for {
		select {
		case record, ok := <-stream:
			if !ok {
				return records
			}
			records = append(records, record)
		case <-timeout:
			t.Fatalf("stream did not close, got %d records so far", len(records))
		}
	}
}

func TestScreenScoresEveryDocument(t *testing.T) {
	scorer := &stubScorer{}
	o := NewOrchestrator(scorer, nil, 10, 5, 200, zap.NewNop())

	docs := makeDocs(23)
	stream, err := o.Screen(context.Background(), makeRole(), docs)
	require.NoError(t, err)

	records := collect(t, stream)
	require.Len(t, records, 23)
	assert.Equal(t, 3, scorer.calls)

	seen := make(map[uuid.UUID]int)
	for _, record := range records {
		seen[record.DocumentID]++
		assert.False(t, record.Failed)
		assert.GreaterOrEqual(t, record.MatchScore, 0)
		assert.LessOrEqual(t, record.MatchScore, 100)
	}
	for _, doc := range docs {
		assert.Equal(t, 1, seen[doc.ID], "document %s must be scored exactly once", doc.ID)
	}
}

func TestScreenHoldsConcurrencyBound(t *testing.T) {
	scorer := &stubScorer{delay: 10 * time.Millisecond}
	o := NewOrchestrator(scorer, nil, 1, 3, 200, zap.NewNop())

	stream, err := o.Screen(context.Background(), makeRole(), makeDocs(20))
	require.NoError(t, err)

	records := collect(t, stream)
	require.Len(t, records, 20)
	assert.Equal(t, 20, scorer.calls)
	assert.LessOrEqual(t, scorer.maxInFlight, 3)
}

func TestScreenBatchFailureIsIsolated(t *testing.T) {
	docs := makeDocs(23)
	failing := docs[0].ID

	scorer := &stubScorer{
		scoreFn: func(batch []models.Document) ([]ScoredItem, error) {
			for _, doc := range batch {
				if doc.ID == failing {
					return nil, fmt.Errorf("connection refused")
				}
			}
			return defaultItems(batch), nil
		},
	}
	o := NewOrchestrator(scorer, nil, 10, 5, 200, zap.NewNop())

	stream, err := o.Screen(context.Background(), makeRole(), docs)
	require.NoError(t, err)

	records := collect(t, stream)
	require.Len(t, records, 23)

	failed := 0
	for _, record := range records {
		if record.Failed {
			failed++
			assert.Zero(t, record.MatchScore)
			assert.Zero(t, record.CompatibilityScore)
			assert.Contains(t, record.Feedback, "connection refused")
		}
	}
	// Only the 10 documents of the failing batch degrade.
	assert.Equal(t, 10, failed)
}

func TestScreenTruncatesDiagnostics(t *testing.T) {
	longErr := strings.Repeat("x", 1000)
	scorer := &stubScorer{
		scoreFn: func([]models.Document) ([]ScoredItem, error) {
			return nil, fmt.Errorf("%s", longErr)
		},
	}
	o := NewOrchestrator(scorer, nil, 10, 5, 50, zap.NewNop())

	stream, err := o.Screen(context.Background(), makeRole(), makeDocs(3))
	require.NoError(t, err)

	records := collect(t, stream)
	require.Len(t, records, 3)
	for _, record := range records {
		require.True(t, record.Failed)
		assert.Less(t, len(record.Feedback), 100)
		assert.Contains(t, record.Feedback, "scoring failed: ")
	}
}

func TestScreenMissingItemsBecomeFailures(t *testing.T) {
	docs := makeDocs(10)
	omitted := map[uuid.UUID]bool{docs[3].ID: true, docs[7].ID: true}

	scorer := &stubScorer{
		scoreFn: func(batch []models.Document) ([]ScoredItem, error) {
			var kept []models.Document
			for _, doc := range batch {
				if !omitted[doc.ID] {
					kept = append(kept, doc)
				}
			}
			return defaultItems(kept), nil
		},
	}
	o := NewOrchestrator(scorer, nil, 10, 5, 200, zap.NewNop())

	stream, err := o.Screen(context.Background(), makeRole(), docs)
	require.NoError(t, err)

	records := collect(t, stream)
	require.Len(t, records, 10)

	for _, record := range records {
		if omitted[record.DocumentID] {
			assert.True(t, record.Failed)
			assert.Zero(t, record.MatchScore)
			assert.Contains(t, record.Feedback, "no result")
		} else {
			assert.False(t, record.Failed)
		}
	}
}

func TestScreenBatchRecordsKeepBatchOrder(t *testing.T) {
	// With one slot and one batch per call, records must arrive in input order.
	scorer := &stubScorer{}
	o := NewOrchestrator(scorer, nil, 10, 1, 200, zap.NewNop())

	docs := makeDocs(25)
	stream, err := o.Screen(context.Background(), makeRole(), docs)
	require.NoError(t, err)

	records := collect(t, stream)
	require.Len(t, records, 25)
	for i, record := range records {
		assert.Equal(t, docs[i].ID, record.DocumentID)
	}
}

func TestScreenRejectsBadConfiguration(t *testing.T) {
	scorer := &stubScorer{}
	docs := makeDocs(2)

	cases := []struct {
		name        string
		batchSize   int
		concurrency int
		role        models.Role
		docs        []models.Document
		wantErr     error
	}{
		{name: "zero concurrency", batchSize: 10, concurrency: 0, role: makeRole(), docs: docs, wantErr: ErrInvalidConcurrency},
		{name: "negative concurrency", batchSize: 10, concurrency: -1, role: makeRole(), docs: docs, wantErr: ErrInvalidConcurrency},
		{name: "zero batch size", batchSize: 0, concurrency: 5, role: makeRole(), docs: docs, wantErr: ErrInvalidBatchSize},
		{name: "empty role", batchSize: 10, concurrency: 5, role: models.Role{Title: "x", Content: "   "}, docs: docs, wantErr: ErrEmptyRole},
		{name: "no documents", batchSize: 10, concurrency: 5, role: makeRole(), docs: nil, wantErr: ErrNoDocuments},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := NewOrchestrator(scorer, nil, tc.batchSize, tc.concurrency, 200, zap.NewNop())
			stream, err := o.Screen(context.Background(), tc.role, tc.docs)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, stream)
		})
	}

	// Rejection happens before any remote call.
	assert.Zero(t, scorer.calls)
}

func TestScreenClampsAdapterScores(t *testing.T) {
	docs := makeDocs(2)
	scorer := &stubScorer{
		scoreFn: func(batch []models.Document) ([]ScoredItem, error) {
			return []ScoredItem{
				{DocumentID: batch[0].ID.String(), CandidateName: "A", MatchScore: 150, CompatibilityScore: 101},
				{DocumentID: batch[1].ID.String(), CandidateName: "B", MatchScore: -20, CompatibilityScore: -1},
			}, nil
		},
	}
	o := NewOrchestrator(scorer, nil, 10, 5, 200, zap.NewNop())

	stream, err := o.Screen(context.Background(), makeRole(), docs)
	require.NoError(t, err)

	records := collect(t, stream)
	require.Len(t, records, 2)

	byID := make(map[uuid.UUID]models.ScreeningRecord)
	for _, record := range records {
		byID[record.DocumentID] = record
	}

	assert.Equal(t, 100, byID[docs[0].ID].MatchScore)
	assert.Equal(t, 100, byID[docs[0].ID].CompatibilityScore)
	assert.Equal(t, 0, byID[docs[1].ID].MatchScore)
	assert.Equal(t, 0, byID[docs[1].ID].CompatibilityScore)
}

func TestScreenFallsBackToDisplayName(t *testing.T) {
	docs := []models.Document{
		{ID: uuid.New(), OriginalFileName: "Jane_Doe_Resume.pdf", ExtractedText: "cv"},
		{ID: uuid.New(), OriginalFileName: "anon.pdf", ExtractedText: "cv"},
	}

	scorer := &stubScorer{
		scoreFn: func(batch []models.Document) ([]ScoredItem, error) {
			return []ScoredItem{
				{DocumentID: batch[0].ID.String(), CandidateName: "   ", MatchScore: 70, CompatibilityScore: 70},
				{DocumentID: batch[1].ID.String(), CandidateName: "Unknown", MatchScore: 60, CompatibilityScore: 60},
			}, nil
		},
	}
	o := NewOrchestrator(scorer, nil, 10, 5, 200, zap.NewNop())

	stream, err := o.Screen(context.Background(), makeRole(), docs)
	require.NoError(t, err)

	records := collect(t, stream)
	require.Len(t, records, 2)

	names := make(map[uuid.UUID]string)
	for _, record := range records {
		names[record.DocumentID] = record.CandidateName
	}

	assert.Equal(t, "Jane_Doe_Resume", names[docs[0].ID])
	assert.Equal(t, "anon", names[docs[1].ID])
}

type stubRetriever struct {
	context string
	err     error
	queries []string
}

func (s *stubRetriever) RetrieveContext(_ context.Context, query string, _ int) (string, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return "", s.err
	}
	return s.context, nil
}

func TestScreenSurvivesKnowledgeFailure(t *testing.T) {
	retriever := &stubRetriever{err: fmt.Errorf("qdrant unavailable")}
	scorer := &stubScorer{}
	o := NewOrchestrator(scorer, retriever, 10, 5, 200, zap.NewNop())

	stream, err := o.Screen(context.Background(), makeRole(), makeDocs(4))
	require.NoError(t, err)

	records := collect(t, stream)
	assert.Len(t, records, 4)
	assert.Len(t, retriever.queries, 1)
}
